package models

import (
	"time"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantAggregateModel holds the columns shared by every tenant-scoped
// aggregate table
type TenantAggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainTenantAggregateRoot copies identity, tenant and version columns
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot) {
	m.ID = t.ID
	m.TenantID = t.TenantID
	m.Version = t.Version
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
}

// ToDomainTenantAggregateRoot rebuilds the aggregate header without
// pending events
func (m *TenantAggregateModel) ToDomainTenantAggregateRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		TenantID: m.TenantID,
	}
}

// AllModels lists every model, used by AutoMigrate in tests
func AllModels() []any {
	return []any{
		&CustomerModel{},
		&BankModel{},
		&ItemModel{},
		&SalesInvoiceModel{},
		&SalesInvoiceRowModel{},
		&SalesInvoiceChargeModel{},
		&CustomerPaymentModel{},
		&CustomerPaymentDetailModel{},
	}
}
