package persistence

import (
	"context"
	"errors"

	"github.com/dyehouse/backend/internal/domain/partner"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/dyehouse/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBankRepository implements BankRepository using GORM
type GormBankRepository struct {
	db *gorm.DB
}

// NewGormBankRepository creates a new GormBankRepository
func NewGormBankRepository(db *gorm.DB) *GormBankRepository {
	return &GormBankRepository{db: db}
}

// FindByIDForTenant finds a bank account by ID within a tenant
func (r *GormBankRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Bank, error) {
	var model models.BankModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists bank accounts, the default one first
func (r *GormBankRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]partner.Bank, error) {
	var bankModels []models.BankModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		Order("is_default DESC, name ASC").
		Find(&bankModels).Error; err != nil {
		return nil, err
	}

	banks := make([]partner.Bank, len(bankModels))
	for i, model := range bankModels {
		banks[i] = *model.ToDomain()
	}
	return banks, nil
}

// Save creates or updates a bank account. Marking one default clears the
// flag on the tenant's other accounts in the same transaction.
func (r *GormBankRepository) Save(ctx context.Context, bank *partner.Bank) error {
	model := models.BankModelFromDomain(bank)
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if bank.IsDefault {
			if err := tx.Model(&models.BankModel{}).
				Where("tenant_id = ? AND id <> ? AND is_default = ?", bank.TenantID, bank.ID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(model).Error
	})
}

// DeleteForTenant deletes a bank account within a tenant
func (r *GormBankRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.BankModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.BankRepository = (*GormBankRepository)(nil)
