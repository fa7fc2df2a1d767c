package models

import (
	"github.com/dyehouse/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ItemModel is the persistence model for catalog.Item
type ItemModel struct {
	TenantAggregateModel
	Code         string              `gorm:"type:varchar(50);not null;index"`
	Name         string              `gorm:"type:varchar(200);not null"`
	HSNCode      string              `gorm:"column:hsn_code;type:varchar(8)"`
	Unit         string              `gorm:"type:varchar(20);not null;default:'KG'"`
	DefaultPrice decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TaxPercent   decimal.NullDecimal `gorm:"type:decimal(7,4)"`
	Status       catalog.ItemStatus  `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the model to a catalog.Item
func (m *ItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		HSNCode:             m.HSNCode,
		Unit:                m.Unit,
		DefaultPrice:        m.DefaultPrice,
		TaxPercent:          m.TaxPercent,
		Status:              m.Status,
	}
}

// ItemModelFromDomain converts a catalog.Item to its model
func ItemModelFromDomain(it *catalog.Item) *ItemModel {
	m := &ItemModel{
		Code:         it.Code,
		Name:         it.Name,
		HSNCode:      it.HSNCode,
		Unit:         it.Unit,
		DefaultPrice: it.DefaultPrice,
		TaxPercent:   it.TaxPercent,
		Status:       it.Status,
	}
	m.FromDomainTenantAggregateRoot(it.TenantAggregateRoot)
	return m
}
