package models

import (
	"github.com/dyehouse/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for partner.Customer
type CustomerModel struct {
	TenantAggregateModel
	Code       string                 `gorm:"type:varchar(50);not null;index"`
	Name       string                 `gorm:"type:varchar(200);not null"`
	GSTIN      string                 `gorm:"column:gstin;type:varchar(15)"`
	StateCode  string                 `gorm:"type:varchar(2)"`
	Address    string                 `gorm:"type:text"`
	City       string                 `gorm:"type:varchar(100)"`
	Phone      string                 `gorm:"type:varchar(50)"`
	Email      string                 `gorm:"type:varchar(200)"`
	CreditDays int                    `gorm:"not null;default:0"`
	Status     partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes      string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the model to a partner.Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		GSTIN:               m.GSTIN,
		StateCode:           m.StateCode,
		Address:             m.Address,
		City:                m.City,
		Phone:               m.Phone,
		Email:               m.Email,
		CreditDays:          m.CreditDays,
		Status:              m.Status,
		Notes:               m.Notes,
	}
}

// CustomerModelFromDomain converts a partner.Customer to its model
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Code:       c.Code,
		Name:       c.Name,
		GSTIN:      c.GSTIN,
		StateCode:  c.StateCode,
		Address:    c.Address,
		City:       c.City,
		Phone:      c.Phone,
		Email:      c.Email,
		CreditDays: c.CreditDays,
		Status:     c.Status,
		Notes:      c.Notes,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

// BankModel is the persistence model for partner.Bank
type BankModel struct {
	TenantAggregateModel
	Name          string `gorm:"type:varchar(100);not null"`
	AccountName   string `gorm:"type:varchar(200);not null"`
	AccountNumber string `gorm:"type:varchar(34);not null"`
	IFSC          string `gorm:"column:ifsc;type:varchar(11);not null"`
	Branch        string `gorm:"type:varchar(100)"`
	IsDefault     bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (BankModel) TableName() string {
	return "banks"
}

// ToDomain converts the model to a partner.Bank
func (m *BankModel) ToDomain() *partner.Bank {
	return &partner.Bank{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		AccountName:         m.AccountName,
		AccountNumber:       m.AccountNumber,
		IFSC:                m.IFSC,
		Branch:              m.Branch,
		IsDefault:           m.IsDefault,
	}
}

// BankModelFromDomain converts a partner.Bank to its model
func BankModelFromDomain(b *partner.Bank) *BankModel {
	m := &BankModel{
		Name:          b.Name,
		AccountName:   b.AccountName,
		AccountNumber: b.AccountNumber,
		IFSC:          b.IFSC,
		Branch:        b.Branch,
		IsDefault:     b.IsDefault,
	}
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	return m
}
