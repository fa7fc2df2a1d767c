package models

import (
	"time"

	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesInvoiceModel is the persistence model for invoicing.SalesInvoice
type SalesInvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber  string                  `gorm:"type:varchar(50);not null;index"`
	CustomerID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	BankID         *uuid.UUID              `gorm:"type:uuid"`
	InvoiceDate    time.Time               `gorm:"type:date;not null;index"`
	DueDate        time.Time               `gorm:"type:date;not null"`
	PaymentTerms   int                     `gorm:"not null;default:0"`
	SupplyType     invoicing.SupplyType    `gorm:"type:varchar(20);not null"`
	RoundOff       bool                    `gorm:"not null;default:false"`
	AmountReceived decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	Notes          string                  `gorm:"type:text"`
	Terms          string                  `gorm:"type:text"`
	Status         invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`

	BillDiscountType    *string             `gorm:"type:varchar(20)"`
	BillDiscountPercent decimal.NullDecimal `gorm:"type:decimal(7,4)"`
	BillDiscountAmount  decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	BillDiscountBasis   string              `gorm:"type:varchar(10)"`

	// derived snapshot, rewritten on every save
	TaxableValue  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BalanceAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Rows    []SalesInvoiceRowModel    `gorm:"foreignKey:InvoiceID;references:ID"`
	Charges []SalesInvoiceChargeModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesInvoiceModel) TableName() string {
	return "sales_invoices"
}

// SalesInvoiceRowModel stores one invoice line
type SalesInvoiceRowModel struct {
	ID              uuid.UUID                `gorm:"type:uuid;primaryKey"`
	InvoiceID       uuid.UUID                `gorm:"type:uuid;not null;index"`
	LineNo          int                      `gorm:"not null"`
	ItemID          *uuid.UUID               `gorm:"type:uuid"`
	Description     string                   `gorm:"type:varchar(500)"`
	HSNCode         string                   `gorm:"column:hsn_code;type:varchar(8)"`
	Quantity        decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Price           decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountPercent decimal.NullDecimal      `gorm:"type:decimal(7,4)"`
	DiscountAmount  decimal.NullDecimal      `gorm:"type:decimal(18,2)"`
	TaxPercent      decimal.NullDecimal      `gorm:"type:decimal(7,4)"`
	TaxAmount       decimal.NullDecimal      `gorm:"type:decimal(18,2)"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountBasis   invoicing.Basis          `gorm:"type:varchar(10)"`
	TaxBasis        invoicing.Basis          `gorm:"type:varchar(10)"`
	DiscountSource  invoicing.DiscountSource `gorm:"type:varchar(10)"`
}

// TableName returns the table name for GORM
func (SalesInvoiceRowModel) TableName() string {
	return "sales_invoice_rows"
}

// SalesInvoiceChargeModel stores one additional charge
type SalesInvoiceChargeModel struct {
	ID         uuid.UUID           `gorm:"type:uuid;primaryKey"`
	InvoiceID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	LineNo     int                 `gorm:"not null"`
	Name       string              `gorm:"type:varchar(100);not null"`
	Amount     decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TaxPercent decimal.NullDecimal `gorm:"type:decimal(7,4)"`
}

// TableName returns the table name for GORM
func (SalesInvoiceChargeModel) TableName() string {
	return "sales_invoice_charges"
}

// ToDomain converts the model to an invoicing.SalesInvoice. Rows and
// charges are expected in LineNo order.
func (m *SalesInvoiceModel) ToDomain() *invoicing.SalesInvoice {
	inv := &invoicing.SalesInvoice{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		CustomerID:          m.CustomerID,
		BankID:              m.BankID,
		InvoiceDate:         m.InvoiceDate.UTC(),
		DueDate:             m.DueDate.UTC(),
		PaymentTerms:        m.PaymentTerms,
		SupplyType:          m.SupplyType,
		RoundOff:            m.RoundOff,
		AmountReceived:      m.AmountReceived,
		Notes:               m.Notes,
		Terms:               m.Terms,
		Status:              m.Status,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		Rows:                make([]invoicing.LineRow, len(m.Rows)),
		Charges:             make([]invoicing.AdditionalCharge, len(m.Charges)),
	}
	for i, r := range m.Rows {
		inv.Rows[i] = invoicing.LineRow{
			ID:              r.ID,
			ItemID:          r.ItemID,
			Description:     r.Description,
			HSNCode:         r.HSNCode,
			Quantity:        r.Quantity,
			Price:           r.Price,
			DiscountPercent: r.DiscountPercent,
			DiscountAmount:  r.DiscountAmount,
			TaxPercent:      r.TaxPercent,
			TaxAmount:       r.TaxAmount,
			Amount:          r.Amount,
			DiscountBasis:   r.DiscountBasis,
			TaxBasis:        r.TaxBasis,
			DiscountSource:  r.DiscountSource,
		}
	}
	for i, c := range m.Charges {
		inv.Charges[i] = invoicing.AdditionalCharge{
			ID:         c.ID,
			Name:       c.Name,
			Amount:     c.Amount,
			TaxPercent: c.TaxPercent,
		}
	}
	if m.BillDiscountType != nil {
		inv.BillDiscount = &invoicing.BillDiscount{
			Type:    invoicing.BillDiscountType(*m.BillDiscountType),
			Percent: m.BillDiscountPercent,
			Amount:  m.BillDiscountAmount,
			Basis:   invoicing.Basis(m.BillDiscountBasis),
		}
	}
	return inv
}

// SalesInvoiceModelFromDomain converts an invoice to its model, including
// the totals snapshot
func SalesInvoiceModelFromDomain(inv *invoicing.SalesInvoice) *SalesInvoiceModel {
	totals := inv.Totals()
	m := &SalesInvoiceModel{
		InvoiceNumber:  inv.InvoiceNumber,
		CustomerID:     inv.CustomerID,
		BankID:         inv.BankID,
		InvoiceDate:    inv.InvoiceDate,
		DueDate:        inv.DueDate,
		PaymentTerms:   inv.PaymentTerms,
		SupplyType:     inv.SupplyType,
		RoundOff:       inv.RoundOff,
		AmountReceived: inv.AmountReceived,
		Notes:          inv.Notes,
		Terms:          inv.Terms,
		Status:         inv.Status,
		CancelledAt:    inv.CancelledAt,
		CancelReason:   inv.CancelReason,
		TaxableValue:   totals.TaxableValue,
		TaxTotal:       totals.TaxTotal,
		TotalAmount:    totals.Total,
		BalanceAmount:  totals.Balance,
		Rows:           make([]SalesInvoiceRowModel, len(inv.Rows)),
		Charges:        make([]SalesInvoiceChargeModel, len(inv.Charges)),
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)

	if bd := inv.BillDiscount; bd != nil {
		t := string(bd.Type)
		m.BillDiscountType = &t
		m.BillDiscountPercent = bd.Percent
		m.BillDiscountAmount = bd.Amount
		m.BillDiscountBasis = string(bd.Basis)
	}
	for i, r := range inv.Rows {
		m.Rows[i] = SalesInvoiceRowModel{
			ID:              r.ID,
			InvoiceID:       inv.ID,
			LineNo:          i + 1,
			ItemID:          r.ItemID,
			Description:     r.Description,
			HSNCode:         r.HSNCode,
			Quantity:        r.Quantity,
			Price:           r.Price,
			DiscountPercent: r.DiscountPercent,
			DiscountAmount:  r.DiscountAmount,
			TaxPercent:      r.TaxPercent,
			TaxAmount:       r.TaxAmount,
			Amount:          r.Amount,
			DiscountBasis:   r.DiscountBasis,
			TaxBasis:        r.TaxBasis,
			DiscountSource:  r.DiscountSource,
		}
	}
	for i, c := range inv.Charges {
		m.Charges[i] = SalesInvoiceChargeModel{
			ID:         c.ID,
			InvoiceID:  inv.ID,
			LineNo:     i + 1,
			Name:       c.Name,
			Amount:     c.Amount,
			TaxPercent: c.TaxPercent,
		}
	}
	return m
}
