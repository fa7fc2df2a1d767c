package models

import (
	"time"

	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerPaymentModel is the persistence model for settlement.CustomerPayment
type CustomerPaymentModel struct {
	TenantAggregateModel
	CustomerID   uuid.UUID                `gorm:"type:uuid;not null;index"`
	PaymentDate  time.Time                `gorm:"type:date;not null;index"`
	PaymentType  settlement.PaymentType   `gorm:"type:varchar(20);not null"`
	ReferenceNo  string                   `gorm:"type:varchar(100)"`
	TotalAmount  decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Status       settlement.PaymentStatus `gorm:"type:varchar(20);not null;default:'RECORDED';index"`
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`

	Details []CustomerPaymentDetailModel `gorm:"foreignKey:PaymentID;references:ID"`
}

// TableName returns the table name for GORM
func (CustomerPaymentModel) TableName() string {
	return "customer_payments"
}

// CustomerPaymentDetailModel is the amount of a payment applied to one invoice
type CustomerPaymentDetailModel struct {
	PaymentID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;primaryKey;index"`
	LineNo    int             `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (CustomerPaymentDetailModel) TableName() string {
	return "customer_payment_details"
}

// ToDomain converts the model to a settlement.CustomerPayment
func (m *CustomerPaymentModel) ToDomain() *settlement.CustomerPayment {
	p := &settlement.CustomerPayment{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		CustomerID:          m.CustomerID,
		PaymentDate:         m.PaymentDate.UTC(),
		PaymentType:         m.PaymentType,
		ReferenceNo:         m.ReferenceNo,
		TotalAmount:         m.TotalAmount,
		Status:              m.Status,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		Details:             make([]settlement.PaymentDetail, len(m.Details)),
	}
	for i, d := range m.Details {
		p.Details[i] = settlement.PaymentDetail{InvoiceID: d.InvoiceID, Amount: d.Amount}
	}
	return p
}

// CustomerPaymentModelFromDomain converts a payment to its model
func CustomerPaymentModelFromDomain(p *settlement.CustomerPayment) *CustomerPaymentModel {
	m := &CustomerPaymentModel{
		CustomerID:   p.CustomerID,
		PaymentDate:  p.PaymentDate,
		PaymentType:  p.PaymentType,
		ReferenceNo:  p.ReferenceNo,
		TotalAmount:  p.TotalAmount,
		Status:       p.Status,
		CancelledAt:  p.CancelledAt,
		CancelReason: p.CancelReason,
		Details:      make([]CustomerPaymentDetailModel, len(p.Details)),
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	for i, d := range p.Details {
		m.Details[i] = CustomerPaymentDetailModel{
			PaymentID: p.ID,
			InvoiceID: d.InvoiceID,
			LineNo:    i + 1,
			Amount:    d.Amount,
		}
	}
	return m
}
