package settlement

import (
	"strings"
	"time"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType is how the customer paid
type PaymentType string

const (
	PaymentTypeCash         PaymentType = "CASH"
	PaymentTypeCheque       PaymentType = "CHEQUE"
	PaymentTypeBankTransfer PaymentType = "BANK_TRANSFER"
	PaymentTypeUPI          PaymentType = "UPI"
)

// IsValid checks if the payment type is known
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeCash, PaymentTypeCheque, PaymentTypeBankTransfer, PaymentTypeUPI:
		return true
	}
	return false
}

func (t PaymentType) String() string {
	return string(t)
}

// RequiresReference reports whether a reference number must be given
func (t PaymentType) RequiresReference() bool {
	return t == PaymentTypeCheque
}

// PaymentStatus represents the status of a customer payment
type PaymentStatus string

const (
	PaymentStatusRecorded  PaymentStatus = "RECORDED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusRecorded || s == PaymentStatusCancelled
}

func (s PaymentStatus) String() string {
	return string(s)
}

// CustomerPayment is a receipt from a customer applied to one or more invoices
type CustomerPayment struct {
	shared.TenantAggregateRoot
	CustomerID   uuid.UUID
	PaymentDate  time.Time
	PaymentType  PaymentType
	ReferenceNo  string
	TotalAmount  decimal.Decimal
	Details      []PaymentDetail
	Status       PaymentStatus
	CancelledAt  *time.Time
	CancelReason string
}

// NewCustomerPayment records a payment. Details may sum to more or less
// than the total; over-application is flagged elsewhere, not rejected.
func NewCustomerPayment(
	tenantID, customerID uuid.UUID,
	paymentDate time.Time,
	paymentType PaymentType,
	referenceNo string,
	total decimal.Decimal,
	details []PaymentDetail,
) (*CustomerPayment, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type must be CASH, CHEQUE, BANK_TRANSFER or UPI")
	}
	referenceNo = strings.TrimSpace(referenceNo)
	if paymentType.RequiresReference() && referenceNo == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Cheque payments need a reference number")
	}
	if len(referenceNo) > 100 {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference number cannot exceed 100 characters")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}

	seen := make(map[uuid.UUID]struct{}, len(details))
	for _, det := range details {
		if det.InvoiceID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_INVOICE", "Payment detail needs an invoice ID")
		}
		if !det.Amount.IsPositive() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment detail amount must be positive")
		}
		if _, dup := seen[det.InvoiceID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_INVOICE", "An invoice can appear only once in a payment")
		}
		seen[det.InvoiceID] = struct{}{}
	}

	y, m, d := paymentDate.Date()
	p := &CustomerPayment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		PaymentDate:         time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		PaymentType:         paymentType,
		ReferenceNo:         referenceNo,
		TotalAmount:         total,
		Details:             append(make([]PaymentDetail, 0, len(details)), details...),
		Status:              PaymentStatusRecorded,
	}
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// AllocatedAmount is the sum of the detail amounts
func (p *CustomerPayment) AllocatedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, det := range p.Details {
		total = total.Add(det.Amount)
	}
	return total
}

// UnallocatedAmount is total minus allocated; negative when over-applied
func (p *CustomerPayment) UnallocatedAmount() decimal.Decimal {
	return p.TotalAmount.Sub(p.AllocatedAmount())
}

// OverApplied reports details summing to more than the total
func (p *CustomerPayment) OverApplied() bool {
	return p.UnallocatedAmount().IsNegative()
}

// Cancel voids the payment; subscribers reverse the invoice receipts
func (p *CustomerPayment) Cancel(reason string) error {
	if p.Status == PaymentStatusCancelled {
		return shared.NewDomainError("PAYMENT_CANCELLED", "Payment is already cancelled")
	}
	now := time.Now()
	p.Status = PaymentStatusCancelled
	p.CancelledAt = &now
	p.CancelReason = reason
	p.Touch()
	p.AddDomainEvent(NewPaymentCancelledEvent(p))
	return nil
}
