package settlement

import (
	"time"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeCustomerPayment = "CustomerPayment"

	EventTypePaymentRecorded  = "PaymentRecorded"
	EventTypePaymentCancelled = "PaymentCancelled"
)

// PaymentDetailPayload is the event form of a PaymentDetail
type PaymentDetailPayload struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func detailPayloads(details []PaymentDetail) []PaymentDetailPayload {
	out := make([]PaymentDetailPayload, len(details))
	for i, det := range details {
		out[i] = PaymentDetailPayload{InvoiceID: det.InvoiceID, Amount: det.Amount}
	}
	return out
}

// PaymentRecordedEvent is raised when a payment is recorded. Subscribers
// add each detail amount to the invoice's amount received.
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID              `json:"payment_id"`
	CustomerID  uuid.UUID              `json:"customer_id"`
	PaymentDate time.Time              `json:"payment_date"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	Details     []PaymentDetailPayload `json:"details"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *CustomerPayment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeCustomerPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		CustomerID:      p.CustomerID,
		PaymentDate:     p.PaymentDate,
		TotalAmount:     p.TotalAmount,
		Details:         detailPayloads(p.Details),
	}
}

// PaymentCancelledEvent is raised when a payment is cancelled. Subscribers
// take the detail amounts back off the invoices.
type PaymentCancelledEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID              `json:"payment_id"`
	CustomerID uuid.UUID              `json:"customer_id"`
	Reason     string                 `json:"reason"`
	Details    []PaymentDetailPayload `json:"details"`
}

// NewPaymentCancelledEvent creates a new PaymentCancelledEvent
func NewPaymentCancelledEvent(p *CustomerPayment) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCancelled, AggregateTypeCustomerPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		CustomerID:      p.CustomerID,
		Reason:          p.CancelReason,
		Details:         detailPayloads(p.Details),
	}
}
