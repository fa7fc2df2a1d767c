package invoicing

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// saveAttempts bounds retries when an invoice is modified concurrently
const saveAttempts = 3

// ReceiptHandler keeps each invoice's amount received in step with recorded
// and cancelled customer payments
type ReceiptHandler struct {
	invoiceRepo invoicing.SalesInvoiceRepository
	logger      *zap.Logger
}

// NewReceiptHandler creates a new handler for payment events
func NewReceiptHandler(invoiceRepo invoicing.SalesInvoiceRepository, logger *zap.Logger) *ReceiptHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptHandler{
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ReceiptHandler) EventTypes() []string {
	return []string{settlement.EventTypePaymentRecorded, settlement.EventTypePaymentCancelled}
}

// Handle applies or reverses every payment detail on its invoice. A failure
// on one invoice does not stop the others; all failures are returned joined.
func (h *ReceiptHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *settlement.PaymentRecordedEvent:
		h.logger.Info("applying payment to invoices",
			zap.String("payment_id", e.PaymentID.String()),
			zap.Int("details", len(e.Details)),
		)
		return h.each(ctx, event.TenantID(), e.PaymentID, e.Details, func(inv *invoicing.SalesInvoice, amount decimal.Decimal) error {
			return inv.ApplyPayment(amount)
		})
	case *settlement.PaymentCancelledEvent:
		h.logger.Info("reversing payment on invoices",
			zap.String("payment_id", e.PaymentID.String()),
			zap.Int("details", len(e.Details)),
		)
		return h.each(ctx, event.TenantID(), e.PaymentID, e.Details, func(inv *invoicing.SalesInvoice, amount decimal.Decimal) error {
			return inv.ReversePayment(amount)
		})
	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *ReceiptHandler) each(
	ctx context.Context,
	tenantID, paymentID uuid.UUID,
	details []settlement.PaymentDetailPayload,
	apply func(*invoicing.SalesInvoice, decimal.Decimal) error,
) error {
	var errs []error
	for _, det := range details {
		if err := h.update(ctx, tenantID, det.InvoiceID, det.Amount, apply); err != nil {
			h.logger.Error("failed to update invoice receipts",
				zap.String("payment_id", paymentID.String()),
				zap.String("invoice_id", det.InvoiceID.String()),
				zap.String("amount", det.Amount.StringFixed(2)),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("invoice %s: %w", det.InvoiceID, err))
		}
	}
	return errors.Join(errs...)
}

// update reloads and retries when the invoice version moved underneath us
func (h *ReceiptHandler) update(
	ctx context.Context,
	tenantID, invoiceID uuid.UUID,
	amount decimal.Decimal,
	apply func(*invoicing.SalesInvoice, decimal.Decimal) error,
) error {
	var err error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		var inv *invoicing.SalesInvoice
		inv, err = h.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err = apply(inv, amount); err != nil {
			return err
		}
		err = h.invoiceRepo.SaveWithLock(ctx, inv)
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

var _ shared.EventHandler = (*ReceiptHandler)(nil)
