package telemetry

import (
	"context"

	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/dyehouse/backend/billing"

// BillingMetrics counts invoice and payment events. It subscribes to the
// event bus like any other handler and never fails the publish.
type BillingMetrics struct {
	invoiceEvents  metric.Int64Counter
	paymentEvents  metric.Int64Counter
	invoiceTotal   metric.Float64Histogram
	paymentAmount  metric.Float64Histogram
	allocatedTotal metric.Float64UpDownCounter
}

// NewBillingMetrics creates the instruments on meter
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	var (
		m   BillingMetrics
		err error
	)
	if m.invoiceEvents, err = meter.Int64Counter("billing.invoice.events",
		metric.WithDescription("Invoice lifecycle events by type")); err != nil {
		return nil, err
	}
	if m.paymentEvents, err = meter.Int64Counter("billing.payment.events",
		metric.WithDescription("Payment lifecycle events by type")); err != nil {
		return nil, err
	}
	if m.invoiceTotal, err = meter.Float64Histogram("billing.invoice.total",
		metric.WithDescription("Invoice grand total after an edit"),
		metric.WithUnit("INR")); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = meter.Float64Histogram("billing.payment.amount",
		metric.WithDescription("Recorded payment amount"),
		metric.WithUnit("INR")); err != nil {
		return nil, err
	}
	if m.allocatedTotal, err = meter.Float64UpDownCounter("billing.payment.allocated",
		metric.WithDescription("Amount applied to invoices by recorded payments"),
		metric.WithUnit("INR")); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *BillingMetrics) EventTypes() []string {
	return []string{
		invoicing.EventTypeInvoiceCreated,
		invoicing.EventTypeInvoiceUpdated,
		invoicing.EventTypeInvoiceCancelled,
		settlement.EventTypePaymentRecorded,
		settlement.EventTypePaymentCancelled,
	}
}

func (m *BillingMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	attrs := metric.WithAttributes(
		attribute.String("event_type", event.EventType()),
		attribute.String("tenant_id", event.TenantID().String()),
	)
	tenant := metric.WithAttributes(attribute.String("tenant_id", event.TenantID().String()))

	switch e := event.(type) {
	case *invoicing.InvoiceUpdatedEvent:
		m.invoiceEvents.Add(ctx, 1, attrs)
		m.invoiceTotal.Record(ctx, e.Total.InexactFloat64(), tenant)
	case *invoicing.InvoiceCreatedEvent, *invoicing.InvoiceCancelledEvent:
		m.invoiceEvents.Add(ctx, 1, attrs)
	case *settlement.PaymentRecordedEvent:
		m.paymentEvents.Add(ctx, 1, attrs)
		m.paymentAmount.Record(ctx, e.TotalAmount.InexactFloat64(), tenant)
		for _, d := range e.Details {
			m.allocatedTotal.Add(ctx, d.Amount.InexactFloat64(), tenant)
		}
	case *settlement.PaymentCancelledEvent:
		m.paymentEvents.Add(ctx, 1, attrs)
		for _, d := range e.Details {
			m.allocatedTotal.Add(ctx, -d.Amount.InexactFloat64(), tenant)
		}
	}
	return nil
}

var _ shared.EventHandler = (*BillingMetrics)(nil)
