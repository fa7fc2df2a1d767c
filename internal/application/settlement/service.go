package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dyehouse/backend/internal/application/validation"
	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/partner"
	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/dyehouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService handles payment entry: outstanding invoices, allocation
// and recording
type PaymentService struct {
	paymentRepo    settlement.CustomerPaymentRepository
	invoiceRepo    invoicing.SalesInvoiceRepository
	customerRepo   partner.CustomerRepository
	idempotency    shared.IdempotencyStore
	idemConfig     shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
	transactor     shared.Transactor
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo settlement.CustomerPaymentRepository,
	invoiceRepo invoicing.SalesInvoiceRepository,
	customerRepo partner.CustomerRepository,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		paymentRepo:  paymentRepo,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		idemConfig:   shared.DefaultIdempotencyConfig(),
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for payment domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetTransactor makes a payment write and the invoice updates raised by its
// events commit or roll back together
func (s *PaymentService) SetTransactor(tx shared.Transactor) {
	s.transactor = tx
}

// SetIdempotencyStore enables Idempotency-Key handling on RecordPayment
func (s *PaymentService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemConfig = cfg
}

// OutstandingInvoices returns the customer's payment sheet with a zero total
func (s *PaymentService) OutstandingInvoices(ctx context.Context, tenantID, customerID uuid.UUID) (*SheetResponse, error) {
	if _, err := s.loadCustomer(ctx, tenantID, customerID); err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.FindOutstanding(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToSheetResponse(settlement.NewSheet(customerID, decimal.Zero, rowsFromInvoices(invoices)))
	return &resp, nil
}

// Allocate spreads a total over the customer's outstanding invoices. Rows
// with an apply amount are kept as entered; the rest are filled oldest first.
func (s *PaymentService) Allocate(ctx context.Context, tenantID uuid.UUID, req AllocateRequest) (*SheetResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	customerID := uuid.MustParse(req.CustomerID)
	invoices, err := s.invoiceRepo.FindOutstanding(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	rows := rowsFromInvoices(invoices)
	index := make(map[uuid.UUID]int, len(rows))
	for i, r := range rows {
		index[r.InvoiceID] = i
	}

	verr := &validation.Error{}
	for i, in := range req.Rows {
		pos, ok := index[uuid.MustParse(in.InvoiceID)]
		if !ok {
			verr.Add(fmt.Sprintf("rows[%d].invoice_id", i), "Invoice is not outstanding for this customer")
			continue
		}
		applyOverrides(&rows[pos], in)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	sheet := settlement.NewSheet(customerID, valueobject.DecimalFromFloat(req.TotalAmount), rows)
	resp := ToSheetResponse(sheet)
	return &resp, nil
}

// applyOverrides seeds a row with the user's manual amount and toggle.
// Deselecting wins over an amount.
func applyOverrides(row *settlement.SettlementRow, in AllocationRowInput) {
	if in.ApplyAmount != nil {
		row.Allocation = settlement.Manual(valueobject.DecimalFromFloat(*in.ApplyAmount))
	}
	if in.Selected == nil {
		return
	}
	if *in.Selected {
		row.Override = settlement.SelectionSelected
		return
	}
	row.Override = settlement.SelectionDeselected
	row.Allocation = settlement.Auto(decimal.Zero)
}

// RecordPayment stores a payment and publishes PaymentRecorded, which applies
// the details to the invoices. If any invoice cannot be updated the payment
// is rolled back and the error returned. A repeated idempotency key is
// rejected with DUPLICATE_REQUEST.
func (s *PaymentService) RecordPayment(ctx context.Context, tenantID uuid.UUID, idempotencyKey string, req PaymentPayload) (resp *PaymentResponse, err error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	if key := s.idempotencyKey(tenantID, idempotencyKey); key != "" {
		fresh, markErr := s.idempotency.MarkProcessed(ctx, key, s.idemConfig.TTL)
		if markErr != nil {
			return nil, fmt.Errorf("idempotency check: %w", markErr)
		}
		if !fresh {
			s.logger.Info("duplicate payment submission",
				zap.String("idempotency_key", idempotencyKey),
			)
			return nil, shared.ErrDuplicateRequest
		}
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				s.logger.Warn("failed to release idempotency key",
					zap.String("idempotency_key", idempotencyKey),
					zap.Error(relErr),
				)
			}
		}()
	}

	customerID := uuid.MustParse(req.CustomerID)
	if _, err := s.loadCustomer(ctx, tenantID, customerID); err != nil {
		return nil, err
	}
	details, err := s.resolveDetails(ctx, tenantID, customerID, req.PaymentDetails)
	if err != nil {
		return nil, err
	}

	paymentDate, _ := time.ParseInLocation(DateLayout, req.PaymentDate, time.UTC)
	payment, err := settlement.NewCustomerPayment(
		tenantID,
		customerID,
		paymentDate,
		settlement.PaymentType(req.PaymentType),
		req.ReferenceNo,
		valueobject.DecimalFromFloat(req.TotalAmount),
		details,
	)
	if err != nil {
		return nil, err
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return err
		}
		return s.publish(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("total", payment.TotalAmount.StringFixed(2)),
		zap.Int("invoices", len(payment.Details)),
	)
	if payment.OverApplied() {
		s.logger.Warn("payment applied beyond its total",
			zap.String("payment_id", payment.ID.String()),
			zap.String("unallocated", payment.UnallocatedAmount().StringFixed(2)),
		)
	}

	out := ToPaymentResponse(payment)
	return &out, nil
}

// GetByID returns a payment with its details
func (s *PaymentService) GetByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// List retrieves payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "payment_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := settlement.PaymentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
	}
	if filter.CustomerID != "" {
		id, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Invalid customer ID")
		}
		domainFilter.CustomerID = &id
	}
	if filter.Status != "" {
		status := settlement.PaymentStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.PaymentType != "" {
		pt := settlement.PaymentType(filter.PaymentType)
		domainFilter.PaymentType = &pt
	}
	if from, err := time.ParseInLocation(DateLayout, filter.From, time.UTC); err == nil {
		domainFilter.FromDate = &from
	}
	if to, err := time.ParseInLocation(DateLayout, filter.To, time.UTC); err == nil {
		domainFilter.ToDate = &to
	}

	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, total, nil
}

// Cancel voids a payment. PaymentCancelled takes the amounts back off the
// invoices in the same transaction.
func (s *PaymentService) Cancel(ctx context.Context, tenantID, paymentID uuid.UUID, req CancelPaymentRequest) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.Cancel(req.Reason); err != nil {
		return nil, err
	}
	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
			return err
		}
		return s.publish(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment cancelled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("reason", req.Reason),
	)

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// resolveDetails checks that every detail names an active invoice of the customer
func (s *PaymentService) resolveDetails(ctx context.Context, tenantID, customerID uuid.UUID, payloads []PaymentDetailPayload) ([]settlement.PaymentDetail, error) {
	if len(payloads) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(payloads))
	for i, p := range payloads {
		ids[i] = uuid.MustParse(p.InvoiceID)
	}
	invoices, err := s.invoiceRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*invoicing.SalesInvoice, len(invoices))
	for i := range invoices {
		byID[invoices[i].ID] = &invoices[i]
	}

	verr := &validation.Error{}
	details := make([]settlement.PaymentDetail, 0, len(payloads))
	for i, p := range payloads {
		field := fmt.Sprintf("payment_details[%d].invoice_id", i)
		inv, ok := byID[ids[i]]
		switch {
		case !ok:
			verr.Add(field, "Invoice not found")
		case inv.CustomerID != customerID:
			verr.Add(field, "Invoice belongs to another customer")
		case inv.Status == invoicing.InvoiceStatusCancelled:
			verr.Add(field, "Invoice is cancelled")
		default:
			details = append(details, settlement.PaymentDetail{
				InvoiceID: inv.ID,
				Amount:    valueobject.DecimalFromFloat(p.Amount),
			})
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *PaymentService) loadCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
		}
		return nil, err
	}
	return customer, nil
}

func (s *PaymentService) idempotencyKey(tenantID uuid.UUID, key string) string {
	if key == "" || s.idempotency == nil || !s.idemConfig.Enabled {
		return ""
	}
	return "payment:" + tenantID.String() + ":" + key
}

func (s *PaymentService) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.transactor == nil {
		return fn(ctx)
	}
	return s.transactor.InTransaction(ctx, fn)
}

// publish sends and clears pending domain events. Handlers run synchronously,
// so a failure here means some invoice was not updated.
func (s *PaymentService) publish(ctx context.Context, payment *settlement.CustomerPayment) error {
	events := payment.GetDomainEvents()
	payment.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return nil
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to apply payment to invoices",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("apply payment %s to invoices: %w", payment.ID, err)
	}
	return nil
}
