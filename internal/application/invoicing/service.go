package invoicing

import (
	"context"
	"errors"
	"strings"

	"github.com/dyehouse/backend/internal/application/validation"
	"github.com/dyehouse/backend/internal/domain/catalog"
	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/partner"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDuplicateInvoiceNumber is returned when the number is taken in the tenant
var ErrDuplicateInvoiceNumber = shared.NewDomainError("DUPLICATE_INVOICE_NUMBER", "An invoice with this number already exists")

// Config holds the company-level settings invoices depend on
type Config struct {
	// CompanyStateCode is the seller's GST state code
	CompanyStateCode string
	// DefaultPaymentTerms applies when neither the request nor the customer sets terms
	DefaultPaymentTerms int
}

// InvoiceService handles invoice use cases
type InvoiceService struct {
	invoiceRepo    invoicing.SalesInvoiceRepository
	customerRepo   partner.CustomerRepository
	itemRepo       catalog.ItemRepository
	eventPublisher shared.EventPublisher
	config         Config
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.SalesInvoiceRepository,
	customerRepo partner.CustomerRepository,
	itemRepo catalog.ItemRepository,
	config Config,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		itemRepo:     itemRepo,
		config:       config,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for invoice domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create validates a submission payload and stores a new invoice
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req InvoicePayload) (*InvoiceResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	customer, err := s.loadCustomer(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNumberFree(ctx, tenantID, req.InvoiceNumber, uuid.Nil); err != nil {
		return nil, err
	}

	invoiceDate, _ := ParseDate(req.InvoiceDate)
	terms := s.paymentTermsFor(req.PaymentTerms, customer)
	supply := invoicing.SupplyTypeFor(s.config.CompanyStateCode, customer.StateCode)

	inv, err := invoicing.NewSalesInvoice(tenantID, req.InvoiceNumber, customer.ID, invoiceDate, terms, supply)
	if err != nil {
		return nil, err
	}
	if err := s.applyPayload(inv, req); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("customer_id", inv.CustomerID.String()),
		zap.String("total", inv.Totals().Total.StringFixed(2)),
	)
	s.publish(ctx, inv)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Update replaces header, rows and charges of an existing invoice. A
// non-zero Version must match the stored version.
func (s *InvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, req InvoicePayload) (*InvoiceResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != inv.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	customer, err := s.loadCustomer(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(req.InvoiceNumber), inv.InvoiceNumber) {
		if err := s.ensureNumberFree(ctx, tenantID, req.InvoiceNumber, inv.ID); err != nil {
			return nil, err
		}
	}
	if err := inv.SetInvoiceNumber(req.InvoiceNumber); err != nil {
		return nil, err
	}
	supply := invoicing.SupplyTypeFor(s.config.CompanyStateCode, customer.StateCode)
	if err := inv.SetCustomer(customer.ID, supply); err != nil {
		return nil, err
	}
	invoiceDate, _ := ParseDate(req.InvoiceDate)
	if err := inv.SetInvoiceDate(invoiceDate); err != nil {
		return nil, err
	}
	if err := inv.SetPaymentTerms(s.paymentTermsFor(req.PaymentTerms, customer)); err != nil {
		return nil, err
	}
	if err := s.applyPayload(inv, req); err != nil {
		return nil, err
	}
	inv.MarkUpdated()

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("invoice updated",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int("version", inv.Version),
	)
	s.publish(ctx, inv)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetByID hydrates an invoice with its derived totals
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "invoice_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := invoicing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
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
		status := invoicing.InvoiceStatus(filter.Status)
		domainFilter.Status = &status
	}
	if from, err := ParseDate(filter.From); err == nil && !from.IsZero() {
		domainFilter.FromDate = &from
	}
	if to, err := ParseDate(filter.To); err == nil && !to.IsZero() {
		domainFilter.ToDate = &to
	}

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]InvoiceListResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceListResponse(&invoices[i])
	}
	return out, total, nil
}

// Cancel voids an invoice without receipts
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, invoiceID uuid.UUID, req CancelInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("invoice cancelled",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("reason", req.Reason),
	)
	s.publish(ctx, inv)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Delete removes an invoice that has no receipts
func (s *InvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}
	if !inv.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Invoices with payments applied cannot be deleted")
	}
	if err := s.invoiceRepo.DeleteForTenant(ctx, tenantID, invoiceID); err != nil {
		return err
	}
	s.logger.Info("invoice deleted",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
	)
	return nil
}

// applyPayload copies the optional header fields and the line state onto inv
func (s *InvoiceService) applyPayload(inv *invoicing.SalesInvoice, req InvoicePayload) error {
	if req.DueDate != "" {
		due, _ := ParseDate(req.DueDate)
		if err := inv.SetDueDate(due); err != nil {
			return err
		}
	}
	var bankID *uuid.UUID
	if req.BankID != nil && *req.BankID != "" {
		id := uuid.MustParse(*req.BankID)
		bankID = &id
	}
	inv.SetBank(bankID)
	inv.SetNotes(req.Notes, req.Terms)
	inv.SetRoundOff(req.RoundOff)

	lines, err := DecodeLines(req.Items, req.AdditionalCharges, req.BillDiscount)
	if err != nil {
		return err
	}
	return inv.ReplaceLines(lines.Rows, lines.Charges, lines.BillDiscount)
}

func (s *InvoiceService) loadCustomer(ctx context.Context, tenantID uuid.UUID, rawID string) (*partner.Customer, error) {
	customerID, err := uuid.Parse(rawID)
	if err != nil {
		verr := &validation.Error{}
		verr.Add("customer_id", "Invalid UUID format")
		return nil, verr
	}
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
		}
		return nil, err
	}
	return customer, nil
}

func (s *InvoiceService) ensureNumberFree(ctx context.Context, tenantID uuid.UUID, number string, self uuid.UUID) error {
	existing, err := s.invoiceRepo.FindByNumber(ctx, tenantID, strings.TrimSpace(number))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != self {
		return ErrDuplicateInvoiceNumber
	}
	return nil
}

// paymentTermsFor picks request terms, then the customer's credit days,
// then the configured default
func (s *InvoiceService) paymentTermsFor(requested *int, customer *partner.Customer) int {
	switch {
	case requested != nil:
		return *requested
	case customer.CreditDays > 0:
		return customer.CreditDays
	default:
		return s.config.DefaultPaymentTerms
	}
}

// publish sends and clears pending domain events
func (s *InvoiceService) publish(ctx context.Context, inv *invoicing.SalesInvoice) {
	events := inv.GetDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		inv.ClearDomainEvents()
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish invoice events",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
	}
	inv.ClearDomainEvents()
}
