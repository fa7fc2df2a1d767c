package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/partner"
	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const csvDateLayout = "02-01-2006"

// ExportStorage stores generated exports and hands out download links.
// Implemented by the infrastructure storage adapters.
type ExportStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// LedgerQuery bounds a statement; both ends are optional and inclusive
type LedgerQuery struct {
	From *time.Time
	To   *time.Time
}

// ExportResult describes an uploaded ledger export
type ExportResult struct {
	StorageKey  string    `json:"storage_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	Rows        int       `json:"rows"`
}

// LedgerService builds customer statements
type LedgerService struct {
	invoiceRepo  invoicing.SalesInvoiceRepository
	paymentRepo  settlement.CustomerPaymentRepository
	customerRepo partner.CustomerRepository
	storage      ExportStorage
	linkExpiry   time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewLedgerService creates a new LedgerService. storage may be nil, in
// which case exports are refused.
func NewLedgerService(
	invoiceRepo invoicing.SalesInvoiceRepository,
	paymentRepo settlement.CustomerPaymentRepository,
	customerRepo partner.CustomerRepository,
	storage ExportStorage,
	linkExpiry time.Duration,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if linkExpiry <= 0 {
		linkExpiry = 15 * time.Minute
	}
	return &LedgerService{
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		storage:      storage,
		linkExpiry:   linkExpiry,
		logger:       logger,
		now:          time.Now,
	}
}

// Ledger returns the customer's statement for the query range
func (s *LedgerService) Ledger(ctx context.Context, tenantID, customerID uuid.UUID, q LedgerQuery) (*Ledger, error) {
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Ledger end date is before start date")
	}

	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	opening := decimal.Zero
	if q.From != nil {
		before := q.From.Add(-time.Nanosecond)
		priorInvoices, err := s.invoiceRepo.FindByCustomerBetween(ctx, tenantID, customerID, nil, &before)
		if err != nil {
			return nil, err
		}
		priorPayments, err := s.paymentRepo.FindByCustomerBetween(ctx, tenantID, customerID, nil, &before)
		if err != nil {
			return nil, err
		}
		opening = openingBalance(priorInvoices, priorPayments)
	}

	invoices, err := s.invoiceRepo.FindByCustomerBetween(ctx, tenantID, customerID, q.From, q.To)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByCustomerBetween(ctx, tenantID, customerID, q.From, q.To)
	if err != nil {
		return nil, err
	}

	ledger := BuildLedger(opening, invoices, payments)
	ledger.CustomerID = customer.ID
	ledger.CustomerName = customer.Name
	ledger.From = q.From
	ledger.To = q.To
	return &ledger, nil
}

// ExportCSV writes the statement as CSV, uploads it and returns a
// presigned download link
func (s *LedgerService) ExportCSV(ctx context.Context, tenantID, customerID uuid.UUID, q LedgerQuery) (*ExportResult, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Export storage is not configured")
	}

	ledger, err := s.Ledger(ctx, tenantID, customerID, q)
	if err != nil {
		return nil, err
	}

	data, err := EncodeLedgerCSV(ledger)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger: %w", err)
	}

	key := fmt.Sprintf("exports/%s/ledger/%s-%s.csv", tenantID, customerID, s.now().UTC().Format("20060102T150405"))
	if err := s.storage.Upload(ctx, key, data, "text/csv"); err != nil {
		s.logger.Error("ledger export upload failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.linkExpiry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ledger exported",
		zap.String("customer_id", customerID.String()),
		zap.String("key", key),
		zap.Int("entries", len(ledger.Entries)),
	)
	return &ExportResult{
		StorageKey:  key,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
		Rows:        len(ledger.Entries),
	}, nil
}

var ledgerColumns = []string{"date", "entry type", "reference", "description", "debit", "credit", "running balance"}

// EncodeLedgerCSV renders a ledger with an opening and a closing line
func EncodeLedgerCSV(ledger *Ledger) ([]byte, error) {
	title := cases.Title(language.English)
	header := make([]string, len(ledgerColumns))
	for i, col := range ledgerColumns {
		header[i] = title.String(col)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	records := [][]string{
		header,
		{"", "", "", "Opening balance", "", "", ledger.OpeningBalance.StringFixed(2)},
	}
	for _, e := range ledger.Entries {
		records = append(records, []string{
			e.Date.Format(csvDateLayout),
			title.String(string(e.EntryType)),
			e.Reference,
			e.Description,
			e.Debit.StringFixed(2),
			e.Credit.StringFixed(2),
			e.RunningBalance.StringFixed(2),
		})
	}
	records = append(records, []string{
		"", "", "", "Closing balance",
		ledger.TotalDebit.StringFixed(2),
		ledger.TotalCredit.StringFixed(2),
		ledger.ClosingBalance.StringFixed(2),
	})
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
