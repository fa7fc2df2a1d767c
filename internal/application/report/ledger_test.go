package report

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/partner"
	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func day(d int) time.Time {
	return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
}

func inRange(t time.Time, from, to *time.Time) bool {
	return (from == nil || !t.Before(*from)) && (to == nil || !t.After(*to))
}

type fakeInvoices struct {
	invoicing.SalesInvoiceRepository
	items []invoicing.SalesInvoice
}

func (f *fakeInvoices) FindByCustomerBetween(_ context.Context, _, customerID uuid.UUID, from, to *time.Time) ([]invoicing.SalesInvoice, error) {
	var out []invoicing.SalesInvoice
	for _, inv := range f.items {
		if inv.CustomerID == customerID && inRange(inv.InvoiceDate, from, to) {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakePayments struct {
	settlement.CustomerPaymentRepository
	items []settlement.CustomerPayment
}

func (f *fakePayments) FindByCustomerBetween(_ context.Context, _, customerID uuid.UUID, from, to *time.Time) ([]settlement.CustomerPayment, error) {
	var out []settlement.CustomerPayment
	for _, p := range f.items {
		if p.CustomerID == customerID && inRange(p.PaymentDate, from, to) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCustomers struct {
	partner.CustomerRepository
	customer *partner.Customer
}

func (f *fakeCustomers) FindByIDForTenant(_ context.Context, _, id uuid.UUID) (*partner.Customer, error) {
	if f.customer == nil || f.customer.ID != id {
		return nil, shared.ErrNotFound
	}
	return f.customer, nil
}

type memStorage struct {
	objects map[string][]byte
	failPut error
}

func (m *memStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if m.failPut != nil {
		return m.failPut
	}
	m.objects[key] = data
	return nil
}

func (m *memStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://files.test/" + key, day(30).Add(expiresIn), nil
}

type ledgerFixture struct {
	customer *partner.Customer
	service  *LedgerService
	storage  *memStorage
}

func newLedgerFixture(t *testing.T) ledgerFixture {
	t.Helper()
	customer, err := partner.NewCustomer(tenantID, "C001", "Sri Murugan Textiles")
	require.NoError(t, err)

	invoice := func(number string, d int, qty int64) invoicing.SalesInvoice {
		inv, err := invoicing.NewSalesInvoice(tenantID, number, customer.ID, day(d), 30, invoicing.SupplyIntrastate)
		require.NoError(t, err)
		row := invoicing.NewLineRow().
			Edit(invoicing.EditedQuantity, decimal.NewFromInt(qty)).
			Edit(invoicing.EditedPrice, decimal.NewFromInt(100))
		require.NoError(t, inv.ReplaceLines([]invoicing.LineRow{row}, nil, nil))
		return *inv
	}
	payment := func(d int, amount int64, ref string) settlement.CustomerPayment {
		p, err := settlement.NewCustomerPayment(tenantID, customer.ID, day(d), settlement.PaymentTypeCheque, ref, decimal.NewFromInt(amount), nil)
		require.NoError(t, err)
		return *p
	}

	invoices := &fakeInvoices{items: []invoicing.SalesInvoice{
		invoice("INV-001", 1, 10), // 1000
		invoice("INV-002", 5, 5),  // 500
		invoice("INV-003", 10, 3), // 300
	}}
	payments := &fakePayments{items: []settlement.CustomerPayment{
		payment(3, 600, "CHQ-11"),
		payment(10, 400, "CHQ-12"),
	}}
	storage := &memStorage{objects: map[string][]byte{}}
	svc := NewLedgerService(invoices, payments, &fakeCustomers{customer: customer}, storage, time.Hour, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return ledgerFixture{customer: customer, service: svc, storage: storage}
}

func TestBuildLedger_RunningBalance(t *testing.T) {
	f := newLedgerFixture(t)

	ledger, err := f.service.Ledger(context.Background(), tenantID, f.customer.ID, LedgerQuery{})
	require.NoError(t, err)

	require.Len(t, ledger.Entries, 5)
	refs := make([]string, len(ledger.Entries))
	balances := make([]string, len(ledger.Entries))
	for i, e := range ledger.Entries {
		refs[i] = e.Reference
		balances[i] = e.RunningBalance.StringFixed(2)
	}
	// same-day invoice precedes the payment
	assert.Equal(t, []string{"INV-001", "CHQ-11", "INV-002", "INV-003", "CHQ-12"}, refs)
	assert.Equal(t, []string{"1000.00", "400.00", "900.00", "1200.00", "800.00"}, balances)

	assert.True(t, ledger.OpeningBalance.IsZero())
	assert.Equal(t, "1800", ledger.TotalDebit.String())
	assert.Equal(t, "1000", ledger.TotalCredit.String())
	assert.Equal(t, "800", ledger.ClosingBalance.String())
	assert.Equal(t, "Sri Murugan Textiles", ledger.CustomerName)
}

func TestBuildLedger_SameDayKeepsLoadOrder(t *testing.T) {
	customerID := uuid.New()
	invoice := func(number string) invoicing.SalesInvoice {
		inv, err := invoicing.NewSalesInvoice(tenantID, number, customerID, day(1), 30, invoicing.SupplyIntrastate)
		require.NoError(t, err)
		row := invoicing.NewLineRow().
			Edit(invoicing.EditedQuantity, decimal.NewFromInt(1)).
			Edit(invoicing.EditedPrice, decimal.NewFromInt(100))
		require.NoError(t, inv.ReplaceLines([]invoicing.LineRow{row}, nil, nil))
		return *inv
	}

	ledger := BuildLedger(decimal.Zero, []invoicing.SalesInvoice{invoice("INV-9"), invoice("INV-10")}, nil)
	require.Len(t, ledger.Entries, 2)
	assert.Equal(t, "INV-9", ledger.Entries[0].Reference)
	assert.Equal(t, "INV-10", ledger.Entries[1].Reference)
}

func TestToLedgerResponse_NumbersOnTheWire(t *testing.T) {
	f := newLedgerFixture(t)
	from := day(5)
	ledger, err := f.service.Ledger(context.Background(), tenantID, f.customer.ID, LedgerQuery{From: &from})
	require.NoError(t, err)

	raw, err := json.Marshal(ToLedgerResponse(ledger))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Equal(t, 400.0, m["opening_balance"])
	assert.Equal(t, 800.0, m["closing_balance"])
	assert.Equal(t, "2024-04-05", m["from"])
	assert.NotContains(t, m, "to")
	entry := m["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, "2024-04-05", entry["date"])
	assert.Equal(t, 500.0, entry["debit"])
	assert.Equal(t, 900.0, entry["running_balance"])
}

func TestLedgerService_OpeningBalance(t *testing.T) {
	f := newLedgerFixture(t)
	from := day(5)

	ledger, err := f.service.Ledger(context.Background(), tenantID, f.customer.ID, LedgerQuery{From: &from})
	require.NoError(t, err)

	// 1000 invoiced and 600 paid before the 5th
	assert.Equal(t, "400", ledger.OpeningBalance.String())
	require.Len(t, ledger.Entries, 3)
	assert.Equal(t, "INV-002", ledger.Entries[0].Reference)
	assert.Equal(t, "800", ledger.ClosingBalance.String())
}

func TestLedgerService_Errors(t *testing.T) {
	f := newLedgerFixture(t)

	t.Run("inverted range", func(t *testing.T) {
		from, to := day(10), day(1)
		_, err := f.service.Ledger(context.Background(), tenantID, f.customer.ID, LedgerQuery{From: &from, To: &to})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := f.service.Ledger(context.Background(), tenantID, uuid.New(), LedgerQuery{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestLedgerService_ExportCSV(t *testing.T) {
	f := newLedgerFixture(t)

	res, err := f.service.ExportCSV(context.Background(), tenantID, f.customer.ID, LedgerQuery{})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Rows)
	assert.True(t, strings.HasSuffix(res.StorageKey, "-20240501T093000.csv"))
	assert.Equal(t, "https://files.test/"+res.StorageKey, res.DownloadURL)

	data, ok := f.storage.objects[res.StorageKey]
	require.True(t, ok)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "Date,Entry Type,Reference,Description,Debit,Credit,Running Balance", lines[0])
	assert.Equal(t, ",,,Opening balance,,,0.00", lines[1])
	assert.Equal(t, "01-04-2024,Invoice,INV-001,Sales invoice,1000.00,0.00,1000.00", lines[2])
	assert.Equal(t, ",,,Closing balance,1800.00,1000.00,800.00", lines[7])
}

func TestLedgerService_ExportCSV_Failures(t *testing.T) {
	t.Run("no storage", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.service.storage = nil
		_, err := f.service.ExportCSV(context.Background(), tenantID, f.customer.ID, LedgerQuery{})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "STORAGE_UNAVAILABLE", de.Code)
	})

	t.Run("upload error", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.storage.failPut = errors.New("bucket unreachable")
		_, err := f.service.ExportCSV(context.Background(), tenantID, f.customer.ID, LedgerQuery{})
		assert.EqualError(t, err, "bucket unreachable")
	})
}
