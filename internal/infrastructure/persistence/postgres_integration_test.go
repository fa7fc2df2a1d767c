//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/partner"
	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/dyehouse/backend/internal/infrastructure/migration"
	"github.com/dyehouse/backend/migrations"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway PostgreSQL container and applies the
// embedded migrations to it
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("dyehouse_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	gdb, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = gdb.Close() })
	return db
}

func TestPostgres_InvoiceAndPaymentFlow(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	customers := NewGormCustomerRepository(db)
	invoices := NewGormSalesInvoiceRepository(db)
	payments := NewGormCustomerPaymentRepository(db)

	customer, err := partner.NewCustomer(testTenant, "C001", "Sri Murugan Textiles")
	require.NoError(t, err)
	require.NoError(t, customers.Save(ctx, customer))

	first := newTestInvoice(t, "INV-001", customer.ID, date(4, 1), 10, 100)
	second := newTestInvoice(t, "INV-002", customer.ID, date(4, 5), 4, 100)
	require.NoError(t, invoices.Save(ctx, first))
	require.NoError(t, invoices.Save(ctx, second))

	t.Run("invoice number is unique per tenant", func(t *testing.T) {
		dup := newTestInvoice(t, "INV-001", customer.ID, date(4, 2), 1, 1)
		assert.Error(t, invoices.Save(ctx, dup))
	})

	t.Run("outstanding is oldest first", func(t *testing.T) {
		list, err := invoices.FindOutstanding(ctx, testTenant, customer.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "INV-001", list[0].InvoiceNumber)
		assert.Equal(t, "1050", list[0].Totals().Balance.String())
	})

	t.Run("payment settles invoices", func(t *testing.T) {
		payment, err := settlement.NewCustomerPayment(testTenant, customer.ID, date(4, 10), settlement.PaymentTypeBankTransfer, "UTR-1",
			decimal.NewFromInt(1200), []settlement.PaymentDetail{
				{InvoiceID: first.ID, Amount: decimal.NewFromInt(1050)},
				{InvoiceID: second.ID, Amount: decimal.NewFromInt(150)},
			})
		require.NoError(t, err)
		require.NoError(t, payments.Save(ctx, payment))

		require.NoError(t, first.ApplyPayment(decimal.NewFromInt(1050)))
		require.NoError(t, invoices.SaveWithLock(ctx, first))
		require.NoError(t, second.ApplyPayment(decimal.NewFromInt(150)))
		require.NoError(t, invoices.SaveWithLock(ctx, second))

		list, err := invoices.FindOutstanding(ctx, testTenant, customer.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "INV-002", list[0].InvoiceNumber)
		assert.Equal(t, "270", list[0].Totals().Balance.String())

		loaded, err := payments.FindByIDForTenant(ctx, testTenant, payment.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Details, 2)
		assert.Equal(t, "1200", loaded.TotalAmount.String())
	})

	t.Run("stale invoice version is rejected", func(t *testing.T) {
		stale, err := invoices.FindByIDForTenant(ctx, testTenant, second.ID)
		require.NoError(t, err)
		stale.Version--
		assert.ErrorIs(t, invoices.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)
	})

	t.Run("other tenants see nothing", func(t *testing.T) {
		_, err := invoices.FindByIDForTenant(ctx, uuid.New(), first.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("fractional price survives a reload", func(t *testing.T) {
		inv, err := invoicing.NewSalesInvoice(testTenant, "INV-003", customer.ID, date(4, 6), 30, invoicing.SupplyIntrastate)
		require.NoError(t, err)
		row := invoicing.NewLineRow().
			Edit(invoicing.EditedQuantity, decimal.RequireFromString("3")).
			Edit(invoicing.EditedPrice, decimal.RequireFromString("12.345")).
			Edit(invoicing.EditedTaxPercent, decimal.RequireFromString("2.5"))
		require.NoError(t, inv.ReplaceLines([]invoicing.LineRow{row}, nil, nil))
		require.NoError(t, invoices.Save(ctx, inv))

		loaded, err := invoices.FindByIDForTenant(ctx, testTenant, inv.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Rows, 1)
		got := loaded.Rows[0]
		assert.True(t, got.Price.Equal(decimal.RequireFromString("12.345")), got.Price.String())
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("37.04")), got.Amount.String())
		assert.True(t, got.Normalize().Amount.Equal(got.Amount))
		assert.True(t, loaded.Totals().Total.Equal(inv.Totals().Total))
	})
}

func TestPostgres_LedgerWindow(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	customers := NewGormCustomerRepository(db)
	invoices := NewGormSalesInvoiceRepository(db)

	customer, err := partner.NewCustomer(testTenant, "C002", "Kaveri Dyeing")
	require.NoError(t, err)
	require.NoError(t, customers.Save(ctx, customer))

	for i, d := range []int{1, 15, 28} {
		inv := newTestInvoice(t, fmt.Sprintf("L-%03d", i+1), customer.ID, date(4, d), 1, 100)
		require.NoError(t, invoices.Save(ctx, inv))
	}

	from, to := date(4, 10), date(4, 28)
	list, err := invoices.FindByCustomerBetween(ctx, testTenant, customer.ID, &from, &to)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, invoicing.InvoiceStatusActive, list[0].Status)
	assert.Equal(t, "L-002", list[0].InvoiceNumber)
}
