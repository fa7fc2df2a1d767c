package invoicing

import (
	"context"
	"time"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Status     *InvoiceStatus
	FromDate   *time.Time // invoice date range start
	ToDate     *time.Time // invoice date range end
}

// SalesInvoiceRepository defines the persistence port for invoices
type SalesInvoiceRepository interface {
	// FindByIDForTenant loads an invoice with rows and charges; shared.ErrNotFound when absent
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SalesInvoice, error)

	// FindByNumber finds an invoice by its number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*SalesInvoice, error)

	// FindAllForTenant lists invoices with filtering and paging
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]SalesInvoice, error)

	// CountForTenant counts invoices matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (int64, error)

	// FindOutstanding returns a customer's active invoices with a positive
	// balance, oldest first (invoice date, then number)
	FindOutstanding(ctx context.Context, tenantID, customerID uuid.UUID) ([]SalesInvoice, error)

	// FindByIDs loads several invoices of one tenant
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]SalesInvoice, error)

	// FindByCustomerBetween lists a customer's active invoices dated in [from, to]
	FindByCustomerBetween(ctx context.Context, tenantID, customerID uuid.UUID, from, to *time.Time) ([]SalesInvoice, error)

	// Save creates or updates an invoice with its rows and charges
	Save(ctx context.Context, invoice *SalesInvoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *SalesInvoice) error

	// DeleteForTenant removes an invoice and its lines
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
