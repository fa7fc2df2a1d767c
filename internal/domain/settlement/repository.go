package settlement

import (
	"context"
	"time"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	CustomerID  *uuid.UUID
	Status      *PaymentStatus
	PaymentType *PaymentType
	FromDate    *time.Time
	ToDate      *time.Time
}

// CustomerPaymentRepository defines the persistence port for payments
type CustomerPaymentRepository interface {
	// FindByIDForTenant loads a payment with its details; shared.ErrNotFound when absent
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CustomerPayment, error)

	// FindAllForTenant lists payments with filtering and paging
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]CustomerPayment, error)

	// CountForTenant counts payments matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)

	// FindByCustomerBetween lists a customer's recorded payments dated in [from, to]
	FindByCustomerBetween(ctx context.Context, tenantID, customerID uuid.UUID, from, to *time.Time) ([]CustomerPayment, error)

	// Save creates or updates a payment with its details
	Save(ctx context.Context, payment *CustomerPayment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *CustomerPayment) error
}
