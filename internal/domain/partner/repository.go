package partner

import (
	"context"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByIDForTenant finds a customer by ID within a tenant; shared.ErrNotFound when absent
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindByCode finds a customer by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Customer, error)

	// FindAllForTenant lists customers; Search matches code and name
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, error)

	// CountForTenant counts customers matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// DeleteForTenant removes a customer
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// BankRepository defines the interface for bank account persistence
type BankRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Bank, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Bank, error)
	Save(ctx context.Context, bank *Bank) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
