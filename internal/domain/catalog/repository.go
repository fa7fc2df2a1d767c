package catalog

import (
	"context"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByIDForTenant finds an item by ID within a tenant; shared.ErrNotFound when absent
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)

	// FindByIDs loads several items, used when resolving invoice rows
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Item, error)

	// FindByCode finds an item by code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Item, error)

	// FindAllForTenant lists items; Search matches code, name and HSN code
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Item, error)

	// CountForTenant counts items matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	Save(ctx context.Context, item *Item) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
