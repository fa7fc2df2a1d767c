package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/dyehouse/backend/internal/domain/catalog"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ItemService handles the billable item catalog
type ItemService struct {
	itemRepo catalog.ItemRepository
	logger   *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo catalog.ItemRepository, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{itemRepo: itemRepo, logger: logger}
}

// Create creates a new item
func (s *ItemService) Create(ctx context.Context, tenantID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	_, err := s.itemRepo.FindByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(req.Code)))
	if err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Item with this code already exists")
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	item, err := catalog.NewItem(tenantID, req.Code, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	if err := item.SetHSNCode(req.HSNCode); err != nil {
		return nil, err
	}
	price := decimal.Zero
	if req.DefaultPrice != nil {
		price = *req.DefaultPrice
	}
	if err := item.SetPricing(price, req.TaxPercent); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("item created",
		zap.String("item_id", item.ID.String()),
		zap.String("code", item.Code),
	)

	resp := ToItemResponse(item)
	return &resp, nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// List retrieves items with filtering and pagination
func (s *ItemService) List(ctx context.Context, tenantID uuid.UUID, filter ItemListFilter) ([]ItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	items, err := s.itemRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out, total, nil
}

// Update updates an item. Existing invoices keep the values copied at selection.
func (s *ItemService) Update(ctx context.Context, tenantID, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Unit != nil {
		name, unit := item.Name, item.Unit
		if req.Name != nil {
			name = *req.Name
		}
		if req.Unit != nil {
			unit = *req.Unit
		}
		if err := item.Rename(name, unit); err != nil {
			return nil, err
		}
	}
	if req.HSNCode != nil {
		if err := item.SetHSNCode(*req.HSNCode); err != nil {
			return nil, err
		}
	}
	if req.DefaultPrice != nil || req.TaxPercent != nil || req.ClearTax {
		price := item.DefaultPrice
		if req.DefaultPrice != nil {
			price = *req.DefaultPrice
		}
		var tax *decimal.Decimal
		switch {
		case req.TaxPercent != nil:
			tax = req.TaxPercent
		case !req.ClearTax && item.TaxPercent.Valid:
			current := item.TaxPercent.Decimal
			tax = &current
		}
		if err := item.SetPricing(price, tax); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if catalog.ItemStatus(*req.Status) == catalog.ItemStatusInactive {
			item.Deactivate()
		} else {
			item.Activate()
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Delete removes an item
func (s *ItemService) Delete(ctx context.Context, tenantID, itemID uuid.UUID) error {
	if _, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID); err != nil {
		return err
	}
	return s.itemRepo.DeleteForTenant(ctx, tenantID, itemID)
}
