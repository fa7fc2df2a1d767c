package catalog

import (
	"time"

	"github.com/dyehouse/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemRequest represents a request to create a new item
type CreateItemRequest struct {
	Code         string           `json:"code" binding:"required,min=1,max=50"`
	Name         string           `json:"name" binding:"required,min=1,max=200"`
	HSNCode      string           `json:"hsn_code" binding:"omitempty,numeric,min=4,max=8"`
	Unit         string           `json:"unit" binding:"max=20"`
	DefaultPrice *decimal.Decimal `json:"default_price"`
	TaxPercent   *decimal.Decimal `json:"tax_percent"`
}

// UpdateItemRequest represents a request to update an item. Nil fields
// are left unchanged.
type UpdateItemRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=200"`
	HSNCode      *string          `json:"hsn_code" binding:"omitempty,numeric,min=4,max=8"`
	Unit         *string          `json:"unit" binding:"omitempty,max=20"`
	DefaultPrice *decimal.Decimal `json:"default_price"`
	TaxPercent   *decimal.Decimal `json:"tax_percent"`
	ClearTax     bool             `json:"clear_tax"`
	Status       *string          `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID           uuid.UUID        `json:"id"`
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	HSNCode      string           `json:"hsn_code"`
	Unit         string           `json:"unit"`
	DefaultPrice decimal.Decimal  `json:"default_price"`
	TaxPercent   *decimal.Decimal `json:"tax_percent"`
	Status       string           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Version      int              `json:"version"`
}

// ItemListFilter represents filter options for item list
type ItemListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=code name created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToItemResponse converts a domain Item to ItemResponse
func ToItemResponse(it *catalog.Item) ItemResponse {
	resp := ItemResponse{
		ID:           it.ID,
		Code:         it.Code,
		Name:         it.Name,
		HSNCode:      it.HSNCode,
		Unit:         it.Unit,
		DefaultPrice: it.DefaultPrice,
		Status:       string(it.Status),
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
		Version:      it.Version,
	}
	if it.TaxPercent.Valid {
		tax := it.TaxPercent.Decimal
		resp.TaxPercent = &tax
	}
	return resp
}
