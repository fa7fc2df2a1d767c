package handler

import (
	catalogapp "github.com/dyehouse/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ItemHandler handles the item master
type ItemHandler struct {
	BaseHandler
	service *catalogapp.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(service *catalogapp.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

// RegisterRoutes mounts the item endpoints on rg
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	items.POST("", h.Create)
	items.GET("", h.List)
	items.GET("/:id", h.GetByID)
	items.PUT("/:id", h.Update)
	items.DELETE("/:id", h.Delete)
}

// Create godoc
// POST /items
func (h *ItemHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req catalogapp.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// List godoc
// GET /items
func (h *ItemHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter catalogapp.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// GetByID godoc
// GET /items/:id
func (h *ItemHandler) GetByID(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	item, err := h.service.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Update godoc
// PUT /items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	var req catalogapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.service.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete godoc
// DELETE /items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
