package handler

import (
	partnerapp "github.com/dyehouse/backend/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// BankHandler handles the company's bank accounts printed on invoices
type BankHandler struct {
	BaseHandler
	service *partnerapp.BankService
}

// NewBankHandler creates a new BankHandler
func NewBankHandler(service *partnerapp.BankService) *BankHandler {
	return &BankHandler{service: service}
}

// RegisterRoutes mounts the bank endpoints on rg
func (h *BankHandler) RegisterRoutes(rg *gin.RouterGroup) {
	banks := rg.Group("/banks")
	banks.POST("", h.Create)
	banks.GET("", h.List)
	banks.GET("/:id", h.GetByID)
	banks.PUT("/:id", h.Update)
	banks.DELETE("/:id", h.Delete)
}

// Create godoc
// POST /banks
func (h *BankHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req partnerapp.BankRequest
	if !h.bindJSON(c, &req) {
		return
	}

	bank, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bank)
}

// List returns every bank account of the tenant
// GET /banks
func (h *BankHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	banks, err := h.service.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banks)
}

// GetByID godoc
// GET /banks/:id
func (h *BankHandler) GetByID(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	bank, err := h.service.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bank)
}

// Update godoc
// PUT /banks/:id
func (h *BankHandler) Update(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	var req partnerapp.BankRequest
	if !h.bindJSON(c, &req) {
		return
	}

	bank, err := h.service.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bank)
}

// Delete godoc
// DELETE /banks/:id
func (h *BankHandler) Delete(c *gin.Context) {
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
