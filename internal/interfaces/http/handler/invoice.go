package handler

import (
	invoicingapp "github.com/dyehouse/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

const defaultPageSize = 20

// pageOf mirrors the defaults the services apply so the meta block agrees
// with what was actually queried
func pageOf(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// InvoiceHandler handles sales invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	service *invoicingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *invoicingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// RegisterRoutes mounts the invoice endpoints on rg
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.POST("", h.Create)
	invoices.GET("", h.List)
	invoices.POST("/preview", h.Preview)
	invoices.POST("/rows/recalculate", h.RecalculateRow)
	invoices.GET("/:id", h.GetByID)
	invoices.PUT("/:id", h.Update)
	invoices.DELETE("/:id", h.Delete)
	invoices.POST("/:id/cancel", h.Cancel)
}

// Create godoc
// POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req invoicingapp.InvoicePayload
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// List returns a page of invoices
// GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter invoicingapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	invoices, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, invoices, total, page, pageSize)
}

// GetByID returns the hydrated invoice
// GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	invoice, err := h.service.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Update replaces the invoice contents. The payload version guards
// against concurrent edits.
// PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	var req invoicingapp.InvoicePayload
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.service.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete removes an invoice that has no receipts
// DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
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

// Cancel godoc
// POST /invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	var req invoicingapp.CancelInvoiceRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.service.Cancel(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Preview computes rows and totals without persisting
// POST /invoices/preview
func (h *InvoiceHandler) Preview(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req invoicingapp.PreviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// RecalculateRow recomputes one row after a field edit
// POST /invoices/rows/recalculate
func (h *InvoiceHandler) RecalculateRow(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req invoicingapp.RecalculateRowRequest
	if !h.bindJSON(c, &req) {
		return
	}

	row, err := h.service.RecalculateRow(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}
