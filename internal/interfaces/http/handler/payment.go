package handler

import (
	settlementapp "github.com/dyehouse/backend/internal/application/settlement"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry a payment submission safely
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler handles payment entry and allocation endpoints
type PaymentHandler struct {
	BaseHandler
	service *settlementapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *settlementapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes mounts the payment endpoints on rg
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/customers/:id/outstanding-invoices", h.OutstandingInvoices)

	payments := rg.Group("/payments")
	payments.POST("/allocate", h.Allocate)
	payments.POST("", h.Record)
	payments.GET("", h.List)
	payments.GET("/:id", h.GetByID)
	payments.POST("/:id/cancel", h.Cancel)
}

// OutstandingInvoices returns the payment sheet for a customer, oldest
// invoice first with nothing applied
// GET /customers/:id/outstanding-invoices
func (h *PaymentHandler) OutstandingInvoices(c *gin.Context) {
	tenantID, customerID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	sheet, err := h.service.OutstandingInvoices(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sheet)
}

// Allocate runs the allocator with the user's overrides
// POST /payments/allocate
func (h *PaymentHandler) Allocate(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req settlementapp.AllocateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sheet, err := h.service.Allocate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sheet)
}

// Record saves a payment and its per-invoice details
// POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req settlementapp.PaymentPayload
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.service.RecordPayment(c.Request.Context(), tenantID, c.GetHeader(IdempotencyKeyHeader), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// List returns a page of payments
// GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter settlementapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	payments, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, payments, total, page, pageSize)
}

// GetByID godoc
// GET /payments/:id
func (h *PaymentHandler) GetByID(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	payment, err := h.service.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Cancel reverses a payment's applications on its invoices
// POST /payments/:id/cancel
func (h *PaymentHandler) Cancel(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	var req settlementapp.CancelPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.service.Cancel(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}
