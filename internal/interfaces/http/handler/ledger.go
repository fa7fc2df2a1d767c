package handler

import (
	"time"

	"github.com/dyehouse/backend/internal/application/report"
	"github.com/dyehouse/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

const ledgerDateLayout = "2006-01-02"

// LedgerHandler serves customer statements
type LedgerHandler struct {
	BaseHandler
	service *report.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service *report.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// RegisterRoutes mounts the ledger endpoints on rg
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/customers/:id/ledger", h.Ledger)
	rg.POST("/customers/:id/ledger/export", h.Export)
}

// Ledger returns the statement, optionally bounded by ?from= and ?to=
// GET /customers/:id/ledger
func (h *LedgerHandler) Ledger(c *gin.Context) {
	tenantID, customerID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	q, ok := h.ledgerQuery(c)
	if !ok {
		return
	}

	ledger, err := h.service.Ledger(c.Request.Context(), tenantID, customerID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report.ToLedgerResponse(ledger))
}

// Export uploads the statement as CSV and returns a download link
// POST /customers/:id/ledger/export
func (h *LedgerHandler) Export(c *gin.Context) {
	tenantID, customerID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	q, ok := h.ledgerQuery(c)
	if !ok {
		return
	}

	res, err := h.service.ExportCSV(c.Request.Context(), tenantID, customerID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

func (h *LedgerHandler) ledgerQuery(c *gin.Context) (report.LedgerQuery, bool) {
	var (
		q       report.LedgerQuery
		details []dto.ValidationDetail
	)
	parse := func(name string) *time.Time {
		raw := c.Query(name)
		if raw == "" {
			return nil
		}
		t, err := time.Parse(ledgerDateLayout, raw)
		if err != nil {
			details = append(details, dto.ValidationDetail{Field: name, Message: "Must be a date in YYYY-MM-DD format"})
			return nil
		}
		return &t
	}
	q.From = parse("from")
	if q.To = parse("to"); q.To != nil {
		// inclusive of the whole day
		end := q.To.Add(24*time.Hour - time.Nanosecond)
		q.To = &end
	}
	if len(details) > 0 {
		h.ValidationError(c, details)
		return q, false
	}
	return q, true
}
