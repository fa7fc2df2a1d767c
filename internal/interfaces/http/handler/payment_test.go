package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	server     *testServer
	customerID string
	older      string
	newer      string
}

func newPaymentFixture(t *testing.T) paymentFixture {
	t.Helper()
	s := newTestServer(t)
	customerID := s.createCustomer(t, "C001")
	newer := s.createInvoice(t, "INV-002", customerID, "2024-04-05", 10, 100)
	older := s.createInvoice(t, "INV-001", customerID, "2024-04-01", 10, 100)
	return paymentFixture{
		server:     s,
		customerID: customerID,
		older:      older["id"].(string),
		newer:      newer["id"].(string),
	}
}

func sheetRows(t *testing.T, data map[string]any) []map[string]any {
	t.Helper()
	raw := data["rows"].([]any)
	rows := make([]map[string]any, len(raw))
	for i, r := range raw {
		rows[i] = r.(map[string]any)
	}
	return rows
}

func TestPaymentHandler_OutstandingInvoices(t *testing.T) {
	f := newPaymentFixture(t)

	w, resp := f.server.do(t, http.MethodGet, "/api/v1/customers/"+f.customerID+"/outstanding-invoices", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rows := sheetRows(t, dataMap(t, resp))
	require.Len(t, rows, 2)
	assert.Equal(t, "INV-001", rows[0]["invoice_number"])
	assert.Equal(t, 1050.0, rows[0]["pending_amount"])
	assert.Equal(t, 0.0, rows[0]["apply_amount"])
}

func TestPaymentHandler_Allocate(t *testing.T) {
	f := newPaymentFixture(t)

	w, resp := f.server.do(t, http.MethodPost, "/api/v1/payments/allocate", gin.H{
		"customer_id":  f.customerID,
		"total_amount": 1500,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	sheet := dataMap(t, resp)
	rows := sheetRows(t, sheet)
	require.Len(t, rows, 2)
	assert.Equal(t, 1050.0, rows[0]["apply_amount"])
	assert.Equal(t, 450.0, rows[1]["apply_amount"])
	assert.Equal(t, 600.0, rows[1]["remaining"])
	assert.Equal(t, 1500.0, sheet["used"])
	assert.Equal(t, 0.0, sheet["balance"])
	assert.Len(t, sheet["payment_details"], 2)

	t.Run("manual row is kept", func(t *testing.T) {
		w, resp := f.server.do(t, http.MethodPost, "/api/v1/payments/allocate", gin.H{
			"customer_id":  f.customerID,
			"total_amount": 1500,
			"rows": []gin.H{
				{"invoice_id": f.older, "apply_amount": 200},
			},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		rows := sheetRows(t, dataMap(t, resp))
		assert.Equal(t, 200.0, rows[0]["apply_amount"])
		assert.Equal(t, true, rows[0]["manual"])
		assert.Equal(t, 1050.0, rows[1]["apply_amount"])
	})

	t.Run("bad customer id", func(t *testing.T) {
		w, resp := f.server.do(t, http.MethodPost, "/api/v1/payments/allocate", gin.H{
			"customer_id":  "C001",
			"total_amount": 10,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"customer_id"}, detailFields(resp))
	})
}

func TestPaymentHandler_RecordAndCancel(t *testing.T) {
	f := newPaymentFixture(t)
	body := gin.H{
		"payment_date": "2024-04-10",
		"customer_id":  f.customerID,
		"payment_type": "CHEQUE",
		"reference_no": "CHQ-118",
		"total_amount": 1500,
		"payment_details": []gin.H{
			{"invoice_id": f.older, "amount": 1050},
			{"invoice_id": f.newer, "amount": 450},
		},
	}

	w, resp := f.server.do(t, http.MethodPost, "/api/v1/payments", body, IdempotencyKeyHeader, "pay-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	payment := dataMap(t, resp)
	assert.Equal(t, "RECORDED", payment["status"])
	assert.Equal(t, 1500.0, payment["allocated_amount"])
	paymentID := payment["id"].(string)

	w, resp = f.server.do(t, http.MethodPost, "/api/v1/payments", body, IdempotencyKeyHeader, "pay-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_REQUEST", resp.Error.Code)

	paymentState := func(id string) string {
		_, resp := f.server.do(t, http.MethodGet, "/api/v1/invoices/"+id, nil)
		return dataMap(t, resp)["payment_state"].(string)
	}
	assert.Equal(t, "PAID", paymentState(f.older))
	assert.Equal(t, "PARTIAL", paymentState(f.newer))

	// paid invoices cannot be cancelled
	w, resp = f.server.do(t, http.MethodPost, "/api/v1/invoices/"+f.older+"/cancel", gin.H{"reason": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_STATE", resp.Error.Code)

	w, resp = f.server.do(t, http.MethodPost, "/api/v1/payments/"+paymentID+"/cancel", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"reason"}, detailFields(resp))

	w, resp = f.server.do(t, http.MethodPost, "/api/v1/payments/"+paymentID+"/cancel", gin.H{"reason": "cheque bounced"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CANCELLED", dataMap(t, resp)["status"])
	assert.Equal(t, "UNPAID", paymentState(f.older))
	assert.Equal(t, "UNPAID", paymentState(f.newer))

	w, resp = f.server.do(t, http.MethodPost, "/api/v1/payments/"+paymentID+"/cancel", gin.H{"reason": "again"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "PAYMENT_CANCELLED", resp.Error.Code)
}

// failingHandler rejects every event it is subscribed to
type failingHandler struct{}

func (*failingHandler) EventTypes() []string {
	return []string{settlement.EventTypePaymentRecorded}
}

func (*failingHandler) Handle(context.Context, shared.DomainEvent) error {
	return errors.New("ledger sync unavailable")
}

// A payment whose events cannot all be handled leaves no trace: the invoices
// keep their balances, the payment is not stored and the key can be reused.
func TestPaymentHandler_Record_RollsBackWhenAHandlerFails(t *testing.T) {
	f := newPaymentFixture(t)
	failing := &failingHandler{}
	f.server.bus.Subscribe(failing)

	body := gin.H{
		"payment_date": "2024-04-10",
		"customer_id":  f.customerID,
		"payment_type": "CASH",
		"total_amount": 1050,
		"payment_details": []gin.H{
			{"invoice_id": f.older, "amount": 1050},
		},
	}
	w, resp := f.server.do(t, http.MethodPost, "/api/v1/payments", body, IdempotencyKeyHeader, "pay-9")
	require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)

	_, resp = f.server.do(t, http.MethodGet, "/api/v1/invoices/"+f.older, nil)
	assert.Equal(t, "UNPAID", dataMap(t, resp)["payment_state"])

	_, resp = f.server.do(t, http.MethodGet, "/api/v1/customers/"+f.customerID+"/outstanding-invoices", nil)
	rows := sheetRows(t, dataMap(t, resp))
	require.Len(t, rows, 2)
	assert.Equal(t, 1050.0, rows[0]["pending_amount"])

	f.server.bus.Unsubscribe(failing)
	w, resp = f.server.do(t, http.MethodPost, "/api/v1/payments", body, IdempotencyKeyHeader, "pay-9")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	_, resp = f.server.do(t, http.MethodGet, "/api/v1/invoices/"+f.older, nil)
	assert.Equal(t, "PAID", dataMap(t, resp)["payment_state"])
}

func TestPaymentHandler_Record_Validation(t *testing.T) {
	f := newPaymentFixture(t)

	w, resp := f.server.do(t, http.MethodPost, "/api/v1/payments", gin.H{
		"payment_date": "2024-04-10",
		"customer_id":  f.customerID,
		"payment_type": "CHEQUE",
		"total_amount": 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"reference_no"}, detailFields(resp))
}

func TestPaymentHandler_ListAndGet(t *testing.T) {
	f := newPaymentFixture(t)
	for _, ref := range []string{"UPI-1", "UPI-2"} {
		w, _ := f.server.do(t, http.MethodPost, "/api/v1/payments", gin.H{
			"payment_date": "2024-04-10",
			"customer_id":  f.customerID,
			"payment_type": "UPI",
			"reference_no": ref,
			"total_amount": 100,
			"payment_details": []gin.H{
				{"invoice_id": f.older, "amount": 100},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, resp := f.server.do(t, http.MethodGet, "/api/v1/payments?customer_id="+f.customerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), resp.Meta.Total)
	first := resp.Data.([]any)[0].(map[string]any)

	w, resp = f.server.do(t, http.MethodGet, "/api/v1/payments/"+first["id"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UPI", dataMap(t, resp)["payment_type"])
}
