package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dyehouse/backend/internal/application/report"
	"github.com/dyehouse/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerHandler_Ledger(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t, "C001")
	inv := s.createInvoice(t, "INV-001", customerID, "2024-04-01", 10, 100)
	s.createInvoice(t, "INV-002", customerID, "2024-04-20", 1, 100)
	w, _ := s.do(t, http.MethodPost, "/api/v1/payments", gin.H{
		"payment_date":    "2024-04-10",
		"customer_id":     customerID,
		"payment_type":    "CASH",
		"total_amount":    500,
		"payment_details": []gin.H{{"invoice_id": inv["id"], "amount": 500}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	path := "/api/v1/customers/" + customerID + "/ledger"

	w, resp := s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ledger := dataMap(t, resp)
	assert.Len(t, ledger["entries"], 3)
	assert.Equal(t, 655.0, ledger["closing_balance"])
	first := ledger["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, "2024-04-01", first["date"])
	assert.Equal(t, "INVOICE", first["entry_type"])
	assert.Equal(t, 1050.0, first["debit"])
	assert.Equal(t, 0.0, first["credit"])
	assert.Equal(t, 1050.0, first["running_balance"])

	w, resp = s.do(t, http.MethodGet, path+"?from=2024-04-05&to=2024-04-10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ledger = dataMap(t, resp)
	assert.Equal(t, 1050.0, ledger["opening_balance"])
	assert.Equal(t, "2024-04-05", ledger["from"])
	assert.Equal(t, "2024-04-10", ledger["to"])
	// the payment dated on "to" is included
	assert.Len(t, ledger["entries"], 1)
	assert.Equal(t, 550.0, ledger["closing_balance"])

	w, resp = s.do(t, http.MethodGet, path+"?from=10-04-2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"from"}, detailFields(resp))

	w, resp = s.do(t, http.MethodGet, path+"?from=2024-04-10&to=2024-04-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/customers/"+uuid.NewString()+"/ledger", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLedgerHandler_Export(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t, "C001")
	s.createInvoice(t, "INV-001", customerID, "2024-04-01", 10, 100)

	w, resp := s.do(t, http.MethodPost, "/api/v1/customers/"+customerID+"/ledger/export", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := dataMap(t, resp)
	key := res["storage_key"].(string)
	assert.True(t, strings.HasPrefix(res["download_url"].(string), "https://files.test/"+key))
	assert.Equal(t, 1.0, res["rows"])

	obj, ok := s.storage.Get(key)
	require.True(t, ok)
	assert.Equal(t, "text/csv", obj.ContentType)
	assert.Contains(t, string(obj.Data), "01-04-2024,Invoice,INV-001")
}

func TestLedgerHandler_Export_NoStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewLedgerHandler(report.NewLedgerService(nil, nil, nil, nil, 0, nil))

	engine := gin.New()
	h.RegisterRoutes(&engine.RouterGroup)

	req := httptest.NewRequest(http.MethodPost, "/customers/"+uuid.NewString()+"/ledger/export", nil)
	req.Header.Set("X-Tenant-ID", defaultTenant.String())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "STORAGE_UNAVAILABLE")
}

type stubPinger struct{ err error }

func (p stubPinger) Ping() error { return p.err }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name     string
		db       Pinger
		status   int
		database string
	}{
		{"reachable", stubPinger{}, http.StatusOK, "ok"},
		{"unreachable", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unreachable"},
		{"no database", nil, http.StatusOK, "not configured"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler("dyehouse-backend", "1.2.0", tc.db)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			h.Health(c)

			assert.Equal(t, tc.status, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			data := resp.Data.(map[string]any)
			assert.Equal(t, tc.database, data["database"])
			assert.Equal(t, "1.2.0", data["version"])
			assert.NotEmpty(t, data["go_version"])
		})
	}
}

func TestHealthHandler_SkipsTenant(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodGet, "/health", nil, "X-Tenant-ID", "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}
