package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogapp "github.com/dyehouse/backend/internal/application/catalog"
	invoicingapp "github.com/dyehouse/backend/internal/application/invoicing"
	partnerapp "github.com/dyehouse/backend/internal/application/partner"
	"github.com/dyehouse/backend/internal/application/report"
	settlementapp "github.com/dyehouse/backend/internal/application/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/dyehouse/backend/internal/infrastructure/cache"
	"github.com/dyehouse/backend/internal/infrastructure/event"
	"github.com/dyehouse/backend/internal/infrastructure/persistence"
	"github.com/dyehouse/backend/internal/infrastructure/persistence/models"
	"github.com/dyehouse/backend/internal/infrastructure/storage"
	"github.com/dyehouse/backend/internal/interfaces/http/dto"
	"github.com/dyehouse/backend/internal/interfaces/http/middleware"
	"github.com/dyehouse/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var defaultTenant = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type testServer struct {
	engine  *gin.Engine
	storage *storage.MemoryStorage
	bus     *event.InMemoryEventBus
}

// newTestServer wires the real services over an in-memory SQLite database
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	database, err := persistence.NewSQLiteDatabase(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.DB.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() { _ = database.Close() })

	invoiceRepo := persistence.NewGormSalesInvoiceRepository(database.DB)
	customerRepo := persistence.NewGormCustomerRepository(database.DB)
	paymentRepo := persistence.NewGormCustomerPaymentRepository(database.DB)
	itemRepo := persistence.NewGormItemRepository(database.DB)
	bankRepo := persistence.NewGormBankRepository(database.DB)

	bus := event.NewInMemoryEventBus(nil)
	bus.Subscribe(invoicingapp.NewReceiptHandler(invoiceRepo, nil))

	invoices := invoicingapp.NewInvoiceService(invoiceRepo, customerRepo, itemRepo, invoicingapp.Config{
		CompanyStateCode:    "33",
		DefaultPaymentTerms: 30,
	}, nil)
	invoices.SetEventPublisher(bus)

	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	payments := settlementapp.NewPaymentService(paymentRepo, invoiceRepo, customerRepo, nil)
	payments.SetEventPublisher(bus)
	payments.SetIdempotencyStore(store, shared.IdempotencyConfig{TTL: time.Hour, Enabled: true})
	payments.SetTransactor(persistence.NewGormTransactor(database.DB))

	files := storage.NewMemoryStorage("https://files.test")
	ledger := report.NewLedgerService(invoiceRepo, paymentRepo, customerRepo, files, time.Hour, nil)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tenant(middleware.TenantConfig{
		DefaultTenantID: defaultTenant,
		SkipPaths:       []string{"/health"},
	}))
	r := router.NewRouter(engine)
	r.RegisterRoot(NewHealthHandler("dyehouse-backend", "test", database))
	r.Register(NewInvoiceHandler(invoices)).
		Register(NewPaymentHandler(payments)).
		Register(NewCustomerHandler(partnerapp.NewCustomerService(customerRepo, invoiceRepo, nil))).
		Register(NewBankHandler(partnerapp.NewBankService(bankRepo, nil))).
		Register(NewItemHandler(catalogapp.NewItemService(itemRepo, nil))).
		Register(NewLedgerHandler(ledger))
	r.Setup()

	return &testServer{engine: engine, storage: files, bus: bus}
}

// do sends a JSON request. headers are name, value pairs.
func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Code != http.StatusNoContent && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func dataMap(t *testing.T, resp dto.Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

func (s *testServer) createCustomer(t *testing.T, code string) string {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/api/v1/customers", gin.H{
		"code":       code,
		"name":       "SRI MURUGAN TEXTILES",
		"state_code": "33",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataMap(t, resp)["id"].(string)
}

// invoiceBody is one 5% row of qty × price
func invoiceBody(number, customerID, date string, qty, price float64) gin.H {
	taxable := qty * price
	return gin.H{
		"invoice_number": number,
		"customer_id":    customerID,
		"invoice_date":   date,
		"items": []gin.H{{
			"description": "Reactive dyeing",
			"quantity":    qty,
			"price":       price,
			"tax_percent": 5,
			"tax_amount":  taxable * 0.05,
			"tax_edited":  "percent",
			"amount":      taxable,
		}},
	}
}

func (s *testServer) createInvoice(t *testing.T, number, customerID, date string, qty, price float64) map[string]any {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/api/v1/invoices", invoiceBody(number, customerID, date, qty, price))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataMap(t, resp)
}

func detailFields(resp dto.Response) []string {
	if resp.Error == nil {
		return nil
	}
	fields := make([]string, len(resp.Error.Details))
	for i, d := range resp.Error.Details {
		fields[i] = d.Field
	}
	return fields
}
