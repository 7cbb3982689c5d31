package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/medstore/backend/internal/application/catalog"
	identityapp "github.com/medstore/backend/internal/application/identity"
	partnerapp "github.com/medstore/backend/internal/application/partner"
	printingapp "github.com/medstore/backend/internal/application/printing"
	reportapp "github.com/medstore/backend/internal/application/report"
	tradeapp "github.com/medstore/backend/internal/application/trade"
	"github.com/medstore/backend/internal/infrastructure/auth"
	"github.com/medstore/backend/internal/infrastructure/config"
	"github.com/medstore/backend/internal/infrastructure/persistence"
	infraprinting "github.com/medstore/backend/internal/infrastructure/printing"
	"github.com/medstore/backend/internal/interfaces/http/dto"
	"github.com/medstore/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

const (
	testAdminUsername = "admin"
	testAdminPassword = "admin123"
)

// fakeRenderer stands in for headless Chrome
type fakeRenderer struct {
	mu    sync.Mutex
	calls int
}

func (r *fakeRenderer) Render(_ context.Context, req *infraprinting.RenderRequest) (*infraprinting.RenderResult, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return &infraprinting.RenderResult{PDFData: []byte("%PDF-1.7\n" + req.Title)}, nil
}

func (r *fakeRenderer) Close() error { return nil }

// memoryStorage keeps archived objects in a map
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memoryStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memoryStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *memoryStorage) GenerateDownloadURL(_ context.Context, key string, _ time.Duration) (string, time.Time, error) {
	return "https://files.example/" + key + "?sig=test", time.Now().Add(time.Hour), nil
}

// testAPI is the HTTP surface wired to real services over in-memory SQLite
type testAPI struct {
	t        *testing.T
	router   *gin.Engine
	jwt      *auth.JWTService
	renderer *fakeRenderer
	storage  *memoryStorage
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	middleware.SetupValidator()

	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB

	medicineRepo := persistence.NewGormMedicineRepository(db)
	supplierRepo := persistence.NewGormSupplierRepository(db)
	purchaseRepo := persistence.NewGormPurchaseRepository(db)
	saleRepo := persistence.NewGormSaleRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	purchaseLedger := tradeapp.NewPurchaseLedger(txScope, purchaseRepo)
	saleLedger := tradeapp.NewSaleLedger(txScope, saleRepo)
	medicineService := catalogapp.NewMedicineService(txScope, medicineRepo, supplierRepo, purchaseLedger)
	supplierService := partnerapp.NewSupplierService(supplierRepo, medicineRepo, purchaseRepo)
	reportService := reportapp.NewReportService(persistence.NewGormReportRepository(db))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "medstore-test",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	authService := identityapp.NewAuthService(persistence.NewGormUserRepository(db), jwtService, blacklist, nil)
	require.NoError(t, authService.EnsureDefaultAdmin(context.Background(), testAdminUsername, testAdminPassword))

	template, err := infraprinting.NewInvoiceTemplate()
	require.NoError(t, err)
	renderer := &fakeRenderer{}
	storage := &memoryStorage{objects: map[string][]byte{}}
	invoiceService := printingapp.NewInvoiceService(saleLedger, template, renderer, storage,
		infraprinting.StoreInfo{Name: "Piyu Medical Store", Address: "12 Market Road", Phone: "555-0101"}, nil)

	authHandler := NewAuthHandler(authService)
	medicineHandler := NewMedicineHandler(medicineService)
	supplierHandler := NewSupplierHandler(supplierService)
	purchaseHandler := NewPurchaseHandler(purchaseLedger)
	saleHandler := NewSaleHandler(saleLedger)
	invoiceHandler := NewInvoiceHandler(invoiceService)
	reportHandler := NewReportHandler(reportService)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.RefreshToken)

	secured := api.Group("", middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	}))
	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.GetCurrentUser)

	// Resource routes are mounted without auth so tests stay focused
	api.GET("/dashboard", reportHandler.Dashboard)
	api.GET("/medicines", medicineHandler.List)
	api.POST("/medicines", medicineHandler.Create)
	api.POST("/medicines/import", medicineHandler.Import)
	api.GET("/medicines/:id", medicineHandler.GetByID)
	api.PUT("/medicines/:id", medicineHandler.Update)
	api.DELETE("/medicines/:id", medicineHandler.Delete)
	api.GET("/suppliers", supplierHandler.List)
	api.POST("/suppliers", supplierHandler.Create)
	api.GET("/suppliers/:id", supplierHandler.GetByID)
	api.PUT("/suppliers/:id", supplierHandler.Update)
	api.DELETE("/suppliers/:id", supplierHandler.Delete)
	api.GET("/purchases", purchaseHandler.List)
	api.POST("/purchases", purchaseHandler.Create)
	api.GET("/purchases/:id", purchaseHandler.GetByID)
	api.GET("/sales", saleHandler.List)
	api.POST("/sales", saleHandler.Create)
	api.GET("/sales/:id", saleHandler.GetByID)
	api.GET("/sales/:id/invoice", invoiceHandler.Render)
	api.POST("/sales/:id/invoice/archive", invoiceHandler.Archive)
	api.GET("/reports", reportHandler.Overview)
	api.GET("/reports/low-stock", reportHandler.LowStock)
	api.GET("/reports/top-medicines", reportHandler.TopMedicines)
	api.GET("/reports/payment-methods", reportHandler.PaymentMethods)
	api.GET("/reports/export", reportHandler.DetailedExport)
	api.GET("/reports/export/:type", reportHandler.Export)

	return &testAPI{t: t, router: r, jwt: jwtService, renderer: renderer, storage: storage}
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testAPI) delete(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodDelete, path, nil))
}

func (a *testAPI) sendJSON(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(a.t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *testAPI) sendForm(method, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

// envelope decodes the standard response with data left raw
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decodeEnvelope(t, w, nil)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	return env
}

func (a *testAPI) createSupplier(name string) partnerapp.SupplierResponse {
	a.t.Helper()
	w := a.sendJSON(http.MethodPost, "/api/v1/suppliers", partnerapp.SupplierRequest{
		Name:    name,
		Contact: name + " Sales",
		Email:   "orders@example.com",
		Phone:   "555-0100",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var s partnerapp.SupplierResponse
	decodeEnvelope(a.t, w, &s)
	return s
}

func (a *testAPI) createMedicine(name string, quantity int, price string, supplierID uint64) catalogapp.MedicineResponse {
	a.t.Helper()
	w := a.sendJSON(http.MethodPost, "/api/v1/medicines", map[string]any{
		"name":         name,
		"description":  name + " 500mg",
		"quantity":     quantity,
		"price":        price,
		"supplier_id":  supplierID,
		"expiry_date":  "2030-06-30",
		"batch_number": "B-" + name,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var m catalogapp.MedicineResponse
	decodeEnvelope(a.t, w, &m)
	return m
}

func (a *testAPI) recordSale(items ...map[string]any) tradeapp.SaleResponse {
	a.t.Helper()
	w := a.sendJSON(http.MethodPost, "/api/v1/sales", map[string]any{
		"customer_name":  "Asha Rao",
		"payment_method": "Cash",
		"items":          items,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var s tradeapp.SaleResponse
	decodeEnvelope(a.t, w, &s)
	return s
}
