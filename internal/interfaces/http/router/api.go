package router

import (
	"github.com/medstore/backend/internal/infrastructure/auth"
	"github.com/medstore/backend/internal/interfaces/http/handler"
	"github.com/medstore/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers served under the versioned API prefix
type Handlers struct {
	Auth     *handler.AuthHandler
	Medicine *handler.MedicineHandler
	Supplier *handler.SupplierHandler
	Purchase *handler.PurchaseHandler
	Sale     *handler.SaleHandler
	Invoice  *handler.InvoiceHandler
	Report   *handler.ReportHandler
	System   *handler.SystemHandler
}

// APIConfig holds what the API routes need besides handlers
type APIConfig struct {
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
	// AuthRateLimiter throttles login and refresh per client IP. Nil disables it.
	AuthRateLimiter *middleware.RateLimiter
	// Idempotency guards sale submission. A nil Store disables it.
	Idempotency middleware.IdempotencyConfig
	Profiling   middleware.ProfilingConfig
	Logger      *zap.Logger
}

// RegisterAPI mounts every API route on r. All routes except login, refresh
// and health require a bearer token.
func RegisterAPI(r *Router, h Handlers, cfg APIConfig) {
	jwtConfig := middleware.DefaultJWTConfig(cfg.JWTService)
	jwtConfig.TokenBlacklist = cfg.TokenBlacklist
	jwtConfig.Logger = cfg.Logger
	// Swagger lives outside the API group and carries its own protection
	jwtConfig.SkipPathPrefixes = nil

	r.Use(
		middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		middleware.SpanAttributes(),
		middleware.ProfilingWithConfig(cfg.Profiling),
	)

	authRoutes := NewDomainGroup("auth", "/auth")
	if cfg.AuthRateLimiter != nil {
		limit := middleware.RateLimit(cfg.AuthRateLimiter)
		authRoutes.POST("/login", limit, h.Auth.Login)
		authRoutes.POST("/refresh", limit, h.Auth.RefreshToken)
	} else {
		authRoutes.POST("/login", h.Auth.Login)
		authRoutes.POST("/refresh", h.Auth.RefreshToken)
	}
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/me", h.Auth.GetCurrentUser)

	medicineRoutes := NewDomainGroup("catalog", "/medicines")
	medicineRoutes.GET("", h.Medicine.List)
	medicineRoutes.POST("", h.Medicine.Create)
	medicineRoutes.POST("/import", h.Medicine.Import)
	medicineRoutes.GET("/:id", h.Medicine.GetByID)
	medicineRoutes.PUT("/:id", h.Medicine.Update)
	medicineRoutes.DELETE("/:id", h.Medicine.Delete)

	supplierRoutes := NewDomainGroup("partner", "/suppliers")
	supplierRoutes.GET("", h.Supplier.List)
	supplierRoutes.POST("", h.Supplier.Create)
	supplierRoutes.GET("/:id", h.Supplier.GetByID)
	supplierRoutes.PUT("/:id", h.Supplier.Update)
	supplierRoutes.DELETE("/:id", h.Supplier.Delete)

	purchaseRoutes := NewDomainGroup("purchases", "/purchases")
	purchaseRoutes.GET("", h.Purchase.List)
	purchaseRoutes.POST("", h.Purchase.Create)
	purchaseRoutes.GET("/:id", h.Purchase.GetByID)

	saleRoutes := NewDomainGroup("sales", "/sales")
	saleRoutes.GET("", h.Sale.List)
	saleRoutes.POST("", middleware.Idempotency(cfg.Idempotency), h.Sale.Create)
	saleRoutes.GET("/:id", h.Sale.GetByID)
	saleRoutes.GET("/:id/invoice", h.Invoice.Render)
	saleRoutes.POST("/:id/invoice/archive", h.Invoice.Archive)

	reportRoutes := NewDomainGroup("report", "/reports")
	reportRoutes.GET("", h.Report.Overview)
	reportRoutes.GET("/low-stock", h.Report.LowStock)
	reportRoutes.GET("/top-medicines", h.Report.TopMedicines)
	reportRoutes.GET("/payment-methods", h.Report.PaymentMethods)
	reportRoutes.GET("/export", h.Report.DetailedExport)
	reportRoutes.GET("/export/:type", h.Report.Export)

	dashboardRoutes := NewDomainGroup("dashboard", "/dashboard")
	dashboardRoutes.GET("", h.Report.Dashboard)

	systemRoutes := NewDomainGroup("system", "")
	systemRoutes.GET("/health", h.System.Health)
	systemRoutes.GET("/system/info", h.System.GetSystemInfo)

	r.Register(authRoutes).
		Register(medicineRoutes).
		Register(supplierRoutes).
		Register(purchaseRoutes).
		Register(saleRoutes).
		Register(reportRoutes).
		Register(dashboardRoutes).
		Register(systemRoutes)
}
