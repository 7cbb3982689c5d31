package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/medstore/backend/internal/application/catalog"
	identityapp "github.com/medstore/backend/internal/application/identity"
	partnerapp "github.com/medstore/backend/internal/application/partner"
	printingapp "github.com/medstore/backend/internal/application/printing"
	reportapp "github.com/medstore/backend/internal/application/report"
	tradeapp "github.com/medstore/backend/internal/application/trade"
	"github.com/medstore/backend/internal/domain/catalog"
	"github.com/medstore/backend/internal/infrastructure/auth"
	"github.com/medstore/backend/internal/infrastructure/cache"
	"github.com/medstore/backend/internal/infrastructure/config"
	"github.com/medstore/backend/internal/infrastructure/logger"
	"github.com/medstore/backend/internal/infrastructure/persistence"
	infraprinting "github.com/medstore/backend/internal/infrastructure/printing"
	"github.com/medstore/backend/internal/infrastructure/storage"
	"github.com/medstore/backend/internal/infrastructure/telemetry"
	"github.com/medstore/backend/internal/interfaces/http/handler"
	"github.com/medstore/backend/internal/interfaces/http/middleware"
	"github.com/medstore/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/medstore/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const version = "1.0.0"

//	@title			Medical Store API
//	@version		1.0
//	@description	Pharmacy backend: medicines, suppliers, purchases, sales, invoices and reports.

//	@contact.name	API Support
//	@contact.url	https://github.com/medstore/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry: logs first so the rebuilt logger bridges to OTLP
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if logsProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(logsProvider, logger.ParseLevel(cfg.Log.Level))
		if log, err = logger.New(logCfg, otelCore); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()
	zap.ReplaceGlobals(log)

	log.Info("Starting medical store backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := logsProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down log provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        db.Driver,
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	stores, err := cache.NewStores(ctx, cfg.Redis, cache.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize key-value stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing key-value stores", zap.Error(err))
		}
	}()

	// Repositories
	medicineRepo := persistence.NewGormMedicineRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	purchaseLedger := tradeapp.NewPurchaseLedger(txScope, purchaseRepo)
	purchaseLedger.SetLogger(log)
	saleLedger := tradeapp.NewSaleLedger(txScope, saleRepo)
	saleLedger.SetLogger(log)
	medicineService := catalogapp.NewMedicineService(txScope, medicineRepo, supplierRepo, purchaseLedger)
	medicineService.SetLogger(log)
	supplierService := partnerapp.NewSupplierService(supplierRepo, medicineRepo, purchaseRepo)
	reportService := reportapp.NewReportService(reportRepo)

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:    meterProvider.Meter("medstore"),
		Logger:   log,
		LowStock: telemetry.NewGormLowStockCounter(db.DB, catalog.LowStockThreshold),
	})
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}
	purchaseLedger.SetMetrics(businessMetrics)
	saleLedger.SetMetrics(businessMetrics)
	if meterProvider.IsEnabled() {
		businessMetrics.Start(ctx)
		defer businessMetrics.Stop()
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, stores.Blacklist, log)

	bootCtx, cancelBoot := context.WithTimeout(ctx, 30*time.Second)
	if err := authService.EnsureDefaultAdmin(bootCtx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Fatal("Failed to provision admin user", zap.Error(err))
	}
	if created, err := supplierService.SeedSampleSupplier(bootCtx); err != nil {
		log.Warn("Failed to seed sample supplier", zap.Error(err))
	} else if created {
		log.Info("Sample supplier created")
	}
	cancelBoot()

	invoiceService, closeInvoices := newInvoiceService(ctx, cfg, saleLedger, log)
	defer closeInvoices()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order: request id, recovery, tracing, request log, metrics, cors,
	// security headers, body limit, global rate limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(logger.GinMiddleware(log))
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(meterProvider))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	var authLimiter *middleware.RateLimiter
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
	}

	idempotencyStore := stores.Idempotency
	if !cfg.Idempotency.Enabled {
		idempotencyStore = nil
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version,
		handler.HealthCheck{
			Name:     "database",
			Critical: true,
			Check:    func(context.Context) error { return db.Ping() },
		},
		handler.HealthCheck{
			Name:  "cache",
			Check: stores.Ping,
		},
	)
	engine.GET("/health", systemHandler.Health)

	swaggerJWT := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: stores.Blacklist,
		Logger:         log,
	})
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, swaggerJWT),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Medicine: handler.NewMedicineHandler(medicineService),
		Supplier: handler.NewSupplierHandler(supplierService),
		Purchase: handler.NewPurchaseHandler(purchaseLedger),
		Sale:     handler.NewSaleHandler(saleLedger),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
		Report:   handler.NewReportHandler(reportService),
		System:   systemHandler,
	}, router.APIConfig{
		JWTService:      jwtService,
		TokenBlacklist:  stores.Blacklist,
		AuthRateLimiter: authLimiter,
		Idempotency: middleware.IdempotencyConfig{
			Store:  idempotencyStore,
			TTL:    cfg.Idempotency.TTL,
			Logger: log,
		},
		Profiling: middleware.ProfilingConfig{
			Enabled:          profiler.IsEnabled(),
			SkipPathPrefixes: middleware.DefaultProfilingConfig().SkipPathPrefixes,
		},
		Logger: log,
	})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// newInvoiceService wires the optional PDF renderer and object storage. A
// backend that is disabled or fails to start is left out so the service
// reports it as unavailable instead of failing every request.
func newInvoiceService(ctx context.Context, cfg *config.Config, sales printingapp.SaleLoader, log *zap.Logger) (*printingapp.InvoiceService, func()) {
	template, err := infraprinting.NewInvoiceTemplate()
	if err != nil {
		log.Fatal("Failed to parse invoice template", zap.Error(err))
	}

	closers := []func(){}
	var renderer infraprinting.PDFRenderer
	if cfg.Printing.Enabled {
		chrome := infraprinting.NewChromedpRenderer(&infraprinting.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			RemoteURL:      cfg.Printing.RemoteURL,
			NoSandbox:      cfg.Printing.NoSandbox,
			Logger:         log,
		})
		renderer = chrome
		closers = append(closers, func() {
			if err := chrome.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		})
		log.Info("PDF invoices enabled")
	}

	var objects printingapp.ObjectStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration))
		if err != nil {
			log.Error("Invoice archiving disabled, storage misconfigured", zap.Error(err))
		} else {
			bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := s3.EnsureBucket(bucketCtx); err != nil {
				log.Warn("Could not verify invoice bucket", zap.String("bucket", s3.Bucket()), zap.Error(err))
			}
			cancel()
			objects = s3
			log.Info("Invoice archiving enabled", zap.String("bucket", s3.Bucket()))
		}
	}

	store := infraprinting.StoreInfo{
		Name:    cfg.Store.Name,
		Address: cfg.Store.Address,
		Phone:   cfg.Store.Phone,
	}
	service := printingapp.NewInvoiceService(sales, template, renderer, objects, store, log)
	return service, func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}
}
