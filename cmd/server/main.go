package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/dyehouse/backend/internal/application/catalog"
	invoicingapp "github.com/dyehouse/backend/internal/application/invoicing"
	partnerapp "github.com/dyehouse/backend/internal/application/partner"
	"github.com/dyehouse/backend/internal/application/report"
	settlementapp "github.com/dyehouse/backend/internal/application/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/dyehouse/backend/internal/infrastructure/cache"
	"github.com/dyehouse/backend/internal/infrastructure/config"
	"github.com/dyehouse/backend/internal/infrastructure/event"
	"github.com/dyehouse/backend/internal/infrastructure/logger"
	"github.com/dyehouse/backend/internal/infrastructure/persistence"
	"github.com/dyehouse/backend/internal/infrastructure/storage"
	"github.com/dyehouse/backend/internal/infrastructure/telemetry"
	"github.com/dyehouse/backend/internal/interfaces/http/handler"
	"github.com/dyehouse/backend/internal/interfaces/http/middleware"
	"github.com/dyehouse/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	tel := setupTelemetry(ctx, cfg, log)
	log = tel.logger

	log.Info("Starting dyehouse backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	defaultTenant, err := uuid.Parse(cfg.App.DefaultTenantID)
	if err != nil {
		log.Fatal("Invalid default tenant id", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Log.SlowQuery)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentDB(db.DB, telemetry.DBTracingConfig{
			Enabled:    true,
			DBName:     cfg.Database.DBName,
			LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		}); err != nil {
			log.Fatal("Failed to instrument database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Repositories
	invoiceRepo := persistence.NewGormSalesInvoiceRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	paymentRepo := persistence.NewGormCustomerPaymentRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	bankRepo := persistence.NewGormBankRepository(db.DB)

	// Idempotency store guards both payment submissions and event delivery
	idemStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = idemStore.Close() }()
	idemConfig := shared.IdempotencyConfig{TTL: cfg.Event.IdempotencyTTL, Enabled: true}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewIdempotentHandler(
		invoicingapp.NewReceiptHandler(invoiceRepo, log),
		idemStore,
		log,
		event.WithIdempotencyConfig(idemConfig),
	))
	billingMetrics, err := telemetry.NewBillingMetrics(tel.meters.Meter("dyehouse/billing"))
	if err != nil {
		log.Fatal("Failed to create billing metrics", zap.Error(err))
	}
	eventBus.Subscribe(billingMetrics)

	// Application services
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, customerRepo, itemRepo, invoicingapp.Config{
		CompanyStateCode:    cfg.App.CompanyStateCode,
		DefaultPaymentTerms: cfg.App.DefaultPaymentTerms,
	}, log)
	invoiceService.SetEventPublisher(eventBus)

	paymentService := settlementapp.NewPaymentService(paymentRepo, invoiceRepo, customerRepo, log)
	paymentService.SetEventPublisher(eventBus)
	paymentService.SetIdempotencyStore(idemStore, idemConfig)
	paymentService.SetTransactor(persistence.NewGormTransactor(db.DB))

	customerService := partnerapp.NewCustomerService(customerRepo, invoiceRepo, log)
	bankService := partnerapp.NewBankService(bankRepo, log)
	itemService := catalogapp.NewItemService(itemRepo, log)

	exports := newExportStorage(ctx, cfg, log)
	ledgerService := report.NewLedgerService(invoiceRepo, paymentRepo, customerRepo, exports, cfg.Storage.PresignExpiration, log)

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tenant(middleware.TenantConfig{
		DefaultTenantID: defaultTenant,
		SkipPaths:       []string{"/health"},
		Logger:          log,
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	httpMetrics, err := middleware.HTTPMetrics(tel.meters.Meter("dyehouse/http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.RegisterRoot(handler.NewHealthHandler(cfg.App.Name, version, db))
	r.Register(handler.NewInvoiceHandler(invoiceService)).
		Register(handler.NewPaymentHandler(paymentService)).
		Register(handler.NewCustomerHandler(customerService)).
		Register(handler.NewBankHandler(bankService)).
		Register(handler.NewItemHandler(itemService)).
		Register(handler.NewLedgerHandler(ledgerService))
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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus stop failed", zap.Error(err))
	}
	tel.shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
}

// telemetryStack holds the providers started for this process
type telemetryStack struct {
	logger   *zap.Logger
	traces   *telemetry.TracerProvider
	meters   *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

// setupTelemetry starts tracing, metrics, log export and profiling as
// configured. Exporter failures are logged and leave that signal disabled.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) *telemetryStack {
	tc := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}
	stack := &telemetryStack{logger: log}

	var err error
	if stack.traces, err = telemetry.NewTracerProvider(ctx, tc, log); err != nil {
		log.Warn("Tracing disabled", zap.Error(err))
		stack.traces, _ = telemetry.NewTracerProvider(ctx, telemetry.Config{}, log)
	}
	if stack.meters, err = telemetry.NewMeterProvider(ctx, tc, log); err != nil {
		log.Warn("Metrics disabled", zap.Error(err))
		stack.meters, _ = telemetry.NewMeterProvider(ctx, telemetry.Config{}, log)
	}

	logsConfig := tc
	logsConfig.Enabled = tc.Enabled && cfg.Telemetry.LogsEnabled
	if stack.logs, err = telemetry.NewLoggerProvider(ctx, logsConfig); err != nil {
		log.Warn("Log export disabled", zap.Error(err))
		stack.logs, _ = telemetry.NewLoggerProvider(ctx, telemetry.Config{})
	}
	if stack.logs.IsEnabled() {
		stack.logger = stack.logs.Tee(log, logger.ParseLevel(cfg.Log.Level))
	}

	stack.profiler, err = telemetry.StartProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
		Tags:            map[string]string{"env": cfg.App.Env, "version": version},
	}, log)
	if err != nil {
		log.Warn("Profiling disabled", zap.Error(err))
		stack.profiler = &telemetry.Profiler{}
	}
	if stack.profiler.IsRunning() {
		stack.traces.EnableSpanProfiles()
	}
	return stack
}

func (t *telemetryStack) shutdown(ctx context.Context) {
	if err := t.profiler.Stop(); err != nil {
		t.logger.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := t.traces.Shutdown(ctx); err != nil {
		t.logger.Warn("Tracer shutdown failed", zap.Error(err))
	}
	if err := t.meters.Shutdown(ctx); err != nil {
		t.logger.Warn("Meter shutdown failed", zap.Error(err))
	}
	if err := t.logs.Shutdown(ctx); err != nil {
		t.logger.Warn("Log exporter shutdown failed", zap.Error(err))
	}
}

// newExportStorage returns S3 when storage is enabled, in-process storage in
// development and nil otherwise, which disables ledger exports
func newExportStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) report.ExportStorage {
	if !cfg.Storage.Enabled {
		if cfg.App.IsProduction() {
			log.Warn("Export storage disabled; ledger exports will be refused")
			return nil
		}
		log.Info("Using in-memory export storage")
		return storage.NewMemoryStorage("http://localhost:" + cfg.App.Port + "/files")
	}

	s3, err := storage.NewS3ExportStorage(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create export storage", zap.Error(err))
	}
	bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s3.EnsureBucket(bucketCtx); err != nil {
		log.Fatal("Export bucket unavailable", zap.Error(err))
	}
	return s3
}
