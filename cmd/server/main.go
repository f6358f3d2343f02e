package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appasset "github.com/assetflow/backend/internal/application/asset"
	appfinance "github.com/assetflow/backend/internal/application/finance"
	appinventory "github.com/assetflow/backend/internal/application/inventory"
	appmaintenance "github.com/assetflow/backend/internal/application/maintenance"
	apporg "github.com/assetflow/backend/internal/application/org"
	apptransfer "github.com/assetflow/backend/internal/application/transfer"
	"github.com/assetflow/backend/internal/infrastructure/auth"
	"github.com/assetflow/backend/internal/infrastructure/cache"
	"github.com/assetflow/backend/internal/infrastructure/config"
	"github.com/assetflow/backend/internal/infrastructure/event"
	"github.com/assetflow/backend/internal/infrastructure/logger"
	"github.com/assetflow/backend/internal/infrastructure/notification"
	"github.com/assetflow/backend/internal/infrastructure/persistence"
	"github.com/assetflow/backend/internal/infrastructure/telemetry"
	"github.com/assetflow/backend/internal/interfaces/http/handler"
	"github.com/assetflow/backend/internal/interfaces/http/middleware"
	"github.com/assetflow/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

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
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting AssetFlow Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize telemetry (tracing + metrics) when enabled
	var businessMetrics *telemetry.BusinessMetrics
	var meterProvider *telemetry.MeterProvider
	if cfg.Telemetry.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(ctx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		meterProvider, err = telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(ctx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()

		meter := meterProvider.Meter("assetflow-backend")

		// Database query tracing via otelgorm
		if cfg.Telemetry.DBTraceEnabled {
			dbTraceCfg := telemetry.DefaultDBTracingConfig()
			dbTraceCfg.Enabled = true
			tracingPlugin := telemetry.NewDBTracingPlugin(dbTraceCfg, log)
			if err := tracingPlugin.RegisterOtelGorm(db.DB); err != nil {
				log.Warn("Failed to register database tracing", zap.Error(err))
			}
		}

		// Database metrics (query durations, pool stats)
		dbMetrics, err := telemetry.NewDBMetrics(meter, telemetry.DefaultDBMetricsConfig(), log)
		if err != nil {
			log.Warn("Failed to initialize database metrics", zap.Error(err))
		} else {
			if sqlDB, err := db.DB.DB(); err == nil {
				dbMetrics.SetSQLDB(sqlDB)
			}
			if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
				log.Warn("Failed to register database metrics plugin", zap.Error(err))
			}
			dbMetrics.StartPoolStatsCollection(context.Background())
			defer dbMetrics.Stop()
		}

		// Business metrics (transfers, assignments, debts, low stock)
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:             meter,
			Logger:            log,
			InventoryProvider: telemetry.NewGormInventoryMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute)
			defer businessMetrics.Stop()
		}

		log.Info("Telemetry initialized",
			zap.String("endpoint", cfg.Telemetry.CollectorEndpoint),
			zap.Float64("sampling_ratio", cfg.Telemetry.SamplingRatio),
		)
	}

	// Initialize repositories
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	assetRepo := persistence.NewGormAssetRepository(db.DB)
	movementLogRepo := persistence.NewGormMovementLogRepository(db.DB)
	transferOrderRepo := persistence.NewGormTransferOrderRepository(db.DB)
	assignmentRepo := persistence.NewGormServiceAssignmentRepository(db.DB)
	approvalRepo := persistence.NewGormMaintenanceApprovalRepository(db.DB)
	inventoryItemRepo := persistence.NewGormInventoryItemRepository(db.DB)
	stockMovementRepo := persistence.NewGormStockMovementRepository(db.DB)
	debtRepo := persistence.NewGormBranchDebtRepository(db.DB)

	// Transaction scopes bind multi-aggregate operations to a single
	// database transaction
	transferTx := persistence.NewGormTransferTransactionScope(db.DB)
	maintenanceTx := persistence.NewGormMaintenanceTransactionScope(db.DB)
	inventoryTx := persistence.NewGormInventoryTransactionScope(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Branch notifier. Notifications are best-effort and delivered
	// in-process; failures never affect the originating operation.
	notifier := notification.NewLoggingNotifier(log)

	// Scope resolution with Redis-backed caching (in-memory fallback)
	scopeCacheFactory := cache.NewScopeCacheFactory(cfg.Redis, cache.WithLogger(log))
	scopeCache, err := scopeCacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create scope cache", zap.Error(err))
	}
	scopeResolver := cache.NewCachingScopeResolver(
		apporg.NewHierarchyScopeResolver(branchRepo),
		scopeCache,
		cache.WithResolverLogger(log),
	)

	// Initialize application services
	branchService := apporg.NewBranchService(branchRepo)
	branchService.SetLogger(log)
	branchService.SetScopeInvalidator(scopeResolver)

	assetService := appasset.NewAssetService(assetRepo, movementLogRepo)
	assetService.SetEventPublisher(eventBus)
	assetService.SetLogger(log)

	transferService := apptransfer.NewTransferOrderService(transferTx, transferOrderRepo, assetRepo, branchRepo)
	transferService.SetEventPublisher(eventBus)
	transferService.SetNotifier(notifier)
	transferService.SetLogger(log)

	workflowService := appmaintenance.NewWorkflowService(maintenanceTx, assetRepo, assignmentRepo, branchRepo)
	workflowService.SetEventPublisher(eventBus)
	workflowService.SetLogger(log)

	approvalService := appmaintenance.NewApprovalService(maintenanceTx, assignmentRepo, approvalRepo)
	approvalService.SetEventPublisher(eventBus)
	approvalService.SetNotifier(notifier)
	approvalService.SetLogger(log)

	inventoryService := appinventory.NewInventoryService(inventoryTx, inventoryItemRepo, stockMovementRepo)
	inventoryService.SetEventPublisher(eventBus)
	inventoryService.SetLogger(log)

	debtService := appfinance.NewDebtService(debtRepo)
	debtService.SetEventPublisher(eventBus)
	debtService.SetLogger(log)

	if businessMetrics != nil {
		assetService.SetBusinessMetrics(businessMetrics)
		transferService.SetBusinessMetrics(businessMetrics)
		workflowService.SetBusinessMetrics(businessMetrics)
		approvalService.SetBusinessMetrics(businessMetrics)
		inventoryService.SetBusinessMetrics(businessMetrics)
		debtService.SetBusinessMetrics(businessMetrics)
	}

	// Register event handlers for cross-context integration
	lowStockHandler := appinventory.NewLowStockHandler(log).WithNotifier(notifier)
	eventBus.Subscribe(lowStockHandler)
	log.Info("Event handlers registered",
		zap.Strings("low_stock_events", lowStockHandler.EventTypes()),
	)

	// JWT authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Tracing/Metrics - Observability (if enabled)
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.SpanErrorMarker())
		engine.Use(middleware.TracingAttributeInjector())
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Initialize HTTP handlers
	systemHandler := handler.NewSystemHandler(db)
	handlers := router.Handlers{
		System:      systemHandler,
		Branch:      handler.NewBranchHandler(branchService),
		Asset:       handler.NewAssetHandler(assetService),
		Transfer:    handler.NewTransferOrderHandler(transferService),
		Maintenance: handler.NewMaintenanceHandler(workflowService, approvalService),
		Inventory:   handler.NewInventoryHandler(inventoryService),
		Debt:        handler.NewDebtHandler(debtService),
	}

	// Liveness and readiness probes outside API versioning and auth
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// All /api/v1 routes require a valid token and a resolved branch scope
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			Logger:     log,
		}),
		middleware.ScopeMiddleware(scopeResolver, log),
	)
	if cfg.Telemetry.Enabled {
		// Re-enrich spans once JWT claims are on the context.
		r.Use(middleware.TracingAttributeInjector())
	}
	for _, registrar := range router.BuildRoutes(handlers) {
		r.Register(registrar)
	}
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
