package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dashboardapp "github.com/gridbase/backend/internal/application/dashboard"
	invoicingapp "github.com/gridbase/backend/internal/application/invoicing"
	schemaapp "github.com/gridbase/backend/internal/application/schema"
	tenantapp "github.com/gridbase/backend/internal/application/tenant"
	"github.com/gridbase/backend/internal/infrastructure/auth"
	"github.com/gridbase/backend/internal/infrastructure/cache"
	"github.com/gridbase/backend/internal/infrastructure/config"
	"github.com/gridbase/backend/internal/infrastructure/einvoice"
	"github.com/gridbase/backend/internal/infrastructure/logger"
	"github.com/gridbase/backend/internal/infrastructure/persistence"
	"github.com/gridbase/backend/internal/infrastructure/printing"
	"github.com/gridbase/backend/internal/infrastructure/storage"
	"github.com/gridbase/backend/internal/infrastructure/telemetry"
	"github.com/gridbase/backend/internal/interfaces/http/handler"
	"github.com/gridbase/backend/internal/interfaces/http/middleware"
	"github.com/gridbase/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			GridBase Backend API
//	@version		1.0
//	@description	Multi-tenant no-code database backend with invoicing - tenants define databases, tables and columns at runtime and store rows as cell maps

//	@contact.name	API Support
//	@contact.url	https://github.com/gridbase/backend
//	@contact.email	support@gridbase.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

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

	log.Info("Starting GridBase Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Telemetry providers (tracing, metrics, continuous profiling)
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logs provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logsProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logs provider", zap.Error(err))
		}
	}()
	if logsProvider.IsEnabled() {
		// Rebind the logger so records also flow to the OTLP collector.
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: logsProvider,
			Level:          telemetry.ParseLogLevel(cfg.Log.Level),
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore,
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		)
		log.Info("OTLP log export enabled")
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Telemetry.ProfilingEnabled,
		ServerAddress:       cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName:     cfg.Telemetry.ServiceName,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if tracerProvider.IsEnabled() && profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Database query tracing via otelgorm
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Query and connection pool metrics share the OTLP meter provider
	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	} else if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}

	// Initialize repositories
	databaseRepo := persistence.NewGormDatabaseRepository(db.DB)
	tableRepo := persistence.NewGormTableRepository(db.DB)
	rowRepo := persistence.NewGormRowRepository(db.DB)
	sequenceRepo := persistence.NewGormSequenceRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	submissionRepo := persistence.NewGormSubmissionRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)
	invoiceScope := persistence.NewGormInvoiceTransactionScope(db.DB)

	// Table metadata cache shared by schema and row services
	tableCache := cache.NewTableCache(
		cache.WithTableCacheTTL(cfg.Cache.MetadataTTL),
		cache.WithTableCacheLogger(log),
	)

	// Idempotency store: Redis when configured, in-memory otherwise
	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Object storage for tenant logos; settings service reports
	// STORAGE_DISABLED when storage is nil
	var objectStorage tenantapp.ObjectStorageService
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage enabled",
			zap.String("endpoint", cfg.Storage.Endpoint),
			zap.String("bucket", cfg.Storage.Bucket),
		)
	}

	// ANAF e-Factura client
	var einvoiceClient invoicingapp.EInvoiceClient
	if cfg.EInvoice.Enabled {
		anafConfig := einvoice.NewANAFConfig()
		if cfg.EInvoice.Environment == "test" {
			anafConfig = einvoice.NewSandboxANAFConfig()
		}
		if cfg.EInvoice.BaseURL != "" {
			anafConfig.APIBaseURL = cfg.EInvoice.BaseURL
		}
		if cfg.EInvoice.Timeout > 0 {
			anafConfig.TimeoutSeconds = int(cfg.EInvoice.Timeout / time.Second)
		}
		anafClient, err := einvoice.NewANAFClient(anafConfig)
		if err != nil {
			log.Fatal("Failed to initialize e-invoice client", zap.Error(err))
		}
		einvoiceClient = anafClient
		log.Info("E-invoicing enabled",
			zap.String("environment", cfg.EInvoice.Environment),
			zap.String("api_url", anafConfig.APIBaseURL),
		)
	}

	// PDF renderer backed by headless Chrome; PDF service reports
	// PDF_DISABLED when the renderer is nil
	var invoiceRenderer invoicingapp.InvoiceRenderer
	if cfg.PDF.Enabled {
		chromeRenderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.PDF.RenderTimeout,
			ExecPath:       cfg.PDF.ChromePath,
			NoSandbox:      true,
			MarginMM:       cfg.PDF.MarginMM,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer func() {
			if err := chromeRenderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		invoiceRenderer = printing.NewInvoicePDFRenderer(chromeRenderer, "ro")
		log.Info("PDF rendering enabled", zap.Duration("timeout", cfg.PDF.RenderTimeout))
	}

	// Initialize application services
	databaseService := schemaapp.NewDatabaseService(databaseRepo, tableRepo)
	tableService := schemaapp.NewTableService(databaseRepo, tableRepo, rowRepo, tableCache)
	rowService := schemaapp.NewRowService(tableRepo, rowRepo, tableCache)
	creationService := invoicingapp.NewCreationService(settingsRepo, databaseRepo, tableRepo, rowRepo, invoiceScope, idempotencyStore, log)
	queryService := invoicingapp.NewQueryService(settingsRepo, tableRepo, rowRepo, sequenceRepo, log)
	pdfService := invoicingapp.NewPDFService(queryService, settingsRepo, invoiceRenderer)
	einvoiceService := invoicingapp.NewEInvoiceService(settingsRepo, submissionRepo, queryService, einvoiceClient, log)
	settingsService := tenantapp.NewSettingsService(settingsRepo, objectStorage)
	dashboardService := dashboardapp.NewDashboardService(dashboardRepo, databaseRepo, tableRepo)

	// JWT service for authentication middleware
	jwtService := auth.NewJWTService(cfg.JWT)

	// Business metrics: invoice counters fed by the services, plus
	// per-tenant schema size gauges collected periodically
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:          meterProvider.Meter("gridbase.business"),
			Logger:         log,
			SchemaProvider: telemetry.NewGormSchemaMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			creationService.SetBusinessMetrics(businessMetrics)
			pdfService.SetBusinessMetrics(businessMetrics)
			einvoiceService.SetBusinessMetrics(businessMetrics)
			businessMetrics.StartPeriodicCollection(ctx, telemetry.NewGormTenantProvider(db.DB), 0)
		}
	}

	// Initialize HTTP handlers
	databaseHandler := handler.NewDatabaseHandler(databaseService)
	tableHandler := handler.NewTableHandler(tableService)
	rowHandler := handler.NewRowHandler(rowService)
	invoiceHandler := handler.NewInvoiceHandler(creationService, queryService, pdfService, einvoiceService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	settingsHandler := handler.NewSettingsHandler(settingsService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
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
	// 4. Tracing/Metrics/Profiling - Telemetry instrumentation
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// JWT authentication middleware shared by API routes and the
	// protected Swagger endpoint
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// Swagger documentation endpoint. The OpenAPI JSON is generated by
	// `swag init` at build time; access is gated per config.
	swaggerProtection := middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     cfg.Swagger.Enabled,
		RequireAuth: cfg.Swagger.RequireAuth,
		AllowedIPs:  cfg.Swagger.AllowedIPs,
	}, jwtMiddleware)
	engine.GET("/swagger/*any", swaggerProtection, ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	r.Use(jwtMiddleware)

	// Register domain route groups

	// Schema domain (databases, tables, columns, rows)
	schemaRoutes := router.NewDomainGroup("schema", "/databases")
	schemaRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "schema service ready"})
	})
	// Database routes
	schemaRoutes.POST("", databaseHandler.Create)
	schemaRoutes.GET("", databaseHandler.List)
	schemaRoutes.GET("/:database_id", databaseHandler.GetByID)
	schemaRoutes.DELETE("/:database_id", databaseHandler.Delete)
	// Table routes
	schemaRoutes.POST("/:database_id/tables", tableHandler.Create)
	schemaRoutes.GET("/:database_id/tables", tableHandler.List)
	schemaRoutes.GET("/:database_id/tables/by-name/:name", tableHandler.GetByName)
	schemaRoutes.GET("/:database_id/tables/:table_id", tableHandler.GetByID)
	schemaRoutes.DELETE("/:database_id/tables/:table_id", tableHandler.Delete)
	// Column routes
	schemaRoutes.POST("/:database_id/tables/:table_id/columns", tableHandler.AddColumn)
	schemaRoutes.DELETE("/:database_id/tables/:table_id/columns/:column_id", tableHandler.DeleteColumn)
	// Row routes
	schemaRoutes.POST("/:database_id/tables/:table_id/rows", rowHandler.Create)
	schemaRoutes.GET("/:database_id/tables/:table_id/rows", rowHandler.List)
	schemaRoutes.GET("/:database_id/tables/:table_id/rows/count", tableHandler.RowCount)
	schemaRoutes.GET("/:database_id/tables/:table_id/rows/:row_id", rowHandler.GetByID)
	schemaRoutes.PUT("/:database_id/tables/:table_id/rows/:row_id", rowHandler.Update)
	schemaRoutes.DELETE("/:database_id/tables/:table_id/rows/:row_id", rowHandler.Delete)

	// Invoicing domain (gap-free numbered invoices scoped to a database)
	invoicingRoutes := router.NewDomainGroup("invoicing", "/databases")
	invoicingRoutes.POST("/:database_id/invoices", invoiceHandler.Create)
	invoicingRoutes.GET("/:database_id/invoices", invoiceHandler.List)
	invoicingRoutes.GET("/:database_id/invoices/stats", invoiceHandler.NumberingStats)
	invoicingRoutes.GET("/:database_id/invoices/:row_id", invoiceHandler.GetByID)
	invoicingRoutes.GET("/:database_id/invoices/:row_id/pdf", invoiceHandler.DownloadPDF)
	invoicingRoutes.POST("/:database_id/invoices/:row_id/einvoice", invoiceHandler.SubmitEInvoice)
	invoicingRoutes.GET("/:database_id/invoices/:row_id/einvoice", invoiceHandler.EInvoiceStatus)

	// Dashboard domain (widget boards over schema tables)
	dashboardRoutes := router.NewDomainGroup("dashboards", "/dashboards")
	dashboardRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "dashboard service ready"})
	})
	dashboardRoutes.POST("", dashboardHandler.Create)
	dashboardRoutes.GET("", dashboardHandler.List)
	dashboardRoutes.GET("/:dashboard_id", dashboardHandler.GetByID)
	dashboardRoutes.PUT("/:dashboard_id", dashboardHandler.Update)
	dashboardRoutes.DELETE("/:dashboard_id", dashboardHandler.Delete)
	dashboardRoutes.POST("/:dashboard_id/widgets", dashboardHandler.AddWidget)
	dashboardRoutes.PUT("/:dashboard_id/widgets/:widget_id", dashboardHandler.UpdateWidget)
	dashboardRoutes.DELETE("/:dashboard_id/widgets/:widget_id", dashboardHandler.DeleteWidget)

	// Tenant settings domain (company profile, invoicing defaults, logo)
	settingsRoutes := router.NewDomainGroup("settings", "/settings")
	settingsRoutes.GET("", settingsHandler.Get)
	settingsRoutes.PUT("", settingsHandler.Update)
	settingsRoutes.POST("/logo/upload-url", settingsHandler.GenerateLogoUploadURL)
	settingsRoutes.POST("/logo/confirm", settingsHandler.ConfirmLogoUpload)
	settingsRoutes.GET("/logo/download-url", settingsHandler.GenerateLogoDownloadURL)
	settingsRoutes.DELETE("/logo", settingsHandler.DeleteLogo)

	r.Register(schemaRoutes).
		Register(invoicingRoutes).
		Register(dashboardRoutes).
		Register(settingsRoutes)

	// Register system routes with swagger-documented handlers
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
