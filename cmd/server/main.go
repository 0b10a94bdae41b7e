package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/schoolpay/backend/internal/application/billing"
	"github.com/schoolpay/backend/internal/infrastructure/auth"
	"github.com/schoolpay/backend/internal/infrastructure/cache"
	"github.com/schoolpay/backend/internal/infrastructure/config"
	"github.com/schoolpay/backend/internal/infrastructure/event"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
	"github.com/schoolpay/backend/internal/infrastructure/persistence"
	"github.com/schoolpay/backend/internal/interfaces/http/handler"
	"github.com/schoolpay/backend/internal/interfaces/http/middleware"
	"github.com/schoolpay/backend/internal/interfaces/http/router"
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

	log.Info("Starting SchoolPay Backend",
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

	// Initialize repositories
	feeHeadRepo := persistence.NewGormFeeHeadRepository(db.DB)
	feeStructureRepo := persistence.NewGormFeeStructureRepository(db.DB)
	discountGroupRepo := persistence.NewGormDiscountGroupRepository(db.DB)
	studentDiscountRepo := persistence.NewGormStudentDiscountRepository(db.DB)
	balancePresetRepo := persistence.NewGormBalancePresetRepository(db.DB)
	invoiceRepo := persistence.NewGormStudentInvoiceRepository(db.DB)
	feeReportRepo := persistence.NewGormFeeReportRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	classRepo := persistence.NewGormClassRepository(db.DB)
	examCleaner := persistence.NewGormExamHistoryCleaner(db.DB)

	// Stats cache: Redis when reachable, in-memory otherwise
	cacheFactory := cache.NewStatsCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	statsCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create stats cache", zap.Error(err))
	}

	// Event bus wires invoice and payment events to cache invalidation
	eventBus := event.NewInMemoryEventBus(log)
	statsInvalidation := event.NewStatsInvalidationHandler(statsCache, log)
	eventBus.Subscribe(statsInvalidation)
	log.Info("Event handlers registered",
		zap.Strings("stats_invalidation_events", statsInvalidation.EventTypes()),
	)

	// Initialize application services
	feeCatalogService := billingapp.NewFeeCatalogService(feeHeadRepo, feeStructureRepo)
	discountService := billingapp.NewDiscountService(discountGroupRepo, studentDiscountRepo)
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo, feeStructureRepo, feeHeadRepo, studentDiscountRepo, studentRepo, classRepo,
		billingapp.WithEventPublisher(eventBus),
		billingapp.WithExamHistoryCleaner(examCleaner),
	)
	paymentService := billingapp.NewPaymentService(invoiceRepo, feeStructureRepo,
		billingapp.WithPaymentEventPublisher(eventBus),
	)
	presetService := billingapp.NewPresetService(balancePresetRepo)
	reportService := billingapp.NewReportService(feeReportRepo, invoiceRepo, studentRepo, classRepo,
		billingapp.WithStatsCache(statsCache),
		billingapp.WithStatsTTL(cfg.Cache.StatsTTL),
	)

	// JWT service and token blacklist
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist := auth.NewInMemoryTokenBlacklist()

	// Initialize HTTP handlers
	feeCatalogHandler := handler.NewFeeCatalogHandler(feeCatalogService)
	discountHandler := handler.NewDiscountHandler(discountService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, paymentService)
	presetHandler := handler.NewPresetHandler(presetService)
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler()

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
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
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
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Token validation on API routes. Production requires a valid
	// bearer token; other environments validate one when present so
	// the X-School-ID header fallback still works for development.
	if cfg.App.Env == "production" {
		jwtConfig := middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: tokenBlacklist,
			SkipPaths: []string{
				"/api/v1/ping",
				"/api/v1/system/ping",
				"/api/v1/system/info",
			},
			Logger: log,
		}
		r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	} else {
		r.Use(middleware.OptionalJWTAuthMiddleware(jwtService))
	}

	// School scoping: JWT claim first, X-School-ID header fallback
	schoolConfig := middleware.DefaultSchoolConfig()
	schoolConfig.Required = cfg.App.Env == "production"
	schoolConfig.Logger = log
	r.Use(middleware.SchoolMiddlewareWithConfig(schoolConfig))

	// Billing domain (fee catalog, discounts, invoices, payments, reports)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "billing service ready"})
	})

	// Fee head routes
	billingRoutes.POST("/fee-heads", feeCatalogHandler.CreateFeeHead)
	billingRoutes.GET("/fee-heads", feeCatalogHandler.ListFeeHeads)
	billingRoutes.DELETE("/fee-heads/:id", feeCatalogHandler.DeleteFeeHead)

	// Fee structure routes
	billingRoutes.POST("/fee-structures", feeCatalogHandler.UpsertFeeStructure)
	billingRoutes.GET("/fee-structures/:classId", feeCatalogHandler.GetFeeStructure)

	// Invoice routes
	billingRoutes.POST("/invoices/generate", invoiceHandler.Generate)
	billingRoutes.GET("/invoices/class/:classId", invoiceHandler.ListByClass)
	billingRoutes.GET("/invoices/:id", invoiceHandler.Get)
	billingRoutes.PUT("/invoices/:id/pay", invoiceHandler.Pay)

	// Discount group routes
	billingRoutes.POST("/discount-groups", discountHandler.CreateGroup)
	billingRoutes.GET("/discount-groups", discountHandler.ListGroups)
	billingRoutes.PUT("/discount-groups/:id", discountHandler.UpdateGroup)
	billingRoutes.DELETE("/discount-groups/:id", discountHandler.DeleteGroup)

	// Student discount routes
	billingRoutes.POST("/student-discounts", discountHandler.AssignDiscount)
	billingRoutes.GET("/student-discounts/student/:studentId", discountHandler.ListStudentDiscounts)
	billingRoutes.DELETE("/student-discounts/:id", discountHandler.RemoveDiscount)

	// Balance preset routes
	billingRoutes.POST("/presets", presetHandler.Create)
	billingRoutes.GET("/presets", presetHandler.List)
	billingRoutes.DELETE("/presets/:id", presetHandler.Delete)

	// Student lifecycle routes
	billingRoutes.PUT("/students/promote", invoiceHandler.Promote)
	billingRoutes.PUT("/students/:studentId/class", invoiceHandler.ChangeClass)

	// Report routes
	billingRoutes.GET("/reports/stats", reportHandler.GetFeeStats)
	billingRoutes.GET("/reports/history/:studentId", reportHandler.GetStudentFeeHistory)
	billingRoutes.GET("/reports/defaulters/:classId", reportHandler.GetDefaulters)
	billingRoutes.GET("/reports/search", reportHandler.SearchStudents)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(billingRoutes).Register(systemRoutes)

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
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
