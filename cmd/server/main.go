package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/billing/backend/internal/application/billing"
	catalogapp "github.com/billing/backend/internal/application/catalog"
	identityapp "github.com/billing/backend/internal/application/identity"
	partnerapp "github.com/billing/backend/internal/application/partner"
	reportapp "github.com/billing/backend/internal/application/report"
	taxapp "github.com/billing/backend/internal/application/tax"
	"github.com/billing/backend/internal/infrastructure/auth"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/internal/interfaces/http/handler"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/billing/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
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

	log.Info("Starting billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	registrationRepo := persistence.NewGormRegistrationRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	serviceTypeRepo := persistence.NewGormServiceTypeRepository(db.DB)
	gstSettingsRepo := persistence.NewGormGSTSettingsRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(tenantRepo, userRepo, registrationRepo, jwtService, log)
	customerService := partnerapp.NewCustomerService(customerRepo, invoiceRepo, receiptRepo, creditNoteRepo)
	serviceTypeService := catalogapp.NewServiceTypeService(serviceTypeRepo)
	gstSettingsService := taxapp.NewGSTSettingsService(gstSettingsRepo)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, receiptRepo, creditNoteRepo, customerRepo)
	receiptService := billingapp.NewReceiptService(receiptRepo, customerRepo)
	creditNoteService := billingapp.NewCreditNoteService(creditNoteRepo, invoiceRepo, customerRepo)
	dashboardService := reportapp.NewDashboardService(dashboardRepo)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	customerHandler := handler.NewCustomerHandler(customerService)
	serviceTypeHandler := handler.NewServiceTypeHandler(serviceTypeService)
	gstSettingsHandler := handler.NewGSTSettingsHandler(gstSettingsService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	receiptHandler := handler.NewReceiptHandler(receiptService)
	creditNoteHandler := handler.NewCreditNoteHandler(creditNoteService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

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

	engine.Use(middleware.WithLogger(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfigFromHTTP(cfg.HTTP)))

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.RegisterPublic(router.RegistrarFunc(authHandler.RegisterPublicRoutes))
	r.Register(
		authHandler,
		customerHandler,
		serviceTypeHandler,
		gstSettingsHandler,
		invoiceHandler,
		receiptHandler,
		creditNoteHandler,
		dashboardHandler,
	)
	r.Setup(middleware.JWTAuthMiddleware(jwtService, log))

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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

// healthHandler reports liveness along with database connectivity
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
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
