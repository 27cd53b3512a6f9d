package router

import (
	"time"

	"assettrack/internal/config"
	"assettrack/internal/handler"
	"assettrack/internal/lock"
	"assettrack/internal/middleware"
	"assettrack/internal/model"
	"assettrack/internal/repository"
	"assettrack/internal/service"
	"assettrack/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// New wires repositories, services and handlers into the HTTP engine.
func New(cfg *config.Config, db *gorm.DB, locks lock.Locker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Repositories
	accessoryRepo := repository.NewAccessoryRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	lockTimeout := time.Duration(cfg.LockTimeoutMillis) * time.Millisecond
	ledgerSvc := service.NewLedgerService(accessoryRepo, activityRepo, locks, dispatcher, lockTimeout)
	actions := service.NewActionOrchestrator(ledgerSvc)
	accessorySvc := service.NewAccessoryService(accessoryRepo, dispatcher, cfg.BarcodePrefix)
	exportSvc := service.NewExportService(accessoryRepo, cfg.BarcodePrefix)
	activitySvc := service.NewActivityService(activityRepo)
	authSvc := service.NewAuthService(userRepo, cfg)

	// Handlers
	healthHandler := handler.NewHealthHandler()
	accessoryHandler := handler.NewAccessoryHandler(accessorySvc)
	ledgerHandler := handler.NewLedgerHandler(actions, ledgerSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(authSvc)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowedOrigin),
		middleware.ErrorHandler(),
	)

	r.GET("/health", healthHandler.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(300, time.Minute))

	auth := api.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(20, time.Minute), authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))

	writer := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	accessories := protected.Group("/accessories")
	{
		accessories.GET("", accessoryHandler.List)
		accessories.GET("/export", exportHandler.Export)
		accessories.GET("/barcode/:barcode", accessoryHandler.GetByBarcode)
		accessories.GET("/:id", accessoryHandler.Get)
		accessories.GET("/:id/audit", accessoryHandler.GetAudit)
		accessories.GET("/:id/audit/pdf", accessoryHandler.AuditPDF)

		accessories.POST("", writer, accessoryHandler.Create)
		accessories.POST("/import", writer, exportHandler.Import)
		accessories.PUT("/:id", writer, accessoryHandler.Update)

		accessories.POST("/:id/actions", writer, ledgerHandler.Action)
		accessories.POST("/:id/return", writer, ledgerHandler.Return)
		accessories.POST("/:id/issue", writer, ledgerHandler.Issue)
		accessories.DELETE("/:id", writer, ledgerHandler.Delete)
	}

	protected.GET("/activity", activityHandler.List)

	admin := protected.Group("/users")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("", userHandler.Create)
		admin.GET("", userHandler.List)
		admin.PUT("/:id", userHandler.Update)
		admin.DELETE("/:id", userHandler.Deactivate)
		admin.POST("/:id/reactivate", userHandler.Reactivate)
	}

	return r
}
