// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/purchase"
	"kardex/internal/domain/reports"
	"kardex/internal/infrastructure/http/v1/handlers"
	"kardex/internal/infrastructure/http/v1/middleware"
	"kardex/internal/infrastructure/storage/postgres"
	"kardex/pkg/logger"
)

// RouterConfig holds the wired services the API exposes.
type RouterConfig struct {
	Pool *postgres.Pool

	Logger *logger.Logger

	PurchaseService *purchase.Service
	ReportService   *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Actor())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	baseHandler := handlers.NewBaseHandler()
	{
		purchaseHandler := handlers.NewPurchaseHandler(baseHandler, cfg.PurchaseService)
		purchaseHandler.RegisterRoutes(api.Group("/purchases"))

		costHistoryHandler := handlers.NewCostHistoryHandler(baseHandler, cfg.PurchaseService)
		costHistoryHandler.RegisterRoutes(api.Group("/cost-history"))

		valuationHandler := handlers.NewValuationHandler(baseHandler, cfg.ReportService)
		valuationHandler.RegisterRoutes(api.Group("/reports"))
	}

	return router
}
