package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gridsight/gridsight/internal/api/handler"
	"github.com/gridsight/gridsight/internal/api/middleware"
	"github.com/gridsight/gridsight/internal/config"
	"github.com/gridsight/gridsight/internal/logger"
	"github.com/gridsight/gridsight/internal/service"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	importService *service.ImportService,
	db *gorm.DB,
	log *logger.Logger,
	serverCfg config.ServerConfig,
) *gin.Engine {
	// Set Gin mode
	switch serverCfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(serverCfg.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler(db)
	importHandler := handler.NewImportHandler(importService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Imports
		v1.POST("/imports", importHandler.CreateImport)
		v1.GET("/imports", importHandler.ListImports)
		v1.GET("/imports/:id", importHandler.GetImport)
		v1.POST("/imports/:id/cancel", importHandler.CancelImport)
	}

	return r
}
