package api

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/api/handlers"
	"github.com/denkido/catalogimport/internal/api/middleware"
	"github.com/denkido/catalogimport/internal/catalog"
	"github.com/denkido/catalogimport/internal/config"
	"github.com/denkido/catalogimport/internal/repository"
	"github.com/denkido/catalogimport/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(
	cfg *config.Config,
	cat *catalog.Catalog,
	gids *catalog.GIDRepository,
	importer *service.ImportService,
	repos *repository.Repositories,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Operator form
	router.StaticFile("/", filepath.Join(cfg.Import.WebDir, "index.html"))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Operator routes (require the operator key)
		operatorRoutes := v1.Group("")
		operatorRoutes.Use(middleware.OperatorAuthMiddleware(cfg.API.OperatorKeyHash, logger))
		{
			operatorRoutes.GET("/catalog/brands", handlers.HandleListBrands(cat))
			operatorRoutes.GET("/catalog/models", handlers.HandleSearchModels(cat, logger))
			operatorRoutes.GET("/catalog/models/:brand/:model", handlers.HandleGetModel(cat, logger))
			operatorRoutes.GET("/catalog/gids", handlers.HandleListGIDs(gids, logger))
			operatorRoutes.POST("/preview", handlers.HandlePreview(importer, logger))
			operatorRoutes.POST("/imports", handlers.HandleSubmitImport(importer, logger))
			operatorRoutes.GET("/imports", handlers.HandleListImports(repos, cfg.Journal.Enabled, logger))
			operatorRoutes.GET("/imports/:id", handlers.HandleGetImport(repos, cfg.Journal.Enabled, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
