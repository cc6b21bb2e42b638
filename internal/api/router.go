package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/api/handlers"
	"github.com/jafarshop/gradeoverlay/internal/api/middleware"
	"github.com/jafarshop/gradeoverlay/internal/config"
	"github.com/jafarshop/gradeoverlay/internal/repository"
	"github.com/jafarshop/gradeoverlay/internal/service"
)

// Services bundles what the routes call into. Cache may be nil.
type Services struct {
	Query    handlers.GradeQuerier
	Batches  service.BatchRunner
	Driver   handlers.SyncRunner
	Mappings handlers.MappingEditor
	Catalog  handlers.CatalogBrowser
	Cache    repository.ResponseCache
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svcs *Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": "ok"})
	})

	// Storefront requests arrive through the shop's app proxy
	proxy := router.Group("/proxy")
	proxy.Use(middleware.AppProxyAuth(cfg.AppProxySecret, logger))
	{
		proxy.GET("/grades", handlers.HandleGradeQuery(svcs.Query, svcs.Cache, logger))
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth(cfg.AdminAPIKeyHash, logger))
	{
		admin.POST("/sync/batch", handlers.HandleSyncBatch(svcs.Batches, cfg.Sync.BatchLimit, logger))
		admin.POST("/sync/run", handlers.HandleSyncRun(svcs.Driver, logger))
		admin.GET("/sync/checkpoint", handlers.HandleSyncCheckpoint(svcs.Driver, logger))
		admin.DELETE("/sync/checkpoint", handlers.HandleSyncReset(svcs.Driver, logger))

		admin.POST("/mappings/save", handlers.HandleSaveMapping(svcs.Mappings, logger))
		admin.POST("/mappings/delete", handlers.HandleDeleteMapping(svcs.Mappings, logger))
		admin.GET("/mappings/:productId", handlers.HandleListMappings(svcs.Mappings, logger))

		admin.GET("/catalog/collections", handlers.HandleListCollections(svcs.Catalog, logger))
		admin.GET("/catalog/products", handlers.HandleListProducts(svcs.Catalog, logger))
	}

	return router
}

// customRecovery logs panics and answers with the usual error envelope
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "internal server error",
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
