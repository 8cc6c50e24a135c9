package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/mtgssm/internal/api/handlers"
	"github.com/codyseavey/mtgssm/internal/config"
	"github.com/codyseavey/mtgssm/internal/metrics"
	"github.com/codyseavey/mtgssm/internal/services"
)

func SetupRouter(cfg *config.Config, index *services.CatalogIndex, matcher *services.LegacyMatcher, importService *services.ImportService, collectionService *services.CollectionService) (*gin.Engine, error) {
	router := gin.Default()
	router.Use(metricsMiddleware())

	// CORS configuration - allow origins from config
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = false // Explicitly set
	router.Use(cors.New(corsConfig))

	// Initialize handlers
	cardHandler, err := handlers.NewCardHandler(index, matcher, cfg.ResolveCacheSize)
	if err != nil {
		return nil, err
	}
	collectionHandler := handlers.NewCollectionHandler(index, importService, collectionService, cfg.ImportLenient)

	// API routes
	api := router.Group("/api")
	{
		// Card routes
		cards := api.Group("/cards")
		{
			cards.GET("/:id", cardHandler.GetCard)
			cards.POST("/resolve", cardHandler.ResolveCard)
		}

		// Collection routes
		collection := api.Group("/collection")
		{
			collection.GET("", collectionHandler.GetCollection)
			collection.GET("/stats", collectionHandler.GetStats)
			collection.POST("/import", collectionHandler.ImportCollection)
			collection.GET("/export", collectionHandler.ExportCollection)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "catalog_cards": index.Len()})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router, nil
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
