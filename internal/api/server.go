package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ecomai/internal/api/handlers"
	"ecomai/internal/api/middleware"
	"ecomai/internal/config"
	"ecomai/internal/database"
	"ecomai/internal/logger"
	"ecomai/internal/queue"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, producer *queue.Producer) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	optimizeHandler := handlers.NewOptimizeHandler(db.DB, logger, producer, cfg.BatchSize)
	productHandler := handlers.NewProductHandler(db.DB, logger)
	historyHandler := handlers.NewHistoryHandler(db.DB, logger)
	storeHandler := handlers.NewStoreHandler(db.DB, logger, producer)

	// Routes
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		// Bulk edits
		optimize := v1.Group("/optimize")
		{
			optimize.POST("/batch", optimizeHandler.Batch)
		}

		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/export", productHandler.ExportCSV)
			products.GET("/:id", productHandler.Get)
			products.POST("/import", productHandler.Import)
			products.POST("/import/csv", productHandler.ImportCSV)
		}

		// History
		history := v1.Group("/history")
		{
			history.GET("", historyHandler.List)
			history.GET("/:id", historyHandler.Get)
		}

		// Stores
		stores := v1.Group("/stores")
		{
			stores.GET("", storeHandler.List)
			stores.POST("", storeHandler.Create)
			stores.POST("/:id/sync-orders", storeHandler.SyncOrders)
			stores.POST("/:id/adspend", storeHandler.UpsertAdSpend)
			stores.POST("/:id/rank-risers", storeHandler.RankRisers)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}
