package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/api"
	"github.com/jafarshop/gradeoverlay/internal/config"
	"github.com/jafarshop/gradeoverlay/internal/repository/postgres"
	"github.com/jafarshop/gradeoverlay/internal/repository/redisstore"
	"github.com/jafarshop/gradeoverlay/internal/service"
	"github.com/jafarshop/gradeoverlay/internal/shopify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting grade overlay server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)
	if cfg.AppProxySecret == "" {
		logger.Warn("SHOPIFY_APP_PROXY_SECRET is empty; storefront queries will be rejected")
	}
	if cfg.AdminAPIKeyHash == "" {
		logger.Warn("ADMIN_API_KEY_HASH is empty; admin routes will be rejected")
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, cfg.Database, logger)

	if cfg.Redis.URL != "" {
		client, err := redisstore.Attach(context.Background(), repos, cfg.Redis.URL, cfg.Query.CacheTTL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
	} else {
		logger.Info("REDIS_URL not set; sync checkpoints kept in memory and responses not cached")
	}

	catalog := shopify.NewCatalog(shopify.NewClient(cfg.Shopify, logger), cfg.Shopify, logger)
	syncService := service.NewSyncService(repos.Source, repos.Mapping, catalog, logger)

	svcs := &api.Services{
		Query:    service.NewQueryService(repos.Mapping, catalog, logger),
		Batches:  syncService,
		Driver:   service.NewSyncDriver(syncService, repos.Checkpoints, cfg.Sync.BatchLimit, logger),
		Mappings: service.NewMappingService(repos.Mapping, logger),
		Catalog:  catalog,
		Cache:    repos.Cache,
	}

	router := api.NewRouter(cfg, svcs, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // /admin/sync/run walks the whole source table
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
