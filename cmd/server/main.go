package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/api"
	"github.com/denkido/catalogimport/internal/catalog"
	"github.com/denkido/catalogimport/internal/config"
	"github.com/denkido/catalogimport/internal/repository"
	"github.com/denkido/catalogimport/internal/repository/postgres"
	"github.com/denkido/catalogimport/internal/service"
	"github.com/denkido/catalogimport/internal/shopify"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load the local tables
	gids, err := catalog.LoadGIDTables(filepath.Join(cfg.Import.DataDir, "gids"), logger)
	if err != nil {
		logger.Fatal("Failed to load gid tables", zap.Error(err))
	}
	cat, err := catalog.LoadCatalogCached(filepath.Join(cfg.Import.DataDir, "catalog"), cfg.Import.CacheDir, logger)
	if err != nil {
		logger.Fatal("Failed to load product catalog", zap.Error(err))
	}

	// Journal is optional; without it runs are not persisted
	repos := repository.NewNoopRepositories()
	if cfg.Journal.Enabled {
		db, err := postgres.NewConnection(cfg.Journal)
		if err != nil {
			logger.Fatal("Failed to connect to journal database", zap.Error(err))
		}
		defer db.Close()

		if err := postgres.RunMigrations(cfg.Journal, "migrations"); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		repos = postgres.NewRepositories(db, logger)
		logger.Info("import journal enabled")
	}

	// Wire the import pipeline
	client := shopify.NewClient(cfg.Shopify, logger)
	builder := service.NewPayloadBuilder(gids, cfg.Import.MetafieldNamespace, logger)
	importer := service.NewImportService(cat, builder, client, repos, cfg.Import, logger)

	router := api.NewRouter(cfg, cat, gids, importer, repos, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// Batch imports run synchronously inside the request
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
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
