package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridsight/gridsight/internal/api"
	"github.com/gridsight/gridsight/internal/config"
	"github.com/gridsight/gridsight/internal/logger"
	"github.com/gridsight/gridsight/internal/notify"
	"github.com/gridsight/gridsight/internal/repository"
	"github.com/gridsight/gridsight/internal/service"
	"github.com/gridsight/gridsight/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "gridsight-api",
	})
	logger.SetDefaultLogger(appLogger)

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize dump storage (local filesystem or S3-compatible)
	dumpStorage, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize dump storage")
	}

	notifier := notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.WebhookTimeout, appLogger)

	importService := service.NewImportService(
		db,
		repository.NewJobRepository(db),
		dumpStorage,
		notifier,
		appLogger,
		service.ImportConfig{
			ProgressEvery:       cfg.Import.ProgressEvery,
			MaxDumpSizeMB:       cfg.Import.MaxDumpSizeMB,
			DefaultOrgCode:      cfg.Import.DefaultOrgCode,
			DefaultOrgName:      cfg.Import.DefaultOrgName,
			PlaceholderPassword: cfg.Import.PlaceholderPassword,
		},
	)

	// Setup router
	router := api.SetupRouter(importService, db, appLogger, cfg.Server)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
