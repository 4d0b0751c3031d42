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

	"github.com/xeerfiles/filetools/internal/api"
	"github.com/xeerfiles/filetools/internal/config"
	"github.com/xeerfiles/filetools/internal/logger"
	"github.com/xeerfiles/filetools/internal/repository"
	"github.com/xeerfiles/filetools/internal/service"
	"github.com/xeerfiles/filetools/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger from environment
	logger.SetDefaultLogger(logger.NewFromEnv(logger.LoadFromEnv()))
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	jobRepo := repository.NewJobRepository(db)

	// Initialize object storage (supports memory, MinIO, R2, S3)
	objectStorage, err := storage.NewStorage(&storage.Config{
		Backend:   cfg.Storage.Backend,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Region:    cfg.Storage.Region,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}

	// Ensure both buckets exist
	ctx := context.Background()
	for _, bucket := range []string{cfg.Storage.UploadsBucket, cfg.Storage.ResultsBucket} {
		if err := objectStorage.EnsureBucket(ctx, bucket); err != nil {
			logger.Fatal("Failed to ensure bucket %s: %v", bucket, err)
		}
	}

	// Initialize job service
	jobService := service.NewJobService(service.JobServiceConfig{
		Repo:          jobRepo,
		Store:         objectStorage,
		UploadsBucket: cfg.Storage.UploadsBucket,
		ResultsBucket: cfg.Storage.ResultsBucket,
		SignedURLTTL:  cfg.Jobs.SignedURLTTL,
	})

	// Setup router
	router := api.SetupRouter(jobService, jobRepo, objectStorage, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting API server: port=%d, mode=%s", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
