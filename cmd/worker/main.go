package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fse-compliance/internal/config"
	"github.com/fse-compliance/internal/infrastructure/geocoder"
	"github.com/fse-compliance/internal/pkg/logger"
	"github.com/fse-compliance/internal/pkg/metrics"
	"github.com/fse-compliance/internal/repository/cache"
	"github.com/fse-compliance/internal/repository/postgres"
	redisRepo "github.com/fse-compliance/internal/repository/redis"
	"github.com/fse-compliance/internal/usecase"
	"github.com/fse-compliance/internal/worker"
	"github.com/fse-compliance/internal/worker/validation"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, zap.String("service", "fse-worker"))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting FSE Validation Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.String("region", cfg.Region.Province),
		zap.String("geocoder", cfg.Geocoder.Provider))

	m := metrics.New()

	// 3. Connect to PostgreSQL
	db, err := postgres.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis (кеш адресов и стримы на одном клиенте)
	redisClient, err := cache.NewRedis(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	supplyRepo := postgres.NewSupplyRowRepository(db)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	geocodeRepo := geocoder.New(cfg, cache.NewCacheRepository(redisClient), log, m)

	// 6. Initialize use cases
	runner := usecase.NewBatchRunner(
		cfg.Classifier.BatchSize,
		cfg.Classifier.BatchCooldown,
		usecase.ContextSleep,
		log,
	)
	classifier := usecase.NewGeofenceClassifier(
		geocodeRepo,
		cfg.Region.ToDomain(),
		runner,
		cfg.Classifier.LookupTimeout,
		log,
		m,
	)
	validationUC := usecase.NewValidationUseCase(classifier, supplyRepo, log, m)
	reportUC := usecase.NewReportValidationUseCase(validationUC, usecase.NewRunTracker(), log)

	// 7. Initialize workers
	validationWorker := validation.NewValidationWorker(
		streamRepo,
		reportUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(cfg.Worker.ShutdownTimeout, log)
	workerManager.Register(validationWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("Received shutdown signal")
	case err := <-workerManager.Failed():
		log.Error("Worker stopped unexpectedly, shutting down", zap.Error(err))
	}

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
