package main

// @title FSE Compliance API
// @version 1.0.0
// @description Проверка оборудования FSE (fuel supply equipment) в отчётах о соответствии.
// @description
// @description Основные возможности:
// @description - Классификация площадок внутри/вне целевой провинции через обратное геокодирование
// @description - Запасная проверка по прямоугольнику региона при недоступности геокодера
// @description - Поиск пересечений периодов поставки одного оборудования
// @description - Асинхронные прогоны по отчётам с отбрасыванием устаревших результатов

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/fse-compliance/docs/swagger"
	"github.com/fse-compliance/internal/config"
	httpDelivery "github.com/fse-compliance/internal/delivery/http"
	"github.com/fse-compliance/internal/delivery/http/handler"
	"github.com/fse-compliance/internal/infrastructure/geocoder"
	"github.com/fse-compliance/internal/pkg/logger"
	"github.com/fse-compliance/internal/pkg/metrics"
	"github.com/fse-compliance/internal/repository/cache"
	"github.com/fse-compliance/internal/repository/postgres"
	"github.com/fse-compliance/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, zap.String("service", "fse-api"))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting FSE Compliance API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("region", cfg.Region.Province),
		zap.String("geocoder", cfg.Geocoder.Provider),
	)

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
	log.Info("PostgreSQL connected")

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories
	supplyRepo := postgres.NewSupplyRowRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	geocodeRepo := geocoder.New(cfg, cacheRepo, log, m)

	log.Info("Repositories initialized")

	// 7. Initialize Use Cases
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

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	validationHandler := handler.NewValidationHandler(validationUC, reportUC, log)

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, m, validationHandler)

	log.Info("HTTP server initialized")

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
