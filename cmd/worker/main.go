package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/route-reconstructor/internal/config"
	"github.com/route-reconstructor/internal/infrastructure/gpx"
	"github.com/route-reconstructor/internal/infrastructure/tomtom"
	"github.com/route-reconstructor/internal/pkg/logger"
	"github.com/route-reconstructor/internal/repository/cache"
	redisRepo "github.com/route-reconstructor/internal/repository/redis"
	"github.com/route-reconstructor/internal/usecase"
	"github.com/route-reconstructor/internal/worker"
	"github.com/route-reconstructor/internal/worker/reconstruct"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load(nil)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Route Reconstruct Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.String("default_asset", cfg.Asset.Default))

	// 3. Connect to Redis (streams are required, route cache shares the client)
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Initialize repositories
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	provider := usecase.NewCachedRoutingProvider(
		tomtom.NewTomTomClient(&cfg.Routing, log),
		cache.NewCacheRepository(redisClient),
		cfg.Cache.RouteCacheTTL,
		log,
	)

	// 5. Initialize use cases
	reconstructUC := usecase.NewRouteReconstructUseCase(
		gpx.NewLoader(&cfg.Asset, log),
		provider,
		log,
		cfg.Render.ZoomPadding,
	)

	// 6. Initialize workers
	reconstructWorker := reconstruct.NewRouteReconstructWorker(
		streamRepo,
		reconstructUC,
		cfg.Worker.ConsumerGroup,
		cfg.Asset.Default,
		cfg.Worker.BatchSize,
		log,
	)

	// 7. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(reconstructWorker)

	// 8. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
