package main

// @title Route Reconstructor API
// @version 1.0.0
// @description Восстанавливает автомобильный маршрут по первому треку GPX и отдаёт его как GeoJSON.
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/route-reconstructor/internal/config"
	httpDelivery "github.com/route-reconstructor/internal/delivery/http"
	"github.com/route-reconstructor/internal/delivery/http/handler"
	"github.com/route-reconstructor/internal/infrastructure/gpx"
	"github.com/route-reconstructor/internal/infrastructure/tomtom"
	"github.com/route-reconstructor/internal/pkg/logger"
	"github.com/route-reconstructor/internal/repository/cache"
	"github.com/route-reconstructor/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load(nil)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
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

	log.Info("Starting Route Reconstructor API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("asset_dir", cfg.Asset.Dir),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	// 3. Initialize infrastructure
	loader := gpx.NewLoader(&cfg.Asset, log)
	provider := tomtom.NewTomTomClient(&cfg.Routing, log)

	// 4. Connect to Redis (optional route cache)
	var redisClient *cache.Redis
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()

		provider = usecase.NewCachedRoutingProvider(
			provider,
			cache.NewCacheRepository(redisClient),
			cfg.Cache.RouteCacheTTL,
			log,
		)
		log.Info("Route cache enabled", zap.Duration("ttl", cfg.Cache.RouteCacheTTL))
	}

	// 5. Initialize use cases
	reconstructUC := usecase.NewRouteReconstructUseCase(loader, provider, log, cfg.Render.ZoomPadding)

	// 6. Initialize HTTP handlers
	routeHandler := handler.NewRouteHandler(reconstructUC, cfg.Asset.Default, log)

	// 7. Initialize HTTP server
	server := httpDelivery.NewServer(cfg, log, routeHandler)

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
