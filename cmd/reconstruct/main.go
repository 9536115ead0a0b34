package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/route-reconstructor/internal/config"
	"github.com/route-reconstructor/internal/delivery/notify"
	"github.com/route-reconstructor/internal/infrastructure/gpx"
	"github.com/route-reconstructor/internal/infrastructure/render"
	"github.com/route-reconstructor/internal/infrastructure/tomtom"
	"github.com/route-reconstructor/internal/pkg/logger"
	"github.com/route-reconstructor/internal/repository/cache"
	"github.com/route-reconstructor/internal/usecase"
)

const (
	exitOK    = 0
	exitFault = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run восстанавливает маршрут по ассету и пишет GeoJSON в --out или stdout
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// 1. Parse flags
	flags := pflag.NewFlagSet("reconstruct", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.String("asset", "", "GPX asset name inside the asset directory (default Lodz.gpx)")
	flags.String("asset-dir", "", "directory with GPX assets (default ./assets)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("api-key", "", "TomTom API key (ROUTING_API_KEY)")
	flags.String("routing-url", "", "TomTom API base URL (ROUTING_BASE_URL)")
	out := flags.StringP("out", "o", "", "write GeoJSON to this file instead of stdout")

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	// 2. Load configuration
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid config: %v\n", err)
		return exitUsage
	}

	// 3. Initialize logger
	log := logger.NewWriter(cfg.Log.Level, stderr)
	defer log.Sync()

	// 4. Initialize infrastructure
	loader := gpx.NewLoader(&cfg.Asset, log)
	provider := tomtom.NewTomTomClient(&cfg.Routing, log)

	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Warn("Route cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			provider = usecase.NewCachedRoutingProvider(
				provider,
				cache.NewCacheRepository(redisClient),
				cfg.Cache.RouteCacheTTL,
				log,
			)
		}
	}

	reconstructUC := usecase.NewRouteReconstructUseCase(loader, provider, log, cfg.Render.ZoomPadding)

	// 5. Reconstruct
	renderer := render.NewGeoJSONRenderer()
	result, err := reconstructUC.ReconstructAsset(ctx, cfg.Asset.Default, usecase.Session{
		Renderer: renderer,
		Notifier: notify.NewLogNotifier(log),
	})
	if err != nil {
		return exitFault
	}

	// 6. Write GeoJSON
	data, err := json.MarshalIndent(renderer, "", "  ")
	if err != nil {
		log.Error("Failed to marshal GeoJSON", zap.Error(err))
		return exitFault
	}
	data = append(data, '\n')

	if *out == "" {
		if _, err := stdout.Write(data); err != nil {
			log.Error("Failed to write GeoJSON", zap.Error(err))
			return exitFault
		}
	} else if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Error("Failed to write GeoJSON", zap.String("path", *out), zap.Error(err))
		return exitFault
	}

	log.Info("Route written",
		zap.String("request_id", result.RequestID.String()),
		zap.String("source", result.Source),
		zap.Int("track_points", result.TrackPoints),
		zap.Int("length_m", result.Summary.LengthInMeters),
		zap.Int("travel_time_s", result.Summary.TravelTimeInSeconds),
		zap.String("out", *out))

	return exitOK
}
