package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const namespace = "route_reconstructor"

// Outcome labels
const (
	OutcomeSuccess       = "success"
	OutcomeAssetFault    = "asset_fault"
	OutcomeTrackTooShort = "track_too_short"
	OutcomeRoutingFault  = "routing_fault"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	// ReconstructionsTotal - сессии восстановления маршрута по исходу
	ReconstructionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconstruct",
		Name:      "sessions_total",
		Help:      "Total route reconstruction sessions by outcome",
	}, []string{"outcome"})

	// RoutePlanningDuration - время ответа провайдера маршрутизации
	RoutePlanningDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "routing",
		Name:      "plan_duration_seconds",
		Help:      "Duration of route planning requests to the routing provider",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	// TrackPoints - размер восстанавливаемых треков
	TrackPoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconstruct",
		Name:      "track_points",
		Help:      "Number of supporting points sent to the routing provider",
		Buckets:   prometheus.ExponentialBuckets(2, 4, 8),
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "route_hits_total",
		Help:      "Total route cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "route_misses_total",
		Help:      "Total route cache misses",
	})
)

// ObserveOutcome записывает исход сессии
func ObserveOutcome(outcome string) {
	ReconstructionsTotal.WithLabelValues(outcome).Inc()
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
