package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/mmcloughlin/geohash"
	"go.uber.org/zap"

	"github.com/route-reconstructor/internal/domain"
	"github.com/route-reconstructor/internal/domain/repository"
	"github.com/route-reconstructor/internal/pkg/metrics"
)

// geohashPrecision 9 - ячейка ~4.8м x 4.8м, треки с одинаковыми точками
// в пределах погрешности GPS дают один ключ
const geohashPrecision = 9

// CachedRoutingProvider оборачивает провайдера маршрутизации cache-aside кешем.
// Ошибки провайдера не кешируются, ошибки кеша не ломают запрос.
type CachedRoutingProvider struct {
	inner  repository.RoutingProvider
	cache  repository.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRoutingProvider создает новый экземпляр CachedRoutingProvider
func NewCachedRoutingProvider(
	inner repository.RoutingProvider,
	cache repository.CacheRepository,
	ttl time.Duration,
	logger *zap.Logger,
) *CachedRoutingProvider {
	return &CachedRoutingProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// PlanRoute возвращает маршрут из кеша или от провайдера
func (p *CachedRoutingProvider) PlanRoute(ctx context.Context, req domain.RouteRequest) (*domain.RoutePlanningResult, error) {
	key := RouteCacheKey(req)

	cached, err := p.cache.GetRoute(ctx, key)
	if err != nil {
		p.logger.Warn("Failed to get route from cache", zap.String("key", key), zap.Error(err))
	}
	if cached != nil && len(cached.Routes) > 0 {
		metrics.CacheHits.Inc()
		p.logger.Debug("Route fetched from cache", zap.String("key", key))
		return cached, nil
	}
	metrics.CacheMisses.Inc()

	result, err := p.inner.PlanRoute(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := p.cache.SetRoute(ctx, key, result, p.ttl); err != nil {
		p.logger.Warn("Failed to cache route", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}

// RouteCacheKey строит ключ по профилю и geohash всех опорных точек по порядку
func RouteCacheKey(req domain.RouteRequest) string {
	d := xxhash.New()
	writePoint := func(p domain.GeoCoordinate) {
		_, _ = d.WriteString(geohash.EncodeWithPrecision(p.Latitude, p.Longitude, geohashPrecision))
		_, _ = d.WriteString(";")
	}

	writePoint(req.Itinerary.Origin)
	writePoint(req.Itinerary.Destination)
	_, _ = d.WriteString("|")
	for _, p := range req.SupportingPoints {
		writePoint(p)
	}

	vehicle := req.Vehicle
	if vehicle == "" {
		vehicle = domain.VehicleCar
	}

	return fmt.Sprintf("route:%s:%016x", vehicle, d.Sum64())
}
