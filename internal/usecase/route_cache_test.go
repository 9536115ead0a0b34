package usecase_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/route-reconstructor/internal/domain"
	"github.com/route-reconstructor/internal/pkg/errors"
	"github.com/route-reconstructor/internal/usecase"
)

func sampleRequest() domain.RouteRequest {
	req, _ := usecase.BuildRouteRequest(usecase.FlattenTrack(lodzDocument().Tracks[0]))
	return req
}

func TestCachedRoutingProvider_PlanRoute(t *testing.T) {
	ctx := context.Background()
	ttl := time.Hour
	req := sampleRequest()
	key := usecase.RouteCacheKey(req)
	planned := &domain.RoutePlanningResult{Routes: []domain.PlannedRoute{
		candidate(domain.GeoCoordinate{Latitude: 1, Longitude: 1}, domain.GeoCoordinate{Latitude: 2, Longitude: 2}),
	}}

	t.Run("cache hit skips provider", func(t *testing.T) {
		inner := &MockRoutingProvider{}
		cache := &MockCacheRepository{}
		cache.On("GetRoute", ctx, key).Return(planned, nil).Once()

		p := usecase.NewCachedRoutingProvider(inner, cache, ttl, zap.NewNop())
		result, err := p.PlanRoute(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, planned, result)
		inner.AssertNotCalled(t, "PlanRoute", mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "SetRoute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache miss calls provider and stores result", func(t *testing.T) {
		inner := &MockRoutingProvider{}
		cache := &MockCacheRepository{}
		cache.On("GetRoute", ctx, key).Return(nil, nil).Once()
		inner.On("PlanRoute", ctx, req).Return(planned, nil).Once()
		cache.On("SetRoute", ctx, key, planned, ttl).Return(nil).Once()

		p := usecase.NewCachedRoutingProvider(inner, cache, ttl, zap.NewNop())
		result, err := p.PlanRoute(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, planned, result)
		inner.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cached empty result is ignored", func(t *testing.T) {
		inner := &MockRoutingProvider{}
		cache := &MockCacheRepository{}
		cache.On("GetRoute", ctx, key).Return(&domain.RoutePlanningResult{}, nil).Once()
		inner.On("PlanRoute", ctx, req).Return(planned, nil).Once()
		cache.On("SetRoute", ctx, key, planned, ttl).Return(nil).Once()

		p := usecase.NewCachedRoutingProvider(inner, cache, ttl, zap.NewNop())
		_, err := p.PlanRoute(ctx, req)

		require.NoError(t, err)
		inner.AssertExpectations(t)
	})

	t.Run("provider error is not cached", func(t *testing.T) {
		inner := &MockRoutingProvider{}
		cache := &MockCacheRepository{}
		cache.On("GetRoute", ctx, key).Return(nil, nil).Once()
		inner.On("PlanRoute", ctx, req).Return(nil, errors.ErrRouting.WithMessage("quota exceeded")).Once()

		p := usecase.NewCachedRoutingProvider(inner, cache, ttl, zap.NewNop())
		result, err := p.PlanRoute(ctx, req)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, errors.ErrRouting)
		cache.AssertNotCalled(t, "SetRoute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache failures do not break planning", func(t *testing.T) {
		inner := &MockRoutingProvider{}
		cache := &MockCacheRepository{}
		cache.On("GetRoute", ctx, key).Return(nil, stderrors.New("connection refused")).Once()
		inner.On("PlanRoute", ctx, req).Return(planned, nil).Once()
		cache.On("SetRoute", ctx, key, planned, ttl).Return(stderrors.New("connection refused")).Once()

		p := usecase.NewCachedRoutingProvider(inner, cache, ttl, zap.NewNop())
		result, err := p.PlanRoute(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, planned, result)
	})
}

func TestRouteCacheKey(t *testing.T) {
	req := sampleRequest()

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, usecase.RouteCacheKey(req), usecase.RouteCacheKey(sampleRequest()))
		assert.Regexp(t, `^route:car:[0-9a-f]{16}$`, usecase.RouteCacheKey(req))
	})

	t.Run("GPS jitter below cell size keeps the key", func(t *testing.T) {
		jittered := sampleRequest()
		jittered.SupportingPoints[2].Latitude += 0.0000001

		assert.Equal(t, usecase.RouteCacheKey(req), usecase.RouteCacheKey(jittered))
	})

	t.Run("point order matters", func(t *testing.T) {
		reversed := sampleRequest()
		pts := reversed.SupportingPoints
		pts[1], pts[2] = pts[2], pts[1]

		assert.NotEqual(t, usecase.RouteCacheKey(req), usecase.RouteCacheKey(reversed))
	})

	t.Run("empty vehicle defaults to car", func(t *testing.T) {
		noVehicle := sampleRequest()
		noVehicle.Vehicle = ""

		assert.Equal(t, usecase.RouteCacheKey(req), usecase.RouteCacheKey(noVehicle))
	})
}
