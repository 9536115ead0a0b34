package usecase_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/route-reconstructor/internal/domain"
)

// MockGPXLoader is a mock of GPXLoader
type MockGPXLoader struct {
	mock.Mock
}

func (m *MockGPXLoader) Load(ctx context.Context, name string) (*domain.GPXDocument, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GPXDocument), args.Error(1)
}

func (m *MockGPXLoader) Parse(ctx context.Context, name string, r io.Reader) (*domain.GPXDocument, error) {
	args := m.Called(ctx, name, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GPXDocument), args.Error(1)
}

func (m *MockGPXLoader) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockRoutingProvider is a mock of RoutingProvider
type MockRoutingProvider struct {
	mock.Mock
}

func (m *MockRoutingProvider) PlanRoute(ctx context.Context, req domain.RouteRequest) (*domain.RoutePlanningResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoutePlanningResult), args.Error(1)
}

// MockMapRenderer is a mock of MapRenderer
type MockMapRenderer struct {
	mock.Mock
}

func (m *MockMapRenderer) AddRoute(geometry []domain.GeoCoordinate) {
	m.Called(geometry)
}

func (m *MockMapRenderer) ZoomToRoutes(paddingPixels int) {
	m.Called(paddingPixels)
}

// MockNotifier is a mock of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(message string) {
	m.Called(message)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetRoute(ctx context.Context, key string) (*domain.RoutePlanningResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoutePlanningResult), args.Error(1)
}

func (m *MockCacheRepository) SetRoute(ctx context.Context, key string, result *domain.RoutePlanningResult, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}
