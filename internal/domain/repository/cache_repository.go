package repository

import (
	"context"
	"time"

	"github.com/route-reconstructor/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу. Промах - (nil, nil).
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetRoute получает результат маршрутизации из кеша
	GetRoute(ctx context.Context, key string) (*domain.RoutePlanningResult, error)

	// SetRoute сохраняет результат маршрутизации в кеше
	SetRoute(ctx context.Context, key string, result *domain.RoutePlanningResult, ttl time.Duration) error
}
