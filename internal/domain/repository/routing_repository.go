package repository

import (
	"context"

	"github.com/route-reconstructor/internal/domain"
)

// RoutingProvider определяет методы для работы с внешним сервисом маршрутизации
type RoutingProvider interface {
	// PlanRoute строит маршрут через опорные точки запроса.
	// Возвращает либо непустой список кандидатов, либо ошибку с сообщением провайдера.
	PlanRoute(ctx context.Context, req domain.RouteRequest) (*domain.RoutePlanningResult, error)
}
