package repository

import "github.com/route-reconstructor/internal/domain"

// MapRenderer - приёмник геометрии маршрута
type MapRenderer interface {
	// AddRoute рисует полилинию маршрута
	AddRoute(geometry []domain.GeoCoordinate)

	// ZoomToRoutes подгоняет камеру под все нарисованные маршруты с отступом в пикселях
	ZoomToRoutes(paddingPixels int)
}

// Notifier - короткое уведомление пользователю с текстом ошибки
type Notifier interface {
	Notify(message string)
}
