package domain

import (
	"time"

	"github.com/google/uuid"
)

// VehicleProfile - профиль транспортного средства для построения маршрута
type VehicleProfile string

const (
	// VehicleCar - единственный поддерживаемый профиль
	VehicleCar VehicleProfile = "car"
)

// Itinerary - пара начало/конец маршрута
type Itinerary struct {
	Origin      GeoCoordinate `json:"origin"`
	Destination GeoCoordinate `json:"destination"`
}

// RouteRequest - запрос на построение маршрута через опорные точки.
// SupportingPoints включает и Origin, и Destination.
type RouteRequest struct {
	Itinerary        Itinerary       `json:"itinerary"`
	SupportingPoints []GeoCoordinate `json:"supporting_points"`
	Vehicle          VehicleProfile  `json:"vehicle"`
}

// RouteSummary - длина и время в пути
type RouteSummary struct {
	LengthInMeters      int `json:"length_in_meters"`
	TravelTimeInSeconds int `json:"travel_time_in_seconds"`
}

// RouteLeg - участок маршрута со своей геометрией
type RouteLeg struct {
	Points  []GeoCoordinate `json:"points"`
	Summary RouteSummary    `json:"summary"`
}

// PlannedRoute - маршрут, возвращённый провайдером
type PlannedRoute struct {
	Legs    []RouteLeg   `json:"legs"`
	Summary RouteSummary `json:"summary"`
}

// Geometry склеивает точки всех участков в порядке следования
func (r PlannedRoute) Geometry() []GeoCoordinate {
	n := 0
	for _, leg := range r.Legs {
		n += len(leg.Points)
	}
	geometry := make([]GeoCoordinate, 0, n)
	for _, leg := range r.Legs {
		geometry = append(geometry, leg.Points...)
	}
	return geometry
}

// RoutePlanningResult - успешный ответ провайдера маршрутизации
type RoutePlanningResult struct {
	Routes []PlannedRoute `json:"routes"`
}

// ReconstructionResult - итог одной сессии восстановления маршрута
type ReconstructionResult struct {
	RequestID   uuid.UUID       `json:"request_id"`
	Source      string          `json:"source"`
	TrackPoints int             `json:"track_points"`
	Request     RouteRequest    `json:"request"`
	Geometry    []GeoCoordinate `json:"geometry"`
	Summary     RouteSummary    `json:"summary"`
	Duration    time.Duration   `json:"duration"`
}
