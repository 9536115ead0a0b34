package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamRouteReconstruct = "stream:route:reconstruct"
	StreamRouteDone        = "stream:route:done"
)

// RouteReconstructEvent - входящее событие на восстановление маршрута из GPX ассета
type RouteReconstructEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	Asset     string    `json:"asset"`
}

// RouteReconstructDoneEvent - результат восстановления маршрута
type RouteReconstructDoneEvent struct {
	RequestID     uuid.UUID       `json:"request_id"`
	Asset         string          `json:"asset"`
	TrackPoints   int             `json:"track_points,omitempty"`
	Summary       *RouteSummary   `json:"summary,omitempty"`
	GeoJSON       json.RawMessage `json:"geojson,omitempty"`
	Notifications []string        `json:"notifications,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}

// AssetOrDefault возвращает имя ассета из события или имя по умолчанию
func (e *RouteReconstructEvent) AssetOrDefault(defaultAsset string) string {
	if e.Asset == "" {
		return defaultAsset
	}
	return e.Asset
}
