package dto

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/route-reconstructor/internal/domain"
)

// ReconstructRequest - запрос на восстановление маршрута по ассету
type ReconstructRequest struct {
	Asset string `json:"asset" validate:"required,gpxasset"`
}

// ReconstructResponse - результат восстановления маршрута
type ReconstructResponse struct {
	RequestID   uuid.UUID           `json:"request_id"`
	Source      string              `json:"source"`
	TrackPoints int                 `json:"track_points"`
	Summary     domain.RouteSummary `json:"summary"`
	GeoJSON     json.RawMessage     `json:"geojson"`
}

// AssetListResponse - список доступных GPX ассетов
type AssetListResponse struct {
	Assets  []string `json:"assets"`
	Default string   `json:"default"`
}
