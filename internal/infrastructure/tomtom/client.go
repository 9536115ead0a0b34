package tomtom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/route-reconstructor/internal/config"
	"github.com/route-reconstructor/internal/domain"
	"github.com/route-reconstructor/internal/domain/repository"
	"github.com/route-reconstructor/internal/pkg/errors"
	"go.uber.org/zap"
)

const calculateRoutePath = "/routing/1/calculateRoute"

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewTomTomClient создает новый клиент для TomTom Routing API
func NewTomTomClient(cfg *config.RoutingConfig, logger *zap.Logger) repository.RoutingProvider {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// PlanRoute строит маршрут от начала до конца маршрута через опорные точки
func (c *client) PlanRoute(ctx context.Context, req domain.RouteRequest) (*domain.RoutePlanningResult, error) {
	if len(req.SupportingPoints) < 2 {
		return nil, errors.ErrTrackTooShort.WithMessage(
			fmt.Sprintf("route request needs at least 2 supporting points, got %d", len(req.SupportingPoints)))
	}

	body := calculateRouteRequest{
		SupportingPoints: make([]latLng, len(req.SupportingPoints)),
	}
	for i, p := range req.SupportingPoints {
		body.SupportingPoints[i] = latLng{Latitude: p.Latitude, Longitude: p.Longitude}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, errors.ErrRouting.Wrap(fmt.Errorf("failed to marshal request: %w", err))
	}

	path := fmt.Sprintf("%s/%s:%s/json",
		calculateRoutePath,
		formatLocation(req.Itinerary.Origin),
		formatLocation(req.Itinerary.Destination),
	)

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("travelMode", travelMode(req.Vehicle))
	query.Set("routeRepresentation", "polyline")
	query.Set("computeBestOrder", "false")

	c.logger.Debug("Calling TomTom Routing API",
		zap.String("path", path),
		zap.String("travel_mode", travelMode(req.Vehicle)),
		zap.Int("supporting_points", len(req.SupportingPoints)))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path+"?"+query.Encode(), bytes.NewReader(bodyBytes))
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, errors.ErrRouting.Wrap(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, errors.ErrRouting.Wrap(fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read response", zap.Error(err))
		return nil, errors.ErrRouting.Wrap(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		message := errorMessage(resp.StatusCode, respBytes)
		c.logger.Error("TomTom API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", message))
		return nil, errors.ErrRouting.WithMessage(message).WithDetails(map[string]interface{}{
			"status_code": resp.StatusCode,
		})
	}

	var routeResp calculateRouteResponse
	if err := json.Unmarshal(respBytes, &routeResp); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, errors.ErrRouting.Wrap(fmt.Errorf("failed to decode response: %w", err))
	}

	if len(routeResp.Routes) == 0 {
		c.logger.Error("TomTom API returned no routes")
		return nil, errors.ErrNoRoutes
	}

	result := routeResp.toDomain()

	c.logger.Debug("TomTom Routing API call successful",
		zap.Int("routes", len(result.Routes)),
		zap.Int("legs", len(result.Routes[0].Legs)),
		zap.Int("length_m", result.Routes[0].Summary.LengthInMeters))

	return result, nil
}

func formatLocation(p domain.GeoCoordinate) string {
	return fmt.Sprintf("%f,%f", p.Latitude, p.Longitude)
}

func travelMode(v domain.VehicleProfile) string {
	if v == "" {
		return string(domain.VehicleCar)
	}
	return string(v)
}

// errorMessage достаёт человекочитаемое сообщение из тела ошибки TomTom
func errorMessage(status int, body []byte) string {
	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.DetailedError != nil && apiErr.DetailedError.Message != "" {
			return apiErr.DetailedError.Message
		}
		if apiErr.Error != nil && apiErr.Error.Description != "" {
			return apiErr.Error.Description
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = http.StatusText(status)
	}
	return fmt.Sprintf("routing API error: status %d: %s", status, text)
}

// --- JSON types for the TomTom calculateRoute API ---

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type calculateRouteRequest struct {
	SupportingPoints []latLng `json:"supportingPoints"`
}

type routeSummary struct {
	LengthInMeters      int `json:"lengthInMeters"`
	TravelTimeInSeconds int `json:"travelTimeInSeconds"`
}

type routeLeg struct {
	Summary routeSummary `json:"summary"`
	Points  []latLng     `json:"points"`
}

type route struct {
	Summary routeSummary `json:"summary"`
	Legs    []routeLeg   `json:"legs"`
}

type calculateRouteResponse struct {
	FormatVersion string  `json:"formatVersion"`
	Routes        []route `json:"routes"`
}

type errorResponse struct {
	Error *struct {
		Description string `json:"description"`
	} `json:"error"`
	DetailedError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"detailedError"`
}

func (s routeSummary) toDomain() domain.RouteSummary {
	return domain.RouteSummary{
		LengthInMeters:      s.LengthInMeters,
		TravelTimeInSeconds: s.TravelTimeInSeconds,
	}
}

func (r calculateRouteResponse) toDomain() *domain.RoutePlanningResult {
	result := &domain.RoutePlanningResult{
		Routes: make([]domain.PlannedRoute, 0, len(r.Routes)),
	}
	for _, rt := range r.Routes {
		planned := domain.PlannedRoute{
			Summary: rt.Summary.toDomain(),
			Legs:    make([]domain.RouteLeg, 0, len(rt.Legs)),
		}
		for _, leg := range rt.Legs {
			points := make([]domain.GeoCoordinate, len(leg.Points))
			for i, p := range leg.Points {
				points[i] = domain.GeoCoordinate{Latitude: p.Latitude, Longitude: p.Longitude}
			}
			planned.Legs = append(planned.Legs, domain.RouteLeg{
				Points:  points,
				Summary: leg.Summary.toDomain(),
			})
		}
		result.Routes = append(result.Routes, planned)
	}
	return result
}
