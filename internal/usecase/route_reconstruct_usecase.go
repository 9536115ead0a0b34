package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/route-reconstructor/internal/domain"
	"github.com/route-reconstructor/internal/domain/repository"
	"github.com/route-reconstructor/internal/pkg/errors"
	"github.com/route-reconstructor/internal/pkg/metrics"
	"github.com/route-reconstructor/internal/pkg/utils"
)

// DefaultZoomPadding - отступ в пикселях при подгонке камеры под маршрут
const DefaultZoomPadding = 100

// Session - то, что живёт ровно одну сессию восстановления: куда рисовать и кому сообщать об ошибках
type Session struct {
	Renderer repository.MapRenderer
	Notifier repository.Notifier
}

// RouteReconstructUseCase восстанавливает маршрут по первому треку GPX документа
type RouteReconstructUseCase struct {
	loader      repository.GPXLoader
	provider    repository.RoutingProvider
	logger      *zap.Logger
	zoomPadding int
}

// NewRouteReconstructUseCase создает новый экземпляр RouteReconstructUseCase
func NewRouteReconstructUseCase(
	loader repository.GPXLoader,
	provider repository.RoutingProvider,
	logger *zap.Logger,
	zoomPadding int,
) *RouteReconstructUseCase {
	if zoomPadding <= 0 {
		zoomPadding = DefaultZoomPadding
	}
	return &RouteReconstructUseCase{
		loader:      loader,
		provider:    provider,
		logger:      logger,
		zoomPadding: zoomPadding,
	}
}

// ReconstructAsset загружает ассет по имени и восстанавливает маршрут
func (uc *RouteReconstructUseCase) ReconstructAsset(
	ctx context.Context,
	name string,
	session Session,
) (*domain.ReconstructionResult, error) {
	uc.logger.Info("Reconstructing route from asset", zap.String("asset", name))

	doc, err := uc.loader.Load(ctx, name)
	if err != nil {
		return nil, uc.fail(session, metrics.OutcomeAssetFault, fmt.Errorf("load asset %s: %w", name, err))
	}

	return uc.reconstruct(ctx, doc, session)
}

// ReconstructReader разбирает GPX из reader (загрузка по HTTP) и восстанавливает маршрут
func (uc *RouteReconstructUseCase) ReconstructReader(
	ctx context.Context,
	name string,
	r io.Reader,
	session Session,
) (*domain.ReconstructionResult, error) {
	uc.logger.Info("Reconstructing route from upload", zap.String("name", name))

	doc, err := uc.loader.Parse(ctx, name, r)
	if err != nil {
		return nil, uc.fail(session, metrics.OutcomeAssetFault, fmt.Errorf("parse %s: %w", name, err))
	}

	return uc.reconstruct(ctx, doc, session)
}

// ListAssets возвращает имена доступных GPX ассетов
func (uc *RouteReconstructUseCase) ListAssets(ctx context.Context) ([]string, error) {
	return uc.loader.List(ctx)
}

func (uc *RouteReconstructUseCase) reconstruct(
	ctx context.Context,
	doc *domain.GPXDocument,
	session Session,
) (*domain.ReconstructionResult, error) {
	start := time.Now()

	track, ok := doc.FirstTrack()
	if !ok {
		return nil, uc.fail(session, metrics.OutcomeAssetFault,
			errors.ErrGPXParse.WithMessage(fmt.Sprintf("GPX document %s has no tracks", doc.Name)))
	}

	coords := FlattenTrack(track)

	req, err := BuildRouteRequest(coords)
	if err != nil {
		return nil, uc.fail(session, metrics.OutcomeTrackTooShort, err)
	}

	metrics.TrackPoints.Observe(float64(len(req.SupportingPoints)))

	var outcome planningOutcome
	select {
	case outcome = <-uc.dispatch(ctx, req):
	case <-ctx.Done():
		outcome = planningOutcome{err: errors.ErrRouting.Wrap(ctx.Err())}
	}

	if outcome.err != nil {
		return nil, uc.fail(session, metrics.OutcomeRoutingFault, outcome.err)
	}

	route, err := SelectRoute(outcome.result)
	if err != nil {
		return nil, uc.fail(session, metrics.OutcomeRoutingFault, err)
	}

	geometry := route.Geometry()
	session.Renderer.AddRoute(geometry)
	session.Renderer.ZoomToRoutes(uc.zoomPadding)

	metrics.ObserveOutcome(metrics.OutcomeSuccess)

	result := &domain.ReconstructionResult{
		RequestID:   uuid.New(),
		Source:      doc.Name,
		TrackPoints: len(coords),
		Request:     req,
		Geometry:    geometry,
		Summary:     route.Summary,
		Duration:    time.Since(start),
	}

	uc.logger.Info("Route reconstructed",
		zap.String("source", doc.Name),
		zap.Int("track_points", result.TrackPoints),
		zap.Float64("track_length_m", utils.PathLengthMeters(coords)),
		zap.Int("route_points", len(geometry)),
		zap.Int("length_m", route.Summary.LengthInMeters),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// planningOutcome - ровно один из result/err
type planningOutcome struct {
	result *domain.RoutePlanningResult
	err    error
}

// dispatch отправляет единственный запрос провайдеру. Канал буферизован,
// поэтому горутина завершится, даже если ответ уже никто не ждёт.
func (uc *RouteReconstructUseCase) dispatch(ctx context.Context, req domain.RouteRequest) <-chan planningOutcome {
	out := make(chan planningOutcome, 1)

	go func() {
		start := time.Now()
		result, err := uc.provider.PlanRoute(ctx, req)
		metrics.RoutePlanningDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			out <- planningOutcome{err: err}
			return
		}
		out <- planningOutcome{result: result}
	}()

	return out
}

// fail показывает пользователю текст ошибки и возвращает её дальше
func (uc *RouteReconstructUseCase) fail(session Session, outcome string, err error) error {
	metrics.ObserveOutcome(outcome)

	message := err.Error()
	if appErr, ok := errors.As(err); ok {
		message = appErr.Message
	}

	uc.logger.Warn("Route reconstruction failed",
		zap.String("outcome", outcome),
		zap.Error(err))

	if session.Notifier != nil {
		session.Notifier.Notify(message)
	}

	return err
}

// FlattenTrack склеивает точки всех сегментов трека в одну последовательность координат
func FlattenTrack(track domain.Track) []domain.GeoCoordinate {
	coords := make([]domain.GeoCoordinate, 0, track.PointCount())
	for _, segment := range track.Segments {
		for _, p := range segment.Points {
			coords = append(coords, p.ToGeoCoordinate())
		}
	}
	return coords
}

// BuildRouteRequest строит запрос: первая точка - начало, последняя - конец,
// все точки (включая концы) - опорные.
func BuildRouteRequest(coords []domain.GeoCoordinate) (domain.RouteRequest, error) {
	if len(coords) < 2 {
		return domain.RouteRequest{}, errors.ErrTrackTooShort.WithMessage(
			fmt.Sprintf("track has %d point(s), at least 2 are required to plan a route", len(coords)))
	}

	supporting := make([]domain.GeoCoordinate, len(coords))
	copy(supporting, coords)

	return domain.RouteRequest{
		Itinerary: domain.Itinerary{
			Origin:      coords[0],
			Destination: coords[len(coords)-1],
		},
		SupportingPoints: supporting,
		Vehicle:          domain.VehicleCar,
	}, nil
}

// SelectRoute берёт первого кандидата без ранжирования
func SelectRoute(result *domain.RoutePlanningResult) (domain.PlannedRoute, error) {
	if result == nil || len(result.Routes) == 0 {
		return domain.PlannedRoute{}, errors.ErrNoRoutes
	}
	return result.Routes[0], nil
}
