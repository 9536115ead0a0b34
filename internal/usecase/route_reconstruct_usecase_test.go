package usecase_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/route-reconstructor/internal/domain"
	"github.com/route-reconstructor/internal/pkg/errors"
	"github.com/route-reconstructor/internal/usecase"
)

// lodzDocument - one track, two segments of 3 and 2 points
func lodzDocument() *domain.GPXDocument {
	return &domain.GPXDocument{
		Name: "Lodz.gpx",
		Tracks: []domain.Track{
			{
				Name: "city drive",
				Segments: []domain.TrackSegment{
					{Points: []domain.TrackPoint{{Latitude: 51.759, Longitude: 19.456}, {Latitude: 51.763, Longitude: 19.457}, {Latitude: 51.768, Longitude: 19.458}}},
					{Points: []domain.TrackPoint{{Latitude: 51.775, Longitude: 19.450}, {Latitude: 51.779, Longitude: 19.446}}},
				},
			},
			{
				Name:     "ignored",
				Segments: []domain.TrackSegment{{Points: []domain.TrackPoint{{Latitude: 0, Longitude: 0}, {Latitude: 1, Longitude: 1}}}},
			},
		},
	}
}

func candidate(points ...domain.GeoCoordinate) domain.PlannedRoute {
	half := len(points) / 2
	return domain.PlannedRoute{
		Legs: []domain.RouteLeg{
			{Points: points[:half]},
			{Points: points[half:]},
		},
		Summary: domain.RouteSummary{LengthInMeters: 2500, TravelTimeInSeconds: 420},
	}
}

type fixture struct {
	loader   *MockGPXLoader
	provider *MockRoutingProvider
	renderer *MockMapRenderer
	notifier *MockNotifier
	uc       *usecase.RouteReconstructUseCase
	session  usecase.Session
}

func newFixture() *fixture {
	f := &fixture{
		loader:   &MockGPXLoader{},
		provider: &MockRoutingProvider{},
		renderer: &MockMapRenderer{},
		notifier: &MockNotifier{},
	}
	f.uc = usecase.NewRouteReconstructUseCase(f.loader, f.provider, zap.NewNop(), 100)
	f.session = usecase.Session{Renderer: f.renderer, Notifier: f.notifier}
	return f
}

func TestFlattenTrack(t *testing.T) {
	t.Run("preserves count and order across segments", func(t *testing.T) {
		track := lodzDocument().Tracks[0]

		coords := usecase.FlattenTrack(track)

		require.Len(t, coords, 5)
		assert.Equal(t, []domain.GeoCoordinate{
			{Latitude: 51.759, Longitude: 19.456},
			{Latitude: 51.763, Longitude: 19.457},
			{Latitude: 51.768, Longitude: 19.458},
			{Latitude: 51.775, Longitude: 19.450},
			{Latitude: 51.779, Longitude: 19.446},
		}, coords)
	})

	t.Run("empty segments are skipped", func(t *testing.T) {
		track := domain.Track{Segments: []domain.TrackSegment{
			{},
			{Points: []domain.TrackPoint{{Latitude: 1, Longitude: 2}}},
			{},
		}}

		assert.Equal(t, []domain.GeoCoordinate{{Latitude: 1, Longitude: 2}}, usecase.FlattenTrack(track))
	})

	t.Run("track without points", func(t *testing.T) {
		coords := usecase.FlattenTrack(domain.Track{})
		assert.NotNil(t, coords)
		assert.Empty(t, coords)
	})

	t.Run("deterministic", func(t *testing.T) {
		track := lodzDocument().Tracks[0]
		assert.Equal(t, usecase.FlattenTrack(track), usecase.FlattenTrack(track))
	})
}

func TestBuildRouteRequest(t *testing.T) {
	t.Run("origin first destination last all points supporting", func(t *testing.T) {
		coords := usecase.FlattenTrack(lodzDocument().Tracks[0])

		req, err := usecase.BuildRouteRequest(coords)
		require.NoError(t, err)

		assert.Equal(t, coords[0], req.Itinerary.Origin)
		assert.Equal(t, coords[4], req.Itinerary.Destination)
		assert.Equal(t, coords, req.SupportingPoints)
		assert.Equal(t, domain.VehicleCar, req.Vehicle)
	})

	t.Run("supporting points do not alias input", func(t *testing.T) {
		coords := []domain.GeoCoordinate{{Latitude: 1, Longitude: 1}, {Latitude: 2, Longitude: 2}}

		req, err := usecase.BuildRouteRequest(coords)
		require.NoError(t, err)

		coords[0] = domain.GeoCoordinate{Latitude: 9, Longitude: 9}
		assert.Equal(t, domain.GeoCoordinate{Latitude: 1, Longitude: 1}, req.SupportingPoints[0])
	})

	t.Run("two identical points are allowed", func(t *testing.T) {
		p := domain.GeoCoordinate{Latitude: 51.75, Longitude: 19.45}

		req, err := usecase.BuildRouteRequest([]domain.GeoCoordinate{p, p})
		require.NoError(t, err)
		assert.Equal(t, req.Itinerary.Origin, req.Itinerary.Destination)
	})

	t.Run("empty sequence", func(t *testing.T) {
		_, err := usecase.BuildRouteRequest(nil)
		assert.ErrorIs(t, err, errors.ErrTrackTooShort)
	})

	t.Run("single point", func(t *testing.T) {
		_, err := usecase.BuildRouteRequest([]domain.GeoCoordinate{{Latitude: 1, Longitude: 1}})
		assert.ErrorIs(t, err, errors.ErrTrackTooShort)
		assert.Contains(t, err.Error(), "1 point")
	})
}

func TestSelectRoute(t *testing.T) {
	first := candidate(domain.GeoCoordinate{Latitude: 1, Longitude: 1}, domain.GeoCoordinate{Latitude: 2, Longitude: 2})
	second := candidate(domain.GeoCoordinate{Latitude: 3, Longitude: 3}, domain.GeoCoordinate{Latitude: 4, Longitude: 4})

	route, err := usecase.SelectRoute(&domain.RoutePlanningResult{Routes: []domain.PlannedRoute{first, second}})
	require.NoError(t, err)
	assert.Equal(t, first, route)

	_, err = usecase.SelectRoute(&domain.RoutePlanningResult{})
	assert.ErrorIs(t, err, errors.ErrNoRoutes)

	_, err = usecase.SelectRoute(nil)
	assert.ErrorIs(t, err, errors.ErrNoRoutes)
}

func TestRouteReconstructUseCase_ReconstructAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("success renders only the first candidate", func(t *testing.T) {
		f := newFixture()

		first := candidate(
			domain.GeoCoordinate{Latitude: 51.759, Longitude: 19.456},
			domain.GeoCoordinate{Latitude: 51.766, Longitude: 19.457},
			domain.GeoCoordinate{Latitude: 51.772, Longitude: 19.452},
			domain.GeoCoordinate{Latitude: 51.779, Longitude: 19.446},
		)
		other := candidate(domain.GeoCoordinate{Latitude: 0, Longitude: 0}, domain.GeoCoordinate{Latitude: 1, Longitude: 1})

		f.loader.On("Load", ctx, "Lodz.gpx").Return(lodzDocument(), nil)
		f.provider.On("PlanRoute", mock.Anything, mock.MatchedBy(func(req domain.RouteRequest) bool {
			return len(req.SupportingPoints) == 5 &&
				req.Itinerary.Origin == (domain.GeoCoordinate{Latitude: 51.759, Longitude: 19.456}) &&
				req.Itinerary.Destination == (domain.GeoCoordinate{Latitude: 51.779, Longitude: 19.446}) &&
				req.Vehicle == domain.VehicleCar
		})).Return(&domain.RoutePlanningResult{Routes: []domain.PlannedRoute{first, other, other}}, nil).Once()
		f.renderer.On("AddRoute", first.Geometry()).Once()
		f.renderer.On("ZoomToRoutes", 100).Once()

		result, err := f.uc.ReconstructAsset(ctx, "Lodz.gpx", f.session)
		require.NoError(t, err)

		assert.Equal(t, "Lodz.gpx", result.Source)
		assert.Equal(t, 5, result.TrackPoints)
		assert.Equal(t, first.Geometry(), result.Geometry)
		assert.Equal(t, 2500, result.Summary.LengthInMeters)

		f.provider.AssertExpectations(t)
		f.renderer.AssertExpectations(t)
		require.Len(t, f.renderer.Calls, 2)
		assert.Equal(t, "AddRoute", f.renderer.Calls[0].Method)
		assert.Equal(t, "ZoomToRoutes", f.renderer.Calls[1].Method)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything)
	})

	t.Run("routing failure notifies the provider message and draws nothing", func(t *testing.T) {
		f := newFixture()
		const message = "Engine error while executing route request: MAP_MATCHING_FAILURE"

		f.loader.On("Load", ctx, "Lodz.gpx").Return(lodzDocument(), nil)
		f.provider.On("PlanRoute", mock.Anything, mock.Anything).
			Return(nil, errors.ErrRouting.WithMessage(message)).Once()
		f.notifier.On("Notify", message).Once()

		result, err := f.uc.ReconstructAsset(ctx, "Lodz.gpx", f.session)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, errors.ErrRouting)

		f.notifier.AssertExpectations(t)
		f.renderer.AssertNotCalled(t, "AddRoute", mock.Anything)
		f.renderer.AssertNotCalled(t, "ZoomToRoutes", mock.Anything)
	})

	t.Run("plain provider error is notified verbatim", func(t *testing.T) {
		f := newFixture()

		f.loader.On("Load", ctx, "Lodz.gpx").Return(lodzDocument(), nil)
		f.provider.On("PlanRoute", mock.Anything, mock.Anything).Return(nil, stderrors.New("dial tcp: i/o timeout"))
		f.notifier.On("Notify", "dial tcp: i/o timeout").Once()

		_, err := f.uc.ReconstructAsset(ctx, "Lodz.gpx", f.session)
		require.Error(t, err)
		f.notifier.AssertExpectations(t)
	})

	t.Run("asset failure never issues a route request", func(t *testing.T) {
		f := newFixture()
		loadErr := errors.ErrAssetNotFound.WithMessage("GPX asset Lodz.gpx not found")

		f.loader.On("Load", ctx, "Lodz.gpx").Return(nil, loadErr)
		f.notifier.On("Notify", "GPX asset Lodz.gpx not found").Once()

		result, err := f.uc.ReconstructAsset(ctx, "Lodz.gpx", f.session)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, errors.ErrAssetNotFound)

		f.provider.AssertNotCalled(t, "PlanRoute", mock.Anything, mock.Anything)
		f.renderer.AssertNotCalled(t, "AddRoute", mock.Anything)
		f.notifier.AssertExpectations(t)
	})

	t.Run("track without points fails with track too short", func(t *testing.T) {
		f := newFixture()
		doc := &domain.GPXDocument{Name: "empty.gpx", Tracks: []domain.Track{{Name: "empty"}}}

		f.loader.On("Load", ctx, "empty.gpx").Return(doc, nil)
		f.notifier.On("Notify", mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "0 point")
		})).Once()

		_, err := f.uc.ReconstructAsset(ctx, "empty.gpx", f.session)
		assert.ErrorIs(t, err, errors.ErrTrackTooShort)

		f.provider.AssertNotCalled(t, "PlanRoute", mock.Anything, mock.Anything)
		f.notifier.AssertExpectations(t)
	})

	t.Run("single point track fails with track too short", func(t *testing.T) {
		f := newFixture()
		doc := &domain.GPXDocument{Name: "one.gpx", Tracks: []domain.Track{
			{Segments: []domain.TrackSegment{{Points: []domain.TrackPoint{{Latitude: 51.7, Longitude: 19.4}}}}},
		}}

		f.loader.On("Load", ctx, "one.gpx").Return(doc, nil)
		f.notifier.On("Notify", mock.Anything).Once()

		_, err := f.uc.ReconstructAsset(ctx, "one.gpx", f.session)
		assert.ErrorIs(t, err, errors.ErrTrackTooShort)
		f.provider.AssertNotCalled(t, "PlanRoute", mock.Anything, mock.Anything)
	})

	t.Run("document without tracks", func(t *testing.T) {
		f := newFixture()

		f.loader.On("Load", ctx, "none.gpx").Return(&domain.GPXDocument{Name: "none.gpx"}, nil)
		f.notifier.On("Notify", "GPX document none.gpx has no tracks").Once()

		_, err := f.uc.ReconstructAsset(ctx, "none.gpx", f.session)
		assert.ErrorIs(t, err, errors.ErrGPXParse)
		f.provider.AssertNotCalled(t, "PlanRoute", mock.Anything, mock.Anything)
	})

	t.Run("empty candidate list", func(t *testing.T) {
		f := newFixture()

		f.loader.On("Load", ctx, "Lodz.gpx").Return(lodzDocument(), nil)
		f.provider.On("PlanRoute", mock.Anything, mock.Anything).Return(&domain.RoutePlanningResult{}, nil)
		f.notifier.On("Notify", errors.ErrNoRoutes.Message).Once()

		_, err := f.uc.ReconstructAsset(ctx, "Lodz.gpx", f.session)
		assert.ErrorIs(t, err, errors.ErrNoRoutes)
		f.renderer.AssertNotCalled(t, "AddRoute", mock.Anything)
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := newFixture()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		f.loader.On("Load", cctx, "Lodz.gpx").Return(lodzDocument(), nil)
		f.provider.On("PlanRoute", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return(nil, context.Canceled).Maybe()
		f.notifier.On("Notify", "context canceled").Once()

		_, err := f.uc.ReconstructAsset(cctx, "Lodz.gpx", f.session)
		assert.ErrorIs(t, err, context.Canceled)
		f.renderer.AssertNotCalled(t, "AddRoute", mock.Anything)
		f.notifier.AssertExpectations(t)
	})

	t.Run("nil notifier is tolerated", func(t *testing.T) {
		f := newFixture()
		f.loader.On("Load", ctx, "Lodz.gpx").Return(nil, errors.ErrAssetNotFound)

		_, err := f.uc.ReconstructAsset(ctx, "Lodz.gpx", usecase.Session{Renderer: f.renderer})
		assert.ErrorIs(t, err, errors.ErrAssetNotFound)
	})
}

func TestRouteReconstructUseCase_ReconstructReader(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	body := strings.NewReader("<gpx/>")

	route := candidate(domain.GeoCoordinate{Latitude: 1, Longitude: 1}, domain.GeoCoordinate{Latitude: 2, Longitude: 2})

	f.loader.On("Parse", ctx, "upload.gpx", body).Return(lodzDocument(), nil)
	f.provider.On("PlanRoute", mock.Anything, mock.Anything).
		Return(&domain.RoutePlanningResult{Routes: []domain.PlannedRoute{route}}, nil)
	f.renderer.On("AddRoute", route.Geometry()).Once()
	f.renderer.On("ZoomToRoutes", 100).Once()

	result, err := f.uc.ReconstructReader(ctx, "upload.gpx", body, f.session)
	require.NoError(t, err)
	assert.Equal(t, "Lodz.gpx", result.Source)
	f.loader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	f.renderer.AssertExpectations(t)
}

func TestRouteReconstructUseCase_DefaultPadding(t *testing.T) {
	loader := &MockGPXLoader{}
	provider := &MockRoutingProvider{}
	renderer := &MockMapRenderer{}
	ctx := context.Background()

	uc := usecase.NewRouteReconstructUseCase(loader, provider, zap.NewNop(), 0)
	route := candidate(domain.GeoCoordinate{Latitude: 1, Longitude: 1}, domain.GeoCoordinate{Latitude: 2, Longitude: 2})

	loader.On("Load", ctx, "Lodz.gpx").Return(lodzDocument(), nil)
	provider.On("PlanRoute", mock.Anything, mock.Anything).
		Return(&domain.RoutePlanningResult{Routes: []domain.PlannedRoute{route}}, nil)
	renderer.On("AddRoute", mock.Anything)
	renderer.On("ZoomToRoutes", usecase.DefaultZoomPadding).Once()

	_, err := uc.ReconstructAsset(ctx, "Lodz.gpx", usecase.Session{Renderer: renderer, Notifier: &MockNotifier{}})
	require.NoError(t, err)
	renderer.AssertExpectations(t)
}
