package application

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wanderwalks/service-walks/internal/domain"
	"github.com/wanderwalks/service-walks/internal/domain/route"
)

type stubAggregator struct {
	stops []route.PointOfInterest
	err   error
}

func (a *stubAggregator) Aggregate(_ context.Context, _ route.Coordinate, _ route.Preferences) ([]route.PointOfInterest, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.stops, nil
}

type stubRouting struct {
	path  []route.Coordinate
	err   error
	calls int
}

func (r *stubRouting) Path(_ context.Context, waypoints []route.Coordinate) ([]route.Coordinate, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.path != nil {
		return r.path, nil
	}
	return waypoints, nil
}

type stubGeocoder struct {
	label string
	err   error
}

func (g *stubGeocoder) Reverse(_ context.Context, _, _ float64) (string, error) {
	return g.label, g.err
}

func testStops() []route.PointOfInterest {
	return []route.PointOfInterest{
		{ID: "node/1", Name: "Brandenburg Gate", Coordinate: route.Coordinate{Latitude: 52.5163, Longitude: 13.3777}, DistanceMeters: 1900},
		{ID: "node/2", Name: "Victory Column", Coordinate: route.Coordinate{Latitude: 52.5145, Longitude: 13.3501}, DistanceMeters: 3800},
	}
}

func validRequest() GenerateRouteRequest {
	return GenerateRouteRequest{
		Origin:          &route.Coordinate{Latitude: 52.5200, Longitude: 13.4050},
		DurationMinutes: 90,
		Interests:       []string{"historic"},
		Vibe:            "balanced",
		Pace:            "moderate",
	}
}

func newRouteService(agg *stubAggregator, routing *stubRouting, geocoder *stubGeocoder) *RouteService {
	var defOrigin = &DefaultOrigin{
		Coordinate: route.Coordinate{Latitude: 52.520008, Longitude: 13.404954},
		Label:      "Berlin, Germany",
	}
	return NewRouteService(agg, routing, geocoder, nil, defOrigin, zap.NewNop())
}

func TestGenerate_BuildsRoute(t *testing.T) {
	svc := newRouteService(
		&stubAggregator{stops: testStops()},
		&stubRouting{},
		&stubGeocoder{label: "Mitte, Berlin, Germany"},
	)

	rt, err := svc.Generate(context.Background(), uuid.New(), validRequest())
	require.NoError(t, err)

	require.Len(t, rt.Stops, 2)
	assert.Equal(t, "Brandenburg Gate", rt.Stops[0].Name)
	assert.Equal(t, "Mitte, Berlin, Germany", rt.OriginLabel)
	assert.Greater(t, rt.TotalDistanceMeters, 0.0)
	assert.Greater(t, rt.EstimatedMinutes, 0)
	require.Len(t, rt.Polyline, 3, "origin plus two stops")
}

func TestGenerate_RoutingFailureFallsBackToStraightLine(t *testing.T) {
	routingStub := &stubRouting{err: errors.New("osrm down")}
	svc := newRouteService(
		&stubAggregator{stops: testStops()},
		routingStub,
		&stubGeocoder{label: "Mitte"},
	)

	rt, err := svc.Generate(context.Background(), uuid.New(), validRequest())
	require.NoError(t, err, "routing failure must not fail generation")

	waypoints := rt.Waypoints()
	assert.Equal(t, waypoints, rt.Polyline, "fallback polyline is the straight line through the waypoints")
	assert.Equal(t, 1, routingStub.calls)

	// Total distance comes from the leg distances, not the polyline.
	assert.Greater(t, rt.TotalDistanceMeters, 0.0)
}

func TestGenerate_AggregatorErrorsPropagate(t *testing.T) {
	svc := newRouteService(
		&stubAggregator{err: route.ErrNoCandidates},
		&stubRouting{},
		&stubGeocoder{},
	)

	_, err := svc.Generate(context.Background(), uuid.New(), validRequest())
	assert.ErrorIs(t, err, route.ErrNoCandidates)

	svc = newRouteService(
		&stubAggregator{err: route.ErrSourceUnavailable},
		&stubRouting{},
		&stubGeocoder{},
	)
	_, err = svc.Generate(context.Background(), uuid.New(), validRequest())
	assert.ErrorIs(t, err, route.ErrSourceUnavailable)
}

func TestGenerate_NoOriginUsesDefault(t *testing.T) {
	svc := newRouteService(
		&stubAggregator{stops: testStops()},
		&stubRouting{},
		&stubGeocoder{err: errors.New("should not be called for the default origin")},
	)

	req := validRequest()
	req.Origin = nil
	rt, err := svc.Generate(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.InDelta(t, 52.520008, rt.Origin.Latitude, 0.0001)
	assert.Equal(t, "Berlin, Germany", rt.OriginLabel)
}

func TestGenerate_NoOriginAndNoDefaultFails(t *testing.T) {
	svc := NewRouteService(
		&stubAggregator{stops: testStops()},
		&stubRouting{},
		&stubGeocoder{},
		nil, nil, zap.NewNop(),
	)

	req := validRequest()
	req.Origin = nil
	_, err := svc.Generate(context.Background(), uuid.New(), req)
	assert.ErrorIs(t, err, route.ErrLocationUnavailable)
}

func TestGenerate_GeocoderFailureUsesFallbackLabel(t *testing.T) {
	svc := newRouteService(
		&stubAggregator{stops: testStops()},
		&stubRouting{},
		&stubGeocoder{err: errors.New("nominatim 429")},
	)

	rt, err := svc.Generate(context.Background(), uuid.New(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "Berlin, Germany", rt.OriginLabel)
}

func TestGenerate_InvalidPreferences(t *testing.T) {
	svc := newRouteService(&stubAggregator{stops: testStops()}, &stubRouting{}, &stubGeocoder{})

	req := validRequest()
	req.DurationMinutes = 7
	_, err := svc.Generate(context.Background(), uuid.New(), req)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	req = validRequest()
	req.Interests = nil
	_, err = svc.Generate(context.Background(), uuid.New(), req)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	req = validRequest()
	req.Vibe = "chaotic"
	_, err = svc.Generate(context.Background(), uuid.New(), req)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}
