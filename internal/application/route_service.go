package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderwalks/service-walks/internal/domain/route"
	"github.com/wanderwalks/service-walks/internal/events"
	"github.com/wanderwalks/service-walks/internal/geo"
	"github.com/wanderwalks/service-walks/internal/geocode"
	"github.com/wanderwalks/service-walks/internal/platform/kafka"
	"github.com/wanderwalks/service-walks/internal/routing"
)

const eventSource = "service-walks"

// GenerateRouteRequest holds the data needed to generate a walking route.
type GenerateRouteRequest struct {
	Origin          *route.Coordinate `json:"origin"`
	DurationMinutes int               `json:"duration_minutes" binding:"required"`
	Interests       []string          `json:"interests" binding:"required"`
	Vibe            string            `json:"vibe" binding:"required"`
	Pace            string            `json:"pace" binding:"required"`
}

// DefaultOrigin is the fallback starting point used when the caller cannot
// provide a position fix.
type DefaultOrigin struct {
	Coordinate route.Coordinate
	Label      string
}

// CandidateAggregator supplies the filtered, enriched candidate stops for an
// origin and set of preferences.
type CandidateAggregator interface {
	Aggregate(ctx context.Context, origin route.Coordinate, prefs route.Preferences) ([]route.PointOfInterest, error)
}

// RouteService orchestrates itinerary generation: candidate aggregation,
// path routing, origin labelling and event publication.
type RouteService struct {
	aggregator    CandidateAggregator
	routingSource routing.Source
	geocoder      geocode.ReverseGeocoder
	producer      *kafka.Producer
	defaultOrigin *DefaultOrigin
	logger        *zap.Logger
}

// NewRouteService creates a new RouteService.
func NewRouteService(
	aggregator CandidateAggregator,
	routingSource routing.Source,
	geocoder geocode.ReverseGeocoder,
	producer *kafka.Producer,
	defaultOrigin *DefaultOrigin,
	logger *zap.Logger,
) *RouteService {
	return &RouteService{
		aggregator:    aggregator,
		routingSource: routingSource,
		geocoder:      geocoder,
		producer:      producer,
		defaultOrigin: defaultOrigin,
		logger:        logger,
	}
}

// Generate builds a walking route for the given preferences.
func (s *RouteService) Generate(ctx context.Context, userID uuid.UUID, req GenerateRouteRequest) (*route.Route, error) {
	prefs := route.Preferences{
		DurationMinutes: req.DurationMinutes,
		Interests:       req.Interests,
		Vibe:            route.Vibe(req.Vibe),
		Pace:            route.Pace(req.Pace),
	}
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	// Resolve the starting point: the caller's fix, or the configured default.
	origin, originLabel, err := s.resolveOrigin(ctx, req.Origin)
	if err != nil {
		return nil, err
	}

	stops, err := s.aggregator.Aggregate(ctx, origin, prefs)
	if err != nil {
		return nil, err
	}

	rt := &route.Route{
		Origin:      origin,
		OriginLabel: originLabel,
		Stops:       stops,
		Preferences: prefs,
	}

	waypoints := rt.Waypoints()
	rt.TotalDistanceMeters = geo.PathLength(toPairs(waypoints))
	rt.EstimatedMinutes = route.EstimateMinutes(rt.TotalDistanceMeters, prefs.Pace)

	// A routing failure degrades to the straight-line polyline, never to an error.
	polyline, err := s.routingSource.Path(ctx, waypoints)
	if err != nil {
		s.logger.Warn("routing source unavailable, using straight-line polyline",
			zap.Int("waypoints", len(waypoints)),
			zap.Error(err),
		)
		polyline = routing.StraightLine(waypoints)
	}
	rt.Polyline = polyline

	s.publishEvent(ctx, events.TopicWalkEvents, events.RouteGenerated, events.RouteGeneratedEvent{
		UserID:         userID,
		OriginLat:      origin.Latitude,
		OriginLng:      origin.Longitude,
		StopCount:      len(stops),
		DistanceMeters: rt.TotalDistanceMeters,
		DurationMin:    rt.EstimatedMinutes,
		Vibe:           string(prefs.Vibe),
		OccurredAt:     time.Now().UTC(),
	})

	return rt, nil
}

func (s *RouteService) resolveOrigin(ctx context.Context, requested *route.Coordinate) (route.Coordinate, string, error) {
	if requested == nil {
		if s.defaultOrigin == nil {
			return route.Coordinate{}, "", route.ErrLocationUnavailable
		}
		return s.defaultOrigin.Coordinate, s.defaultOrigin.Label, nil
	}

	origin, err := route.NewCoordinate(requested.Latitude, requested.Longitude)
	if err != nil {
		return route.Coordinate{}, "", err
	}

	label := s.reverseLabel(ctx, origin)
	return origin, label, nil
}

// reverseLabel resolves a display label for the origin, falling back to the
// default label when the geocoder fails.
func (s *RouteService) reverseLabel(ctx context.Context, origin route.Coordinate) string {
	if s.geocoder == nil {
		return s.fallbackLabel()
	}

	label, err := s.geocoder.Reverse(ctx, origin.Latitude, origin.Longitude)
	if err != nil || label == "" {
		s.logger.Debug("reverse geocoding failed, using fallback label", zap.Error(err))
		return s.fallbackLabel()
	}
	return label
}

func (s *RouteService) fallbackLabel() string {
	if s.defaultOrigin != nil && s.defaultOrigin.Label != "" {
		return s.defaultOrigin.Label
	}
	return "Your starting point"
}

func (s *RouteService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	if s.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toPairs(coords []route.Coordinate) [][2]float64 {
	pairs := make([][2]float64, len(coords))
	for i, c := range coords {
		pairs[i] = [2]float64{c.Latitude, c.Longitude}
	}
	return pairs
}
