package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicWalkEvents is the Kafka topic all walk lifecycle events are published to.
const TopicWalkEvents = "walk.events"

// Event types carried on TopicWalkEvents.
const (
	RouteGenerated   = "walk.route.generated"
	WalkSaved        = "walk.saved"
	SessionStarted   = "walk.session.started"
	SessionCompleted = "walk.session.completed"
	SessionAbandoned = "walk.session.abandoned"
)

// RouteGeneratedEvent is emitted after a route is successfully built.
type RouteGeneratedEvent struct {
	UserID         uuid.UUID `json:"user_id"`
	OriginLat      float64   `json:"origin_lat"`
	OriginLng      float64   `json:"origin_lng"`
	StopCount      int       `json:"stop_count"`
	DistanceMeters float64   `json:"distance_meters"`
	DurationMin    int       `json:"duration_min"`
	Vibe           string    `json:"vibe"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// WalkSavedEvent is emitted when a user saves a generated route.
type WalkSavedEvent struct {
	WalkID     uuid.UUID `json:"walk_id"`
	UserID     uuid.UUID `json:"user_id"`
	ShareID    string    `json:"share_id"`
	Visibility string    `json:"visibility"`
	StopCount  int       `json:"stop_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SessionStartedEvent is emitted when a live walk session begins.
type SessionStartedEvent struct {
	SessionID  uuid.UUID `json:"session_id"`
	UserID     uuid.UUID `json:"user_id"`
	StopCount  int       `json:"stop_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SessionCompletedEvent is emitted when a walker finishes at the last stop.
type SessionCompletedEvent struct {
	SessionID      uuid.UUID `json:"session_id"`
	UserID         uuid.UUID `json:"user_id"`
	DistanceMeters float64   `json:"distance_meters"`
	StopsCompleted int       `json:"stops_completed"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// SessionAbandonedEvent is emitted when a session ends before completion.
type SessionAbandonedEvent struct {
	SessionID      uuid.UUID `json:"session_id"`
	UserID         uuid.UUID `json:"user_id"`
	StopsCompleted int       `json:"stops_completed"`
	OccurredAt     time.Time `json:"occurred_at"`
}
