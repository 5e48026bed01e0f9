package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WalkerStats is the per-user dashboard aggregate of completed walks.
type WalkerStats struct {
	UserID              uuid.UUID  `json:"user_id"`
	WalksCompleted      int64      `json:"walks_completed"`
	TotalDistanceMeters float64    `json:"total_distance_meters"`
	TotalStopsVisited   int64      `json:"total_stops_visited"`
	LastWalkAt          *time.Time `json:"last_walk_at,omitempty"`
}

// Repository defines the persistence contract for walker statistics.
type Repository interface {
	// FindByUserID retrieves a user's stats, returning a zero-valued record
	// when the user has not completed any walks yet.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*WalkerStats, error)

	// RecordCompletion folds one completed walk into the user's stats.
	RecordCompletion(ctx context.Context, userID uuid.UUID, distanceMeters float64, stopsVisited int, completedAt time.Time) error
}
