package session

import "time"

// EventType identifies a progress event emitted by a walk session.
type EventType string

const (
	// EventArrival fires exactly once per stop, the first time the walker
	// comes within the arrival threshold of the active stop.
	EventArrival EventType = "arrival"

	// EventProgress fires on every applied position fix with the distance to
	// the active stop.
	EventProgress EventType = "progress"

	// EventSignalLost marks a transient GPS outage. Tracking resumes on the
	// next valid fix.
	EventSignalLost EventType = "signal_lost"

	// EventFinished marks a completed walk (last stop reached and finished).
	EventFinished EventType = "finished"

	// EventEnded marks an early, unconditional termination.
	EventEnded EventType = "ended"
)

// Event is a single progress notification for the walk's consumer (UI).
type Event struct {
	Type           EventType `json:"type"`
	StopIndex      int       `json:"stop_index"`
	DistanceMeters float64   `json:"distance_meters,omitempty"`
	Progress       float64   `json:"progress"`
	OccurredAt     time.Time `json:"occurred_at"`
}
