package session

import (
	"fmt"

	"github.com/wanderwalks/service-walks/internal/domain"
	"github.com/wanderwalks/service-walks/internal/domain/route"
	"github.com/wanderwalks/service-walks/internal/geo"
)

// DefaultArrivalThresholdMeters is the proximity radius used to declare a stop reached.
const DefaultArrivalThresholdMeters = 50

// Session is the state machine tracking live progress along a Route. It is not
// safe for concurrent use: callers must serialize position updates and
// navigation commands (each is an atomic read-modify-write of the active index
// and completed set).
type Session struct {
	route            *route.Route
	arrivalThreshold float64

	active      int
	completed   map[int]struct{}
	lastFix     *Fix
	lastDist    float64
	hasDistance bool
	finished    bool
	ended       bool
}

// NewSession creates a Session for the given route. A non-positive threshold
// falls back to DefaultArrivalThresholdMeters.
func NewSession(rt *route.Route, arrivalThresholdMeters float64) (*Session, error) {
	if rt == nil || len(rt.Stops) == 0 {
		return nil, domain.NewValidationError("route must have at least one stop")
	}
	if arrivalThresholdMeters <= 0 {
		arrivalThresholdMeters = DefaultArrivalThresholdMeters
	}
	return &Session{
		route:            rt,
		arrivalThreshold: arrivalThresholdMeters,
		completed:        make(map[int]struct{}),
	}, nil
}

// ApplyFix recomputes the distance from the fix to the currently active stop
// and emits progress events. The arrival event fires exactly once per stop:
// a fix strictly inside the threshold of a stop that is not yet completed
// marks it completed; further fixes inside the threshold do not re-emit.
func (s *Session) ApplyFix(fix Fix) []Event {
	if s.finished || s.ended {
		return nil
	}

	stop := s.route.Stops[s.active]
	dist := geo.Distance(
		fix.Coordinate.Latitude, fix.Coordinate.Longitude,
		stop.Coordinate.Latitude, stop.Coordinate.Longitude,
	)
	s.lastFix = &fix
	s.lastDist = dist
	s.hasDistance = true

	events := []Event{{
		Type:           EventProgress,
		StopIndex:      s.active,
		DistanceMeters: dist,
		Progress:       s.Progress(),
		OccurredAt:     fix.Timestamp,
	}}

	if _, done := s.completed[s.active]; dist < s.arrivalThreshold && !done {
		s.completed[s.active] = struct{}{}
		events = append(events, Event{
			Type:           EventArrival,
			StopIndex:      s.active,
			DistanceMeters: dist,
			Progress:       s.Progress(),
			OccurredAt:     fix.Timestamp,
		})
	}
	return events
}

// Next advances the active stop. It is a no-op at the last stop.
func (s *Session) Next() bool {
	if s.finished || s.ended || s.active >= len(s.route.Stops)-1 {
		return false
	}
	s.active++
	s.hasDistance = false
	return true
}

// Previous steps back to the prior stop. It is a no-op at the first stop.
func (s *Session) Previous() bool {
	if s.finished || s.ended || s.active == 0 {
		return false
	}
	s.active--
	s.hasDistance = false
	return true
}

// JumpTo sets the active stop directly, for reviewing any stop. It does not
// alter the completed set.
func (s *Session) JumpTo(index int) error {
	if s.finished || s.ended {
		return domain.NewInvalidStateError("terminated", "jump")
	}
	if index < 0 || index >= len(s.route.Stops) {
		return domain.NewValidationError(fmt.Sprintf("stop index out of range: %d", index))
	}
	s.active = index
	s.hasDistance = false
	return nil
}

// Finish ends the walk. Valid only when the active stop is the last stop and
// it has been completed.
func (s *Session) Finish() error {
	if s.finished || s.ended {
		return domain.NewInvalidStateError("terminated", "finish")
	}
	last := len(s.route.Stops) - 1
	if s.active != last {
		return domain.NewInvalidStateError("in_progress", "finish")
	}
	if _, done := s.completed[last]; !done {
		return domain.NewInvalidStateError("last_stop_pending", "finish")
	}
	s.finished = true
	return nil
}

// End terminates the walk unconditionally.
func (s *Session) End() {
	s.ended = true
}

// Progress returns the completed fraction in [0, 1]. Display only; it plays
// no part in transition logic.
func (s *Session) Progress() float64 {
	return float64(len(s.completed)) / float64(len(s.route.Stops))
}

// ActiveIndex returns the 0-based index of the active stop.
func (s *Session) ActiveIndex() int { return s.active }

// IsCompleted reports whether the stop at index has been arrived at.
func (s *Session) IsCompleted(index int) bool {
	_, done := s.completed[index]
	return done
}

// CompletedCount returns the number of completed stops.
func (s *Session) CompletedCount() int { return len(s.completed) }

// LastDistance returns the most recently computed distance to the active stop.
// The second return is false until a fix has been applied to the active stop.
func (s *Session) LastDistance() (float64, bool) {
	return s.lastDist, s.hasDistance
}

// LastFix returns the last applied position fix, if any.
func (s *Session) LastFix() (Fix, bool) {
	if s.lastFix == nil {
		return Fix{}, false
	}
	return *s.lastFix, true
}

// Route returns the route being walked.
func (s *Session) Route() *route.Route { return s.route }

// Finished reports whether Finish succeeded.
func (s *Session) Finished() bool { return s.finished }

// Ended reports whether the session was terminated early.
func (s *Session) Ended() bool { return s.ended }

// Terminated reports whether the session reached either terminal state.
func (s *Session) Terminated() bool { return s.finished || s.ended }
