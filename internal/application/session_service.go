package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderwalks/service-walks/internal/domain"
	"github.com/wanderwalks/service-walks/internal/domain/route"
	"github.com/wanderwalks/service-walks/internal/domain/session"
	"github.com/wanderwalks/service-walks/internal/events"
	"github.com/wanderwalks/service-walks/internal/geo"
	"github.com/wanderwalks/service-walks/internal/platform/kafka"
)

// StartSessionRequest holds the route the user commits to walking.
type StartSessionRequest struct {
	Route route.Route `json:"route" binding:"required"`
}

// PositionUpdateRequest is one position fix from the walker's device.
type PositionUpdateRequest struct {
	Latitude  float64    `json:"latitude" binding:"required"`
	Longitude float64    `json:"longitude" binding:"required"`
	Timestamp *time.Time `json:"timestamp"`
}

// JumpRequest selects a stop to review.
type JumpRequest struct {
	StopIndex *int `json:"stop_index" binding:"required"`
}

// SessionDTO is the response representation of a live walk session.
type SessionDTO struct {
	ID             uuid.UUID `json:"id"`
	ActiveIndex    int       `json:"active_index"`
	StopCount      int       `json:"stop_count"`
	CompletedCount int       `json:"completed_count"`
	Completed      []int     `json:"completed"`
	Progress       float64   `json:"progress"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
	Finished       bool      `json:"finished"`
	Ended          bool      `json:"ended"`
}

// trackedSession pairs the session state machine with its fix stream and the
// SSE subscribers watching it. The mutex serializes position updates against
// navigation commands; arrival events must never be lost to interleaving.
type trackedSession struct {
	id     uuid.UUID
	userID uuid.UUID

	mu      sync.Mutex
	sess    *session.Session
	stream  *session.Stream
	walked  float64
	lastFix *session.Fix

	subMu   sync.Mutex
	subs    map[int]chan session.Event
	nextSub int
}

// SessionService manages live walk sessions. Sessions live in memory only;
// completion facts reach the dashboard through the event stream.
type SessionService struct {
	producer         *kafka.Producer
	logger           *zap.Logger
	arrivalThreshold float64

	mu       sync.RWMutex
	sessions map[uuid.UUID]*trackedSession
}

// NewSessionService creates a new SessionService.
func NewSessionService(producer *kafka.Producer, arrivalThresholdMeters float64, logger *zap.Logger) *SessionService {
	return &SessionService{
		producer:         producer,
		logger:           logger,
		arrivalThreshold: arrivalThresholdMeters,
		sessions:         make(map[uuid.UUID]*trackedSession),
	}
}

// Start begins tracking a walk along the given route.
func (s *SessionService) Start(ctx context.Context, userID uuid.UUID, req StartSessionRequest) (*SessionDTO, error) {
	sess, err := session.NewSession(&req.Route, s.arrivalThreshold)
	if err != nil {
		return nil, err
	}

	tracked := &trackedSession{
		id:     uuid.New(),
		userID: userID,
		sess:   sess,
		stream: session.NewStream(16),
		subs:   make(map[int]chan session.Event),
	}

	s.mu.Lock()
	s.sessions[tracked.id] = tracked
	s.mu.Unlock()

	go s.consumeFixes(tracked)

	s.publishEvent(ctx, events.SessionStarted, events.SessionStartedEvent{
		SessionID:  tracked.id,
		UserID:     userID,
		StopCount:  len(req.Route.Stops),
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("walk session started",
		zap.String("session_id", tracked.id.String()),
		zap.String("user_id", userID.String()),
		zap.Int("stops", len(req.Route.Stops)),
	)
	return snapshot(tracked), nil
}

// consumeFixes drains the session's fix stream, applying each fix to the
// state machine and fanning resulting events out to subscribers.
func (s *SessionService) consumeFixes(t *trackedSession) {
	for fix := range t.stream.Fixes() {
		t.mu.Lock()
		if prev := t.lastFix; prev != nil {
			t.walked += geo.Distance(
				prev.Coordinate.Latitude, prev.Coordinate.Longitude,
				fix.Coordinate.Latitude, fix.Coordinate.Longitude,
			)
		}
		f := fix
		t.lastFix = &f
		evts := t.sess.ApplyFix(fix)
		t.mu.Unlock()

		t.broadcast(evts)
	}
}

// Get returns the current state of a session.
func (s *SessionService) Get(userID, sessionID uuid.UUID) (*SessionDTO, error) {
	t, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return snapshot(t), nil
}

// PushPosition feeds one position fix into the session's stream.
func (s *SessionService) PushPosition(userID, sessionID uuid.UUID, req PositionUpdateRequest) (*SessionDTO, error) {
	t, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	coord, err := route.NewCoordinate(req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	if err := t.stream.Publish(session.Fix{Coordinate: coord, Timestamp: ts}); err != nil {
		return nil, domain.NewInvalidStateError("terminated", "position update")
	}
	return snapshot(t), nil
}

// ReportSignalLost surfaces a transient position-stream failure to watchers.
// The session stays active; tracking resumes on the next valid fix.
func (s *SessionService) ReportSignalLost(userID, sessionID uuid.UUID) error {
	t, err := s.lookup(userID, sessionID)
	if err != nil {
		return err
	}
	t.broadcast([]session.Event{{
		Type:       session.EventSignalLost,
		OccurredAt: time.Now().UTC(),
	}})
	return nil
}

// Next advances the session to the next stop.
func (s *SessionService) Next(userID, sessionID uuid.UUID) (*SessionDTO, error) {
	return s.navigate(userID, sessionID, func(sess *session.Session) error {
		sess.Next()
		return nil
	})
}

// Previous steps the session back one stop.
func (s *SessionService) Previous(userID, sessionID uuid.UUID) (*SessionDTO, error) {
	return s.navigate(userID, sessionID, func(sess *session.Session) error {
		sess.Previous()
		return nil
	})
}

// JumpTo moves the active stop pointer directly.
func (s *SessionService) JumpTo(userID, sessionID uuid.UUID, index int) (*SessionDTO, error) {
	return s.navigate(userID, sessionID, func(sess *session.Session) error {
		return sess.JumpTo(index)
	})
}

func (s *SessionService) navigate(userID, sessionID uuid.UUID, op func(*session.Session) error) (*SessionDTO, error) {
	t, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	opErr := op(t.sess)
	dto := snapshotLocked(t)
	t.mu.Unlock()

	if opErr != nil {
		return nil, opErr
	}

	t.broadcast([]session.Event{{
		Type:       session.EventProgress,
		StopIndex:  dto.ActiveIndex,
		Progress:   dto.Progress,
		OccurredAt: time.Now().UTC(),
	}})
	return dto, nil
}

// Finish completes the walk. Valid only at the completed last stop.
func (s *SessionService) Finish(ctx context.Context, userID, sessionID uuid.UUID) (*SessionDTO, error) {
	t, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	finishErr := t.sess.Finish()
	walked := t.walked
	completed := t.sess.CompletedCount()
	dto := snapshotLocked(t)
	t.mu.Unlock()

	if finishErr != nil {
		return nil, finishErr
	}

	t.broadcast([]session.Event{{
		Type:       session.EventFinished,
		Progress:   dto.Progress,
		OccurredAt: time.Now().UTC(),
	}})
	s.teardown(t)

	s.publishEvent(ctx, events.SessionCompleted, events.SessionCompletedEvent{
		SessionID:      sessionID,
		UserID:         userID,
		DistanceMeters: walked,
		StopsCompleted: completed,
		OccurredAt:     time.Now().UTC(),
	})

	s.logger.Info("walk session finished",
		zap.String("session_id", sessionID.String()),
		zap.Float64("distance_walked_m", walked),
		zap.Int("stops_completed", completed),
	)
	return dto, nil
}

// End terminates the walk early, unconditionally.
func (s *SessionService) End(ctx context.Context, userID, sessionID uuid.UUID) error {
	t, err := s.lookup(userID, sessionID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.sess.End()
	completed := t.sess.CompletedCount()
	t.mu.Unlock()

	t.broadcast([]session.Event{{
		Type:       session.EventEnded,
		OccurredAt: time.Now().UTC(),
	}})
	s.teardown(t)

	s.publishEvent(ctx, events.SessionAbandoned, events.SessionAbandonedEvent{
		SessionID:      sessionID,
		UserID:         userID,
		StopsCompleted: completed,
		OccurredAt:     time.Now().UTC(),
	})

	s.logger.Info("walk session ended early",
		zap.String("session_id", sessionID.String()),
		zap.Int("stops_completed", completed),
	)
	return nil
}

// Subscribe registers a watcher for the session's live events. The returned
// cancel function must be called when the watcher disconnects.
func (s *SessionService) Subscribe(userID, sessionID uuid.UUID) (<-chan session.Event, func(), error) {
	t, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan session.Event, 32)
	t.subMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	t.subMu.Unlock()

	cancel := func() {
		t.subMu.Lock()
		if _, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(ch)
		}
		t.subMu.Unlock()
	}
	return ch, cancel, nil
}

func (s *SessionService) lookup(userID, sessionID uuid.UUID) (*trackedSession, error) {
	s.mu.RLock()
	t, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.NewNotFoundError("session", sessionID.String())
	}
	if t.userID != userID {
		return nil, domain.NewForbiddenError("session belongs to another user")
	}
	return t, nil
}

// teardown cancels the fix stream, closes all subscriber channels and drops
// the session from the registry. The session is in-memory only; after this
// it is gone.
func (s *SessionService) teardown(t *trackedSession) {
	t.stream.Cancel()

	t.subMu.Lock()
	for id, ch := range t.subs {
		delete(t.subs, id)
		close(ch)
	}
	t.subMu.Unlock()

	s.mu.Lock()
	delete(s.sessions, t.id)
	s.mu.Unlock()
}

// broadcast delivers events to all subscribers, dropping for slow watchers
// rather than blocking the tracking loop.
func (t *trackedSession) broadcast(evts []session.Event) {
	if len(evts) == 0 {
		return
	}
	t.subMu.Lock()
	defer t.subMu.Unlock()
	for _, evt := range evts {
		for _, ch := range t.subs {
			select {
			case ch <- evt:
			default:
			}
		}
	}
}

func (s *SessionService) publishEvent(ctx context.Context, eventType string, data interface{}) {
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

	if err := s.producer.PublishEvent(ctx, events.TopicWalkEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func snapshot(t *trackedSession) *SessionDTO {
	t.mu.Lock()
	defer t.mu.Unlock()
	return snapshotLocked(t)
}

// snapshotLocked builds a DTO; the caller must hold t.mu.
func snapshotLocked(t *trackedSession) *SessionDTO {
	sess := t.sess
	stops := len(sess.Route().Stops)

	completed := make([]int, 0, sess.CompletedCount())
	for i := 0; i < stops; i++ {
		if sess.IsCompleted(i) {
			completed = append(completed, i)
		}
	}

	dto := &SessionDTO{
		ID:             t.id,
		ActiveIndex:    sess.ActiveIndex(),
		StopCount:      stops,
		CompletedCount: sess.CompletedCount(),
		Completed:      completed,
		Progress:       sess.Progress(),
		Finished:       sess.Finished(),
		Ended:          sess.Ended(),
	}
	if dist, ok := sess.LastDistance(); ok {
		d := dist
		dto.DistanceMeters = &d
	}
	return dto
}
