package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wanderwalks/service-walks/internal/domain/route"
)

// ErrStreamClosed is returned when publishing to a cancelled stream.
var ErrStreamClosed = errors.New("location stream closed")

// Fix is a single position update tagged with a monotonic timestamp.
type Fix struct {
	Coordinate route.Coordinate `json:"coordinate"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Stream is a cancellable sequence of position fixes with a single consumer.
// Cancel guarantees no further deliveries: publishes after Cancel are dropped
// and the fix channel is closed so the consumer loop terminates.
type Stream struct {
	fixes chan Fix
	done  chan struct{}
	once  sync.Once
	mu    sync.Mutex
}

// NewStream creates a Stream with the given delivery buffer.
func NewStream(buffer int) *Stream {
	return &Stream{
		fixes: make(chan Fix, buffer),
		done:  make(chan struct{}),
	}
}

// Publish delivers a fix to the consumer. It returns ErrStreamClosed after
// Cancel, and drops the fix without blocking when the consumer is behind and
// the buffer is full (a newer fix is always on its way).
func (s *Stream) Publish(fix Fix) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.done:
		return ErrStreamClosed
	default:
	}

	select {
	case s.fixes <- fix:
	default:
	}
	return nil
}

// Fixes returns the receive side of the stream. The channel is closed on Cancel.
func (s *Stream) Fixes() <-chan Fix {
	return s.fixes
}

// Cancel stops the stream. Safe to call more than once.
func (s *Stream) Cancel() {
	s.once.Do(func() {
		close(s.done)
		// Serialize against in-flight Publish calls before closing the
		// fix channel.
		s.mu.Lock()
		defer s.mu.Unlock()
		close(s.fixes)
	})
}
