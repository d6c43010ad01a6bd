package sse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultQueueSize is the number of frames a subscriber may lag behind
// before it is dropped.
const DefaultQueueSize = 64

var (
	ErrSubscriberClosed  = errors.New("subscriber closed")
	ErrSubscriberLagging = errors.New("subscriber queue full")
)

// Subscriber is one open event-stream connection. Broadcasts only enqueue
// frames; the goroutine running serve is the only one touching the writer.
type Subscriber struct {
	ID        string
	CreatedAt time.Time

	queue chan []byte

	mu           sync.Mutex
	w            io.Writer
	flush        func() error
	setDeadline  func(time.Time) error
	writeTimeout time.Duration

	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewSubscriber wraps a plain writer with the default queue size. Frames are
// written as-is and never flushed.
func NewSubscriber(w io.Writer) *Subscriber {
	return newSubscriber(w, DefaultQueueSize)
}

func newSubscriber(w io.Writer, queueSize int) *Subscriber {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Subscriber{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		queue:     make(chan []byte, queueSize),
		w:         w,
		done:      make(chan struct{}),
	}
}

// newHTTPSubscriber wraps a response writer, flushing after every frame and
// bounding each write by writeTimeout when it is positive.
func newHTTPSubscriber(w http.ResponseWriter, cfg StreamConfig) *Subscriber {
	rc := http.NewResponseController(w)
	sub := newSubscriber(w, cfg.QueueSize)
	sub.flush = rc.Flush
	if cfg.WriteTimeout > 0 {
		sub.setDeadline = rc.SetWriteDeadline
		sub.writeTimeout = cfg.WriteTimeout
	}
	return sub
}

// Send queues frame without blocking. A full queue means the client stopped
// reading: the subscriber is closed and ErrSubscriberLagging returned.
func (s *Subscriber) Send(frame []byte) error {
	if s.closed.Load() {
		return ErrSubscriberClosed
	}
	select {
	case s.queue <- frame:
		return nil
	default:
		s.Close()
		return ErrSubscriberLagging
	}
}

// Write sends one frame to the connection right away. A failed write marks
// the subscriber closed, so every later write fails fast.
func (s *Subscriber) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSubscriberClosed
	}

	if s.setDeadline != nil {
		// Not every ResponseWriter supports deadlines (httptest.ResponseRecorder doesn't).
		_ = s.setDeadline(time.Now().Add(s.writeTimeout))
		defer func() { _ = s.setDeadline(time.Time{}) }()
	}

	_, err := s.w.Write(frame)
	if err == nil && s.flush != nil {
		err = s.flush()
	}
	if err != nil {
		s.Close()
	}
	return err
}

// Flush pushes buffered bytes (the response headers, right after connect).
func (s *Subscriber) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSubscriberClosed
	}
	if s.flush == nil {
		return nil
	}
	return s.flush()
}

// Close stops all further sends and releases the goroutine serving the
// subscriber. It never waits on the connection and is safe to call more than once.
func (s *Subscriber) Close() {
	s.closed.Store(true)
	s.closeOnce.Do(func() { close(s.done) })
}

// Done is closed once the subscriber has been closed.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// serve writes queued frames, plus a comment frame every heartbeat when it is
// positive, until ctx ends, the subscriber is closed or a write fails.
func (s *Subscriber) serve(ctx context.Context, heartbeat time.Duration) error {
	var tick <-chan time.Time
	if heartbeat > 0 {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return ErrSubscriberClosed
		case frame := <-s.queue:
			if err := s.Write(frame); err != nil {
				return err
			}
		case <-tick:
			if err := s.Write(heartbeatFrame); err != nil {
				return err
			}
		}
	}
}
