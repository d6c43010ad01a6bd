package sse

import (
	"errors"
	"log"
	"net/http"
	"time"
)

var heartbeatFrame = []byte(": ping\n\n")

// StreamConfig tunes the long-lived connections of a feed.
type StreamConfig struct {
	// Heartbeat is the interval between comment frames. Zero disables them.
	Heartbeat time.Duration
	// WriteTimeout bounds a single frame write. Zero means no deadline.
	WriteTimeout time.Duration
	// QueueSize is how many frames a subscriber may lag behind. Zero means DefaultQueueSize.
	QueueSize int
}

// StreamHandler serves a feed: every request becomes a subscriber of the
// registry until the client goes away, falls too far behind or a write fails.
type StreamHandler struct {
	registry *Registry
	cfg      StreamConfig
}

func NewStreamHandler(registry *Registry, cfg StreamConfig) *StreamHandler {
	return &StreamHandler{registry: registry, cfg: cfg}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := newHTTPSubscriber(w, h.cfg)
	if err := sub.Flush(); err != nil {
		log.Printf("[SSE] %s: streaming unsupported: %v", h.registry.Name(), err)
		return
	}

	handle := h.registry.Register(sub)
	log.Printf("[SSE] %s: subscriber %s connected (%d active)", h.registry.Name(), sub.ID, h.registry.Len())

	err := sub.serve(r.Context(), h.cfg.Heartbeat)

	h.registry.Unregister(handle)
	sub.Close()
	if err != nil && !errors.Is(err, r.Context().Err()) && !errors.Is(err, ErrSubscriberClosed) {
		log.Printf("[SSE] %s: subscriber %s write failed: %v", h.registry.Name(), sub.ID, err)
	}
	log.Printf("[SSE] %s: subscriber %s disconnected (%d active)", h.registry.Name(), sub.ID, h.registry.Len())
}
