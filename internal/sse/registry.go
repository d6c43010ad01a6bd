package sse

import (
	"slices"
	"sync"
)

// Handle identifies a registration. It is the subscriber's ID.
type Handle string

// Registry holds the live subscribers of one feed, in registration order.
type Registry struct {
	name string

	mu   sync.RWMutex
	subs []*Subscriber
}

func NewRegistry(name string) *Registry {
	return &Registry{name: name}
}

// Name returns the feed name used in log lines.
func (r *Registry) Name() string {
	return r.name
}

// Register adds a subscriber. It never fails.
func (r *Registry) Register(sub *Subscriber) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = append(r.subs, sub)
	return Handle(sub.ID)
}

// Unregister removes the subscriber behind h. Unknown or already removed
// handles are a no-op; the return value reports whether anything was removed.
func (r *Registry) Unregister(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.subs, func(s *Subscriber) bool { return Handle(s.ID) == h })
	if i < 0 {
		return false
	}
	r.subs = slices.Delete(r.subs, i, i+1)
	return true
}

// ForEach calls fn for every subscriber registered at call time. The set is
// snapshotted first, so fn may register or unregister freely.
func (r *Registry) ForEach(fn func(sub *Subscriber)) {
	r.mu.RLock()
	snapshot := slices.Clone(r.subs)
	r.mu.RUnlock()

	for _, sub := range snapshot {
		fn(sub)
	}
}

// Len returns the number of live subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
