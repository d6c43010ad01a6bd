package payment

import (
	"maps"
	"sync"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// IsKnown reports whether s is one of the four payment states. External
// pushes may store anything, so entries are not guaranteed to be known.
func (s Status) IsKnown() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether s ends a payment attempt.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusFailed
}

// Entry is the current payment state of one order.
type Entry struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Store is the in-memory payment status table, keyed by order ID. Entries are
// overwritten, never deleted, and do not survive a restart.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

func (s *Store) Get(orderID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[orderID]
	return e, ok
}

// Set overwrites (or creates) the entry for orderID.
func (s *Store) Set(orderID string, status Status, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[orderID] = Entry{Status: status, Message: message}
}

// Update computes the next entry from the current one under the write lock.
// If fn returns an error nothing is written.
func (s *Store) Update(orderID string, fn func(current Entry, exists bool) (Entry, error)) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.entries[orderID]
	next, err := fn(current, exists)
	if err != nil {
		return current, err
	}
	s.entries[orderID] = next
	return next, nil
}

// DumpAll returns a copy of every entry.
func (s *Store) DumpAll() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.entries)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
