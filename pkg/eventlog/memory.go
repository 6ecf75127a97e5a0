package eventlog

import (
	"sync"
	"time"
)

// MemoryStore keeps the admin event feed in memory. It mirrors the SQLite
// store's behavior and is used in tests and when no database path is
// configured.
type MemoryStore struct {
	mu     sync.Mutex
	now    func() time.Time
	nextID int64
	events []Event
}

// NewMemory creates a MemoryStore using time.Now().UTC().
func NewMemory() *MemoryStore {
	return NewMemoryWithClock(func() time.Time { return time.Now().UTC() })
}

// NewMemoryWithClock creates a MemoryStore with a custom clock.
func NewMemoryWithClock(now func() time.Time) *MemoryStore {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &MemoryStore{now: now, nextID: 1}
}

// Append records one event and assigns its ID.
func (s *MemoryStore) Append(ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.At.IsZero() {
		ev.At = s.now()
	}
	ev.ID = s.nextID
	s.nextID++
	s.events = append(s.events, *ev)
	return nil
}

// Recent returns up to limit of the newest events in chronological order.
func (s *MemoryStore) Recent(limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		return nil, nil
	}
	start := len(s.events) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Event, len(s.events)-start)
	copy(out, s.events[start:])
	return out, nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}
