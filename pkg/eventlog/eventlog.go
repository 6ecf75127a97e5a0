// Package eventlog persists the human-readable admin event feed.
//
// The chat core emits one line per state transition (connect attempts,
// registrations, private-chat negotiation outcomes, disconnects, shutdown);
// the administrative dashboard renders these lines. A Store keeps the feed so
// a dashboard attaching later can backfill its view. Chat-room message bodies
// are never stored here.
package eventlog

import "time"

// Event is one line of the admin feed.
type Event struct {
	ID   int64     // assigned by the store
	At   time.Time // when the transition happened
	Kind string    // short machine tag, e.g. "registered", "disconnected"
	Text string    // the human-readable line the dashboard displays
}

// Store is the persistence interface for the admin event feed.
// Implementations include the SQLite store and an in-memory store for tests.
type Store interface {
	// Append records one event and assigns its ID.
	Append(ev *Event) error

	// Recent returns up to limit of the newest events in chronological
	// order.
	Recent(limit int) ([]Event, error)

	Close() error
}

// Compile-time checks.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
