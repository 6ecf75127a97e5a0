package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const dbTimeLayout = "2006-01-02 15:04:05.000"

// SQLiteStore keeps the admin event feed in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the event log database and runs migrations.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open db: %w", err)
	}

	ctx := context.Background()

	// Enable WAL mode for better concurrent read performance
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("eventlog: set WAL: %w", err)
	}
	// Set busy timeout to avoid "database is locked" under concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("eventlog: set busy_timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("eventlog: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS events (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		at   TEXT NOT NULL,
		kind TEXT NOT NULL,
		text TEXT NOT NULL CHECK(length(text) > 0)
	);
	CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Append records one event and assigns its ID.
func (s *SQLiteStore) Append(ev *Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	res, err := s.db.Exec(
		"INSERT INTO events (at, kind, text) VALUES (?, ?, ?)",
		ev.At.UTC().Format(dbTimeLayout), ev.Kind, ev.Text,
	)
	if err != nil {
		return fmt.Errorf("eventlog: append: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("eventlog: append id: %w", err)
	}
	ev.ID = id
	return nil
}

// Recent returns up to limit of the newest events in chronological order.
func (s *SQLiteStore) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		"SELECT id, at, kind, text FROM events ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("eventlog: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var ev Event
		var at string
		if err := rows.Scan(&ev.ID, &at, &ev.Kind, &ev.Text); err != nil {
			return nil, fmt.Errorf("eventlog: scan: %w", err)
		}
		t, err := time.Parse(dbTimeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("eventlog: parse time: %w", err)
		}
		ev.At = t.UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: rows: %w", err)
	}

	// Newest-first from the query, chronological for the caller.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
