package eventlog_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/eventlog"
)

func newTestSQLite(t *testing.T) *eventlog.SQLiteStore {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "events.db")

	store, err := eventlog.NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("eventlog_test: failed to open db: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Error closing database: %v\n", err)
		}
	})
	return store
}

func TestSQLiteAppendRecent(t *testing.T) {
	store := newTestSQLite(t)

	// Millisecond precision matches what the store persists, so the events
	// round-trip exactly.
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ev := eventlog.Event{
			At:   base.Add(time.Duration(i) * time.Second),
			Kind: "registered",
			Text: fmt.Sprintf("User u%d has been connected to the chat", i),
		}
		if err := store.Append(&ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if ev.ID == 0 {
			t.Fatalf("Append: ID not assigned")
		}
	}

	got, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	want := []eventlog.Event{
		{ID: 2, At: base.Add(time.Second), Kind: "registered", Text: "User u1 has been connected to the chat"},
		{ID: 3, At: base.Add(2 * time.Second), Kind: "registered", Text: "User u2 has been connected to the chat"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Recent mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteRecentLimits(t *testing.T) {
	store := newTestSQLite(t)

	if got, err := store.Recent(5); err != nil || len(got) != 0 {
		t.Fatalf("Recent on empty store: got %v, %v", got, err)
	}
	if got, err := store.Recent(0); err != nil || got != nil {
		t.Fatalf("Recent(0): got %v, %v", got, err)
	}

	ev := eventlog.Event{Kind: "shutdown", Text: "Disconnecting 0 users."}
	if err := store.Append(&ev); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ev.At.IsZero() {
		t.Fatalf("Append: At not defaulted")
	}

	got, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Text != ev.Text {
		t.Fatalf("Recent: got %v", got)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "events.db")

	store, err := eventlog.NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	ev := eventlog.Event{
		At:   time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC),
		Kind: "disconnected",
		Text: "User alice has disconnected from the chat.",
	}
	if err := store.Append(&ev); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := eventlog.NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Recent(10)
	if err != nil {
		t.Fatalf("Recent after reopen: %v", err)
	}
	if diff := cmp.Diff([]eventlog.Event{ev}, got); diff != "" {
		t.Errorf("reopen mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStore(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	store := eventlog.NewMemoryWithClock(func() time.Time { return now })

	for i := 0; i < 4; i++ {
		ev := eventlog.Event{Kind: "registered", Text: fmt.Sprintf("u%d", i)}
		if err := store.Append(&ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if ev.ID != int64(i+1) {
			t.Fatalf("Append: ID=%d want %d", ev.ID, i+1)
		}
		if !ev.At.Equal(now) {
			t.Fatalf("Append: At=%v want %v", ev.At, now)
		}
	}

	got, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	want := []eventlog.Event{
		{ID: 3, At: now, Kind: "registered", Text: "u2"},
		{ID: 4, At: now, Kind: "registered", Text: "u3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Recent mismatch (-want +got):\n%s", diff)
	}

	if got, err := store.Recent(0); err != nil || got != nil {
		t.Fatalf("Recent(0): got %v, %v", got, err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
