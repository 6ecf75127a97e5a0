package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/eventlog"
)

// EventSink receives the admin feed: one human-readable line per server
// state transition. The administrative dashboard attaches one to render its
// messages pane. Sinks are called from the notifier's own goroutine, never
// from a connection handler.
type EventSink interface {
	ServerEvent(ev eventlog.Event)
}

// Notifier fans admin feed events out to the event log and any attached
// sinks. Handlers publish through a buffered channel so a slow store or sink
// never stalls the core; when the buffer is full the event is dropped from
// the feed (it is still in the structured log).
type Notifier struct {
	store  eventlog.Store
	events chan eventlog.Event
	stopCh chan struct{}
	doneCh chan struct{}

	mu    sync.RWMutex
	sinks []EventSink
}

// NewNotifier creates a notifier persisting to store.
func NewNotifier(store eventlog.Store, buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 256
	}
	return &Notifier{
		store:  store,
		events: make(chan eventlog.Event, buffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Attach registers a sink for subsequent events.
func (n *Notifier) Attach(sink EventSink) {
	n.mu.Lock()
	n.sinks = append(n.sinks, sink)
	n.mu.Unlock()
}

// Run drains the event channel until Stop. Run in its own goroutine.
func (n *Notifier) Run() {
	defer close(n.doneCh)
	for {
		select {
		case ev := <-n.events:
			n.dispatch(ev)
		case <-n.stopCh:
			// Flush whatever was already queued before stopping.
			for {
				select {
				case ev := <-n.events:
					n.dispatch(ev)
				default:
					return
				}
			}
		}
	}
}

// Stop signals the Run loop to exit.
func (n *Notifier) Stop() {
	close(n.stopCh)
}

// Wait blocks until the Run loop has completely finished.
func (n *Notifier) Wait() {
	<-n.doneCh
}

func (n *Notifier) dispatch(ev eventlog.Event) {
	if n.store != nil {
		if err := n.store.Append(&ev); err != nil {
			slog.Error("event log append failed", "kind", ev.Kind, "err", err)
		}
	}
	n.mu.RLock()
	sinks := n.sinks
	n.mu.RUnlock()
	for _, sink := range sinks {
		sink.ServerEvent(ev)
	}
}

// Publish queues one event line for the admin feed.
func (n *Notifier) Publish(kind, text string) {
	ev := eventlog.Event{At: time.Now().UTC(), Kind: kind, Text: text}
	select {
	case n.events <- ev:
	default:
		// Feed overloaded; the structured log already has the transition.
	}
}
