// Package server implements the chat service core: the session registry, the
// per-connection request loop, message routing, and the private-chat
// negotiation protocol.
package server

import (
	"context"
	"sync"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/eventlog"
	"github.com/AdrianFall/DesktopChatApp-Server/pkg/transport"
)

// Dependencies holds external dependencies for the server.
// Server assumes ownership of Events and will Close() it on shutdown.
type Dependencies struct {
	Events eventlog.Store
}

// Server is the chat server: it owns the registry, the routing layers, and
// the accept loops, and exposes the two administrative commands (Start and
// ShutdownAndDisconnectAll).
type Server struct {
	cfg      Config
	reg      *Registry
	router   *Router
	neg      *Negotiator
	notifier *Notifier
	events   eventlog.Store

	listeners []transport.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	stopOnce  sync.Once
	shutdown  chan struct{} // closed once ShutdownAndDisconnectAll completes
}

// New creates a new Server instance. A nil Dependencies.Events keeps the
// admin feed in memory.
func New(cfg Config, deps Dependencies) *Server {
	cfg = cfg.sanitized()
	events := deps.Events
	if events == nil {
		events = eventlog.NewMemory()
	}

	ctx, cancel := context.WithCancel(context.Background())
	reg := NewRegistry()
	router := NewRouter(reg)
	srv := &Server{
		cfg:      cfg,
		reg:      reg,
		router:   router,
		neg:      NewNegotiator(reg, router),
		notifier: NewNotifier(events, 256),
		events:   events,
		ctx:      ctx,
		cancel:   cancel,
		shutdown: make(chan struct{}),
	}
	// The feed loop runs from construction so ShutdownAndDisconnectAll can
	// always join it, whether or not Start was ever called.
	go srv.notifier.Run()
	return srv
}

// Registry returns the session registry.
func (s *Server) Registry() *Registry {
	return s.reg
}

// Notifier returns the admin feed notifier, for the dashboard to attach its
// sink.
func (s *Server) Notifier() *Notifier {
	return s.notifier
}

// EventLog returns the admin feed store, for the dashboard to backfill from.
func (s *Server) EventLog() eventlog.Store {
	return s.events
}
