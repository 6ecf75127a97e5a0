package server

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/protocol"
	"github.com/AdrianFall/DesktopChatApp-Server/pkg/transport"
)

// Start binds the configured listeners and begins accepting clients. It
// corresponds to the console's "start server" command and returns once the
// listeners are up.
func (s *Server) Start() error {
	tcp, err := transport.ListenTCP(s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	s.listeners = append(s.listeners, tcp)

	if s.cfg.WSAddr != "" {
		ws, err := transport.ListenWebSocket(s.cfg.WSAddr, s.cfg.WSPath)
		if err != nil {
			_ = tcp.Close()
			return fmt.Errorf("server: %w", err)
		}
		s.listeners = append(s.listeners, ws)
	}

	s.startMetricsHTTP()

	for _, l := range s.listeners {
		go s.acceptLoop(l)
		slog.Info("chat server listening", "addr", l.Addr())
	}
	return nil
}

// acceptLoop hands every accepted connection to its own handler goroutine.
// It exits when the listener is closed.
func (s *Server) acceptLoop(l transport.Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
			default:
				slog.Error("accept error", "addr", l.Addr(), "err", err)
			}
			return
		}
		go s.handleConn(conn)
	}
}

// ShutdownAndDisconnectAll is the console's "stop server" command: notify
// every session that the server is going down, close every transport, and
// empty the registry. It blocks until every session's transport has been
// torn down, and is safe to call more than once.
func (s *Server) ShutdownAndDisconnectAll() {
	s.stopOnce.Do(s.shutdownAndDisconnectAll)
	<-s.shutdown
}

func (s *Server) shutdownAndDisconnectAll() {
	s.notifier.Publish("shutdown", fmt.Sprintf("Disconnecting %d users.", s.reg.Len()))
	slog.Info("shutting down", "sessions", s.reg.Len())

	s.cancel()
	for _, l := range s.listeners {
		_ = l.Close()
	}

	drained := s.reg.DrainAll()
	connectedSessions.Set(0)

	notice := protocol.Frame(protocol.TagShuttingDown)
	for _, sess := range drained {
		if sess.BeginDeparture() {
			sess.Send(notice)
		}
		sess.Close()
	}
	for _, sess := range drained {
		sess.Wait()
	}

	s.notifier.Stop()
	s.notifier.Wait()
	if err := s.events.Close(); err != nil {
		slog.Error("event log close failed", "err", err)
	}

	close(s.shutdown)
	slog.Info("shutdown complete")
}

// Run starts the server and blocks until an interrupt or termination signal,
// then disconnects everyone and returns.
func (s *Server) Run() error {
	if err := s.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	s.ShutdownAndDisconnectAll()
	return nil
}
