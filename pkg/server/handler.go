package server

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/protocol"
	"github.com/AdrianFall/DesktopChatApp-Server/pkg/transport"
)

// handleConn runs one connection's whole lifecycle: registration handshake,
// request loop, departure. One goroutine per accepted connection.
func (s *Server) handleConn(conn transport.Conn) {
	connectionsTotal.Inc()
	id := uuid.NewString()
	remote := conn.RemoteAddr()
	slog.Debug("new connection", "conn", id, "remote", remote)

	// The first line is the candidate display name. Bound the read so a
	// silent connection cannot hold the handler forever.
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.RegisterTimeout))
	line, err := conn.ReadLine()
	if err != nil {
		slog.Debug("registration read failed", "conn", id, "remote", remote, "err", err)
		_ = conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{}) // clear deadline

	name := strings.TrimSpace(line)
	if err := ValidateName(name); err != nil {
		// The wire has a single registration-failure tag; an unusable name
		// gets the same response as a duplicate and the connection drops.
		_ = conn.Write(protocol.Frame(protocol.TagNameTaken))
		slog.Info("registration rejected", "conn", id, "remote", remote, "err", err)
		_ = conn.Close()
		return
	}

	sess := NewSession(id, name, conn, s.cfg.WriteQueueDepth)
	switch err := s.reg.Register(sess); err {
	case nil:
	case ErrRegistryClosed:
		_ = conn.Write(protocol.Frame(protocol.TagShuttingDown))
		_ = conn.Close()
		return
	default:
		nameCollisions.Inc()
		_ = conn.Write(protocol.Frame(protocol.TagNameTaken))
		s.notifier.Publish("name collision",
			"User "+name+" has attempted to connect to the chat, declined since another user already uses this name")
		slog.Info("duplicate display name", "conn", id, "name", name, "remote", remote)
		_ = conn.Close()
		return
	}

	sess.StartWriter()
	connectedSessions.Set(float64(s.reg.Len()))
	s.notifier.Publish("registered", "User "+name+" has been connected to the chat")
	slog.Info("user registered", "conn", id, "name", name, "remote", remote)

	// Announcement first, list update second; clients depend on that order.
	s.router.AnnounceConnected(name)

	s.requestLoop(sess)
}

// requestLoop decodes one request per iteration: a keyword line followed by
// that keyword's fixed number of argument lines. It returns when the client
// disconnects, explicitly or by closing the stream.
func (s *Server) requestLoop(sess *Session) {
	for {
		keyword, err := sess.conn.ReadLine()
		if err != nil {
			// End of stream is an unannounced disconnect; the announcement
			// still has to go out so the registry never keeps dead sessions.
			s.depart(sess)
			return
		}

		argc, known := protocol.ArgCount(keyword)
		if !known {
			// Unknown requests are dropped by design; the log line is the
			// only trace.
			slog.Debug("unknown request ignored", "conn", sess.ID, "name", sess.Name, "keyword", keyword)
			continue
		}

		args := make([]string, argc)
		for i := range args {
			arg, err := sess.conn.ReadLine()
			if err != nil {
				s.depart(sess)
				return
			}
			args[i] = arg
		}

		start := time.Now()
		requestsTotal.WithLabelValues(keyword).Inc()
		done := s.dispatch(sess, keyword, args)
		requestDuration.WithLabelValues(keyword).Observe(time.Since(start).Seconds())
		if done {
			return
		}
	}
}

// dispatch applies one decoded request. It reports true when the session is
// finished and the loop should stop.
func (s *Server) dispatch(sess *Session, keyword string, args []string) bool {
	switch keyword {
	case protocol.ReqDisconnect:
		s.depart(sess)
		return true

	case protocol.ReqRoomMessage:
		s.router.Broadcast(sess.Name, s.clipMessage(args[0]))

	case protocol.ReqPrivateChat:
		s.notifier.Publish("private chat requested",
			sess.Name+" has requested to privately chat with "+args[0])
		s.neg.Request(sess, args[0])

	case protocol.ReqAcceptPrivate:
		s.neg.Accept(sess, args[0])

	case protocol.ReqDeclinePrivate:
		s.notifier.Publish("private chat declined",
			sess.Name+" has declined to privately chat with "+args[0])
		s.neg.Decline(sess, args[0])

	case protocol.ReqAnnounceClosure:
		s.neg.AnnounceClosure(sess, args[0])

	case protocol.ReqPrivateMessage:
		s.router.SendPrivate(sess, args[0], s.clipMessage(args[1]))
	}
	return false
}

// clipMessage bounds a message body, backing the cut up to a rune boundary
// so an oversized body never goes out with a torn multibyte character.
func (s *Server) clipMessage(body string) string {
	if len(body) <= s.cfg.MaxMessageLength {
		return body
	}
	cut := s.cfg.MaxMessageLength
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}

// depart unregisters and announces the session's departure exactly once,
// however many paths race here (explicit disconnect, end of stream, a second
// disconnect request), then tears the session down.
func (s *Server) depart(sess *Session) {
	if sess.BeginDeparture() {
		if err := s.reg.Unregister(sess.Name); err == nil {
			connectedSessions.Set(float64(s.reg.Len()))
			s.router.AnnounceDisconnected(sess.Name)
			s.notifier.Publish("disconnected", "User "+sess.Name+" has disconnected from the chat.")
			slog.Info("user disconnected", "conn", sess.ID, "name", sess.Name)
		}
	}
	sess.Close()
}
