package server

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/transport"
)

const MaxNameLength = 32

var (
	ErrNameEmpty   = errors.New("display name must not be empty")
	ErrNameTooLong = fmt.Errorf("display name must not exceed %d characters", MaxNameLength)
)

// ValidateName checks a candidate display name. Uniqueness is the registry's
// job; this only rejects names that could never be registered.
func ValidateName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// Session is one registered, connected user. The session owns its transport:
// the connection handler is the only reader, and the session's writer
// goroutine is the only writer. Outbound frames are queued on out and drained
// by the writer, so a slow peer never stalls whoever is fanning out to it.
type Session struct {
	ID   string // connection ID for log correlation, assigned at accept
	Name string

	conn transport.Conn
	out  chan []byte
	done chan struct{}

	started   atomic.Bool // writer goroutine running
	departing atomic.Bool // unregister+announce claimed
	closeOnce sync.Once
	closed    chan struct{} // transport torn down
}

// NewSession wraps an accepted transport. queueDepth bounds the outbound
// frame queue; frames beyond it are dropped rather than blocking senders.
func NewSession(id, name string, conn transport.Conn, queueDepth int) *Session {
	if queueDepth <= 0 {
		queueDepth = 64
	}
	return &Session{
		ID:     id,
		Name:   name,
		conn:   conn,
		out:    make(chan []byte, queueDepth),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
}

// StartWriter launches the writer goroutine. Called once, after the session
// is registered. The writer owns the transport write side and closes the
// transport on exit, after flushing whatever is still queued.
func (s *Session) StartWriter() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.closed)
		defer func() { _ = s.conn.Close() }()
		for {
			select {
			case frame := <-s.out:
				if err := s.conn.Write(frame); err != nil {
					// Broken peer; reads fail shortly and the handler
					// cleans up.
					return
				}
			case <-s.done:
				s.flush()
				return
			}
		}
	}()
}

// flush writes any frames still queued at close time, best effort. This is
// what gets the shutdown notice out before the transport goes down.
func (s *Session) flush() {
	for {
		select {
		case frame := <-s.out:
			if err := s.conn.Write(frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

// Send queues one frame for delivery. It never blocks: a full queue or a
// closing session drops the frame and returns false so the caller can log
// and move on to the remaining recipients.
func (s *Session) Send(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.out <- frame:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}

// BeginDeparture claims the right to unregister and announce this session's
// departure. Exactly one caller wins, however many paths race (explicit
// disconnect, EOF, server shutdown).
func (s *Session) BeginDeparture() bool {
	return s.departing.CompareAndSwap(false, true)
}

// Close tears the session down. Idempotent. If the writer is running it
// flushes the queue and closes the transport; otherwise the transport is
// closed directly and the started flag is claimed so a StartWriter racing
// Close becomes a no-op instead of launching a writer against a dead
// session. A handler blocked in ReadLine unblocks with an error.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.started.CompareAndSwap(false, true) {
			_ = s.conn.Close()
			close(s.closed)
		}
	})
}

// Wait blocks until the transport has been torn down.
func (s *Session) Wait() {
	<-s.closed
}
