// Package transport abstracts the bidirectional line streams clients connect
// over. The chat core speaks to every client through Conn, so the same
// protocol runs unchanged over plain TCP and WebSocket.
package transport

import "time"

// Conn is one client's line stream. ReadLine is called by the owning
// connection handler only; Write is called by the session's writer goroutine
// only. Implementations do not need to support concurrent callers on the same
// method.
type Conn interface {
	// ReadLine returns the next newline-delimited token with the line ending
	// stripped. It returns io.EOF once the peer has closed the stream.
	ReadLine() (string, error)

	// Write sends raw, already newline-terminated bytes. A frame passed in a
	// single call is delivered without interleaving.
	Write(p []byte) error

	// SetReadDeadline bounds the next ReadLine. The zero time clears it.
	SetReadDeadline(t time.Time) error

	// Close tears the stream down. Safe to call more than once; a pending
	// ReadLine unblocks with an error.
	Close() error

	// RemoteAddr describes the peer for logging.
	RemoteAddr() string
}

// Listener accepts client line streams.
type Listener interface {
	// Accept blocks until the next client connects. It returns a non-nil
	// error after Close.
	Accept() (Conn, error)

	// Close stops the listener and unblocks a pending Accept.
	Close() error

	// Addr is the bound address, for logging.
	Addr() string
}
