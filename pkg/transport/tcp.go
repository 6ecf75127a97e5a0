package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/protocol"
)

// TCPListener accepts line streams over plain TCP.
type TCPListener struct {
	ln net.Listener
}

// ListenTCP binds a TCP listener on addr (e.g. ":4444").
func ListenTCP(addr string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen tcp: %w", err)
	}
	return &TCPListener{ln: ln}, nil
}

// Accept waits for the next TCP client.
func (l *TCPListener) Accept() (Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("transport: accept: %w", err)
	}
	return NewTCPConn(c), nil
}

// Close stops the listener.
func (l *TCPListener) Close() error {
	return l.ln.Close()
}

// Addr returns the bound address.
func (l *TCPListener) Addr() string {
	return l.ln.Addr().String()
}

type tcpConn struct {
	c  net.Conn
	lr *protocol.LineReader
}

// NewTCPConn wraps a net.Conn in the line transport. Exported so tests can
// drive the core over net.Pipe.
func NewTCPConn(c net.Conn) Conn {
	return &tcpConn{c: c, lr: protocol.NewLineReader(c)}
}

func (t *tcpConn) ReadLine() (string, error) {
	return t.lr.ReadLine()
}

func (t *tcpConn) Write(p []byte) error {
	if _, err := t.c.Write(p); err != nil {
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

func (t *tcpConn) SetReadDeadline(d time.Time) error {
	return t.c.SetReadDeadline(d)
}

func (t *tcpConn) Close() error {
	return t.c.Close()
}

func (t *tcpConn) RemoteAddr() string {
	return t.c.RemoteAddr().String()
}
