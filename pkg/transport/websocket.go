package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The chat protocol has no browser-credential surface; origin policy is
	// left to a fronting proxy when one is deployed.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// WSListener serves the line protocol over WebSocket. Each upgraded
// connection is handed to Accept like any TCP client; text messages carry one
// or more newline-delimited protocol lines.
type WSListener struct {
	srv    *http.Server
	ln     net.Listener
	accept chan Conn
	done   chan struct{}
}

// ListenWebSocket binds an HTTP listener on addr and upgrades requests to
// path (e.g. "/chat") into line streams.
func ListenWebSocket(addr, path string) (*WSListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen websocket: %w", err)
	}

	l := &WSListener{
		ln:     ln,
		accept: make(chan Conn),
		done:   make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, l.handleUpgrade)
	l.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		// Serve exits with ErrServerClosed after Close; anything else is a
		// listener failure the accept loop will observe via done.
		_ = l.srv.Serve(ln)
	}()
	return l, nil
}

func (l *WSListener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already replied with an HTTP error
	}
	select {
	case l.accept <- newWSConn(ws):
	case <-l.done:
		_ = ws.Close()
	}
}

// Accept waits for the next upgraded WebSocket client.
func (l *WSListener) Accept() (Conn, error) {
	select {
	case c := <-l.accept:
		return c, nil
	case <-l.done:
		return nil, errors.New("transport: websocket listener closed")
	}
}

// Close shuts the HTTP listener down and unblocks Accept.
func (l *WSListener) Close() error {
	close(l.done)
	return l.srv.Close()
}

// Addr returns the bound address.
func (l *WSListener) Addr() string {
	return l.ln.Addr().String()
}

type wsConn struct {
	ws      *websocket.Conn
	pending []string // lines decoded from the current message, not yet read
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws}
}

func (c *wsConn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				return "", io.EOF
			}
			return "", fmt.Errorf("transport: websocket read: %w", err)
		}
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			c.pending = append(c.pending, strings.TrimRight(line, "\r"))
		}
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

func (c *wsConn) Write(p []byte) error {
	if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return fmt.Errorf("transport: websocket write: %w", err)
	}
	return nil
}

func (c *wsConn) SetReadDeadline(d time.Time) error {
	return c.ws.SetReadDeadline(d)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}
