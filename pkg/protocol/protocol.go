// Package protocol defines the line-oriented chat wire format.
//
// Every exchange is UTF-8 text, one token per line. Clients open the
// conversation with a bare registration line (the display name) and then send
// request keywords, each followed by a fixed number of argument lines. Server
// responses are frames: a response-type tag line followed by the frame's
// payload lines. Tag spellings are part of the wire contract and must not
// change.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Client request keywords. Each keyword is followed by a fixed number of
// argument lines (see ArgCount).
const (
	ReqDisconnect      = "disconnect"
	ReqRoomMessage     = "chat room message"
	ReqPrivateChat     = "private chat"
	ReqAcceptPrivate   = "accept private chat"
	ReqDeclinePrivate  = "decline private chat"
	ReqAnnounceClosure = "announce closure private chat"
	ReqPrivateMessage  = "private message"
)

// Server response tags. Every server frame opens with one of these lines,
// except the private-chat request acknowledgment, which the original protocol
// sends as a bare line.
const (
	TagNameTaken       = "name already used"
	TagRoomMessage     = "chat room message response"
	TagOnlineList      = "online list updated"
	TagRequestPrivate  = "request private chat"
	TagStartPrivate    = "start private chat"
	TagDeclinedPrivate = "private chat declined"
	TagClosePrivate    = "close private chat"
	TagPrivateMessage  = "private message response"
	TagShuttingDown    = "server shutting down"
)

// requestArity maps each recognized keyword to its argument-line count.
var requestArity = map[string]int{
	ReqDisconnect:      0,
	ReqRoomMessage:     1,
	ReqPrivateChat:     1,
	ReqAcceptPrivate:   1,
	ReqDeclinePrivate:  1,
	ReqAnnounceClosure: 1,
	ReqPrivateMessage:  2,
}

// ArgCount returns the number of argument lines that follow a request
// keyword, and whether the keyword is recognized at all.
func ArgCount(keyword string) (int, bool) {
	n, ok := requestArity[keyword]
	return n, ok
}

// Frame renders a server response as a single byte slice: the tag line
// followed by the payload lines, each newline-terminated. Writing the result
// in one call keeps a frame's lines from interleaving with another frame sent
// to the same recipient.
func Frame(tag string, payload ...string) []byte {
	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte('\n')
	for _, line := range payload {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Line renders a single bare line (no tag). Used for the private-chat request
// acknowledgment, which the original protocol sends untagged.
func Line(text string) []byte {
	return []byte(text + "\n")
}

// RenderRoomMessage renders a chat-room message body relative to the
// recipient: the sender sees their own words echoed, everyone else sees the
// sender named.
func RenderRoomMessage(sender, recipient, body string) string {
	if sender == recipient {
		return "You said: " + body
	}
	return sender + " has said: " + body
}

// RenderConnected renders the connection announcement body for a recipient.
func RenderConnected(name, recipient string) string {
	if name == recipient {
		return "You have connected to the chat."
	}
	return name + " has connected to the chat."
}

// RenderDisconnected renders the disconnection announcement body. The
// departing session is no longer registered when this goes out, so there is
// no self-directed variant.
func RenderDisconnected(name string) string {
	return name + " has disconnected from the chat."
}

// RenderOnlineList serializes the online-name snapshot in registry order,
// e.g. "[alice, bob]". The bracketed, comma-space form is what existing
// clients parse.
func RenderOnlineList(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}

// RenderRequestAck is the untagged acknowledgment sent to a private-chat
// initiator before the request is forwarded.
func RenderRequestAck(target string) string {
	return "You have requested to chat with " + target + ", please wait till the user accepts the request."
}

// RenderDeclineConfirm confirms to the decliner that the decline went out.
func RenderDeclineConfirm(initiator string) string {
	return "You have declined " + initiator + " from a private chat."
}

// RenderPeerOffline is the informational body used when an accept or decline
// targets an initiator who is no longer registered. verb is "accept" or
// "decline".
func RenderPeerOffline(name, verb string) string {
	return "The user " + name + " is not online anymore, can't " + verb + " the private chat."
}

// LineReader reads newline-delimited tokens from a transport stream.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader wraps r in a buffered line reader.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line with the trailing newline (and any carriage
// return) stripped. A final unterminated line is returned before io.EOF is
// surfaced on the following call.
func (lr *LineReader) ReadLine() (string, error) {
	line, err := lr.r.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF && line != "" {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF {
		return "", io.EOF
	}
	return "", fmt.Errorf("protocol: read line: %w", err)
}
