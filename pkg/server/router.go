package server

import (
	"log/slog"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/protocol"
)

// Router implements the delivery primitives on top of the registry: room
// broadcast, private one-to-one delivery, and the online-list update. Every
// delivery is best effort per recipient; a failed or dropped send is logged
// and skipped, never aborting the rest of a fan-out.
type Router struct {
	reg *Registry
}

// NewRouter creates a router over reg.
func NewRouter(reg *Registry) *Router {
	return &Router{reg: reg}
}

// deliver queues one frame to a session, logging and counting the drop when
// the recipient's queue is full or the session is going away.
func (rt *Router) deliver(sess *Session, frame []byte) {
	if !sess.Send(frame) {
		framesDropped.Inc()
		slog.Warn("frame dropped", "recipient", sess.Name, "conn", sess.ID)
	}
}

// Broadcast delivers a chat-room message to every registered session from a
// point-in-time snapshot. The sender sees "You said: ...", everyone else
// sees the sender named. Each recipient gets the tag and body as one atomic
// frame.
func (rt *Router) Broadcast(sender, body string) {
	rt.reg.ForEach(func(sess *Session) {
		rendered := protocol.RenderRoomMessage(sender, sess.Name, body)
		rt.deliver(sess, protocol.Frame(protocol.TagRoomMessage, rendered))
	})
}

// AnnounceConnected tells every session, the newcomer included, that name
// has joined, then pushes the refreshed online list. List update follows the
// announcement for every recipient; clients rely on that order.
func (rt *Router) AnnounceConnected(name string) {
	rt.reg.ForEach(func(sess *Session) {
		rendered := protocol.RenderConnected(name, sess.Name)
		rt.deliver(sess, protocol.Frame(protocol.TagRoomMessage, rendered))
	})
	rt.UpdateOnlineList()
}

// AnnounceDisconnected tells the remaining sessions that name has left, then
// pushes the refreshed online list. The departed session is already out of
// the registry when this runs.
func (rt *Router) AnnounceDisconnected(name string) {
	body := protocol.RenderDisconnected(name)
	rt.reg.ForEach(func(sess *Session) {
		rt.deliver(sess, protocol.Frame(protocol.TagRoomMessage, body))
	})
	rt.UpdateOnlineList()
}

// UpdateOnlineList sends every session the current name snapshot in registry
// order.
func (rt *Router) UpdateOnlineList() {
	list := protocol.RenderOnlineList(rt.reg.Names())
	rt.reg.ForEach(func(sess *Session) {
		rt.deliver(sess, protocol.Frame(protocol.TagOnlineList, list))
	})
}

// SendPrivate delivers a private message to the target and echoes it to the
// sender. Each side's frame names the sender and then the conversation
// partner from that recipient's perspective. A vanished target makes the
// whole call a no-op: the handler should not have reached here without a
// negotiated chat, but a race with disconnection must not crash or
// half-deliver.
func (rt *Router) SendPrivate(sender *Session, target, body string) {
	peer, ok := rt.reg.Lookup(target)
	if !ok {
		slog.Debug("private message to unregistered target", "sender", sender.Name, "target", target)
		return
	}
	rt.deliver(peer, protocol.Frame(protocol.TagPrivateMessage, sender.Name, sender.Name, body))
	rt.deliver(sender, protocol.Frame(protocol.TagPrivateMessage, sender.Name, target, body))
}
