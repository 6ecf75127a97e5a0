package server

import (
	"log/slog"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/protocol"
)

// Negotiator runs the private-chat request/accept/decline handshake. It is a
// pure protocol layer: no pending-request table is kept server side, so the
// only state is what is encoded in the frames in flight. An accept or
// decline whose counterpart has vanished resolves to an informational notice
// or a no-op, never an error.
type Negotiator struct {
	reg    *Registry
	router *Router
}

// NewNegotiator creates a negotiator over reg.
func NewNegotiator(reg *Registry, router *Router) *Negotiator {
	return &Negotiator{reg: reg, router: router}
}

// Request acknowledges the initiator and forwards the request to the target.
// The acknowledgment goes out first, as a bare untagged line, matching the
// original wire behavior. If the target vanished between decode and lookup
// the acknowledgment has still gone out and the forward is silently skipped.
func (n *Negotiator) Request(initiator *Session, target string) {
	n.router.deliver(initiator, protocol.Line(protocol.RenderRequestAck(target)))

	peer, ok := n.reg.Lookup(target)
	if !ok {
		slog.Debug("private chat request to unregistered target",
			"initiator", initiator.Name, "target", target)
		return
	}
	n.router.deliver(peer, protocol.Frame(protocol.TagRequestPrivate, initiator.Name))
}

// Accept starts the private chat on both ends: the initiator is told to
// start a chat with the accepter and vice versa. If the initiator is no
// longer registered the accepter gets a broadcast-tagged notice instead,
// and nothing is delivered to anyone else.
func (n *Negotiator) Accept(accepter *Session, initiator string) {
	peer, ok := n.reg.Lookup(initiator)
	if !ok {
		n.router.deliver(accepter, protocol.Frame(protocol.TagRoomMessage,
			protocol.RenderPeerOffline(initiator, "accept")))
		return
	}
	n.router.deliver(peer, protocol.Frame(protocol.TagStartPrivate, accepter.Name))
	n.router.deliver(accepter, protocol.Frame(protocol.TagStartPrivate, initiator))
}

// Decline notifies the initiator of the decline and confirms it to the
// decliner. A vanished initiator turns into a broadcast-tagged notice to the
// decliner, mirroring Accept.
func (n *Negotiator) Decline(decliner *Session, initiator string) {
	peer, ok := n.reg.Lookup(initiator)
	if !ok {
		n.router.deliver(decliner, protocol.Frame(protocol.TagRoomMessage,
			protocol.RenderPeerOffline(initiator, "decline")))
		return
	}
	n.router.deliver(peer, protocol.Frame(protocol.TagDeclinedPrivate, decliner.Name))
	n.router.deliver(decliner, protocol.Frame(protocol.TagRoomMessage,
		protocol.RenderDeclineConfirm(initiator)))
}

// AnnounceClosure tells the peer that closer has closed their private chat.
// No-op when the peer is no longer registered.
func (n *Negotiator) AnnounceClosure(closer *Session, peerName string) {
	peer, ok := n.reg.Lookup(peerName)
	if !ok {
		return
	}
	n.router.deliver(peer, protocol.Frame(protocol.TagClosePrivate, closer.Name))
}
