package server

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/protocol"
)

// routerFixture registers the named sessions (no writer, so queued frames
// can be inspected directly) and returns them alongside the router.
func routerFixture(t *testing.T, names ...string) (*Registry, *Router, map[string]*Session) {
	t.Helper()
	reg := NewRegistry()
	sessions := make(map[string]*Session, len(names))
	for _, name := range names {
		sess := newNamedSession(name)
		if err := reg.Register(sess); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
		sessions[name] = sess
	}
	return reg, NewRouter(reg), sessions
}

func TestBroadcastRendering(t *testing.T) {
	_, router, sessions := routerFixture(t, "alice", "bob")

	router.Broadcast("alice", "hello all")

	wantAlice := []string{string(protocol.Frame(protocol.TagRoomMessage, "You said: hello all"))}
	if diff := cmp.Diff(wantAlice, queuedFrames(sessions["alice"])); diff != "" {
		t.Errorf("sender frames (-want +got):\n%s", diff)
	}

	wantBob := []string{string(protocol.Frame(protocol.TagRoomMessage, "alice has said: hello all"))}
	if diff := cmp.Diff(wantBob, queuedFrames(sessions["bob"])); diff != "" {
		t.Errorf("recipient frames (-want +got):\n%s", diff)
	}
}

func TestAnnounceConnectedOrder(t *testing.T) {
	_, router, sessions := routerFixture(t, "alice", "bob")

	router.AnnounceConnected("bob")

	// Announcement first, then the list; every recipient sees that order.
	want := []string{
		string(protocol.Frame(protocol.TagRoomMessage, "bob has connected to the chat.")),
		string(protocol.Frame(protocol.TagOnlineList, "[alice, bob]")),
	}
	if diff := cmp.Diff(want, queuedFrames(sessions["alice"])); diff != "" {
		t.Errorf("alice frames (-want +got):\n%s", diff)
	}

	wantSelf := []string{
		string(protocol.Frame(protocol.TagRoomMessage, "You have connected to the chat.")),
		string(protocol.Frame(protocol.TagOnlineList, "[alice, bob]")),
	}
	if diff := cmp.Diff(wantSelf, queuedFrames(sessions["bob"])); diff != "" {
		t.Errorf("bob frames (-want +got):\n%s", diff)
	}
}

func TestAnnounceDisconnected(t *testing.T) {
	reg, router, sessions := routerFixture(t, "alice", "bob")

	if err := reg.Unregister("alice"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	router.AnnounceDisconnected("alice")

	want := []string{
		string(protocol.Frame(protocol.TagRoomMessage, "alice has disconnected from the chat.")),
		string(protocol.Frame(protocol.TagOnlineList, "[bob]")),
	}
	if diff := cmp.Diff(want, queuedFrames(sessions["bob"])); diff != "" {
		t.Errorf("bob frames (-want +got):\n%s", diff)
	}
	if got := queuedFrames(sessions["alice"]); len(got) != 0 {
		t.Errorf("departed session still addressed: %v", got)
	}
}

func TestSendPrivate(t *testing.T) {
	_, router, sessions := routerFixture(t, "alice", "bob")

	router.SendPrivate(sessions["alice"], "bob", "psst")

	wantBob := []string{string(protocol.Frame(protocol.TagPrivateMessage, "alice", "alice", "psst"))}
	if diff := cmp.Diff(wantBob, queuedFrames(sessions["bob"])); diff != "" {
		t.Errorf("target frames (-want +got):\n%s", diff)
	}

	wantAlice := []string{string(protocol.Frame(protocol.TagPrivateMessage, "alice", "bob", "psst"))}
	if diff := cmp.Diff(wantAlice, queuedFrames(sessions["alice"])); diff != "" {
		t.Errorf("sender echo (-want +got):\n%s", diff)
	}
}

func TestSendPrivateTargetGone(t *testing.T) {
	_, router, sessions := routerFixture(t, "alice")

	router.SendPrivate(sessions["alice"], "bob", "psst")

	// Vanished target: nothing delivered anywhere, not even the echo.
	if got := queuedFrames(sessions["alice"]); len(got) != 0 {
		t.Errorf("sender echo despite vanished target: %v", got)
	}
}
