package ws

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/duelyard/lobby/internal/config"
	"github.com/duelyard/lobby/internal/lobby"
	"github.com/duelyard/lobby/internal/testutil"
)

type wsFixture struct {
	srv   *httptest.Server
	hub   *Hub
	rooms *lobby.RoomRegistry
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()

	logger := zaptest.NewLogger(t)
	hub := NewHub(config.Default().Websocket, logger)
	rooms := lobby.NewRoomRegistry()
	coord := lobby.NewCoordinator(lobby.NewIdentityRegistry(), rooms, hub, logger)
	hub.Bind(coord)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		hub.Stop()
		srv.Close()
	})
	return &wsFixture{srv: srv, hub: hub, rooms: rooms}
}

func (f *wsFixture) connect(t *testing.T, identity string) *testutil.WSClient {
	t.Helper()
	c := testutil.DialWS(t, f.srv.URL)
	c.Send(eventHandshake, identity)
	var payload lobby.JoinedPayload
	c.ExpectInto(lobby.EventJoined, &payload)
	require.Equal(t, identity, payload.Identity)
	return c
}

func TestIntegration_Handshake(t *testing.T) {
	f := newWSFixture(t)

	alice := testutil.DialWS(t, f.srv.URL)
	alice.Send(eventHandshake, "alice")

	var payload lobby.JoinedPayload
	alice.ExpectInto(lobby.EventJoined, &payload)
	assert.Equal(t, "alice", payload.Identity)
	assert.Equal(t, []string{"alice"}, payload.AllIdentities)
}

func TestIntegration_HandshakeRejected(t *testing.T) {
	f := newWSFixture(t)

	alice := testutil.DialWS(t, f.srv.URL)
	alice.Send(eventHandshake, "ab")

	var msg string
	alice.ExpectInto(lobby.EventError, &msg)
	assert.Equal(t, "Username must be more than 3 characters and less or equal 10!", msg)
}

func TestIntegration_SecondUserAnnounced(t *testing.T) {
	f := newWSFixture(t)

	alice := f.connect(t, "alice")
	f.connect(t, "bob")

	var identities []string
	alice.ExpectInto(lobby.EventUserConnected, &identities)
	assert.ElementsMatch(t, []string{"alice", "bob"}, identities)
}

func TestIntegration_RoomLifecycle(t *testing.T) {
	f := newWSFixture(t)

	alice := f.connect(t, "alice")
	bob := f.connect(t, "bob")

	alice.Send(eventCreateRoom, nil)
	var created lobby.CreatedRoomPayload
	alice.ExpectInto(lobby.EventCreatedRoom, &created)
	assert.Len(t, created.RoomID, 6)
	assert.Equal(t, "alice", created.OwnerIdentity)

	bob.Send(eventJoinRoom, created.RoomID)
	var joinedID string
	bob.ExpectInto(lobby.EventJoinedRoom, &joinedID)
	assert.Equal(t, created.RoomID, joinedID)

	for _, c := range []*testutil.WSClient{alice, bob} {
		var status lobby.RoomStatusPayload
		c.ExpectInto(lobby.EventChangeRoomStatus, &status)
		assert.Equal(t, lobby.StatusReady, status.Status)
		assert.Equal(t, "alice", status.OwnerIdentity)
		assert.Equal(t, "bob", status.SecondIdentity)
	}
}

func TestIntegration_OwnerLeaveKicksRoom(t *testing.T) {
	f := newWSFixture(t)

	alice := f.connect(t, "alice")
	bob := f.connect(t, "bob")

	alice.Send(eventCreateRoom, nil)
	var created lobby.CreatedRoomPayload
	alice.ExpectInto(lobby.EventCreatedRoom, &created)

	bob.Send(eventJoinRoom, created.RoomID)
	bob.Expect(lobby.EventChangeRoomStatus)

	alice.Send(eventLeaveRoom, created.RoomID)

	var msg string
	bob.ExpectInto(lobby.EventKick, &msg)
	assert.Equal(t, "Owner leaved the room.", msg)

	require.Eventually(t, func() bool {
		return f.rooms.Count() == 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestIntegration_SecondLeaveReopensRoom(t *testing.T) {
	f := newWSFixture(t)

	alice := f.connect(t, "alice")
	bob := f.connect(t, "bob")

	alice.Send(eventCreateRoom, nil)
	var created lobby.CreatedRoomPayload
	alice.ExpectInto(lobby.EventCreatedRoom, &created)

	bob.Send(eventJoinRoom, created.RoomID)
	alice.Expect(lobby.EventChangeRoomStatus)
	bob.Expect(lobby.EventChangeRoomStatus)

	bob.Send(eventLeaveRoom, created.RoomID)

	var status lobby.RoomStatusPayload
	alice.ExpectInto(lobby.EventChangeRoomStatus, &status)
	assert.Equal(t, lobby.StatusWaiting, status.Status)
	assert.Equal(t, "alice", status.OwnerIdentity)

	bob.ExpectInto(lobby.EventChangeRoomStatus, &status)
	assert.Equal(t, lobby.StatusNotInRoom, status.Status)

	room, ok := f.rooms.Get(created.RoomID)
	require.True(t, ok)
	assert.Equal(t, lobby.StatusWaiting, room.Status())
}

func TestIntegration_SecondDisconnectReopensRoom(t *testing.T) {
	f := newWSFixture(t)

	alice := f.connect(t, "alice")
	bob := f.connect(t, "bob")

	alice.Send(eventCreateRoom, nil)
	var created lobby.CreatedRoomPayload
	alice.ExpectInto(lobby.EventCreatedRoom, &created)

	bob.Send(eventJoinRoom, created.RoomID)
	alice.Expect(lobby.EventChangeRoomStatus)

	bob.Close()

	var status lobby.RoomStatusPayload
	alice.ExpectInto(lobby.EventChangeRoomStatus, &status)
	assert.Equal(t, lobby.StatusWaiting, status.Status)

	room, ok := f.rooms.Get(created.RoomID)
	require.True(t, ok)
	assert.Equal(t, lobby.StatusWaiting, room.Status())
}

func TestIntegration_StopClosesConnections(t *testing.T) {
	f := newWSFixture(t)

	f.connect(t, "alice")
	f.connect(t, "bob")
	require.Eventually(t, func() bool {
		return f.hub.ConnectionCount() == 2
	}, 3*time.Second, 10*time.Millisecond)

	f.hub.Stop()
	assert.Equal(t, 0, f.hub.ConnectionCount())
}

func TestIntegration_MalformedFrameIgnored(t *testing.T) {
	f := newWSFixture(t)

	alice := testutil.DialWS(t, f.srv.URL)
	alice.SendRaw([]byte("not json"))

	// Connection must survive garbage input.
	alice.Send(eventHandshake, "alice")
	var payload lobby.JoinedPayload
	alice.ExpectInto(lobby.EventJoined, &payload)
	assert.Equal(t, "alice", payload.Identity)
}
