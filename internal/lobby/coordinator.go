package lobby

import (
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Handshake validation messages, reported to the offending caller via the
// error event. The wording is part of the client-facing contract.
const (
	msgBlankIdentity  = "You cant leave blank username field!"
	msgIdentityLength = "Username must be more than 3 characters and less or equal 10!"
	msgIdentityChars  = "Username can be only letters and numbers!"
	msgIdentityTaken  = "Someone with that username already exist! Please use diffrent one!"
	msgRoomFull       = "Room is full!"
	msgServerError    = "Server error."
	msgOwnerLeft      = "Owner leaved the room."
)

var identityPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Coordinator is the protocol handler. It validates inbound events against
// registry and room state, mutates both, and emits outbound events through
// the router. It exclusively owns the lifecycle of registry entries and
// Room instances.
//
// Every inbound handler runs under one coarse mutex, so no two handlers
// interleave: a join racing a leave on the same room is impossible. No
// handler blocks while holding the lock; outbound emission is a
// non-blocking enqueue in the transport.
type Coordinator struct {
	mu         sync.Mutex
	identities *IdentityRegistry
	rooms      *RoomRegistry
	router     EventRouter
	logger     *zap.Logger
}

// NewCoordinator creates a Coordinator over the given registries.
//
// Precondition: identities, rooms, router, and logger must be non-nil.
func NewCoordinator(identities *IdentityRegistry, rooms *RoomRegistry, router EventRouter, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		identities: identities,
		rooms:      rooms,
		router:     router,
		logger:     logger,
	}
}

// Handshake registers a display identity for the connection.
//
// On validation failure or name collision the caller receives an error
// event and nothing is registered. On success the caller receives joined
// with the full identity list, and every other registered connection
// receives user_connected.
func (c *Coordinator) Handshake(connID, identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	trimmed := strings.TrimSpace(identity)
	switch {
	case trimmed == "":
		c.router.SendTo(EventError, []string{connID}, msgBlankIdentity)
		return
	case len(trimmed) < 3 || len(trimmed) >= 10:
		c.router.SendTo(EventError, []string{connID}, msgIdentityLength)
		return
	case !identityPattern.MatchString(trimmed):
		c.router.SendTo(EventError, []string{connID}, msgIdentityChars)
		return
	}

	if err := c.identities.Register(trimmed, connID); err != nil {
		c.router.SendTo(EventError, []string{connID}, msgIdentityTaken)
		return
	}

	all := c.identities.Identities()
	c.router.SendTo(EventJoined, []string{connID}, JoinedPayload{
		Identity:      trimmed,
		AllIdentities: all,
	})

	others := make([]string, 0, c.identities.Count())
	for _, id := range c.identities.Connections() {
		if id != connID {
			others = append(others, id)
		}
	}
	c.router.SendTo(EventUserConnected, others, all)

	c.logger.Info("identity registered",
		zap.String("identity", trimmed),
		zap.String("conn_id", connID),
	)
}

// Disconnect releases the connection's identity. Every remaining
// registered connection is told which identity departed. Connections that
// never completed a handshake come and go silently.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	identity, ok := c.identities.IdentityFor(connID)
	if !ok {
		return
	}
	c.identities.Unregister(connID)
	c.router.SendTo(EventUserDisconnected, c.identities.Connections(), identity)

	c.logger.Info("identity released",
		zap.String("identity", identity),
		zap.String("conn_id", connID),
	)
}

// CreateRoom creates a room owned by the caller, stores it under a fresh
// unique id, and joins the caller's connection to the room group.
func (c *Coordinator) CreateRoom(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	identity, ok := c.identities.IdentityFor(connID)
	if !ok {
		c.logger.Warn("create_room from connection without identity",
			zap.String("conn_id", connID),
		)
		return
	}

	roomID := c.rooms.GenerateID()
	c.rooms.Put(roomID, NewRoom(identity, connID))
	c.router.JoinGroup(roomID, connID)

	c.router.SendTo(EventCreatedRoom, []string{connID}, CreatedRoomPayload{
		RoomID:        roomID,
		OwnerIdentity: identity,
	})

	c.logger.Info("room created",
		zap.String("room_id", roomID),
		zap.String("owner", identity),
	)
}

// JoinRoom seats the caller in the room's second seat. An unknown room id
// is logged and dropped with no client-visible event; a full room earns
// the caller an error event and mutates nothing. On success the caller
// receives joined_room and the whole room group receives the new status.
func (c *Coordinator) JoinRoom(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	identity, ok := c.identities.IdentityFor(connID)
	if !ok {
		c.logger.Warn("join_room from connection without identity",
			zap.String("conn_id", connID),
		)
		return
	}

	room, ok := c.rooms.Get(roomID)
	if !ok {
		c.logger.Warn("join_room for unknown room",
			zap.String("room_id", roomID),
			zap.String("identity", identity),
		)
		return
	}

	if _, _, occupied := room.Second(); occupied {
		c.router.SendTo(EventError, []string{connID}, msgRoomFull)
		return
	}

	c.router.JoinGroup(roomID, connID)
	if err := room.Join(identity, connID); err != nil {
		// Unreachable while handlers are serialized; the seat was checked above.
		c.router.LeaveGroup(roomID, connID)
		c.router.SendTo(EventError, []string{connID}, msgRoomFull)
		return
	}

	c.router.SendTo(EventJoinedRoom, []string{connID}, roomID)

	second, _, _ := room.Second()
	c.router.SendToRoom(EventChangeRoomStatus, roomID, RoomStatusPayload{
		Status:         room.Status(),
		OwnerIdentity:  room.Owner(),
		SecondIdentity: second,
	})

	c.logger.Info("room joined",
		zap.String("room_id", roomID),
		zap.String("identity", identity),
	)
}

// LeaveRoom handles an explicit departure from a room. The owner's
// departure cancels the whole room; a second player's departure only
// vacates their seat.
func (c *Coordinator) LeaveRoom(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	identity, _ := c.identities.IdentityFor(connID)

	room, ok := c.rooms.Get(roomID)
	if !ok {
		// The room vanished between the client joining the group and now.
		c.router.SendToRoom(EventKick, roomID, msgServerError)
		return
	}

	if room.IsOwner(identity) {
		c.router.SendToRoom(EventChangeRoomStatus, roomID, RoomStatusPayload{
			Status: room.Status(),
		})
		c.router.SendToRoom(EventKick, roomID, msgOwnerLeft)

		room.RemoveRoom()
		c.rooms.Delete(roomID)

		c.logger.Info("room removed by owner",
			zap.String("room_id", roomID),
			zap.String("owner", identity),
		)
	} else {
		if _, secondConn, ok := room.Second(); ok {
			c.router.SendTo(EventKick, []string{secondConn}, nil)
		}
		room.RemovePlayer(identity)

		c.router.SendTo(EventChangeRoomStatus, []string{room.OwnerConn()}, RoomStatusPayload{
			Status:        room.Status(),
			OwnerIdentity: room.Owner(),
		})
		c.router.SendTo(EventChangeRoomStatus, []string{connID}, RoomStatusPayload{
			Status: StatusNotInRoom,
		})

		c.logger.Info("second player left room",
			zap.String("room_id", roomID),
			zap.String("identity", identity),
		)
	}

	c.router.LeaveGroup(roomID, connID)
}

// Disconnecting performs room cleanup for a connection that is about to
// drop, while it is still joined to its room groups. The transport calls
// this before Disconnect with the connection's current group memberships;
// a connection is only ever in one room group. Mirrors LeaveRoom's
// ownership split, except the departing player is notified on their own
// connection and both branches end with a status-only room broadcast.
func (c *Coordinator) Disconnecting(connID string, roomIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(roomIDs) == 0 {
		return
	}
	roomID := roomIDs[0]

	identity, _ := c.identities.IdentityFor(connID)

	room, ok := c.rooms.Get(roomID)
	if !ok {
		return
	}

	if room.IsOwner(identity) {
		room.RemoveRoom()
		c.rooms.Delete(roomID)
		c.router.SendToRoom(EventKick, roomID, msgOwnerLeft)

		c.logger.Info("room removed by disconnecting owner",
			zap.String("room_id", roomID),
			zap.String("owner", identity),
		)
	} else {
		c.router.SendTo(EventKick, []string{connID}, nil)
		room.RemovePlayer(identity)

		c.logger.Info("second player disconnecting from room",
			zap.String("room_id", roomID),
			zap.String("identity", identity),
		)
	}

	c.router.SendToRoom(EventChangeRoomStatus, roomID, RoomStatusPayload{
		Status: room.Status(),
	})
	c.router.LeaveGroup(roomID, connID)
}
