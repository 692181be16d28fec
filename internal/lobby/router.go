package lobby

// Outbound event names. These are the wire-level event names clients
// subscribe to; the transport carries them verbatim.
const (
	EventError            = "error"
	EventJoined           = "joined"
	EventUserConnected    = "user_connected"
	EventUserDisconnected = "user_disconnected"
	EventCreatedRoom      = "created_room"
	EventJoinedRoom       = "joined_room"
	EventChangeRoomStatus = "change_room_status"
	EventKick             = "kick"
)

// EventRouter delivers named events to connections. Implementations are
// fire-and-forget: no acknowledgement, no delivery guarantee beyond what
// the transport provides. The coordinator is the only writer; the
// transport layer provides the implementation.
type EventRouter interface {
	// SendTo emits one logical event per target connection, all carrying
	// the same payload. An empty target list is legal and a no-op.
	// A nil payload emits the bare event.
	SendTo(event string, connIDs []string, payload any)

	// SendToRoom emits the event to every connection currently joined to
	// the room-scoped broadcast group for roomID. Group membership is
	// transport-layer state: it can diverge briefly from the Room's two
	// seats while a leave or disconnect is being processed.
	SendToRoom(event string, roomID string, payload any)

	// JoinGroup adds the connection to the room-scoped broadcast group.
	JoinGroup(roomID, connID string)

	// LeaveGroup removes the connection from the room-scoped broadcast
	// group. No-op when the connection is not a member.
	LeaveGroup(roomID, connID string)
}

// JoinedPayload is sent to a client on successful handshake.
type JoinedPayload struct {
	Identity      string   `json:"identity"`
	AllIdentities []string `json:"allIdentities"`
}

// CreatedRoomPayload is sent to a client that created a room.
type CreatedRoomPayload struct {
	RoomID        string `json:"roomId"`
	OwnerIdentity string `json:"ownerIdentity"`
}

// RoomStatusPayload carries a room status change. The identity fields are
// omitted when the emitting branch does not include them.
type RoomStatusPayload struct {
	Status         RoomStatus `json:"status"`
	OwnerIdentity  string     `json:"ownerIdentity,omitempty"`
	SecondIdentity string     `json:"secondIdentity,omitempty"`
}
