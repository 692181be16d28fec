// Package lobby implements the matchmaking core: the identity registry,
// the two-seat room state machine, the room registry, and the session
// coordinator that drives both in response to inbound client events.
package lobby

import (
	"errors"
	"sync"
)

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	// StatusWaiting means the room has an owner and an empty second seat.
	StatusWaiting RoomStatus = "waiting"
	// StatusReady means both seats are occupied.
	StatusReady RoomStatus = "ready"
	// StatusPlaying means the match has been explicitly started.
	StatusPlaying RoomStatus = "playing"
	// StatusCancelled is terminal; the owner has torn the room down.
	StatusCancelled RoomStatus = "cancelled"
	// StatusNotInRoom is never held by a Room. It is reported to a player
	// who has been removed from a room to signal they no longer have one.
	StatusNotInRoom RoomStatus = "notInRoom"
)

// ErrSeatTaken is returned by Join when the second seat is already occupied.
var ErrSeatTaken = errors.New("second seat already occupied")

// ErrNotReady is returned by StartGame when the room is not in the ready state.
var ErrNotReady = errors.New("room is not ready")

// seat holds one occupied participant slot. A nil *seat is an empty slot,
// so "second seat present" and "second identity set" cannot diverge.
type seat struct {
	identity string
	connID   string
}

// Room is a two-seat match lobby. The owner occupies the first seat for the
// room's whole lifetime; the second seat may be vacated and refilled.
//
// Mutations must be serialized by the caller (the Coordinator does this);
// the internal lock only makes concurrent reads from the inspection
// surface safe against those serialized writes.
type Room struct {
	mu        sync.RWMutex
	owner     string
	ownerConn string
	second    *seat
	status    RoomStatus
}

// NewRoom creates a room with the given owner and an empty second seat.
//
// Postcondition: the room status is StatusWaiting.
func NewRoom(ownerIdentity, ownerConn string) *Room {
	return &Room{
		owner:     ownerIdentity,
		ownerConn: ownerConn,
		status:    StatusWaiting,
	}
}

// NewPairedRoom creates a room with both seats occupied.
//
// Postcondition: the room status is StatusReady.
func NewPairedRoom(ownerIdentity, ownerConn, secondIdentity, secondConn string) *Room {
	return &Room{
		owner:     ownerIdentity,
		ownerConn: ownerConn,
		second:    &seat{identity: secondIdentity, connID: secondConn},
		status:    StatusReady,
	}
}

// Join seats the given participant in the second seat.
//
// Precondition: the second seat must be empty; the caller is expected to
// check and reject before calling.
// Postcondition: on success the room status is StatusReady.
func (r *Room) Join(identity, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.second != nil {
		return ErrSeatTaken
	}
	r.second = &seat{identity: identity, connID: connID}
	r.status = StatusReady
	return nil
}

// StartGame transitions the room from ready to playing.
func (r *Room) StartGame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusReady {
		return ErrNotReady
	}
	r.status = StatusPlaying
	return nil
}

// RemovePlayer vacates the second seat if identity occupies it and reverts
// the room to StatusWaiting. If identity is the owner this is a no-op:
// owner removal must go through RemoveRoom so that the coordinator, not the
// room, decides whether the whole room is torn down.
func (r *Room) RemovePlayer(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if identity == r.owner {
		return
	}
	if r.second != nil && r.second.identity == identity {
		r.second = nil
		r.status = StatusWaiting
	}
}

// RemoveRoom drives the room to the terminal StatusCancelled state.
// Deleting the entry from the RoomRegistry is the coordinator's job.
func (r *Room) RemoveRoom() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusCancelled
}

// IsOwner reports whether identity owns this room. Pure predicate.
func (r *Room) IsOwner(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner == identity
}

// Owner returns the owner identity.
func (r *Room) Owner() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

// OwnerConn returns the owner's connection id.
func (r *Room) OwnerConn() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ownerConn
}

// Second returns the second seat's identity and connection id.
//
// Postcondition: ok is false and both strings are empty when the seat is empty.
func (r *Room) Second() (identity, connID string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.second == nil {
		return "", "", false
	}
	return r.second.identity, r.second.connID, true
}

// Status returns the current room status.
func (r *Room) Status() RoomStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}
