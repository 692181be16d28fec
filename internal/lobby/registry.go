package lobby

import (
	"math/rand"
	"sync"
)

// roomIDAlphabet is the fixed alphabet room ids are drawn from.
const roomIDAlphabet = "123456789ABCDEF"

// roomIDLength is the length of every generated room id.
const roomIDLength = 6

// RoomInfo is the read-only view of one live room, consumed by the
// inspection endpoint.
type RoomInfo struct {
	ID             string     `json:"id"`
	OwnerIdentity  string     `json:"ownerIdentity"`
	SecondIdentity string     `json:"secondIdentity,omitempty"`
	Status         RoomStatus `json:"status"`
}

// RoomRegistry maps room ids to live rooms and generates new ids.
// All methods are safe for concurrent use.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRoomRegistry creates an empty RoomRegistry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]*Room),
	}
}

// GenerateID draws a fresh 6-character id from the room id alphabet,
// retrying until it does not collide with any live room. With 15^6
// possible ids collisions are rare; the loop exists to make the
// no-two-live-rooms-share-an-id contract unconditional.
func (r *RoomRegistry) GenerateID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for {
		id := randomRoomID()
		if _, exists := r.rooms[id]; !exists {
			return id
		}
	}
}

func randomRoomID() string {
	b := make([]byte, roomIDLength)
	for i := range b {
		b[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))]
	}
	return string(b)
}

// Put stores room under id, replacing any existing entry.
func (r *RoomRegistry) Put(id string, room *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[id] = room
}

// Get returns the room stored under id.
func (r *RoomRegistry) Get(id string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// Delete removes the entry stored under id. No-op when absent.
func (r *RoomRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
}

// Has reports whether a room is stored under id.
func (r *RoomRegistry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[id]
	return ok
}

// Count returns the number of live rooms.
func (r *RoomRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Snapshot returns a point-in-time view of every live room, in no
// particular order. The inspection endpoint reads this without going
// through the coordinator.
func (r *RoomRegistry) Snapshot() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RoomInfo, 0, len(r.rooms))
	for id, room := range r.rooms {
		info := RoomInfo{
			ID:            id,
			OwnerIdentity: room.Owner(),
			Status:        room.Status(),
		}
		if second, _, ok := room.Second(); ok {
			info.SecondIdentity = second
		}
		out = append(out, info)
	}
	return out
}
