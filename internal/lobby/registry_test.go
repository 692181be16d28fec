package lobby

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRoomRegistry_GenerateID(t *testing.T) {
	r := NewRoomRegistry()
	id := r.GenerateID()
	assert.Len(t, id, 6)
	for _, ch := range id {
		assert.Contains(t, roomIDAlphabet, string(ch))
	}
}

func TestRoomRegistry_GenerateID_NoLiveCollision(t *testing.T) {
	r := NewRoomRegistry()
	for i := 0; i < 1000; i++ {
		id := r.GenerateID()
		assert.False(t, r.Has(id), "generated id %q collides with a live room", id)
		r.Put(id, NewRoom("owner", "c1"))
	}
	assert.Equal(t, 1000, r.Count())
}

func TestRoomRegistry_PutGetDelete(t *testing.T) {
	r := NewRoomRegistry()
	room := NewRoom("alice", "c1")

	r.Put("1A2B3C", room)
	assert.True(t, r.Has("1A2B3C"))

	got, ok := r.Get("1A2B3C")
	require.True(t, ok)
	assert.Same(t, room, got)

	r.Delete("1A2B3C")
	assert.False(t, r.Has("1A2B3C"))
	_, ok = r.Get("1A2B3C")
	assert.False(t, ok)

	// Deleting again is a no-op.
	r.Delete("1A2B3C")
}

func TestRoomRegistry_Snapshot(t *testing.T) {
	r := NewRoomRegistry()
	r.Put("AAAAAA", NewRoom("alice", "c1"))
	r.Put("BBBBBB", NewPairedRoom("carol", "c3", "dave", "c4"))

	infos := r.Snapshot()
	require.Len(t, infos, 2)

	byID := make(map[string]RoomInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	waiting := byID["AAAAAA"]
	assert.Equal(t, "alice", waiting.OwnerIdentity)
	assert.Empty(t, waiting.SecondIdentity)
	assert.Equal(t, StatusWaiting, waiting.Status)

	ready := byID["BBBBBB"]
	assert.Equal(t, "carol", ready.OwnerIdentity)
	assert.Equal(t, "dave", ready.SecondIdentity)
	assert.Equal(t, StatusReady, ready.Status)
}

func TestRoomRegistry_SnapshotEmpty(t *testing.T) {
	r := NewRoomRegistry()
	assert.Empty(t, r.Snapshot())
}

// Every generated id is 6 characters over the fixed alphabet and unique
// among live rooms, regardless of how many rooms exist.
func TestPropertyRoomIDUniqueness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewRoomRegistry()
		numRooms := rapid.IntRange(1, 200).Draw(t, "num_rooms")

		seen := make(map[string]bool, numRooms)
		for i := 0; i < numRooms; i++ {
			id := r.GenerateID()
			if len(id) != 6 {
				t.Fatalf("id %q has length %d", id, len(id))
			}
			if strings.ContainsAny(id, "0GHIJKLMNOPQRSTUVWXYZ") {
				t.Fatalf("id %q contains characters outside the alphabet", id)
			}
			if seen[id] {
				t.Fatalf("id %q issued twice for concurrently-live rooms", id)
			}
			seen[id] = true
			r.Put(id, NewRoom("owner", "c1"))
		}
	})
}
