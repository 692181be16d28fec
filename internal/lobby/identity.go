package lobby

import (
	"errors"
	"sync"
)

// ErrIdentityTaken is returned by Register when the identity is already held
// by a live connection.
var ErrIdentityTaken = errors.New("identity already taken")

// IdentityRegistry maps each display identity to the opaque id of its live
// connection. Entries exist only while the connection is live: created on
// successful handshake, removed on disconnect. An identity becomes available
// for reuse the moment it is unregistered.
// All methods are safe for concurrent use.
type IdentityRegistry struct {
	mu         sync.RWMutex
	identities map[string]string // identity → connection id
}

// NewIdentityRegistry creates an empty IdentityRegistry.
func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{
		identities: make(map[string]string),
	}
}

// Register binds identity to connID.
//
// Postcondition: returns ErrIdentityTaken and leaves the registry unchanged
// when the identity is already present.
func (r *IdentityRegistry) Register(identity, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.identities[identity]; exists {
		return ErrIdentityTaken
	}
	r.identities[identity] = connID
	return nil
}

// Unregister removes the entry whose connection id equals connID.
// No-op when no entry matches.
func (r *IdentityRegistry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for identity, id := range r.identities {
		if id == connID {
			delete(r.identities, identity)
			return
		}
	}
}

// IdentityFor returns the identity registered for connID.
//
// Postcondition: ok is false when the connection has no registered identity.
func (r *IdentityRegistry) IdentityFor(connID string) (identity string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for identity, id := range r.identities {
		if id == connID {
			return identity, true
		}
	}
	return "", false
}

// Identities returns all registered identities, in no particular order.
func (r *IdentityRegistry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.identities))
	for identity := range r.identities {
		out = append(out, identity)
	}
	return out
}

// Connections returns the connection ids of all registered identities,
// in no particular order.
func (r *IdentityRegistry) Connections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.identities))
	for _, connID := range r.identities {
		out = append(out, connID)
	}
	return out
}

// Count returns the number of registered identities.
func (r *IdentityRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.identities)
}
