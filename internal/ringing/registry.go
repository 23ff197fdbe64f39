package ringing

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks the active session per owner, so photo captures coming in
// from the chat surface can be routed to the right firing.
type Registry struct {
	mu      sync.Mutex
	byOwner map[uuid.UUID]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byOwner: make(map[uuid.UUID]*Session)}
}

// Put installs the session for an owner. A session already ringing for the
// same owner is overridden (and its audio stopped) - one ringing at a time.
func (r *Registry) Put(ownerID uuid.UUID, s *Session) {
	r.mu.Lock()
	prev := r.byOwner[ownerID]
	r.byOwner[ownerID] = s
	r.mu.Unlock()

	if prev != nil {
		prev.Dismiss()
	}
}

// Get returns the owner's active session.
func (r *Registry) Get(ownerID uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byOwner[ownerID]
	return s, ok
}

// Remove drops the owner's session without dismissing it.
func (r *Registry) Remove(ownerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byOwner, ownerID)
}

// DismissAll force-dismisses every session. Called on shutdown so no audio
// outlives the process teardown.
func (r *Registry) DismissAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.byOwner))
	for _, s := range r.byOwner {
		sessions = append(sessions, s)
	}
	r.byOwner = make(map[uuid.UUID]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Dismiss()
	}
}
