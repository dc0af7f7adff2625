package memory

import (
	"sync"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
)

// InMemorySessionStore is a volatile SessionStore backed by a process-local
// map. It is safe for concurrent access and best suited for tests or
// ephemeral demo servers; production deployments supply a durable store.
// Stored and returned slices are cloned to prevent external mutation.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]core.Message
}

var _ SessionStore = (*InMemorySessionStore)(nil)

// NewInMemorySessionStore constructs an empty in-memory session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string][]core.Message)}
}

// Get implements SessionStore. A missing key yields an empty list.
func (s *InMemorySessionStore) Get(key string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CloneMessages(s.sessions[key]), nil
}

// Set implements SessionStore.
func (s *InMemorySessionStore) Set(key string, msgs []core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = core.CloneMessages(msgs)
	return nil
}

// Keys returns the stored session keys in unspecified order.
func (s *InMemorySessionStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.sessions))
	for k := range s.sessions {
		keys = append(keys, k)
	}
	return keys
}

// Delete removes a stored session, reporting whether it existed.
func (s *InMemorySessionStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[key]
	delete(s.sessions, key)
	return ok
}
