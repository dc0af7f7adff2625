package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
)

// SessionStore is the external persistence contract consumed by session
// memory: an ordered message list keyed by a persistence key. A missing key
// yields an empty list, not an error. Implementations must keep per-key
// read-modify-write safe under their own concurrency contract.
type SessionStore interface {
	Get(key string) ([]core.Message, error)
	Set(key string, msgs []core.Message) error
}

// Session behaves like windowed memory but its message list is the session
// store's value for the persistence key. Every Add writes through
// immediately so a crash does not lose messages already added; the retained
// window is reloaded from the store on construction.
type Session struct {
	mu          sync.Mutex
	store       SessionStore
	key         string
	messages    []core.Message
	maxMessages int
}

var _ Memory = (*Session)(nil)

// NewSession creates a session memory bound to the store value for key,
// loading whatever the store already holds.
func NewSession(store SessionStore, key string, maxMessages int) (*Session, error) {
	if store == nil {
		return nil, core.NewConfigurationError("memory", "session memory requires a session store")
	}
	if key == "" {
		return nil, core.NewConfigurationError("memory", "session memory requires a persistence key")
	}
	if maxMessages <= 0 {
		return nil, core.NewConfigurationError("memory", "maxMessages must be positive, got %d", maxMessages)
	}

	msgs, err := store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", key, err)
	}
	if excess := len(msgs) - maxMessages; excess > 0 {
		msgs = msgs[excess:]
	}
	return &Session{store: store, key: key, messages: core.CloneMessages(msgs), maxMessages: maxMessages}, nil
}

// Key returns the persistence key.
func (s *Session) Key() string { return s.key }

// Add implements Memory with immediate write-through.
func (s *Session) Add(_ context.Context, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	if excess := len(s.messages) - s.maxMessages; excess > 0 {
		s.messages = append(s.messages[:0:0], s.messages[excess:]...)
	}
	return s.persistLocked()
}

// GetAll implements Memory.
func (s *Session) GetAll() []core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.CloneMessages(s.messages)
}

// Count implements Memory.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Compact implements Memory: no retention work beyond the window, but the
// current state is persisted.
func (s *Session) Compact(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func (s *Session) persistLocked() error {
	if err := s.store.Set(s.key, core.CloneMessages(s.messages)); err != nil {
		return fmt.Errorf("persist session %q: %w", s.key, err)
	}
	return nil
}
