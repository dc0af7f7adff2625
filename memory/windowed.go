package memory

import (
	"context"
	"sync"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
)

// Windowed keeps the most recent maxMessages messages, trimming strictly
// FIFO. Dropped content is not preserved in any form: cheapest policy,
// lowest fidelity.
type Windowed struct {
	mu          sync.RWMutex
	messages    []core.Message
	maxMessages int
}

var _ Memory = (*Windowed)(nil)

// NewWindowed creates a windowed memory holding at most maxMessages
// messages.
func NewWindowed(maxMessages int) (*Windowed, error) {
	if maxMessages <= 0 {
		return nil, core.NewConfigurationError("memory", "maxMessages must be positive, got %d", maxMessages)
	}
	return &Windowed{maxMessages: maxMessages}, nil
}

// Add implements Memory.
func (w *Windowed) Add(_ context.Context, msg core.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msg)
	if excess := len(w.messages) - w.maxMessages; excess > 0 {
		w.messages = append(w.messages[:0:0], w.messages[excess:]...)
	}
	return nil
}

// GetAll implements Memory.
func (w *Windowed) GetAll() []core.Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return core.CloneMessages(w.messages)
}

// Count implements Memory.
func (w *Windowed) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.messages)
}

// Compact implements Memory as a no-op: the window is already trimmed on
// every Add.
func (w *Windowed) Compact(context.Context) error { return nil }
