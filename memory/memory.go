// Package memory provides bounded conversational memory with pluggable
// retention policies: windowed (FIFO trim), summary (fold aged-out messages
// into one synthetic summary via a model) and session (windowed with
// write-through persistence to an external session store).
package memory

import (
	"context"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
)

// Memory is a bounded, mutable store of conversation messages. All
// implementations guarantee Count() <= their configured maximum after every
// Add.
//
// Implementations are safe for concurrent use; summarization inside Add or
// Compact is synchronous with respect to the caller.
type Memory interface {
	// Add appends a message, applying the retention policy.
	Add(ctx context.Context, msg core.Message) error

	// GetAll returns the retained messages in order, oldest first. The
	// returned slice is a copy.
	GetAll() []core.Message

	// Count returns the number of retained messages.
	Count() int

	// Compact applies the retention policy eagerly: a no-op for windowed
	// memory, summarization for summary memory, persistence for session
	// memory.
	Compact(ctx context.Context) error
}
