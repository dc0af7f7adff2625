// Package provider defines the adapter boundary between the orchestration
// core and concrete AI vendors. The core only requires the uniform
// Send(ChatRequest) -> ChatResponse contract; one adapter per vendor lives
// in a subpackage (openai, anthropic).
package provider

import (
	"context"
	"fmt"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
)

// Info contains metadata about a provider implementation.
type Info struct {
	Name          string `json:"name"`   // model identifier, e.g. "gpt-4o-mini"
	Vendor        string `json:"vendor"` // "openai", "anthropic", "scripted", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Provider turns a normalized chat request into a normalized chat response.
//
// Implementations must not mutate the request. Transport, auth and rate
// limit failures surface as *Error; the core treats them as fatal for the
// current turn and never retries on its own.
type Provider interface {
	Send(ctx context.Context, req core.ChatRequest) (*core.ChatResponse, error)

	// Info returns metadata about the provider implementation.
	Info() Info
}

// Streamer is the optional streaming capability of a Provider. Text deltas
// are delivered in order on the calling goroutine; the accumulated final
// response is returned once the stream completes. A non-nil error from
// onDelta aborts the stream.
type Streamer interface {
	SendStream(ctx context.Context, req core.ChatRequest, onDelta func(delta string) error) (*core.ChatResponse, error)
}

// WithCallTimeout derives a context bounded by the request's per-call
// timeout option. The timeout covers a single Send or SendStream round-trip,
// never a whole agent loop; the loop-level bound stays turn-count based.
// Without a timeout option the context is returned unchanged with a no-op
// cancel, so callers can always defer the cancel func.
func WithCallTimeout(ctx context.Context, options map[string]any) (context.Context, context.CancelFunc) {
	if d, ok := core.TimeoutOption(options); ok {
		return context.WithTimeout(ctx, d)
	}
	return ctx, func() {}
}

// Error is a provider transport/auth/rate-limit failure. It is fatal for
// the current call and propagates unchanged to the caller.
type Error struct {
	Vendor  string // vendor that produced the failure
	Status  int    // HTTP-ish status code when known, 0 otherwise
	Message string
	Err     error // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s error (status %d): %s", e.Vendor, e.Status, e.Message)
	}
	return fmt.Sprintf("provider %s error: %s", e.Vendor, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
