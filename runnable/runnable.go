// Package runnable implements the composable execution graph: units that
// consume an input and produce an output synchronously, asynchronously or as
// a stream of chunks, and compose into sequences. The variant set is closed
// (Transform | Model | Sequence | Template) so downstream code can reason
// about it exhaustively.
package runnable

import (
	"context"
	"fmt"
)

// Chunk is one unit of streamed output. Non-streaming steps degenerate to a
// single chunk with Final set.
type Chunk struct {
	Value any
	Index int
	Final bool
}

// ChunkFunc receives stream chunks in production order on the invoking
// goroutine. Returning a non-nil error aborts the stream.
type ChunkFunc func(Chunk) error

// TransformFunc is the function shape wrapped by the Transform variant.
type TransformFunc func(ctx context.Context, input any, params map[string]any) (any, error)

// Runnable is a composable unit of execution.
//
// Run and Stream merge the unit's default parameters (WithParams) with the
// runtime-supplied ones, runtime keys winning. To returns a NEW Sequence and
// never mutates the receiver; WithName and WithParams mutate the receiver
// and return it for chaining.
type Runnable interface {
	// Run executes synchronously, returning the output or the failing
	// step's error.
	Run(ctx context.Context, input any, params map[string]any) (any, error)

	// Stream executes and delivers output incrementally through onChunk.
	// Delivery is single-producer and in order; the last chunk has Final
	// set.
	Stream(ctx context.Context, input any, onChunk ChunkFunc, params map[string]any) error

	// To returns a new Sequence with next appended. Composing from a
	// Sequence flattens: the result has one more step, never a nested
	// Sequence.
	To(next Runnable) *Sequence

	// Transform is sugar for To(NewTransform(fn)).
	Transform(fn TransformFunc) *Sequence

	// WithName sets a diagnostic name and returns the receiver.
	WithName(name string) Runnable

	// WithParams sets default runtime parameters and returns the receiver.
	WithParams(params map[string]any) Runnable

	// Name returns the diagnostic name (defaults to the variant kind).
	Name() string
}

// ExecutionError reports a failed step inside a Run or Stream, identifying
// the step by name and position and wrapping the underlying cause.
type ExecutionError struct {
	Step  string
	Index int
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed at step %d (%s): %v", e.Index, e.Step, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Result is the outcome delivered by Go.
type Result struct {
	Output any
	Err    error
}

// Go wraps the synchronous Run in a goroutine so the caller is not blocked.
// The returned channel is buffered and delivers exactly one Result. No
// additional parallelism is introduced inside the invocation.
func Go(ctx context.Context, r Runnable, input any, params map[string]any) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		output, err := r.Run(ctx, input, params)
		out <- Result{Output: output, Err: err}
	}()
	return out
}

// base carries the name/params shared by every variant.
type base struct {
	name   string
	params map[string]any
}

func (b *base) Name() string { return b.name }
