package runnable

import (
	"context"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
)

// Transform wraps a plain function as a Runnable. Its stream degenerates to
// exactly one final chunk carrying the full result.
type Transform struct {
	base
	fn TransformFunc
}

var _ Runnable = (*Transform)(nil)

// NewTransform wraps fn as a Runnable named "transform".
func NewTransform(fn TransformFunc) *Transform {
	return &Transform{base: base{name: "transform"}, fn: fn}
}

// Run implements Runnable by applying the wrapped function.
func (t *Transform) Run(ctx context.Context, input any, params map[string]any) (any, error) {
	return t.fn(ctx, input, core.MergeParams(t.params, params))
}

// Stream implements Runnable with a single final chunk.
func (t *Transform) Stream(ctx context.Context, input any, onChunk ChunkFunc, params map[string]any) error {
	output, err := t.Run(ctx, input, params)
	if err != nil {
		return err
	}
	return onChunk(Chunk{Value: output, Index: 0, Final: true})
}

// To implements Runnable.
func (t *Transform) To(next Runnable) *Sequence { return NewSequence(t, next) }

// Transform implements Runnable.
func (t *Transform) Transform(fn TransformFunc) *Sequence { return t.To(NewTransform(fn)) }

// WithName implements Runnable.
func (t *Transform) WithName(name string) Runnable {
	t.name = name
	return t
}

// WithParams implements Runnable.
func (t *Transform) WithParams(params map[string]any) Runnable {
	t.params = params
	return t
}
