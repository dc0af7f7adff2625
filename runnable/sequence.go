package runnable

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
)

// Sequence executes an ordered list of child runnables, threading each
// step's output into the next step's input. Steps run strictly in order and
// never concurrently: later steps may depend on complete prior output.
type Sequence struct {
	base
	steps []Runnable
}

var _ Runnable = (*Sequence)(nil)

// NewSequence creates a Sequence over the given steps.
func NewSequence(steps ...Runnable) *Sequence {
	owned := make([]Runnable, len(steps))
	copy(owned, steps)
	return &Sequence{base: base{name: "sequence"}, steps: owned}
}

// Run folds the input through each step in order. Merged parameters are
// recomputed from the Sequence's own defaults plus the runtime override and
// handed to every step; they are never inherited from sibling steps. A step
// failure aborts immediately with an ExecutionError identifying the step.
func (s *Sequence) Run(ctx context.Context, input any, params map[string]any) (any, error) {
	merged := core.MergeParams(s.params, params)
	current := input
	for i, step := range s.steps {
		output, err := step.Run(ctx, current, merged)
		if err != nil {
			return nil, &ExecutionError{Step: step.Name(), Index: i, Err: err}
		}
		current = output
	}
	return current, nil
}

// Stream runs every intermediate step to completion, then streams only the
// final step. An empty sequence emits its input as one final chunk.
func (s *Sequence) Stream(ctx context.Context, input any, onChunk ChunkFunc, params map[string]any) error {
	if len(s.steps) == 0 {
		return onChunk(Chunk{Value: input, Index: 0, Final: true})
	}

	merged := core.MergeParams(s.params, params)
	current := input
	for i, step := range s.steps[:len(s.steps)-1] {
		output, err := step.Run(ctx, current, merged)
		if err != nil {
			return &ExecutionError{Step: step.Name(), Index: i, Err: err}
		}
		current = output
	}

	last := s.steps[len(s.steps)-1]
	if err := last.Stream(ctx, current, onChunk, merged); err != nil {
		var execErr *ExecutionError
		if errors.As(err, &execErr) {
			return err
		}
		return &ExecutionError{Step: last.Name(), Index: len(s.steps) - 1, Err: err}
	}
	return nil
}

// To implements Runnable: the result is a NEW flattened Sequence with one
// more step; the receiver's own step list is untouched.
func (s *Sequence) To(next Runnable) *Sequence {
	steps := make([]Runnable, 0, len(s.steps)+1)
	steps = append(steps, s.steps...)
	steps = append(steps, next)
	out := NewSequence(steps...)
	out.name = s.name
	out.params = s.params
	return out
}

// Transform implements Runnable.
func (s *Sequence) Transform(fn TransformFunc) *Sequence { return s.To(NewTransform(fn)) }

// WithName implements Runnable.
func (s *Sequence) WithName(name string) Runnable {
	s.name = name
	return s
}

// WithParams implements Runnable.
func (s *Sequence) WithParams(params map[string]any) Runnable {
	s.params = params
	return s
}

// Count returns the number of steps.
func (s *Sequence) Count() int { return len(s.steps) }

// Steps returns a copy of the ordered step list.
func (s *Sequence) Steps() []Runnable {
	out := make([]Runnable, len(s.steps))
	copy(out, s.steps)
	return out
}

// Describe renders the step names in order for diagnostics. The output is
// not machine-parsed.
func (s *Sequence) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d steps)\n", s.name, len(s.steps))
	for i, step := range s.steps {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, step.Name())
	}
	return sb.String()
}
