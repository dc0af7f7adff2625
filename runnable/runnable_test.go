package runnable

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
)

func double() *Transform {
	return NewTransform(func(_ context.Context, input any, _ map[string]any) (any, error) {
		return input.(int) * 2, nil
	})
}

func addFive() *Transform {
	return NewTransform(func(_ context.Context, input any, _ map[string]any) (any, error) {
		return input.(int) + 5, nil
	})
}

func timesTen() *Transform {
	return NewTransform(func(_ context.Context, input any, _ map[string]any) (any, error) {
		return input.(int) * 10, nil
	})
}

func TestTransform_Run(t *testing.T) {
	out, err := double().Run(context.Background(), 21, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestTransform_StreamSingleFinalChunk(t *testing.T) {
	var chunks []Chunk
	err := double().Stream(context.Background(), 21, func(c Chunk) error {
		chunks = append(chunks, c)
		return nil
	}, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 42, chunks[0].Value)
	assert.True(t, chunks[0].Final)
}

func TestTransform_ParamsMerge(t *testing.T) {
	echo := NewTransform(func(_ context.Context, _ any, params map[string]any) (any, error) {
		return params["key"], nil
	}).WithParams(map[string]any{"key": "default"})

	out, err := echo.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "default", out)

	// Runtime params win over the step's defaults.
	out, err = echo.Run(context.Background(), nil, map[string]any{"key": "runtime"})
	require.NoError(t, err)
	assert.Equal(t, "runtime", out)
}

func TestSequence_RunFoldsInOrder(t *testing.T) {
	pipe := double().To(addFive()).To(timesTen())

	out, err := pipe.Run(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 250, out)
}

func TestSequence_ToReturnsNewSequence(t *testing.T) {
	pipe := double().To(addFive())
	require.Equal(t, 2, pipe.Count())

	grown := pipe.To(timesTen())

	// The original is untouched; the result is a flattened sequence with
	// exactly one more step, never a nested one.
	assert.Equal(t, 2, pipe.Count())
	assert.Equal(t, 3, grown.Count())

	out, err := pipe.Run(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, out)

	out, err = grown.Run(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 250, out)
}

func TestSequence_StepFailureIdentity(t *testing.T) {
	boom := errors.New("step exploded")
	failing := NewTransform(func(_ context.Context, _ any, _ map[string]any) (any, error) {
		return nil, boom
	}).WithName("exploder")

	pipe := double().To(failing).To(timesTen())

	_, err := pipe.Run(context.Background(), 1, nil)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "exploder", execErr.Step)
	assert.Equal(t, 1, execErr.Index)
	assert.ErrorIs(t, err, boom)
}

func TestSequence_StreamOnlyFinalStep(t *testing.T) {
	pipe := double().To(addFive())

	var chunks []Chunk
	err := pipe.Stream(context.Background(), 10, func(c Chunk) error {
		chunks = append(chunks, c)
		return nil
	}, nil)
	require.NoError(t, err)

	// Earlier steps run to completion silently; only the final step's
	// chunks surface.
	require.Len(t, chunks, 1)
	assert.Equal(t, 25, chunks[0].Value)
	assert.True(t, chunks[0].Final)
}

func TestSequence_StreamEmpty(t *testing.T) {
	var chunks []Chunk
	err := NewSequence().Stream(context.Background(), "x", func(c Chunk) error {
		chunks = append(chunks, c)
		return nil
	}, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "x", chunks[0].Value)
	assert.True(t, chunks[0].Final)
}

func TestSequence_ParamsNotInheritedBetweenSteps(t *testing.T) {
	// Merged params are recomputed per step; a step writing into its map
	// must not be seen by a sibling, and the caller's map stays untouched.
	mutator := NewTransform(func(_ context.Context, input any, params map[string]any) (any, error) {
		params["leak"] = true
		return input, nil
	})
	checker := NewTransform(func(_ context.Context, input any, params map[string]any) (any, error) {
		_, leaked := params["leak"]
		return leaked, nil
	})

	runtime := map[string]any{}
	out, err := mutator.To(checker).Run(context.Background(), nil, runtime)
	require.NoError(t, err)
	assert.Equal(t, false, out)
	assert.NotContains(t, runtime, "leak")
}

func TestGo_DeliversResult(t *testing.T) {
	result := <-Go(context.Background(), double(), 21, nil)
	require.NoError(t, result.Err)
	assert.Equal(t, 42, result.Output)

	boom := errors.New("boom")
	failing := NewTransform(func(_ context.Context, _ any, _ map[string]any) (any, error) {
		return nil, boom
	})
	result = <-Go(context.Background(), failing, nil, nil)
	assert.ErrorIs(t, result.Err, boom)
}

func TestTemplate_Run(t *testing.T) {
	tmpl := NewTemplate("Summarize: {{.topic}}")

	out, err := tmpl.Run(context.Background(), nil, map[string]any{"topic": "goroutines"})
	require.NoError(t, err)
	msg, ok := out.(core.Message)
	require.True(t, ok)
	assert.Equal(t, core.RoleUser, msg.Role)
	assert.Equal(t, "Summarize: goroutines", msg.Content)
}

func TestTemplate_InputScope(t *testing.T) {
	tmpl := NewTemplate("{{.input}} and {{.extra}}", func(o *TemplateOptions) {
		o.Role = core.RoleSystem
	}).WithParams(map[string]any{"extra": "params"})

	out, err := tmpl.Run(context.Background(), "plain input", nil)
	require.NoError(t, err)
	msg := out.(core.Message)
	assert.Equal(t, core.RoleSystem, msg.Role)
	assert.Equal(t, "plain input and params", msg.Content)

	// Map inputs merge into the template scope directly.
	out, err = tmpl.Run(context.Background(), map[string]any{"input": "mapped", "extra": "override"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mapped and override", out.(core.Message).Content)
}

func TestWithNameAndDescribe(t *testing.T) {
	pipe := double().WithName("dbl").(*Transform).To(addFive())
	pipe.WithName("math")

	assert.Equal(t, "math", pipe.Name())
	desc := pipe.Describe()
	assert.Contains(t, desc, "math (2 steps)")
	assert.Contains(t, desc, "1. dbl")
}
