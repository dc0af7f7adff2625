package runnable

import (
	"context"
	"fmt"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
	"github.com/ortus-boxlang/bx-ai-sub007/provider"
)

// Model drives a provider adapter as a pipeline step. Accepted inputs are a
// string prompt, a core.Message, a []core.Message or a full
// core.ChatRequest; merged runtime parameters become the request params.
// The step's output is the response text, or the full *core.ChatResponse
// when constructed with ReturnResponse.
type Model struct {
	base
	provider       provider.Provider
	returnResponse bool
}

var _ Runnable = (*Model)(nil)

// ModelOptions configures a Model runnable.
type ModelOptions struct {
	// ReturnResponse makes Run output the *core.ChatResponse instead of
	// its text, for pipelines that need tool calls or usage data.
	ReturnResponse bool
}

// NewModel wraps a provider adapter as a Runnable named "model".
func NewModel(p provider.Provider, optFns ...func(o *ModelOptions)) *Model {
	opts := ModelOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{base: base{name: "model"}, provider: p, returnResponse: opts.ReturnResponse}
}

// Run implements Runnable.
func (m *Model) Run(ctx context.Context, input any, params map[string]any) (any, error) {
	req, err := m.buildRequest(input, params)
	if err != nil {
		return nil, err
	}
	resp, err := m.provider.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.output(resp), nil
}

// Stream implements Runnable. When the provider supports streaming, text
// deltas are emitted as non-final chunks followed by one final chunk with
// the complete output; otherwise the call degenerates to a single final
// chunk.
func (m *Model) Stream(ctx context.Context, input any, onChunk ChunkFunc, params map[string]any) error {
	req, err := m.buildRequest(input, params)
	if err != nil {
		return err
	}

	streamer, ok := m.provider.(provider.Streamer)
	if !ok {
		resp, err := m.provider.Send(ctx, req)
		if err != nil {
			return err
		}
		return onChunk(Chunk{Value: m.output(resp), Index: 0, Final: true})
	}

	index := 0
	resp, err := streamer.SendStream(ctx, req, func(delta string) error {
		err := onChunk(Chunk{Value: delta, Index: index})
		index++
		return err
	})
	if err != nil {
		return err
	}
	return onChunk(Chunk{Value: m.output(resp), Index: index, Final: true})
}

// To implements Runnable.
func (m *Model) To(next Runnable) *Sequence { return NewSequence(m, next) }

// Transform implements Runnable.
func (m *Model) Transform(fn TransformFunc) *Sequence { return m.To(NewTransform(fn)) }

// WithName implements Runnable.
func (m *Model) WithName(name string) Runnable {
	m.name = name
	return m
}

// WithParams implements Runnable.
func (m *Model) WithParams(params map[string]any) Runnable {
	m.params = params
	return m
}

func (m *Model) output(resp *core.ChatResponse) any {
	if m.returnResponse {
		return resp
	}
	return resp.Text
}

func (m *Model) buildRequest(input any, params map[string]any) (core.ChatRequest, error) {
	merged := core.MergeParams(m.params, params)

	switch in := input.(type) {
	case core.ChatRequest:
		req := in.Clone()
		req.Params = core.MergeParams(merged, req.Params)
		return req, nil
	case *core.ChatRequest:
		req := in.Clone()
		req.Params = core.MergeParams(merged, req.Params)
		return req, nil
	case core.Message:
		return core.ChatRequest{Messages: []core.Message{in}, Params: merged}, nil
	case []core.Message:
		return core.ChatRequest{Messages: core.CloneMessages(in), Params: merged}, nil
	case string:
		return core.ChatRequest{Messages: []core.Message{core.UserMessage(in)}, Params: merged}, nil
	case fmt.Stringer:
		return core.ChatRequest{Messages: []core.Message{core.UserMessage(in.String())}, Params: merged}, nil
	default:
		return core.ChatRequest{}, fmt.Errorf("model step %q: unsupported input type %T", m.name, input)
	}
}
