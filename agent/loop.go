package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
	"github.com/ortus-boxlang/bx-ai-sub007/logging"
	"github.com/ortus-boxlang/bx-ai-sub007/mcp"
	"github.com/ortus-boxlang/bx-ai-sub007/memory"
	"github.com/ortus-boxlang/bx-ai-sub007/provider"
	"github.com/ortus-boxlang/bx-ai-sub007/runnable"
	"github.com/ortus-boxlang/bx-ai-sub007/tool"
)

// MaxIterationsError is returned when the provider keeps requesting tools
// past the configured round-trip bound.
type MaxIterationsError struct {
	Turns int
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("agent exceeded %d tool-calling iterations without a final answer", e.Turns)
}

// Options configures a Loop.
type Options struct {
	// MaxIterations bounds the number of provider round trips per Run.
	MaxIterations int

	// Memory, when set, contributes its messages ahead of the request's
	// and records the exchange after a successful Run.
	Memory memory.Memory

	// Remote resolves tool calls that no local tool matches.
	Remote *mcp.Client

	// RecordHistory controls whether intermediate tool-call and tool-result
	// messages are written to Memory alongside the user turn and final
	// answer.
	RecordHistory bool

	// Params are default request parameters, merged under the request's
	// own params on every round trip.
	Params map[string]any

	Logger logging.Logger
}

// WithMaxIterations sets the round-trip bound. Values below one are ignored.
func WithMaxIterations(n int) func(o *Options) {
	return func(o *Options) {
		if n > 0 {
			o.MaxIterations = n
		}
	}
}

// WithMemory attaches a conversational memory to the loop.
func WithMemory(m memory.Memory) func(o *Options) {
	return func(o *Options) { o.Memory = m }
}

// WithRemote attaches an MCP client used for tool calls that match no
// local tool.
func WithRemote(c *mcp.Client) func(o *Options) {
	return func(o *Options) { o.Remote = c }
}

// WithRecordHistory records intermediate tool traffic into memory, not just
// the user turn and final answer.
func WithRecordHistory() func(o *Options) {
	return func(o *Options) { o.RecordHistory = true }
}

// WithParams sets default request parameters for every round trip.
func WithParams(params map[string]any) func(o *Options) {
	return func(o *Options) { o.Params = params }
}

// WithLogger sets the loop's logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Loop drives a provider until it stops requesting tools.
//
// Each Run submits the conversation plus the advertised tool definitions,
// executes whatever tool calls come back, appends their results as tool
// messages and resubmits. Tool failures and unknown tool names are
// recoverable: the error text becomes the tool result and the model decides
// how to proceed. Provider errors and the iteration bound are fatal.
type Loop struct {
	name     string
	provider provider.Provider
	tools    map[string]tool.Tool
	order    []string
	opts     Options
}

// NewLoop builds a tool-calling loop around a provider. Registering two
// tools with the same name is a configuration error.
func NewLoop(name string, p provider.Provider, tools []tool.Tool, optFns ...func(o *Options)) (*Loop, error) {
	if p == nil {
		return nil, core.NewConfigurationError("agent", "loop %q requires a provider", name)
	}

	opts := Options{MaxIterations: 10}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	l := &Loop{
		name:     name,
		provider: p,
		tools:    make(map[string]tool.Tool, len(tools)),
		opts:     opts,
	}
	for _, t := range tools {
		if _, exists := l.tools[t.Name()]; exists {
			return nil, core.NewConfigurationError("agent", "loop %q registers tool %q twice", name, t.Name())
		}
		l.tools[t.Name()] = t
		l.order = append(l.order, t.Name())
	}
	return l, nil
}

// Name returns the loop's name.
func (l *Loop) Name() string { return l.name }

// Tools returns the local tool names in registration order.
func (l *Loop) Tools() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Run executes the tool-calling conversation to completion.
//
// The final response carries the assistant's plain answer. Cancellation is
// checked between round trips; an in-flight provider call is never
// abandoned mid-exchange.
func (l *Loop) Run(ctx context.Context, req core.ChatRequest) (*core.ChatResponse, error) {
	runID := uuid.NewString()

	messages, err := l.assembleMessages(req)
	if err != nil {
		return nil, err
	}
	defs, err := l.toolDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	params := core.MergeParams(l.opts.Params, req.Params)
	l.opts.Logger.Debug("agent run starting",
		"agent", l.name, "runId", runID, "messages", len(messages), "tools", len(defs))

	transcript := core.CloneMessages(messages)
	for turn := 1; turn <= l.opts.MaxIterations; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := l.provider.Send(ctx, core.ChatRequest{
			Messages: transcript,
			Params:   params,
			Options:  req.Options,
			Tools:    defs,
		})
		if err != nil {
			return nil, fmt.Errorf("agent %q turn %d: %w", l.name, turn, err)
		}

		if !resp.HasToolCalls() {
			l.opts.Logger.Info("agent run complete",
				"agent", l.name, "runId", runID, "turns", turn)
			l.record(ctx, req.Messages, transcript[len(messages):], resp)
			return resp, nil
		}

		transcript = append(transcript, resp.AsMessage())
		for _, call := range resp.ToolCalls {
			result := l.executeCall(ctx, runID, call)
			transcript = append(transcript, core.ToolMessage(call.ID, result))
		}
	}

	return nil, &MaxIterationsError{Turns: l.opts.MaxIterations}
}

// Runnable adapts the loop into a pipeline step producing the answer text.
// Accepted inputs match the model step: a string prompt, a core.Message, a
// []core.Message or a full core.ChatRequest.
func (l *Loop) Runnable() runnable.Runnable {
	fn := func(ctx context.Context, input any, params map[string]any) (any, error) {
		req, err := l.requestFromInput(input)
		if err != nil {
			return nil, err
		}
		req.Params = core.MergeParams(req.Params, params)
		resp, err := l.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.Text, nil
	}
	return runnable.NewTransform(fn).WithName(l.name)
}

func (l *Loop) requestFromInput(input any) (core.ChatRequest, error) {
	switch in := input.(type) {
	case core.ChatRequest:
		return in.Clone(), nil
	case *core.ChatRequest:
		return in.Clone(), nil
	case core.Message:
		return core.ChatRequest{Messages: []core.Message{in}}, nil
	case []core.Message:
		return core.ChatRequest{Messages: core.CloneMessages(in)}, nil
	case string:
		return core.ChatRequest{Messages: []core.Message{core.UserMessage(in)}}, nil
	case fmt.Stringer:
		return core.ChatRequest{Messages: []core.Message{core.UserMessage(in.String())}}, nil
	default:
		return core.ChatRequest{}, fmt.Errorf("agent %q: unsupported input type %T", l.name, input)
	}
}

// assembleMessages prepends remembered history to the request's messages.
func (l *Loop) assembleMessages(req core.ChatRequest) ([]core.Message, error) {
	for _, m := range req.Messages {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	if l.opts.Memory == nil {
		return core.CloneMessages(req.Messages), nil
	}
	history := l.opts.Memory.GetAll()
	out := make([]core.Message, 0, len(history)+len(req.Messages))
	out = append(out, history...)
	out = append(out, core.CloneMessages(req.Messages)...)
	return out, nil
}

// toolDefinitions advertises local tools plus whatever the remote server
// exposes. A local name shadows a remote tool with the same name.
func (l *Loop) toolDefinitions(ctx context.Context) ([]core.ToolDefinition, error) {
	local := make([]tool.Tool, 0, len(l.order))
	for _, name := range l.order {
		local = append(local, l.tools[name])
	}
	defs, err := tool.Definitions(local)
	if err != nil {
		return nil, err
	}

	if l.opts.Remote == nil {
		return defs, nil
	}
	remote, err := l.opts.Remote.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("agent %q: discover remote tools: %w", l.name, err)
	}
	for _, info := range remote {
		if _, shadowed := l.tools[info.Name]; shadowed {
			continue
		}
		defs = append(defs, core.ToolDefinition{
			Name:        info.Name,
			Description: info.Description,
			Parameters:  info.InputSchema,
		})
	}
	return defs, nil
}

// executeCall resolves one tool call to its result text. Failures are
// folded into the text so the model can recover.
func (l *Loop) executeCall(ctx context.Context, runID string, call core.ToolCallRequest) string {
	l.opts.Logger.Debug("executing tool call",
		"agent", l.name, "runId", runID, "tool", call.ToolName, "callId", call.ID)

	if t, ok := l.tools[call.ToolName]; ok {
		result, err := t.Call(ctx, call.Arguments)
		if err != nil {
			l.opts.Logger.Warn("tool call failed",
				"agent", l.name, "tool", call.ToolName, "error", err)
			return fmt.Sprintf("Error: %v", err)
		}
		return tool.ResultText(result)
	}

	if l.opts.Remote != nil {
		text, err := l.opts.Remote.CallTool(ctx, call.ToolName, call.Arguments)
		if err != nil {
			l.opts.Logger.Warn("remote tool call failed",
				"agent", l.name, "tool", call.ToolName, "error", err)
			return fmt.Sprintf("Error: %v", err)
		}
		return text
	}

	err := &tool.UnknownToolError{Name: call.ToolName}
	l.opts.Logger.Warn("unknown tool requested", "agent", l.name, "tool", call.ToolName)
	return fmt.Sprintf("Error: %v", err)
}

// record writes the exchange to memory. Best effort: a memory failure does
// not fail a completed run.
func (l *Loop) record(ctx context.Context, incoming, intermediate []core.Message, resp *core.ChatResponse) {
	if l.opts.Memory == nil {
		return
	}
	var toStore []core.Message
	toStore = append(toStore, incoming...)
	if l.opts.RecordHistory {
		toStore = append(toStore, intermediate...)
	}
	toStore = append(toStore, core.AssistantMessage(resp.Text))

	for _, m := range toStore {
		if err := l.opts.Memory.Add(ctx, m); err != nil {
			if !errors.Is(err, context.Canceled) {
				l.opts.Logger.Warn("failed to record message", "agent", l.name, "error", err)
			}
			return
		}
	}
}
