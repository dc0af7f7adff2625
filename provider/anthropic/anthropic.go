// Package anthropic adapts the Anthropic Messages API to the
// provider.Provider contract, including tool use blocks for function
// calling. Streaming is not implemented for this vendor; callers fall back
// to the single-chunk degenerate stream.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/ortus-boxlang/bx-ai-sub007/core"
	"github.com/ortus-boxlang/bx-ai-sub007/logging"
	"github.com/ortus-boxlang/bx-ai-sub007/provider"
)

// Options configure the Anthropic adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	Logger      logging.Logger
}

// Adapter wraps the Anthropic Messages API behind provider.Provider.
type Adapter struct {
	client *anthropic.Client
	opts   Options
}

var _ provider.Provider = (*Adapter)(nil)

// New creates an adapter using the official client. An empty APIKey defers
// to the environment.
func New(optFns ...func(o *Options)) *Adapter {
	opts := defaultOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Adapter{client: &client, opts: opts}
}

// NewFromClient creates an adapter from an existing SDK client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Adapter {
	return &Adapter{client: client, opts: defaultOptions(optFns)}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return opts
}

// Send implements provider.Provider.
func (a *Adapter) Send(ctx context.Context, req core.ChatRequest) (*core.ChatResponse, error) {
	params := a.buildParams(req)
	if core.BoolOption(req.Options, core.OptionLogRequest) {
		a.opts.Logger.Debug("anthropic messages request",
			"model", params.Model,
			"messages", len(req.Messages),
			"tools", len(req.Tools),
		)
	}

	ctx, cancel := provider.WithCallTimeout(ctx, req.Options)
	defer cancel()

	resp, err := a.client.Messages.New(ctx, params, requestOptions(req.Options)...)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return nil, &provider.Error{Vendor: "anthropic", Status: apierr.StatusCode, Message: err.Error(), Err: err}
		}
		return nil, &provider.Error{Vendor: "anthropic", Message: err.Error(), Err: err}
	}

	out := &core.ChatResponse{
		FinishReason: string(resp.StopReason),
		Raw:          resp,
	}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			out.ToolCalls = append(out.ToolCalls, core.ToolCallRequest{
				ID:        toolBlock.ID,
				ToolName:  toolBlock.Name,
				Arguments: decodeInput(toolBlock.Input),
			})
		}
	}
	if resp.Usage.InputTokens > 0 || resp.Usage.OutputTokens > 0 {
		out.Usage = &core.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		}
	}
	if core.BoolOption(req.Options, core.OptionLogResponse) {
		a.opts.Logger.Debug("anthropic messages response",
			"stop_reason", out.FinishReason,
			"tool_calls", len(out.ToolCalls),
			"text_len", len(out.Text),
		)
	}
	return out, nil
}

// requestOptions maps per-call orchestration options onto SDK request
// options. Only the credential override applies at this level.
func requestOptions(options map[string]any) []option.RequestOption {
	var out []option.RequestOption
	if key := core.StringOption(options, core.OptionAPIKey); key != "" {
		out = append(out, option.WithAPIKey(key))
	}
	return out
}

// Info implements provider.Provider.
func (a *Adapter) Info() provider.Info {
	return provider.Info{Name: string(a.opts.Model), Vendor: "anthropic", SupportsTools: true}
}

func (a *Adapter) buildParams(req core.ChatRequest) anthropic.MessageNewParams {
	model := a.opts.Model
	if m, ok := req.Params[core.ParamModel].(string); ok && m != "" {
		model = anthropic.Model(m)
	}

	params := anthropic.MessageNewParams{
		Model:       model,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   a.opts.MaxTokens,
		Temperature: anthropic.Float(a.opts.Temperature),
	}
	if system := systemBlocks(req.Messages); len(system) > 0 {
		params.System = system
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}
	return params
}

// buildMessages converts normalized messages to the Messages API shape.
// System turns are handled separately; tool results become tool_result
// blocks inside user turns, which is where Anthropic expects them.
func buildMessages(msgs []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, m := range msgs {
		switch m.Role {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, tc.Arguments, tc.ToolName))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case core.RoleTool:
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
			))
		default:
			if m.Content != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
			}
		}
	}
	return out
}

func systemBlocks(msgs []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, m := range msgs {
		if m.Role == core.RoleSystem && m.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: m.Content})
		}
	}
	return blocks
}

func buildTools(defs []core.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if def.Parameters != nil {
			if properties, ok := def.Parameters["properties"]; ok {
				schema.Properties = properties
			}
			schema.Required = requiredStrings(def.Parameters["required"])
		}
		tools[i] = anthropic.ToolUnionParamOfTool(schema, def.Name)
	}
	return tools
}

func requiredStrings(v any) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []any:
		var out []string
		for _, item := range req {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// decodeInput normalizes the SDK tool_use input payload into an argument
// map, going through a marshal round trip so the SDK representation stays
// opaque here.
func decodeInput(input any) map[string]any {
	args := map[string]any{}
	if input == nil {
		return args
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return args
	}
	_ = json.Unmarshal(raw, &args)
	return args
}
