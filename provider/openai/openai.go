// Package openai adapts the OpenAI Chat Completions API (including
// streaming and function/tool calling) to the provider.Provider contract.
// It translates the normalized message and tool types into the SDK message
// unions and back.
package openai

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/ortus-boxlang/bx-ai-sub007/core"
	"github.com/ortus-boxlang/bx-ai-sub007/logging"
	"github.com/ortus-boxlang/bx-ai-sub007/provider"
)

// Options configure the OpenAI adapter. Fields mirror a deliberately small
// subset of Chat Completion parameters; per-request overrides come through
// core.ChatRequest.Params.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	Logger              logging.Logger
}

// Adapter wraps the OpenAI Chat Completions API behind provider.Provider.
type Adapter struct {
	client *openai.Client
	opts   Options
}

var (
	_ provider.Provider = (*Adapter)(nil)
	_ provider.Streamer = (*Adapter)(nil)
)

// New creates an adapter using the default SDK client (API key from the
// environment).
func New(optFns ...func(o *Options)) *Adapter {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an adapter from an existing SDK client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Adapter {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Adapter{client: client, opts: opts}
}

// Send implements provider.Provider.
func (a *Adapter) Send(ctx context.Context, req core.ChatRequest) (*core.ChatResponse, error) {
	params := a.buildParams(req)
	a.logRequest(req, params)

	ctx, cancel := provider.WithCallTimeout(ctx, req.Options)
	defer cancel()

	resp, err := a.client.Chat.Completions.New(ctx, params, requestOptions(req.Options)...)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &provider.Error{Vendor: "openai", Message: "no choices returned"}
	}

	choice := resp.Choices[0]
	out := &core.ChatResponse{
		Text:         choice.Message.Content,
		ToolCalls:    convertToolCalls(choice.Message.ToolCalls),
		FinishReason: choice.FinishReason,
		Raw:          resp,
	}
	if resp.Usage.TotalTokens > 0 {
		out.Usage = &core.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		}
	}
	a.logResponse(req, out)
	return out, nil
}

// SendStream implements provider.Streamer. Text deltas are forwarded as they
// arrive; tool call fragments are aggregated until the stream finishes.
func (a *Adapter) SendStream(ctx context.Context, req core.ChatRequest, onDelta func(delta string) error) (*core.ChatResponse, error) {
	params := a.buildParams(req)
	a.logRequest(req, params)

	ctx, cancel := provider.WithCallTimeout(ctx, req.Options)
	defer cancel()

	stream := a.client.Chat.Completions.NewStreaming(ctx, params, requestOptions(req.Options)...)
	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onDelta(choice.Delta.Content); err != nil {
				return nil, err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, wrapError(err)
	}
	if len(acc.Choices) == 0 {
		return nil, &provider.Error{Vendor: "openai", Message: "no choices returned"}
	}

	choice := acc.Choices[0]
	out := &core.ChatResponse{
		Text:         choice.Message.Content,
		ToolCalls:    convertToolCalls(choice.Message.ToolCalls),
		FinishReason: choice.FinishReason,
		Raw:          acc.ChatCompletion,
	}
	if acc.Usage.TotalTokens > 0 {
		out.Usage = &core.TokenUsage{
			PromptTokens:     int(acc.Usage.PromptTokens),
			CompletionTokens: int(acc.Usage.CompletionTokens),
			TotalTokens:      int(acc.Usage.TotalTokens),
		}
	}
	a.logResponse(req, out)
	return out, nil
}

// logRequest and logResponse honor the per-request logging option flags.
func (a *Adapter) logRequest(req core.ChatRequest, params openai.ChatCompletionNewParams) {
	if !core.BoolOption(req.Options, core.OptionLogRequest) {
		return
	}
	a.opts.Logger.Debug("openai chat request",
		"model", params.Model,
		"messages", len(req.Messages),
		"tools", len(req.Tools),
	)
}

func (a *Adapter) logResponse(req core.ChatRequest, resp *core.ChatResponse) {
	if !core.BoolOption(req.Options, core.OptionLogResponse) {
		return
	}
	a.opts.Logger.Debug("openai chat response",
		"finish_reason", resp.FinishReason,
		"tool_calls", len(resp.ToolCalls),
		"text_len", len(resp.Text),
	)
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
	return provider.Info{Name: a.opts.Model, Vendor: "openai", SupportsTools: true}
}

// buildParams assembles the SDK request from normalized messages, tools and
// per-request parameter overrides.
func (a *Adapter) buildParams(req core.ChatRequest) openai.ChatCompletionNewParams {
	model := a.opts.Model
	if m, ok := req.Params[core.ParamModel].(string); ok && m != "" {
		model = m
	}
	temperature := a.opts.Temperature
	if t, ok := floatParam(req.Params[core.ParamTemperature]); ok {
		temperature = t
	}
	maxTokens := a.opts.MaxCompletionTokens
	if n, ok := floatParam(req.Params[core.ParamMaxTokens]); ok && n > 0 {
		maxTokens = int64(n)
	}

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Messages),
		Model:               model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}
	if core.StringOption(req.Options, core.OptionReturnFormat) == "json" {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, def := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        def.Name,
					Description: openai.String(def.Description),
					Parameters:  def.Parameters,
				},
			}
		}
		params.Tools = tools
	}
	return params
}

// buildMessages converts normalized messages into SDK message unions.
func buildMessages(msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case core.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			calls := make([]openai.ChatCompletionMessageToolCallParam, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				calls[i] = openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.ToolName,
						Arguments: encodeArguments(tc.Arguments),
					},
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: calls,
				},
			})
		case core.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func convertToolCalls(calls []openai.ChatCompletionMessageToolCall) []core.ToolCallRequest {
	if len(calls) == 0 {
		return nil
	}
	out := make([]core.ToolCallRequest, len(calls))
	for i, tc := range calls {
		out[i] = core.ToolCallRequest{
			ID:        tc.ID,
			ToolName:  tc.Function.Name,
			Arguments: decodeArguments(tc.Function.Arguments),
		}
	}
	return out
}

// decodeArguments parses the SDK's JSON argument string into a map. Malformed
// argument payloads from the model yield an empty map rather than an error so
// the agent loop can report the problem as a recoverable tool failure.
func decodeArguments(raw string) map[string]any {
	args := map[string]any{}
	if raw == "" {
		return args
	}
	_ = json.Unmarshal([]byte(raw), &args)
	return args
}

func encodeArguments(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func floatParam(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func wrapError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &provider.Error{Vendor: "openai", Status: apierr.StatusCode, Message: apierr.Message, Err: err}
	}
	return &provider.Error{Vendor: "openai", Message: err.Error(), Err: err}
}
