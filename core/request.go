package core

import "time"

// Well-known parameter keys. Params tune the model call itself and are
// passed through to the provider adapter untouched.
const (
	ParamModel       = "model"
	ParamTemperature = "temperature"
	ParamMaxTokens   = "maxTokens"
)

// Well-known option keys. Options steer the orchestration layer rather than
// the model: provider selection, credentials, per-call timeout and logging
// verbosity.
const (
	OptionProvider     = "provider"
	OptionAPIKey       = "apiKey"
	OptionTimeout      = "timeout"
	OptionReturnFormat = "returnFormat"
	OptionLogRequest   = "logRequest"
	OptionLogResponse  = "logResponse"
)

// BoolOption reads a boolean orchestration option. Absent keys and
// non-boolean values read as false; the strings "true" and "false" are
// accepted for hosts that carry options as text.
func BoolOption(options map[string]any, key string) bool {
	switch v := options[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// StringOption reads a string-valued orchestration option. Absent keys and
// non-string values read as the empty string.
func StringOption(options map[string]any, key string) string {
	s, _ := options[key].(string)
	return s
}

// TimeoutOption reads the per-call timeout option. Accepted values are a
// time.Duration, a numeric second count, or a duration string such as
// "30s". Zero, negative and unparseable values read as unset.
func TimeoutOption(options map[string]any) (time.Duration, bool) {
	switch v := options[OptionTimeout].(type) {
	case time.Duration:
		if v > 0 {
			return v, true
		}
	case int:
		if v > 0 {
			return time.Duration(v) * time.Second, true
		}
	case int64:
		if v > 0 {
			return time.Duration(v) * time.Second, true
		}
	case float64:
		if v > 0 {
			return time.Duration(v * float64(time.Second)), true
		}
	case string:
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d, true
		}
	}
	return 0, false
}

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a minimal JSON Schema object (type/properties/required).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatRequest is the normalized model input: an ordered conversation, model
// parameters, orchestration options and the tool declarations available for
// function calling.
//
// The request is owned by the caller until handed to a provider adapter.
// Adapters must treat it as read-only; use Clone when a mutated variant is
// needed.
type ChatRequest struct {
	Messages []Message        `json:"messages"`
	Params   map[string]any   `json:"params,omitempty"`
	Options  map[string]any   `json:"options,omitempty"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// NewChatRequest builds a request from messages with empty parameter maps.
func NewChatRequest(msgs ...Message) ChatRequest {
	return ChatRequest{Messages: msgs}
}

// Clone returns a deep copy. Tool definition parameter schemas are shared
// since they are construction-time constants.
func (r ChatRequest) Clone() ChatRequest {
	out := r
	out.Messages = CloneMessages(r.Messages)
	out.Params = cloneMap(r.Params)
	out.Options = cloneMap(r.Options)
	if r.Tools != nil {
		out.Tools = make([]ToolDefinition, len(r.Tools))
		copy(out.Tools, r.Tools)
	}
	return out
}

// WithMessage returns a copy of the request with the message appended.
func (r ChatRequest) WithMessage(m Message) ChatRequest {
	out := r
	out.Messages = make([]Message, 0, len(r.Messages)+1)
	out.Messages = append(out.Messages, r.Messages...)
	out.Messages = append(out.Messages, m)
	return out
}

// MergeParams overlays runtime-supplied parameters onto defaults. Runtime
// keys win. Neither input map is mutated; the result is always a fresh map.
func MergeParams(defaults, runtime map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(runtime))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range runtime {
		merged[k] = v
	}
	return merged
}
