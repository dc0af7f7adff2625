package core

// TokenUsage captures token accounting for a single provider call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the normalized provider output for one turn.
//
// Exactly one of Text or a non-empty ToolCalls is meaningful per turn. A
// response carrying neither (a provider returning only metadata) is treated
// as terminal with empty text by the agent loop.
type ChatResponse struct {
	Text         string            `json:"text,omitempty"`
	ToolCalls    []ToolCallRequest `json:"toolCalls,omitempty"`
	FinishReason string            `json:"finish_reason,omitempty"`
	Raw          any               `json:"-"`
	Usage        *TokenUsage       `json:"usage,omitempty"`
}

// HasToolCalls reports whether the model requested function execution.
func (r *ChatResponse) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// AsMessage converts the response into the assistant message to append to
// conversation history: a tool-call turn when tool calls are present,
// otherwise a plain text turn.
func (r *ChatResponse) AsMessage() Message {
	if r.HasToolCalls() {
		return ToolCallMessage(r.ToolCalls...)
	}
	return AssistantMessage(r.Text)
}
