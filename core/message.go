package core

import "fmt"

// Role identifies the author of a chat message.
type Role string

// Standard chat roles. These mirror the role vocabulary shared by all major
// chat completion APIs so adapters can map them without translation tables.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallRequest is a function invocation requested by a model response.
// It is produced by a provider adapter and consumed by the agent loop.
type ToolCallRequest struct {
	ID        string         `json:"id"`
	ToolName  string         `json:"toolName"`
	Arguments map[string]any `json:"arguments"`
}

// Message is a single turn in a conversation.
//
// Content may be empty only on assistant messages that carry ToolCalls
// instead of text. Tool result messages carry the originating call id in
// ToolCallID so providers can correlate request and result.
type Message struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	ToolCalls  []ToolCallRequest `json:"toolCalls,omitempty"`
	ToolCallID string            `json:"toolCallId,omitempty"`
}

// SystemMessage creates a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant-role text message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolCallMessage creates the assistant turn that requested the given tool
// calls. Its content is intentionally empty.
func ToolCallMessage(calls ...ToolCallRequest) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls}
}

// ToolMessage creates a tool result message bound to the originating call id.
func ToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// Validate checks the message invariants: a role is always required and
// content may be empty only for assistant tool-call turns.
func (m Message) Validate() error {
	if m.Role == "" {
		return &ConfigurationError{Component: "message", Message: "role must be set"}
	}
	if m.Content == "" && !(m.Role == RoleAssistant && len(m.ToolCalls) > 0) {
		return &ConfigurationError{
			Component: "message",
			Message:   fmt.Sprintf("empty content is only valid for assistant tool-call messages, got role %q", m.Role),
		}
	}
	return nil
}

// Clone returns a copy with its own tool call slice so that callers can
// append or mutate without aliasing the original.
func (m Message) Clone() Message {
	out := m
	if len(m.ToolCalls) > 0 {
		out.ToolCalls = make([]ToolCallRequest, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
		for i, tc := range m.ToolCalls {
			out.ToolCalls[i].Arguments = cloneMap(tc.Arguments)
		}
	}
	return out
}

// CloneMessages deep-copies a message slice.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
