package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Constructors(t *testing.T) {
	sys := SystemMessage("be brief")
	assert.Equal(t, RoleSystem, sys.Role)
	assert.Equal(t, "be brief", sys.Content)

	user := UserMessage("hello")
	assert.Equal(t, RoleUser, user.Role)

	asst := AssistantMessage("hi there")
	assert.Equal(t, RoleAssistant, asst.Role)

	call := ToolCallMessage(ToolCallRequest{ID: "call_1", ToolName: "lookup"})
	assert.Equal(t, RoleAssistant, call.Role)
	assert.Empty(t, call.Content)
	require.Len(t, call.ToolCalls, 1)
	assert.Equal(t, "lookup", call.ToolCalls[0].ToolName)

	result := ToolMessage("call_1", "42")
	assert.Equal(t, RoleTool, result.Role)
	assert.Equal(t, "call_1", result.ToolCallID)
	assert.Equal(t, "42", result.Content)
}

func TestMessage_Validate(t *testing.T) {
	assert.NoError(t, UserMessage("hi").Validate())
	assert.NoError(t, ToolCallMessage(ToolCallRequest{ID: "c", ToolName: "t"}).Validate())

	err := Message{Content: "orphan"}.Validate()
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "message", cfgErr.Component)

	// Empty content is only tolerated for assistant tool-call turns.
	assert.Error(t, Message{Role: RoleUser}.Validate())
	assert.Error(t, Message{Role: RoleAssistant}.Validate())
}

func TestMessage_CloneIsolatesToolCalls(t *testing.T) {
	orig := ToolCallMessage(ToolCallRequest{
		ID:        "call_1",
		ToolName:  "lookup",
		Arguments: map[string]any{"city": "Lisbon"},
	})

	clone := orig.Clone()
	clone.ToolCalls[0].ToolName = "changed"
	clone.ToolCalls[0].Arguments["city"] = "Porto"

	assert.Equal(t, "lookup", orig.ToolCalls[0].ToolName)
	assert.Equal(t, "Lisbon", orig.ToolCalls[0].Arguments["city"])
}

func TestCloneMessages(t *testing.T) {
	assert.Nil(t, CloneMessages(nil))

	msgs := []Message{UserMessage("a"), AssistantMessage("b")}
	clone := CloneMessages(msgs)
	clone[0].Content = "mutated"
	assert.Equal(t, "a", msgs[0].Content)
}

func TestChatRequest_Clone(t *testing.T) {
	req := ChatRequest{
		Messages: []Message{UserMessage("hi")},
		Params:   map[string]any{ParamModel: "m1"},
		Options:  map[string]any{OptionProvider: "openai"},
		Tools:    []ToolDefinition{{Name: "lookup"}},
	}

	clone := req.Clone()
	clone.Messages[0].Content = "changed"
	clone.Params[ParamModel] = "m2"
	clone.Options[OptionProvider] = "anthropic"
	clone.Tools[0].Name = "other"

	assert.Equal(t, "hi", req.Messages[0].Content)
	assert.Equal(t, "m1", req.Params[ParamModel])
	assert.Equal(t, "openai", req.Options[OptionProvider])
	assert.Equal(t, "lookup", req.Tools[0].Name)
}

func TestChatRequest_WithMessage(t *testing.T) {
	base := NewChatRequest(UserMessage("first"))
	grown := base.WithMessage(AssistantMessage("second"))

	assert.Len(t, base.Messages, 1)
	require.Len(t, grown.Messages, 2)
	assert.Equal(t, "second", grown.Messages[1].Content)
}

func TestMergeParams(t *testing.T) {
	defaults := map[string]any{ParamModel: "m1", ParamTemperature: 0.2}
	runtime := map[string]any{ParamTemperature: 0.9, ParamMaxTokens: 100}

	merged := MergeParams(defaults, runtime)
	assert.Equal(t, "m1", merged[ParamModel])
	assert.Equal(t, 0.9, merged[ParamTemperature])
	assert.Equal(t, 100, merged[ParamMaxTokens])

	// Inputs stay untouched and the result is a fresh map.
	assert.Equal(t, 0.2, defaults[ParamTemperature])
	merged[ParamModel] = "m2"
	assert.Equal(t, "m1", defaults[ParamModel])

	assert.NotNil(t, MergeParams(nil, nil))
}

func TestChatResponse_AsMessage(t *testing.T) {
	text := &ChatResponse{Text: "done"}
	assert.False(t, text.HasToolCalls())
	assert.Equal(t, AssistantMessage("done"), text.AsMessage())

	calls := &ChatResponse{ToolCalls: []ToolCallRequest{{ID: "c1", ToolName: "lookup"}}}
	assert.True(t, calls.HasToolCalls())
	msg := calls.AsMessage()
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Empty(t, msg.Content)
	assert.Len(t, msg.ToolCalls, 1)
}
