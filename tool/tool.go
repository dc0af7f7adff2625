// Package tool implements the function calling subsystem: named callable
// units with argument schemas that models can invoke through the agent loop,
// with schema-validated arguments and consistent error codes.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
	"github.com/ortus-boxlang/bx-ai-sub007/internal/util"
)

// Tool is a named capability exposed to a model for function calling.
//
// Identity is by Name within one request's tool set; registering two tools
// with the same name is a configuration error. Implementations should be
// safe for concurrent use: one tool instance may serve many loop invocations.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case
	// recommended).
	Name() string

	// Description is shown to the model to explain when to use the tool.
	Description() string

	// Parameters returns a minimal JSON schema describing the accepted
	// arguments.
	Parameters() map[string]any

	// Call executes the tool with already decoded arguments. The returned
	// value must be coercible to text for the tool-result message.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError re-exports the shared argument validation error type.
type ValidationError = util.ValidationError

// Error codes attached to *ExecutionError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
)

// ExecutionError is a failure inside a tool invocation. The agent loop never
// surfaces it to the caller: it becomes the textual tool-result content so
// the model can recover.
type ExecutionError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ExecutionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// UnknownToolError reports a tool call naming a tool that is neither in the
// local set nor resolvable remotely. Treated exactly like ExecutionError:
// fed back to the model, never thrown from the loop.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// ResultText coerces a tool result value into the text carried by a
// tool-result message: strings pass through, everything else is JSON
// encoded (falling back to fmt formatting for unencodable values).
func ResultText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case error:
		return s.Error()
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}

// Definition converts a tool into its normalized declaration for providers.
func Definition(t Tool) core.ToolDefinition {
	return core.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// Definitions converts a tool set, rejecting duplicate names.
func Definitions(tools []Tool) ([]core.ToolDefinition, error) {
	defs := make([]core.ToolDefinition, 0, len(tools))
	seen := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if _, dup := seen[t.Name()]; dup {
			return nil, core.NewConfigurationError("tool", "duplicate tool name %q", t.Name())
		}
		seen[t.Name()] = struct{}{}
		defs = append(defs, Definition(t))
	}
	return defs, nil
}
