package tool

import (
	"context"
	"errors"

	"github.com/ortus-boxlang/bx-ai-sub007/internal/util"
)

// Func is the callable contract wrapped by FunctionTool.
type Func func(ctx context.Context, args map[string]any) (any, error)

// FunctionTool exposes a plain Go function as a Tool. Arguments are
// validated against the declared schema before the function runs; failures
// come back as *ExecutionError with a stable code so the loop can turn them
// into recoverable tool-result messages.
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          Func
}

var _ Tool = (*FunctionTool)(nil)

// NewFunctionTool constructs a FunctionTool from an explicit schema.
//
// Example:
//
//	sum := tool.NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(_ context.Context, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(name, description string, parameters map[string]any, fn Func) *FunctionTool {
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct type
// using reflection, equivalent to passing util.SchemaFromStruct output to
// NewFunctionTool.
func NewFunctionToolFromStruct(name, description string, structType any, fn Func) *FunctionTool {
	return NewFunctionTool(name, description, util.SchemaFromStruct(structType), fn)
}

// Arg describes one tool argument as an ordered (name, description) pair
// plus typing metadata. Type defaults to "string".
type Arg struct {
	Name        string
	Description string
	Type        string
	Required    bool
}

// NewFunctionToolFromArgs builds the parameter schema from an ordered
// argument list. This is the explicit replacement for fluent
// describe-style argument builders.
func NewFunctionToolFromArgs(name, description string, args []Arg, fn Func) *FunctionTool {
	properties := make(map[string]any, len(args))
	var required []string
	for _, arg := range args {
		argType := arg.Type
		if argType == "" {
			argType = "string"
		}
		prop := map[string]any{"type": argType}
		if arg.Description != "" {
			prop["description"] = arg.Description
		}
		properties[arg.Name] = prop
		if arg.Required {
			required = append(required, arg.Name)
		}
	}
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return NewFunctionTool(name, description, schema, fn)
}

// Name implements Tool.
func (t *FunctionTool) Name() string { return t.name }

// Description implements Tool.
func (t *FunctionTool) Description() string { return t.description }

// Parameters implements Tool.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates the arguments against the declared schema then invokes the
// wrapped function.
//
// Error semantics:
//
//	*ExecutionError from fn -> forwarded unchanged
//	validation failure      -> *ExecutionError{Code: CodeValidation}
//	any other error         -> *ExecutionError{Code: CodeExecution}
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := util.ValidateArguments(args, t.parameters); err != nil {
		return nil, &ExecutionError{
			Tool:    t.name,
			Message: "parameter validation failed: " + err.Error(),
			Code:    CodeValidation,
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		var execErr *ExecutionError
		if errors.As(err, &execErr) {
			return nil, execErr
		}
		return nil, &ExecutionError{Tool: t.name, Message: err.Error(), Code: CodeExecution}
	}
	return result, nil
}
