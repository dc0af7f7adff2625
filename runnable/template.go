package runnable

import (
	"context"

	"github.com/ortus-boxlang/bx-ai-sub007/core"
	"github.com/ortus-boxlang/bx-ai-sub007/internal/util"
)

// Template renders a text/template against the merged parameters and the
// step input, producing a core.Message ready for a downstream Model step.
// The input is exposed to the template as {{.input}}; map inputs are merged
// into the template scope directly.
type Template struct {
	base
	text string
	role core.Role
}

var _ Runnable = (*Template)(nil)

// TemplateOptions configures a Template runnable.
type TemplateOptions struct {
	// Role of the produced message. Defaults to user.
	Role core.Role
}

// NewTemplate creates a Template runnable named "template".
func NewTemplate(text string, optFns ...func(o *TemplateOptions)) *Template {
	opts := TemplateOptions{Role: core.RoleUser}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Template{base: base{name: "template"}, text: text, role: opts.Role}
}

// Run implements Runnable.
func (t *Template) Run(_ context.Context, input any, params map[string]any) (any, error) {
	scope := core.MergeParams(t.params, params)
	switch in := input.(type) {
	case nil:
	case map[string]any:
		scope = core.MergeParams(scope, in)
	default:
		scope["input"] = in
	}

	rendered, err := util.RenderTemplate(t.text, scope)
	if err != nil {
		return nil, err
	}
	return core.Message{Role: t.role, Content: rendered}, nil
}

// Stream implements Runnable with a single final chunk.
func (t *Template) Stream(ctx context.Context, input any, onChunk ChunkFunc, params map[string]any) error {
	output, err := t.Run(ctx, input, params)
	if err != nil {
		return err
	}
	return onChunk(Chunk{Value: output, Index: 0, Final: true})
}

// To implements Runnable.
func (t *Template) To(next Runnable) *Sequence { return NewSequence(t, next) }

// Transform implements Runnable.
func (t *Template) Transform(fn TransformFunc) *Sequence { return t.To(NewTransform(fn)) }

// WithName implements Runnable.
func (t *Template) WithName(name string) Runnable {
	t.name = name
	return t
}

// WithParams implements Runnable.
func (t *Template) WithParams(params map[string]any) Runnable {
	t.params = params
	return t
}
