// Package boxai provides a high-level façade over the orchestration core:
// composable runnables, the tool-calling agent loop, bounded memories and
// the MCP tool registry. Most applications interact with this package by:
//  1. Creating a BoxAI via New() (optionally overriding the logger, registry
//     or session store)
//  2. Building agents and pipelines through the helper constructors
//  3. Running them synchronously, asynchronously (runnable.Go) or streamed
//
// All defaults are safe for local development and testing; production
// deployments typically supply a structured logger and a durable session
// store.
package boxai

import (
	"context"

	"github.com/ortus-boxlang/bx-ai-sub007/agent"
	"github.com/ortus-boxlang/bx-ai-sub007/core"
	"github.com/ortus-boxlang/bx-ai-sub007/logging"
	"github.com/ortus-boxlang/bx-ai-sub007/mcp"
	"github.com/ortus-boxlang/bx-ai-sub007/memory"
	"github.com/ortus-boxlang/bx-ai-sub007/provider"
	"github.com/ortus-boxlang/bx-ai-sub007/runnable"
	"github.com/ortus-boxlang/bx-ai-sub007/tool"
)

// Options configures a BoxAI instance.
type Options struct {
	// Registry holds tool servers shared across agents. Defaults to a fresh
	// in-process registry.
	Registry *mcp.Registry

	// SessionStore backs session-scoped memories. Defaults to an in-memory
	// implementation.
	SessionStore memory.SessionStore

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// BoxAI aggregates the shared services used to assemble agents and
// pipelines.
type BoxAI struct {
	registry     *mcp.Registry
	sessionStore memory.SessionStore
	logger       logging.Logger
}

// New creates a BoxAI instance with optional overrides. Any unset service is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *BoxAI {
	opts := Options{
		SessionStore: memory.NewInMemorySessionStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = mcp.NewRegistry(func(o *mcp.RegistryOptions) {
			o.Logger = opts.Logger
		})
	}

	return &BoxAI{
		registry:     opts.Registry,
		sessionStore: opts.SessionStore,
		logger:       opts.Logger,
	}
}

// Registry returns the shared tool server registry.
func (b *BoxAI) Registry() *mcp.Registry { return b.registry }

// SessionStore returns the shared session store.
func (b *BoxAI) SessionStore() memory.SessionStore { return b.sessionStore }

// Logger returns the configured logger.
func (b *BoxAI) Logger() logging.Logger { return b.logger }

// NewAgent builds a tool-calling loop wired with the instance's logger.
func (b *BoxAI) NewAgent(name string, p provider.Provider, tools []tool.Tool, optFns ...func(o *agent.Options)) (*agent.Loop, error) {
	fns := append([]func(o *agent.Options){agent.WithLogger(b.logger)}, optFns...)
	return agent.NewLoop(name, p, tools, fns...)
}

// NewSessionMemory builds a windowed memory persisted under key in the
// instance's session store.
func (b *BoxAI) NewSessionMemory(key string, maxMessages int) (*memory.Session, error) {
	return memory.NewSession(b.sessionStore, key, maxMessages)
}

// Pipeline composes runnables into a sequence, left to right.
func Pipeline(first runnable.Runnable, rest ...runnable.Runnable) *runnable.Sequence {
	seq := runnable.NewSequence(first)
	for _, r := range rest {
		seq = seq.To(r)
	}
	return seq
}

// ChatText sends a single user prompt through a provider and returns the
// answer text.
func ChatText(ctx context.Context, p provider.Provider, prompt string, params map[string]any) (string, error) {
	resp, err := p.Send(ctx, core.ChatRequest{
		Messages: []core.Message{core.UserMessage(prompt)},
		Params:   params,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
