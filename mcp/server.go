package mcp

import (
	"context"
	"encoding/json"
	"sync"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/ortus-boxlang/bx-ai-sub007/core"
	"github.com/ortus-boxlang/bx-ai-sub007/logging"
	"github.com/ortus-boxlang/bx-ai-sub007/tool"
)

const serverVersion = "1.0.0"

// ToolInfo describes one exposed tool for discovery.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

// Server exposes a set of locally registered tools over MCP. Instances are
// created through Registry.GetOrCreate; the wrapped protocol server is
// reachable via MCP for serving over stdio or HTTP transports.
type Server struct {
	name        string
	description string
	logger      logging.Logger

	mu    sync.RWMutex
	tools map[string]tool.Tool
	order []string // preserve registration order for listings

	mcp *mcpserver.MCPServer
}

func newServer(name, description string, logger logging.Logger) *Server {
	opts := []mcpserver.ServerOption{mcpserver.WithToolCapabilities(true)}
	if description != "" {
		opts = append(opts, mcpserver.WithInstructions(description))
	}
	return &Server{
		name:        name,
		description: description,
		logger:      logging.OrNoOp(logger),
		tools:       make(map[string]tool.Tool),
		mcp:         mcpserver.NewMCPServer(name, serverVersion, opts...),
	}
}

// Name returns the registry name of the server.
func (s *Server) Name() string { return s.name }

// Description returns the server metadata description.
func (s *Server) Description() string { return s.description }

// MCP returns the underlying protocol server, for mounting on an external
// transport.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// RegisterTool adds a tool to the exposed set. Duplicate names within one
// server are rejected with a ConfigurationError.
func (s *Server) RegisterTool(t tool.Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.tools[t.Name()]; dup {
		return core.NewConfigurationError("mcp", "server %q already exposes tool %q", s.name, t.Name())
	}
	s.tools[t.Name()] = t
	s.order = append(s.order, t.Name())

	s.mcp.AddTool(protocolTool(t), s.handlerFor(t))
	s.logger.Debug("mcp.server.tool_registered", "server", s.name, "tool", t.Name())
	return nil
}

// RegisterTools registers multiple tools, stopping at the first rejection.
func (s *Server) RegisterTools(tools ...tool.Tool) error {
	for _, t := range tools {
		if err := s.RegisterTool(t); err != nil {
			return err
		}
	}
	return nil
}

// HasTool reports whether a tool name is exposed by this server.
func (s *Server) HasTool(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tools[name]
	return ok
}

// Tools lists the exposed tools in registration order.
func (s *Server) Tools() []ToolInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]ToolInfo, 0, len(s.order))
	for _, name := range s.order {
		t := s.tools[name]
		infos = append(infos, ToolInfo{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		})
	}
	return infos
}

// handlerFor bridges a tool into the protocol handler: tool failures become
// protocol error results rather than transport errors, mirroring how the
// agent loop keeps tool failures recoverable.
func (s *Server) handlerFor(t tool.Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		result, err := t.Call(ctx, req.GetArguments())
		if err != nil {
			s.logger.Warn("mcp.server.tool_failed", "server", s.name, "tool", t.Name(), "error", err.Error())
			return mcpgo.NewToolResultError(err.Error()), nil
		}
		return mcpgo.NewToolResultText(tool.ResultText(result)), nil
	}
}

// protocolTool converts a tool declaration into the SDK tool type, passing
// the JSON schema through raw.
func protocolTool(t tool.Tool) mcpgo.Tool {
	schema, err := json.Marshal(t.Parameters())
	if err != nil || t.Parameters() == nil {
		schema = []byte(`{"type":"object"}`)
	}
	return mcpgo.NewToolWithRawSchema(t.Name(), t.Description(), schema)
}
