package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// Client calls tools on an MCP server. For same-process servers it speaks
// the protocol over the SDK's in-process transport, so the wire behavior
// matches a networked server without sockets.
type Client struct {
	serverName string
	cli        *mcpclient.Client
}

// NewClient connects to a registry server over the in-process transport and
// performs the protocol handshake.
func NewClient(ctx context.Context, srv *Server) (*Client, error) {
	cli, err := mcpclient.NewInProcessClient(srv.MCP())
	if err != nil {
		return nil, fmt.Errorf("connect to mcp server %q: %w", srv.Name(), err)
	}
	if err := cli.Start(ctx); err != nil {
		return nil, fmt.Errorf("start mcp client for %q: %w", srv.Name(), err)
	}

	initReq := mcpgo.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpgo.Implementation{Name: "bx-ai", Version: serverVersion}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("initialize mcp client for %q: %w", srv.Name(), err)
	}
	return &Client{serverName: srv.Name(), cli: cli}, nil
}

// ServerName returns the name of the connected server.
func (c *Client) ServerName() string { return c.serverName }

// CallTool invokes a remote tool and returns its text result. A protocol
// error result comes back as a Go error carrying the remote error text, so
// callers can feed it to a model as recoverable tool output.
func (c *Client) CallTool(ctx context.Context, toolName string, args map[string]any) (string, error) {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args

	result, err := c.cli.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call tool %q on %q: %w", toolName, c.serverName, err)
	}

	text := textContent(result)
	if result.IsError {
		return "", fmt.Errorf("tool %q on %q failed: %s", toolName, c.serverName, text)
	}
	return text, nil
}

// ListTools discovers the tools exposed by the connected server.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	result, err := c.cli.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools on %q: %w", c.serverName, err)
	}

	infos := make([]ToolInfo, 0, len(result.Tools))
	for _, t := range result.Tools {
		infos = append(infos, ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schemaToMap(t.InputSchema),
		})
	}
	return infos, nil
}

// Close releases the transport.
func (c *Client) Close() error { return c.cli.Close() }

// textContent concatenates the text blocks of a call result. Non-text
// content is noted rather than dropped.
func textContent(result *mcpgo.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	var parts []string
	for _, content := range result.Content {
		switch v := content.(type) {
		case mcpgo.TextContent:
			parts = append(parts, v.Text)
		case *mcpgo.TextContent:
			parts = append(parts, v.Text)
		default:
			parts = append(parts, fmt.Sprintf("[non-text content: %T]", content))
		}
	}
	return strings.Join(parts, "\n")
}

// schemaToMap converts the SDK input schema into the map shape used by
// ToolInfo.
func schemaToMap(schema mcpgo.ToolInputSchema) map[string]any {
	m := map[string]any{"type": schema.Type}
	if schema.Type == "" {
		m["type"] = "object"
	}
	if len(schema.Properties) > 0 {
		m["properties"] = schema.Properties
	}
	if len(schema.Required) > 0 {
		m["required"] = schema.Required
	}
	return m
}
