// Package agent implements the tool-calling conversation loop.
//
// A Loop owns a provider, a set of local tools, and optionally a remote MCP
// client and a memory. Run drives the provider until it produces a plain
// answer, executing requested tool calls between round trips and feeding
// their results back as tool messages.
package agent
