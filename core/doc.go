// Package core defines the normalized value types exchanged between the
// orchestration layers: chat messages, requests, responses and tool call
// declarations. Provider adapters translate these types to and from vendor
// wire formats; everything above the adapter boundary (runnables, the agent
// loop, memory, MCP) speaks only in core types.
package core
