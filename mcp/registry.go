// Package mcp exposes locally defined tools over the Model Context Protocol
// and consumes tools hosted by MCP servers. A Registry maps server names to
// singleton server instances; a Client calls tools on a server through the
// protocol (in-process transport for same-process servers).
package mcp

import (
	"sort"
	"sync"

	"github.com/ortus-boxlang/bx-ai-sub007/logging"
)

// Registry is a lifecycle-managed mapping from server name to a singleton
// Server instance. Construct one explicitly (usually through the facade) and
// pass it where needed; there is no ambient package-level registry, which
// keeps tests free to use fresh instances.
//
// Lookup-or-create is atomic per name: concurrent requests for a new name
// yield the same instance.
type Registry struct {
	mu      sync.Mutex
	servers map[string]*Server
	logger  logging.Logger
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Logger logging.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		servers: make(map[string]*Server),
		logger:  logging.OrNoOp(opts.Logger),
	}
}

// ServerOptions configure server creation in GetOrCreate.
type ServerOptions struct {
	// Description is attached as server metadata on creation. Ignored when
	// an existing instance is returned.
	Description string

	// Force replaces any existing registry entry with a fresh instance.
	// Handles to the replaced server stay functionally valid standalone
	// objects but are no longer reachable through the registry.
	Force bool
}

// GetOrCreate returns the server registered under name, creating it on first
// request. With Force set, a new instance replaces the registry entry.
func (r *Registry) GetOrCreate(name string, optFns ...func(o *ServerOptions)) *Server {
	opts := ServerOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.servers[name]; ok && !opts.Force {
		return existing
	}

	srv := newServer(name, opts.Description, r.logger)
	r.servers[name] = srv
	r.logger.Debug("mcp.registry.server_created", "server", name, "forced", opts.Force)
	return srv
}

// Get returns the server registered under name, if any.
func (r *Registry) Get(name string) (*Server, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	srv, ok := r.servers[name]
	return srv, ok
}

// Servers returns the registered server names, sorted.
func (r *Registry) Servers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.servers))
	for name := range r.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove deletes the entry for name, reporting whether it existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.servers[name]
	delete(r.servers, name)
	return ok
}

// Clear removes every registered server. Used primarily at test and process
// teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.servers = make(map[string]*Server)
}

// Len returns the number of registered servers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.servers)
}
