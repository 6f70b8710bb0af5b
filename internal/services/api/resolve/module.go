// Package resolve exposes the resolution engine over HTTP
package resolve

import (
	"equilex/internal/modkit"
	"equilex/internal/modkit/httpkit"
	"equilex/internal/services/resolve/domain"
)

// Ports required by the API resolve module
type Ports struct {
	Resolver domain.ResolverPort
}

// Module is the HTTP-facing resolve module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the module; the engine port is injected by the caller
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(opts...)
	ports, ok := b.Ports.(Ports)
	if !ok || ports.Resolver == nil {
		panic("api/resolve: Resolver port is required")
	}
	return &Module{deps: deps, ports: ports}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "resolve" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "/resolve" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.Prefix(), func(rr httpkit.Router) {
		rr.Post("/", m.handleResolve())
		rr.Post("/date", m.handleDate())
		rr.Post("/lookup/{kind}", m.handleLookup())
	})
}
