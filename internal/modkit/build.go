package modkit

import (
	"net/http"

	phttp "equilex/internal/platform/net/http"
)

// RegisterFunc wires a module's routes onto a router
type RegisterFunc func(r phttp.Router)

// Built is the assembled product of module construction
type Built struct {
	Name        string
	Prefix      string
	Middlewares []func(http.Handler) http.Handler
	Ports       any
	Register    RegisterFunc
}

// Build assembles a Built from options
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Mount attaches the module under its prefix with its middlewares applied
func (b Built) Mount(r phttp.Router) {
	if b.Register == nil {
		return
	}
	r.Route(b.Prefix, func(sub phttp.Router) {
		if len(b.Middlewares) > 0 {
			sub.Use(b.Middlewares...)
		}
		b.Register(sub)
	})
}
