// Package module implements the resolve service module
package module

import (
	"fmt"

	"equilex/internal/core/rulecatalog"
	"equilex/internal/modkit"
	"equilex/internal/modkit/httpkit"
	"equilex/internal/modkit/repokit"
	"equilex/internal/services/resolve/cache"
	"equilex/internal/services/resolve/domain"
	"equilex/internal/services/resolve/repo"
	"equilex/internal/services/resolve/service"
)

// Ports exposed by the resolve module
type Ports struct {
	Resolver domain.ResolverPort
}

// Module implements the resolve service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the resolve module. A malformed rules document is a
// startup failure, so it panics rather than limping along per request
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	catalog, err := loadCatalog(opts.RulesPath)
	if err != nil {
		panic(fmt.Sprintf("resolve: rules document: %v", err))
	}

	c, err := cache.New(opts.CacheSize)
	if err != nil {
		panic(fmt.Sprintf("resolve: cache: %v", err))
	}

	var ref domain.ReferencePort
	if deps.PG != nil {
		ref = repokit.MustBind(repo.NewPG(), deps.PG)
	}

	svc := service.New(catalog, ref, c, service.Options{
		LookupTimeout: opts.LookupTimeout,
		TopN:          opts.TopN,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Resolver: svc}
	return m
}

func loadCatalog(path string) (*rulecatalog.Catalog, error) {
	if path != "" {
		return rulecatalog.LoadFile(path)
	}
	return rulecatalog.LoadDefault()
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "resolve" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module; the HTTP surface lives in the api
// service
func (m *Module) MountRoutes(r httpkit.Router) {}
