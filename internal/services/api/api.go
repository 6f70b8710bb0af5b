// Package api assembles the HTTP API from the service modules
package api

import (
	"context"
	"net/http"
	"time"

	"equilex/internal/modkit"
	"equilex/internal/modkit/httpkit"
	"equilex/internal/modkit/module"
	"equilex/internal/platform/config"
	phttp "equilex/internal/platform/net/http"
	"equilex/internal/platform/store"

	apiresolve "equilex/internal/services/api/resolve"
	resolvemod "equilex/internal/services/resolve/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}

	// engine module first, its port feeds the HTTP module
	engine := resolvemod.New(deps)
	ports := module.MustPortsOf[resolvemod.Ports](engine)

	httpResolve := apiresolve.New(deps, modkit.WithPorts(apiresolve.Ports{
		Resolver: ports.Resolver,
	}))

	r.Route("/api/v1", func(api phttp.Router) {
		for _, m := range []modkit.Module{httpResolve} {
			m.MountRoutes(api)
		}
	})

	r.Get("/healthz", phttp.Handle(func(req *http.Request) phttp.Response {
		if opt.Store != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := opt.Store.Guard(ctx); err != nil {
				return phttp.ErrorStatus(http.StatusServiceUnavailable, err)
			}
		}
		return httpkit.OK()
	}))
}
