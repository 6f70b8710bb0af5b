// Package modkit provides the small assembly kit modules are built from:
// shared Deps, functional build options, and typed port retrieval
package modkit

import phttp "equilex/internal/platform/net/http"

// Module is anything mountable on the API router
type Module interface {
	Name() string
	Prefix() string
	MountRoutes(r phttp.Router)
}
