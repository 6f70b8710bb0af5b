// Package httpkit sugars the platform http surface for module handlers
package httpkit

import (
	"net/http"

	phttp "equilex/internal/platform/net/http"
)

// Aliases so modules import one kit package
type (
	// Router is the platform routing surface
	Router = phttp.Router
	// Response is the handler return type
	Response = phttp.Response
	// Envelope is the JSON wire wrapper
	Envelope = phttp.Envelope
)

// Re-exported constructors
var (
	OK        = phttp.OK
	Created   = phttp.Created
	NoContent = phttp.NoContent
	Data      = phttp.Data
	List      = phttp.List
	Error     = phttp.Error
	Handle    = phttp.Handle
)

// JSON adapts a typed JSON handler; body decoded and validated before fn runs
func JSON[T any](fn func(r *http.Request, req T) Response) http.HandlerFunc {
	return phttp.JSONHandler(fn)
}
