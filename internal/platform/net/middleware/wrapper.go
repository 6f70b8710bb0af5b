// Package middleware re-exports the chi middleware the platform blesses and
// adds project-specific pieces (access logging, JSON panic recovery, CORS)
package middleware

import (
	"net/http"
	"time"

	pstrings "equilex/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Re-exported chi middleware, so callers only import this package
var (
	RequestID = chimw.RequestID
	RealIP    = chimw.RealIP
	Heartbeat = chimw.Heartbeat
	Timeout   = chimw.Timeout
	Compress  = chimw.Compress
)

// CORSOptions configures the CORS middleware
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// Defaults returns permissive development defaults
func (o CORSOptions) Defaults() CORSOptions {
	o.AllowedOrigins = pstrings.IfEmpty(o.AllowedOrigins, []string{"*"})
	o.AllowedMethods = pstrings.IfEmpty(o.AllowedMethods,
		[]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions})
	o.AllowedHeaders = pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"})
	if o.MaxAge == 0 {
		o.MaxAge = 5 * time.Minute
	}
	return o
}

// CORS returns the CORS middleware built from opts
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	opts = opts.Defaults()
	return cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   opts.AllowedMethods,
		AllowedHeaders:   opts.AllowedHeaders,
		ExposedHeaders:   opts.ExposedHeaders,
		AllowCredentials: opts.AllowCredentials,
		MaxAge:           int(opts.MaxAge.Seconds()),
	})
}
