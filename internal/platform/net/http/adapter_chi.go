package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// chiRouter adapts a chi.Router to the platform Router interface
type chiRouter struct{ r chi.Router }

// NewRouter returns a Router backed by a fresh chi mux
func NewRouter() Router { return &chiRouter{r: chi.NewRouter()} }

// wrapChi adapts an existing chi router
func wrapChi(r chi.Router) Router { return &chiRouter{r: r} }

func (c *chiRouter) Get(p string, h http.HandlerFunc)    { c.r.Get(p, h) }
func (c *chiRouter) Post(p string, h http.HandlerFunc)   { c.r.Post(p, h) }
func (c *chiRouter) Put(p string, h http.HandlerFunc)    { c.r.Put(p, h) }
func (c *chiRouter) Patch(p string, h http.HandlerFunc)  { c.r.Patch(p, h) }
func (c *chiRouter) Delete(p string, h http.HandlerFunc) { c.r.Delete(p, h) }

func (c *chiRouter) Route(pattern string, fn func(Router)) Router {
	sub := c.r.Route(pattern, func(cr chi.Router) {
		if fn != nil {
			fn(wrapChi(cr))
		}
	})
	return wrapChi(sub)
}

func (c *chiRouter) Group(fn func(Router)) Router {
	sub := c.r.Group(func(cr chi.Router) {
		if fn != nil {
			fn(wrapChi(cr))
		}
	})
	return wrapChi(sub)
}

func (c *chiRouter) Use(mws ...func(http.Handler) http.Handler) { c.r.Use(mws...) }

func (c *chiRouter) Handle(pattern string, h http.Handler) { c.r.Handle(pattern, h) }
func (c *chiRouter) Mount(pattern string, h http.Handler)  { c.r.Mount(pattern, h) }

// ServeHTTP lets the adapter be used directly as an http.Handler
func (c *chiRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) { c.r.ServeHTTP(w, r) }

// AsHandler exposes a Router as an http.Handler for the server
func AsHandler(r Router) http.Handler {
	h, ok := r.(http.Handler)
	if !ok {
		panic("router does not implement http.Handler")
	}
	return h
}
