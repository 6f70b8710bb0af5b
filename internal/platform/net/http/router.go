package http

import "net/http"

// Router is the minimal routing surface modules mount against.
// It hides the concrete chi types so service code never imports chi directly
type Router interface {
	Get(pattern string, h http.HandlerFunc)
	Post(pattern string, h http.HandlerFunc)
	Put(pattern string, h http.HandlerFunc)
	Patch(pattern string, h http.HandlerFunc)
	Delete(pattern string, h http.HandlerFunc)

	Route(pattern string, fn func(Router)) Router
	Group(fn func(Router)) Router
	Use(mws ...func(http.Handler) http.Handler)

	Handle(pattern string, h http.Handler)
	Mount(pattern string, h http.Handler)
}
