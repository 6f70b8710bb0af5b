package http

import (
	"net/http"

	"equilex/internal/platform/net/http/bind"
)

// JSONHandler adapts a typed request handler to http.HandlerFunc.
// The body is decoded and validated before fn runs
func JSONHandler[T any](fn func(r *http.Request, req T) Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := bind.ParseJSON[T](r)
		if err != nil {
			WriteResponse(w, r, Error(err))
			return
		}
		WriteResponse(w, r, fn(r, req))
	}
}
