package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	perr "equilex/internal/platform/errors"
	"equilex/internal/platform/logger"
	pnet "equilex/internal/platform/net"
)

// RecoverJSON converts panics into a JSON 500 instead of a dropped connection
func RecoverJSON() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// chi and net/http treat this as a deliberate abort
					panic(rec)
				}

				logger.C(r.Context()).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("path", r.URL.Path).
					Msg("panic recovered")

				wire := perr.WireFrom(perr.PanicErrf("internal error"))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status_code": http.StatusInternalServerError,
					"status":      http.StatusText(http.StatusInternalServerError),
					"code":        wire.Code,
					"error":       wire.Message,
					"request_id":  pnet.RequestID(r.Context()),
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
