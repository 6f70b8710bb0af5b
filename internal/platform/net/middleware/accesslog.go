package middleware

import (
	"net/http"
	"time"

	"equilex/internal/platform/logger"
	pnet "equilex/internal/platform/net"
)

// captureWriter records status and bytes written for access logging
type captureWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	n, err := c.ResponseWriter.Write(b)
	c.bytes += n
	return n, err
}

// AccessLogOptions configures the access log middleware
type AccessLogOptions struct {
	// Slow marks requests that exceed this duration with a warn entry.
	// Zero disables the slow marker
	Slow time.Duration
}

// AccessLogZerolog logs one structured line per request
func AccessLogZerolog(opts AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			cw := &captureWriter{ResponseWriter: w}

			next.ServeHTTP(cw, r)

			dur := time.Since(start)
			log := logger.C(r.Context())

			ev := log.Info()
			if opts.Slow > 0 && dur > opts.Slow {
				ev = log.Warn().Bool("slow", true)
			} else if cw.status >= http.StatusInternalServerError {
				ev = log.Error()
			}

			ev.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", cw.status).
				Int("bytes", cw.bytes).
				Dur("duration", dur).
				Str("remote", r.RemoteAddr).
				Str("request_id", pnet.RequestID(r.Context())).
				Msg("http request")
		})
	}
}
