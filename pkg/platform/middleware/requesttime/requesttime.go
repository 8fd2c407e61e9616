// Package requesttime pins a single "now" to each HTTP request.
package requesttime

import (
	"net/http"
	"time"

	"registro/pkg/requestcontext"
)

// Middleware stamps the request with the wall clock in UTC.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock stamps each request with clock(), converted to UTC.
func WithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
