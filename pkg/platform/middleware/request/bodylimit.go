package request

import (
	"net/http"

	"registro/pkg/platform/httputil"
)

// BodyLimit caps request bodies at maxBytes; a non-positive limit disables it.
// A declared Content-Length over the cap is refused before the handler runs.
// Otherwise reads past the cap fail with *http.MaxBytesError, which
// httputil.DecodeJSON turns into the same 413 body.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
					Error:            "request_too_large",
					ErrorDescription: "request body too large",
				})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
