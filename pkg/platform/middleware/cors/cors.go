// Package cors configures cross-origin access for the public form endpoints.
package cors

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// Handler builds CORS middleware from a comma separated origin list.
// "*" (or an empty list) allows any origin without credentials.
func Handler(origins string) func(http.Handler) http.Handler {
	allowed := ParseOrigins(origins)
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// ParseOrigins splits and trims the configured origins, defaulting to "*".
func ParseOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
