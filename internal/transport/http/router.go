package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"registro/internal/platform/health"
	"registro/internal/platform/metrics"
	"registro/pkg/platform/middleware/cors"
	"registro/pkg/platform/middleware/metadata"
	"registro/pkg/platform/middleware/request"
	"registro/pkg/platform/middleware/requesttime"
)

// RouteRegistrar mounts a module's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// Config holds the transport settings that shape the middleware stack.
type Config struct {
	CORSOrigins    string
	StaticDir      string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	TrustedProxies []netip.Prefix
}

// Deps are the collaborators the router mounts.
type Deps struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *request.Metrics
	Health   *health.Handler
	Modules  []RouteRegistrar
}

// NewRouter wires all public endpoints with middleware. Handlers stay thin
// and delegate to the module services.
func NewRouter(cfg Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: cfg.TrustedProxies}).Handler)
	r.Use(request.Logger(deps.Logger))
	r.Use(request.LatencyMiddleware(deps.Metrics))
	r.Use(cors.Handler(cfg.CORSOrigins))
	r.Use(request.Timeout(cfg.RequestTimeout))
	r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	r.Use(request.ContentTypeJSON)

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))
	}
	for _, m := range deps.Modules {
		m.Register(r)
	}

	r.NotFound(staticHandler(cfg.StaticDir))

	return r
}
