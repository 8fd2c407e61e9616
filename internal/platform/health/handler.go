// Package health provides liveness, readiness and status endpoints.
package health

import (
	"context"
	"maps"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"registro/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CheckFunc reports nil when a dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Info is the configuration summary echoed by GET /health.
type Info struct {
	TableName  string `json:"tableName"`
	Region     string `json:"region"`
	MaxRecords int    `json:"maxRecords"`
}

// Handler provides health check endpoints.
type Handler struct {
	info         Info
	environment  string
	startTime    time.Time
	checkTimeout time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func New(info Info, environment string) *Handler {
	return &Handler{
		info:         info,
		environment:  environment,
		startTime:    time.Now(),
		checkTimeout: 2 * time.Second,
		checks:       make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named dependency check to the readiness probe.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Register mounts health check routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// StatusResponse is the body of GET /health.
type StatusResponse struct {
	Status        string `json:"status"`
	Config        Info   `json:"config"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// HandleStatus always answers 200 while the process serves requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "ok",
		Config:        h.info,
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

type LivenessResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleReadiness runs every registered check and answers 503 if any fails.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := maps.Clone(h.checks)
	h.mu.RUnlock()

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	response := ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(checks))}
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), h.checkTimeout)
		err := checks[name](ctx)
		cancel()
		if err != nil {
			response.Checks[name] = "down: " + err.Error()
			response.Status = "not_ready"
			continue
		}
		response.Checks[name] = "up"
	}

	if response.Status != "ready" {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, response)
}
