package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"registro/internal/contact/models"
	dErrors "registro/pkg/domain-errors"
	"registro/pkg/platform/httputil"
	"registro/pkg/requestcontext"
)

// Service defines the registration operations served over HTTP.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type Option func(*Handler)

// WithErrorDetails includes the underlying error text in 500 bodies.
// Never enable it in production.
func WithErrorDetails(enabled bool) Option {
	return func(h *Handler) {
		h.errorDetails = enabled
	}
}

// WithRegisterMiddleware wraps only POST /registro, e.g. with a per-client
// rate limit.
func WithRegisterMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.registerMiddleware = append(h.registerMiddleware, mw...)
	}
}

// Handler serves the registration form endpoints.
type Handler struct {
	service            Service
	logger             *slog.Logger
	errorDetails       bool
	registerMiddleware []func(http.Handler) http.Handler
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the registration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.With(h.registerMiddleware...).Post("/registro", h.handleRegister)
	r.Get("/stats", h.handleStats)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Register(ctx, req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute stats",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		h.writeError(ctx, w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// writeError adds the count details to 429 bodies and the optional error
// text to 500 bodies; everything else goes through httputil.WriteError.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var exceeded *models.CapacityExceededError
	if errors.As(err, &exceeded) {
		httputil.WriteJSON(w, http.StatusTooManyRequests, models.CapacityExceededResponse{
			Error:            httputil.DomainCodeToHTTPCode(dErrors.CodeCapacityExceeded),
			ErrorDescription: "registration limit reached",
			CurrentCount:     exceeded.CurrentCount,
			MaxRecords:       exceeded.MaxRecords,
		})
		return
	}

	var domainErr *dErrors.Error
	isDomain := errors.As(err, &domainErr)
	if isDomain && httputil.DomainCodeToHTTPStatus(domainErr.Code) < http.StatusInternalServerError {
		httputil.WriteError(w, err)
		return
	}

	res := models.InternalErrorResponse{Error: httputil.DomainCodeToHTTPCode(dErrors.CodeInternal)}
	if h.errorDetails {
		res.Details = err.Error()
		if isDomain && domainErr.Err != nil {
			res.Details = domainErr.Err.Error()
		}
	}
	h.logger.DebugContext(ctx, "writing internal error response", "error", err)
	httputil.WriteJSON(w, http.StatusInternalServerError, res)
}
