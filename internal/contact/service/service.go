package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"registro/internal/contact/admission"
	"registro/internal/contact/countcache"
	"registro/internal/contact/metrics"
	"registro/internal/contact/models"
	dErrors "registro/pkg/domain-errors"
	"registro/pkg/requestcontext"
)

// Store persists contacts.
// Error Contract:
// - Insert returns sentinel.ErrConflict when the id already exists
// - Any other failure is a wrapped infrastructure error
type Store interface {
	Insert(ctx context.Context, contact *models.Contact) error
}

// Admitter applies the record limit before an insert.
type Admitter interface {
	Admit(ctx context.Context, maxRecords int) admission.Decision
	Confirm(d admission.Decision)
	Abandon(d admission.Decision)
}

// Counter exposes the count cache for the stats query and responses.
type Counter interface {
	ForceRefresh(ctx context.Context, now time.Time) (int, error)
	Snapshot() countcache.Snapshot
}

// Publisher announces confirmed registrations.
type Publisher interface {
	PublishRegistered(ctx context.Context, contact *models.Contact) error
}

type Option func(*Service)

// Service runs the registration flow: validate, admit, persist, confirm.
type Service struct {
	store      Store
	admitter   Admitter
	counter    Counter
	publisher  Publisher
	maxRecords int
	metrics    *metrics.Metrics
	logger     *slog.Logger
	newID      func() uuid.UUID
}

func New(store Store, admitter Admitter, counter Counter, maxRecords int, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		admitter:   admitter,
		counter:    counter,
		maxRecords: maxRecords,
		newID:      uuid.New,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPublisher emits a registration event after every confirmed insert.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithIDGenerator replaces uuid.New.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// MaxRecords returns the configured limit.
func (s *Service) MaxRecords() int {
	return s.maxRecords
}

// Register stores a new contact if the limit allows it. Invalid input and
// rejected admissions leave no trace; a failed insert leaves the cached
// count untouched.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	if req == nil {
		s.observe(metrics.OutcomeInvalid)
		return nil, dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}
	req.Sanitize()
	if err := req.Validate(); err != nil {
		s.observe(metrics.OutcomeInvalid)
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, err.Error())
	}

	start := time.Now()
	decision := s.admitter.Admit(ctx, s.maxRecords)
	if !decision.Allowed {
		s.observe(metrics.OutcomeRejected)
		s.logger.InfoContext(ctx, "registration rejected at capacity",
			"current_count", decision.CurrentCount,
			"max_records", decision.MaxRecords,
			"request_id", requestcontext.RequestID(ctx),
		)
		exceeded := &models.CapacityExceededError{
			CurrentCount: decision.CurrentCount,
			MaxRecords:   decision.MaxRecords,
		}
		return nil, &dErrors.Error{Code: dErrors.CodeCapacityExceeded, Message: exceeded.Error(), Err: exceeded}
	}

	contact := models.NewContact(s.newID(), req, requestcontext.Now(ctx))
	if err := s.store.Insert(ctx, contact); err != nil {
		s.admitter.Abandon(decision)
		s.observe(metrics.OutcomeStoreFailure)
		s.logger.ErrorContext(ctx, "failed to store registration",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, &dErrors.Error{Code: dErrors.CodeStoreUnavailable, Message: "failed to store registration", Err: err}
	}
	s.admitter.Confirm(decision)

	snap := s.counter.Snapshot()
	s.observe(metrics.OutcomeAccepted)
	if s.metrics != nil {
		s.metrics.ObserveRegistrationLatency(time.Since(start))
	}
	s.logger.InfoContext(ctx, "registration stored",
		"id", contact.ID.String(),
		"interest", contact.Interest,
		"current_count", snap.Count,
		"request_id", requestcontext.RequestID(ctx),
	)

	s.publish(ctx, contact)

	return &models.RegisterResponse{
		OK:    true,
		ID:    contact.ID.String(),
		Stats: models.NewUsage(snap.Count, s.maxRecords),
	}, nil
}

// Stats reads the count from the store and reports capacity usage. When the
// read fails the last known count is served, unless no read has ever
// succeeded.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	count, err := s.counter.ForceRefresh(ctx, requestcontext.Now(ctx))
	if err != nil {
		if !s.counter.Snapshot().Refreshed {
			return nil, &dErrors.Error{Code: dErrors.CodeStoreUnavailable, Message: "failed to read record count", Err: err}
		}
		s.logger.WarnContext(ctx, "count refresh failed, serving cached stats",
			"error", err,
			"cached_count", count,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	stats := models.NewStats(count, s.maxRecords)
	return &stats, nil
}

func (s *Service) publish(ctx context.Context, contact *models.Contact) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishRegistered(ctx, contact)
	if s.metrics != nil {
		s.metrics.IncrementEventPublished(err == nil)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish registration event",
			"error", err,
			"id", contact.ID.String(),
		)
	}
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRegistration(outcome)
	}
}
