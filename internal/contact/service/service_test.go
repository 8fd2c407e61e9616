package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"registro/internal/contact/admission"
	"registro/internal/contact/countcache"
	"registro/internal/contact/metrics"
	"registro/internal/contact/models"
	"registro/internal/contact/service/mocks"
	dErrors "registro/pkg/domain-errors"
	"registro/pkg/requestcontext"
	"registro/pkg/testutil"
)

var (
	fixedID  = uuid.MustParse("0b9f3c52-4d1e-4f7a-9a8b-5c6d7e8f9a0b")
	fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 456_789_000, time.UTC)
)

func validRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		Names:    "Lucía",
		Surname:  "Quispe",
		Email:    "lucia@example.com",
		Phone:    "987654321",
		Interest: "devops",
	}
}

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	admitter  *mocks.MockAdmitter
	counter   *mocks.MockCounter
	publisher *mocks.MockPublisher
	metrics   *metrics.Metrics
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.admitter = mocks.NewMockAdmitter(s.ctrl)
	s.counter = mocks.NewMockCounter(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store, s.admitter, s.counter, 100,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithPublisher(s.publisher),
		WithIDGenerator(func() uuid.UUID { return fixedID }),
	)
	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) outcome(name string) float64 {
	return promtestutil.ToFloat64(s.metrics.Registrations.WithLabelValues(name))
}

func (s *ServiceSuite) TestRegister() {
	s.Run("stores contact and confirms admission", func() {
		decision := admission.Decision{Allowed: true, CurrentCount: 9, MaxRecords: 100}
		s.admitter.EXPECT().Admit(s.ctx, 100).Return(decision)
		s.store.EXPECT().Insert(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, c *models.Contact) error {
			s.Equal(fixedID, c.ID)
			s.Equal("Lucía", c.Names)
			s.Equal("devops", c.Interest)
			s.Equal(fixedNow.Truncate(time.Millisecond), c.CreatedAt)
			return nil
		})
		s.admitter.EXPECT().Confirm(decision)
		s.counter.EXPECT().Snapshot().Return(countcache.Snapshot{Count: 10, Refreshed: true})
		s.publisher.EXPECT().PublishRegistered(s.ctx, gomock.Any()).Return(nil)

		resp, err := s.service.Register(s.ctx, validRequest())
		s.Require().NoError(err)
		s.True(resp.OK)
		s.Equal(fixedID.String(), resp.ID)
		s.Equal(models.Usage{CurrentCount: 10, MaxRecords: 100, RemainingSlots: 90, PercentUsed: 10}, resp.Stats)
		s.Equal(1.0, s.outcome(metrics.OutcomeAccepted))
	})

	s.Run("publish failure does not fail the registration", func() {
		decision := admission.Decision{Allowed: true, MaxRecords: 100}
		s.admitter.EXPECT().Admit(gomock.Any(), 100).Return(decision)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
		s.admitter.EXPECT().Confirm(decision)
		s.counter.EXPECT().Snapshot().Return(countcache.Snapshot{Count: 1})
		s.publisher.EXPECT().PublishRegistered(gomock.Any(), gomock.Any()).Return(errors.New("producer is closed"))

		resp, err := s.service.Register(s.ctx, validRequest())
		s.Require().NoError(err)
		s.True(resp.OK)
		s.Equal(1.0, promtestutil.ToFloat64(s.metrics.EventsPublished.WithLabelValues("error")))
	})

	s.Run("trims fields before storing", func() {
		req := validRequest()
		req.Email = "  lucia@example.com\t"
		decision := admission.Decision{Allowed: true, MaxRecords: 100}
		s.admitter.EXPECT().Admit(gomock.Any(), 100).Return(decision)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *models.Contact) error {
			s.Equal("lucia@example.com", c.Email)
			return nil
		})
		s.admitter.EXPECT().Confirm(decision)
		s.counter.EXPECT().Snapshot().Return(countcache.Snapshot{Count: 1})
		s.publisher.EXPECT().PublishRegistered(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.Register(s.ctx, req)
		s.Require().NoError(err)
	})
}

func (s *ServiceSuite) TestRegisterInvalidInput() {
	cases := map[string]func(r *models.RegisterRequest){
		"missing names":      func(r *models.RegisterRequest) { r.Names = "" },
		"missing surname":    func(r *models.RegisterRequest) { r.Surname = "" },
		"missing email":      func(r *models.RegisterRequest) { r.Email = "" },
		"missing phone":      func(r *models.RegisterRequest) { r.Phone = "" },
		"missing interest":   func(r *models.RegisterRequest) { r.Interest = "" },
		"whitespace only":    func(r *models.RegisterRequest) { r.Names = "   " },
		"phone over maximum": func(r *models.RegisterRequest) { r.Phone = strings.Repeat("9", 51) },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			req := validRequest()
			mutate(req)

			// No mock expectations: any admitter or store call fails the test.
			resp, err := s.service.Register(s.ctx, req)
			s.Nil(resp)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput) || dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}

	built := map[string]*models.RegisterRequest{
		"blank names":      testutil.NewRegisterRequestBuilder().WithNames(" \t ").Build(),
		"empty email":      testutil.NewRegisterRequestBuilder().WithEmail("").Build(),
		"newline interest": testutil.NewRegisterRequestBuilder().WithInterest("\n").Build(),
	}
	for name, req := range built {
		s.Run(name, func() {
			_, err := s.service.Register(s.ctx, req)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), "got %v", err)
		})
	}

	s.Run("nil request", func() {
		_, err := s.service.Register(s.ctx, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestRegisterCapacityExceeded() {
	s.admitter.EXPECT().Admit(s.ctx, 100).Return(admission.Decision{Allowed: false, CurrentCount: 100, MaxRecords: 100})

	resp, err := s.service.Register(s.ctx, validRequest())
	s.Nil(resp)
	s.True(dErrors.HasCode(err, dErrors.CodeCapacityExceeded))

	var exceeded *models.CapacityExceededError
	s.Require().ErrorAs(err, &exceeded)
	s.Equal(100, exceeded.CurrentCount)
	s.Equal(100, exceeded.MaxRecords)
	s.Equal(1.0, s.outcome(metrics.OutcomeRejected))
}

func (s *ServiceSuite) TestRegisterStoreFailure() {
	decision := admission.Decision{Allowed: true, CurrentCount: 3, MaxRecords: 100}
	storeErr := errors.New("ProvisionedThroughputExceededException")
	s.admitter.EXPECT().Admit(s.ctx, 100).Return(decision)
	s.store.EXPECT().Insert(s.ctx, gomock.Any()).Return(storeErr)
	s.admitter.EXPECT().Abandon(decision)

	resp, err := s.service.Register(s.ctx, validRequest())
	s.Nil(resp)
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
	s.ErrorIs(err, storeErr)
	s.Equal(1.0, s.outcome(metrics.OutcomeStoreFailure))
}

func (s *ServiceSuite) TestStats() {
	s.Run("fresh count", func() {
		s.counter.EXPECT().ForceRefresh(s.ctx, fixedNow).Return(85, nil)

		stats, err := s.service.Stats(s.ctx)
		s.Require().NoError(err)
		s.Equal(85, stats.CurrentCount)
		s.Equal(15, stats.RemainingSlots)
		s.Equal(85.0, stats.PercentUsed)
		s.True(stats.IsNearLimit)
		s.False(stats.IsFull)
	})

	s.Run("refresh failure serves stale count", func() {
		s.counter.EXPECT().ForceRefresh(s.ctx, fixedNow).Return(40, errors.New("timeout"))
		s.counter.EXPECT().Snapshot().Return(countcache.Snapshot{Count: 40, Refreshed: true})

		stats, err := s.service.Stats(s.ctx)
		s.Require().NoError(err)
		s.Equal(40, stats.CurrentCount)
		s.False(stats.IsNearLimit)
	})

	s.Run("refresh failure with no known count", func() {
		s.counter.EXPECT().ForceRefresh(s.ctx, fixedNow).Return(0, errors.New("timeout"))
		s.counter.EXPECT().Snapshot().Return(countcache.Snapshot{})

		stats, err := s.service.Stats(s.ctx)
		s.Nil(stats)
		s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
	})
}
