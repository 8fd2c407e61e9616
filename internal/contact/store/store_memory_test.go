package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"registro/internal/contact/models"
	"registro/pkg/platform/sentinel"
	"registro/pkg/testutil"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func newContact() *models.Contact {
	return testutil.NewContactBuilder().Build()
}

func (s *InMemoryStoreSuite) TestInsertAndCount() {
	ctx := context.Background()
	c := testutil.NewContactBuilder().
		WithID(testutil.TestIDs.ContactID1).
		WithName("Lucía", "Quispe").
		WithEmail("lucia@example.com").
		WithInterest("data").
		CreatedAt(time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)).
		Build()

	s.Require().NoError(s.store.Insert(ctx, c))
	s.Require().NoError(s.store.Insert(ctx, newContact()))

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(*c, *got)
}

func (s *InMemoryStoreSuite) TestDuplicateIDConflicts() {
	ctx := context.Background()
	first := testutil.NewContactBuilder().WithID(testutil.TestIDs.ContactID2).Build()
	s.Require().NoError(s.store.Insert(ctx, first))

	second := testutil.NewContactBuilder().WithID(testutil.TestIDs.ContactID2).WithEmail("other@example.com").Build()
	err := s.store.Insert(ctx, second)
	s.ErrorIs(err, sentinel.ErrConflict)

	n, _ := s.store.Count(ctx)
	s.Equal(1, n)
}

func (s *InMemoryStoreSuite) TestGetUnknown() {
	_, err := s.store.Get(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.ErrorIs(s.store.Insert(ctx, newContact()), context.Canceled)
	_, err := s.store.Count(ctx)
	s.ErrorIs(err, context.Canceled)
}

func TestInMemoryStoreConcurrentInserts(t *testing.T) {
	st := NewInMemory()
	res := testutil.RunConcurrent(50, func(int) error {
		return st.Insert(context.Background(), newContact())
	})
	require.Equal(t, int32(50), res.Successes)

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}
