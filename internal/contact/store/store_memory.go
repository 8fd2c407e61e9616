package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"registro/internal/contact/models"
	"registro/pkg/platform/sentinel"
)

// InMemoryStore keeps contacts in process memory for tests and local runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	contacts map[uuid.UUID]models.Contact
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{contacts: make(map[uuid.UUID]models.Contact)}
}

func (s *InMemoryStore) Insert(ctx context.Context, contact *models.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[contact.ID]; ok {
		return fmt.Errorf("contact %s: %w", contact.ID, sentinel.ErrConflict)
	}
	s.contacts[contact.ID] = *contact
	return nil
}

func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts), nil
}

// Get returns a copy of a stored contact.
func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %s: %w", id, sentinel.ErrNotFound)
	}
	return &c, nil
}
