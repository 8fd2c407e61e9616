// Package store persists contact records.
//
// Error contract, shared by every backend:
//   - Insert returns an error wrapping sentinel.ErrConflict when the identifier already exists
//   - any other failure is returned wrapped with context and may be transient
//   - Count returns the number of stored records
package store

import (
	"context"

	"registro/internal/contact/models"
)

// Store is the write-once gateway to the external record store.
type Store interface {
	Insert(ctx context.Context, contact *models.Contact) error
	Count(ctx context.Context) (int, error)
}
