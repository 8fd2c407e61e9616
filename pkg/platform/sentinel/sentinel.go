// Package sentinel holds the errors every store backend returns, so callers
// can test for them without knowing which backend is configured.
package sentinel

import "errors"

var (
	// ErrNotFound: no record has the requested ID.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a record with the same ID already exists. Records are
	// write-once, so an insert never overwrites.
	ErrConflict = errors.New("conflict")
)
