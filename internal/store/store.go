// internal/store/store.go
//
// Persistence interface for puzzle states.
// A record is keyed by its date; the puzzle id is a second unique key.

package store

import (
	"context"
	"errors"

	"github.com/robalobadob/connections/internal/puzzle"
)

var (
	// ErrNotFound is returned by Get/GetByID for unknown keys.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a save would give one id two dates.
	ErrConflict = errors.New("conflicting puzzle id")
)

// Store defines the persistence interface for puzzle states.
// Implementations may be backed by memory or SQLite (this package).
type Store interface {
	// Save persists or updates the record for r.Date.
	Save(ctx context.Context, r puzzle.Record) error

	// Get retrieves a record by date.
	Get(ctx context.Context, date string) (puzzle.Record, error)

	// GetByID retrieves a record by puzzle id.
	GetByID(ctx context.Context, id int) (puzzle.Record, error)

	// List returns every stored record, oldest date first.
	List(ctx context.Context) ([]puzzle.Record, error)

	// Delete removes the record for date.
	Delete(ctx context.Context, date string) error
}
