// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used in tests and when durability is not required (STORE=memory).
//
// Characteristics:
//   - Records keyed by date, with a secondary id index.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Records are copied in and out so callers never share slices with the map.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/robalobadob/connections/internal/puzzle"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex
	byDate map[string]puzzle.Record
	byID   map[int]string // id → date
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{byDate: make(map[string]puzzle.Record), byID: make(map[int]string)}
}

// Save inserts or updates the record for its date.
func (m *memory) Save(ctx context.Context, r puzzle.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if date, ok := m.byID[r.ID]; ok && date != r.Date {
		return fmt.Errorf("%w: id %d already stored for %s", ErrConflict, r.ID, date)
	}
	if old, ok := m.byDate[r.Date]; ok && old.ID != r.ID {
		delete(m.byID, old.ID)
	}
	m.byDate[r.Date] = clone(r)
	m.byID[r.ID] = r.Date
	return nil
}

// Get looks up a record by date.
func (m *memory) Get(ctx context.Context, date string) (puzzle.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.byDate[date]; ok {
		return clone(r), nil
	}
	return puzzle.Record{}, ErrNotFound
}

// GetByID looks up a record by puzzle id.
func (m *memory) GetByID(ctx context.Context, id int) (puzzle.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if date, ok := m.byID[id]; ok {
		return clone(m.byDate[date]), nil
	}
	return puzzle.Record{}, ErrNotFound
}

// List returns all records ordered by date.
func (m *memory) List(ctx context.Context) ([]puzzle.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]puzzle.Record, 0, len(m.byDate))
	for _, r := range m.byDate {
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Delete removes the record for date. Missing dates are not an error.
func (m *memory) Delete(ctx context.Context, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byDate[date]; ok {
		delete(m.byID, r.ID)
		delete(m.byDate, date)
	}
	return nil
}

func clone(r puzzle.Record) puzzle.Record {
	out := r
	out.Categories = append([]puzzle.Category(nil), r.Categories...)
	out.Order = append([]string{}, r.Order...)
	out.Guesses = append([]puzzle.Guess{}, r.Guesses...)
	return out
}
