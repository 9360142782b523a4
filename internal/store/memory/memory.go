package memory

import (
	"context"
	"sync"

	"spendbook/internal/core"
	"spendbook/internal/store"
)

// Store keeps the table in memory. It is the default backend and the test
// double for the session and worker layers.
type Store struct {
	mu    sync.Mutex
	table core.Table
}

var _ store.Store = (*Store)(nil)

func New(seed core.Table) *Store {
	return &Store{table: seed.Clone()}
}

// Load returns a copy of the stored table.
func (s *Store) Load(_ context.Context) (core.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone(), nil
}

// Save replaces the stored table with a copy of t.
func (s *Store) Save(_ context.Context, t core.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t.Clone()
	return nil
}
