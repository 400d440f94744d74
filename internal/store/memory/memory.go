// Package memory is an in-process store used by tests and as the default
// throwaway backend.
package memory

import (
	"context"
	"sync"

	"receber/internal/core"
)

type Store struct {
	mu   sync.Mutex
	snap *core.Snapshot
	dark bool
}

func New() *Store {
	return &Store{}
}

// Seed preloads state, bypassing Save. Test helper.
func (s *Store) Seed(snap *core.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
}

func (s *Store) Load(_ context.Context) (*core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, nil
	}
	return s.snap.Clone(), nil
}

func (s *Store) Save(_ context.Context, snap *core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
	return nil
}

func (s *Store) LoadTheme(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark, nil
}

func (s *Store) SaveTheme(_ context.Context, dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dark = dark
	return nil
}

func (s *Store) Close() error { return nil }
