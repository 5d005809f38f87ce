package state

import (
	"context"
	"sync"

	"github.com/goliatone/go-appmap"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store intended for tests and examples.
type MemoryStore struct {
	mu    sync.RWMutex
	table appmap.Table
	meta  Meta
	saved bool
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (appmap.Table, Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return nil, Meta{}, ErrNotFound
	}
	return s.table.Clone(), s.meta, nil
}

func (s *MemoryStore) Save(_ context.Context, table appmap.Table, meta Meta) (Meta, error) {
	if meta.SnapshotID == "" {
		meta.SnapshotID = uuid.NewString()
	}
	meta.Count = table.Len()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table.Clone()
	s.meta = meta
	s.saved = true
	s.saves++
	return meta, nil
}

// Saves reports how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
