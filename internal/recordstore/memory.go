package recordstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory DocumentStore. It is used by tests and for
// ephemeral local runs; nothing is persisted.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Record)}
}

// EnsureCollection creates the named collection if it does not exist.
func (s *MemoryStore) EnsureCollection(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection]; !ok {
		s.collections[collection] = make(map[string]Record)
	}
	return nil
}

// Upsert inserts or replaces the record at its key.
func (s *MemoryStore) Upsert(_ context.Context, collection string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]Record)
		s.collections[collection] = coll
	}
	coll[rec.Key] = rec.Clone()
	return nil
}

// Get returns the record at key, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, collection, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.collections[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	out := rec.Clone()
	return &out, nil
}

// Find returns all records whose metadata field equals value.
func (s *MemoryStore) Find(_ context.Context, collection, field string, value any) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.collections[collection] {
		if stored, ok := rec.Metadata[field]; ok && valueEqual(stored, value) {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

// List returns up to limit records; limit <= 0 returns everything.
func (s *MemoryStore) List(_ context.Context, collection string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.collections[collection]))
	for _, rec := range s.collections[collection] {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}

// Delete removes the records at the given keys.
func (s *MemoryStore) Delete(_ context.Context, collection string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[collection]
	for _, key := range keys {
		delete(coll, key)
	}
	return nil
}

// DeleteByFilter removes all records whose metadata field equals value.
func (s *MemoryStore) DeleteByFilter(_ context.Context, collection, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[collection]
	for key, rec := range coll {
		if stored, ok := rec.Metadata[field]; ok && valueEqual(stored, value) {
			delete(coll, key)
		}
	}
	return nil
}

// Count returns the number of records in the collection.
func (s *MemoryStore) Count(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection]), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
