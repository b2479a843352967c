package recordstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"plantstock/internal/contextutil"
)

// Store provides uniform, collection-agnostic CRUD over a DocumentStore.
// It adds the semantics the backing stores do not enforce themselves:
// duplicate-key rejection on add, not-found failures on update, and key
// generation.
//
// Operations are atomic only per key. The duplicate check in AddRecord is
// read-then-write; concurrent writers to the same key are last-write-wins.
type Store struct {
	backend DocumentStore
}

// New creates a Store over the given backend.
func New(backend DocumentStore) *Store {
	return &Store{backend: backend}
}

// Backend exposes the underlying DocumentStore for health probes.
func (s *Store) Backend() DocumentStore {
	return s.backend
}

// GetOrCreateCollection ensures the named collection exists. Idempotent;
// fails only when the backing store is unavailable.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) error {
	return s.backend.EnsureCollection(ctx, name)
}

// AddRecord inserts a new record. When key is empty a fresh UUID is
// generated. Returns the key of the stored record, or ErrDuplicateKey when
// the key already exists in the collection.
func (s *Store) AddRecord(ctx context.Context, collection, key, document string, metadata map[string]any) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if key == "" {
		key = uuid.New().String()
	}

	_, err := s.backend.Get(ctx, collection, key)
	if err == nil {
		return "", fmt.Errorf("%w: %q in collection %q", ErrDuplicateKey, key, collection)
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	rec := Record{Key: key, Document: document, Metadata: metadata}
	if err := s.backend.Upsert(ctx, collection, rec); err != nil {
		return "", err
	}
	logger.InfoContext(ctx, "record added", "collection", collection, "key", key)
	return key, nil
}

// GetRecordByKey returns the record at key, or ErrNotFound.
func (s *Store) GetRecordByKey(ctx context.Context, collection, key string) (*Record, error) {
	return s.backend.Get(ctx, collection, key)
}

// FindRecords returns all records whose metadata field equals value.
// Results carry no ordering guarantee; callers sort if they need order.
func (s *Store) FindRecords(ctx context.Context, collection, field string, value any) ([]Record, error) {
	return s.backend.Find(ctx, collection, field, value)
}

// GetAllRecords returns up to limit records from the collection; limit <= 0
// returns the full collection.
func (s *Store) GetAllRecords(ctx context.Context, collection string, limit int) ([]Record, error) {
	return s.backend.List(ctx, collection, limit)
}

// UpdateRecord replaces the metadata of the record at key. A missing key
// fails with ErrNotFound rather than silently doing nothing.
func (s *Store) UpdateRecord(ctx context.Context, collection, key string, metadata map[string]any) error {
	logger := contextutil.LoggerFromContext(ctx)

	existing, err := s.backend.Get(ctx, collection, key)
	if err != nil {
		return err
	}

	rec := Record{Key: key, Document: existing.Document, Metadata: metadata}
	if err := s.backend.Upsert(ctx, collection, rec); err != nil {
		return err
	}
	logger.InfoContext(ctx, "record updated", "collection", collection, "key", key)
	return nil
}

// DeleteRecord removes the record at key. Deleting a missing key is not an
// error.
func (s *Store) DeleteRecord(ctx context.Context, collection, key string) error {
	return s.backend.Delete(ctx, collection, key)
}

// DeleteRecordsByFilter removes all records whose metadata field equals
// value. Zero matches is not an error.
func (s *Store) DeleteRecordsByFilter(ctx context.Context, collection, field string, value any) error {
	return s.backend.DeleteByFilter(ctx, collection, field, value)
}
