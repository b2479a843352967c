package recordstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks plantstock/internal/recordstore DocumentStore

import "context"

// DocumentStore defines collection-scoped operations a backing store must
// provide. Collections are created lazily via EnsureCollection; within a
// collection records are addressed by key. Find and DeleteByFilter match a
// single metadata field by exact equality.
type DocumentStore interface {
	// EnsureCollection creates the named collection if it does not exist.
	// Idempotent.
	EnsureCollection(ctx context.Context, collection string) error

	// Upsert inserts or replaces the record at its key.
	Upsert(ctx context.Context, collection string, rec Record) error

	// Get returns the record at key, or ErrNotFound.
	Get(ctx context.Context, collection, key string) (*Record, error)

	// Find returns all records whose metadata field equals value.
	// No ordering is guaranteed.
	Find(ctx context.Context, collection, field string, value any) ([]Record, error)

	// List returns up to limit records; limit <= 0 returns everything.
	List(ctx context.Context, collection string, limit int) ([]Record, error)

	// Delete removes the records at the given keys. Missing keys are not
	// an error.
	Delete(ctx context.Context, collection string, keys ...string) error

	// DeleteByFilter removes all records whose metadata field equals value.
	// Zero matches is not an error.
	DeleteByFilter(ctx context.Context, collection, field string, value any) error

	// Count returns the number of records in the collection.
	Count(ctx context.Context, collection string) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
