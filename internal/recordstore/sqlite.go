package recordstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a DocumentStore backed by a local SQLite database. All
// collections share one table; metadata is stored as a JSON column and
// filtered with json_extract.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrBackingStore, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping sqlite: %v", ErrBackingStore, err)
	}

	schema := `CREATE TABLE IF NOT EXISTS records (
		collection TEXT NOT NULL,
		key TEXT NOT NULL,
		document TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (collection, key)
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrBackingStore, err)
	}

	return &SQLiteStore{db: db}, nil
}

// EnsureCollection is satisfied by the shared table schema; collections
// exist implicitly once a record is written.
func (s *SQLiteStore) EnsureCollection(ctx context.Context, collection string) error {
	return nil
}

// Upsert inserts or replaces the record at its key.
func (s *SQLiteStore) Upsert(ctx context.Context, collection string, rec Record) error {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (collection, key, document, metadata) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, key) DO UPDATE SET
		 document = excluded.document, metadata = excluded.metadata`,
		collection, rec.Key, rec.Document, string(meta),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert record: %v", ErrBackingStore, err)
	}
	return nil
}

// Get returns the record at key, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, collection, key string) (*Record, error) {
	var rec Record
	var meta string
	err := s.db.QueryRowContext(ctx,
		"SELECT key, document, metadata FROM records WHERE collection = ? AND key = ?",
		collection, key,
	).Scan(&rec.Key, &rec.Document, &meta)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query record: %v", ErrBackingStore, err)
	}
	if err := json.Unmarshal([]byte(meta), &rec.Metadata); err != nil {
		return nil, fmt.Errorf("%w: corrupt metadata for key %q: %v", ErrBackingStore, key, err)
	}
	return &rec, nil
}

// Find returns all records whose metadata field equals value. The field
// name is bound as a json_extract path, never interpolated.
func (s *SQLiteStore) Find(ctx context.Context, collection, field string, value any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, document, metadata FROM records WHERE collection = ? AND json_extract(metadata, ?) = ?",
		collection, jsonPath(field), value,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query records: %v", ErrBackingStore, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// List returns up to limit records; limit <= 0 returns everything.
func (s *SQLiteStore) List(ctx context.Context, collection string, limit int) ([]Record, error) {
	query := "SELECT key, document, metadata FROM records WHERE collection = ?"
	args := []any{collection}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %v", ErrBackingStore, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Delete removes the records at the given keys.
func (s *SQLiteStore) Delete(ctx context.Context, collection string, keys ...string) error {
	for _, key := range keys {
		_, err := s.db.ExecContext(ctx,
			"DELETE FROM records WHERE collection = ? AND key = ?", collection, key)
		if err != nil {
			return fmt.Errorf("%w: delete record: %v", ErrBackingStore, err)
		}
	}
	return nil
}

// DeleteByFilter removes all records whose metadata field equals value.
func (s *SQLiteStore) DeleteByFilter(ctx context.Context, collection, field string, value any) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ? AND json_extract(metadata, ?) = ?",
		collection, jsonPath(field), value,
	)
	if err != nil {
		return fmt.Errorf("%w: delete by filter: %v", ErrBackingStore, err)
	}
	return nil
}

// Count returns the number of records in the collection.
func (s *SQLiteStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ?", collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count records: %v", ErrBackingStore, err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func jsonPath(field string) string {
	return `$."` + field + `"`
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		var meta string
		if err := rows.Scan(&rec.Key, &rec.Document, &meta); err != nil {
			return nil, fmt.Errorf("%w: scan record: %v", ErrBackingStore, err)
		}
		if err := json.Unmarshal([]byte(meta), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("%w: corrupt metadata for key %q: %v", ErrBackingStore, rec.Key, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate records: %v", ErrBackingStore, err)
	}
	return out, nil
}
