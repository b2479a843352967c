package recordstore

import (
	"context"
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(NewMemoryStore())
}

func TestStore_AddRecord(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	key, err := store.AddRecord(ctx, "inventory", "item_1001", "widget", map[string]any{
		"numero_parte": "1001",
		"cantidad":     5,
	})
	if err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}
	if key != "item_1001" {
		t.Errorf("AddRecord() key = %q, want %q", key, "item_1001")
	}

	rec, err := store.GetRecordByKey(ctx, "inventory", "item_1001")
	if err != nil {
		t.Fatalf("GetRecordByKey() error = %v", err)
	}
	if rec.Document != "widget" {
		t.Errorf("Document = %q, want %q", rec.Document, "widget")
	}
}

func TestStore_AddRecord_GeneratesKey(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	key, err := store.AddRecord(ctx, "partes", "", "part doc", map[string]any{"numero_parte": "2002"})
	if err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}
	if key == "" {
		t.Fatal("AddRecord() generated empty key")
	}

	if _, err := store.GetRecordByKey(ctx, "partes", key); err != nil {
		t.Errorf("GetRecordByKey(%q) error = %v", key, err)
	}
}

func TestStore_AddRecord_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.AddRecord(ctx, "users", "alice", "alice", map[string]any{"role": "user"}); err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}

	_, err := store.AddRecord(ctx, "users", "alice", "other", map[string]any{"role": "admin"})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("AddRecord() error = %v, want ErrDuplicateKey", err)
	}

	// The existing record must be left unmodified.
	rec, err := store.GetRecordByKey(ctx, "users", "alice")
	if err != nil {
		t.Fatalf("GetRecordByKey() error = %v", err)
	}
	if got := MetaString(rec.Metadata, "role"); got != "user" {
		t.Errorf("existing record modified: role = %q, want %q", got, "user")
	}
}

func TestStore_GetRecordByKey_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetRecordByKey(ctx, "inventory", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRecordByKey() error = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateRecord(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.AddRecord(ctx, "inventory", "item_1001", "widget", map[string]any{"cantidad": 5}); err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}

	if err := store.UpdateRecord(ctx, "inventory", "item_1001", map[string]any{"cantidad": 10}); err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}

	rec, err := store.GetRecordByKey(ctx, "inventory", "item_1001")
	if err != nil {
		t.Fatalf("GetRecordByKey() error = %v", err)
	}
	if got := MetaInt(rec.Metadata, "cantidad"); got != 10 {
		t.Errorf("cantidad = %d, want 10", got)
	}
}

func TestStore_UpdateRecord_MissingKey(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.UpdateRecord(ctx, "inventory", "missing", map[string]any{"cantidad": 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateRecord() error = %v, want ErrNotFound", err)
	}
}

func TestStore_FindRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	seed := []struct {
		key  string
		meta map[string]any
	}{
		{"item_1", map[string]any{"cliente": "acme", "numero_parte": "1"}},
		{"item_2", map[string]any{"cliente": "acme", "numero_parte": "2"}},
		{"item_3", map[string]any{"cliente": "globex", "numero_parte": "3"}},
	}
	for _, s := range seed {
		if _, err := store.AddRecord(ctx, "partes", s.key, "", s.meta); err != nil {
			t.Fatalf("AddRecord(%q) error = %v", s.key, err)
		}
	}

	records, err := store.FindRecords(ctx, "partes", "cliente", "acme")
	if err != nil {
		t.Fatalf("FindRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("FindRecords() returned %d records, want 2", len(records))
	}

	records, err = store.FindRecords(ctx, "partes", "cliente", "initech")
	if err != nil {
		t.Fatalf("FindRecords() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("FindRecords() returned %d records, want 0", len(records))
	}
}

func TestStore_GetAllRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// Empty collection returns an empty sequence, not an error.
	records, err := store.GetAllRecords(ctx, "inventory", 0)
	if err != nil {
		t.Fatalf("GetAllRecords() on empty collection error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("GetAllRecords() on empty collection returned %d records", len(records))
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if _, err := store.AddRecord(ctx, "inventory", key, "", map[string]any{"n": i}); err != nil {
			t.Fatalf("AddRecord(%q) error = %v", key, err)
		}
	}

	records, err = store.GetAllRecords(ctx, "inventory", 0)
	if err != nil {
		t.Fatalf("GetAllRecords() error = %v", err)
	}
	if len(records) != 5 {
		t.Errorf("GetAllRecords() returned %d records, want 5", len(records))
	}

	records, err = store.GetAllRecords(ctx, "inventory", 3)
	if err != nil {
		t.Fatalf("GetAllRecords(limit=3) error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("GetAllRecords(limit=3) returned %d records, want 3", len(records))
	}
}

func TestStore_DeleteRecord_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.AddRecord(ctx, "inventory", "item_1", "", map[string]any{"n": 1}); err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}

	if err := store.DeleteRecord(ctx, "inventory", "item_1"); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	// Deleting a missing key is still a success.
	if err := store.DeleteRecord(ctx, "inventory", "item_1"); err != nil {
		t.Fatalf("DeleteRecord() second call error = %v", err)
	}
}

func TestStore_DeleteRecordsByFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.AddRecord(ctx, "partes", "p1", "", map[string]any{"numero_parte": "9"}); err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}

	// Zero matches succeeds and leaves the collection unchanged.
	if err := store.DeleteRecordsByFilter(ctx, "partes", "numero_parte", "none"); err != nil {
		t.Fatalf("DeleteRecordsByFilter() zero matches error = %v", err)
	}
	records, err := store.GetAllRecords(ctx, "partes", 0)
	if err != nil {
		t.Fatalf("GetAllRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("collection changed by zero-match delete: %d records", len(records))
	}

	if err := store.DeleteRecordsByFilter(ctx, "partes", "numero_parte", "9"); err != nil {
		t.Fatalf("DeleteRecordsByFilter() error = %v", err)
	}
	if _, err := store.GetRecordByKey(ctx, "partes", "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("record survived filter delete: err = %v", err)
	}
}
