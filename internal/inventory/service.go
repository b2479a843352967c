package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"plantstock/internal/contextutil"
	"plantstock/internal/recordstore"
)

var (
	// ErrDuplicatePart is returned when adding an item whose part number
	// already exists.
	ErrDuplicatePart = errors.New("numero de parte must be unique")
	// ErrNotFound is returned when an item lookup misses.
	ErrNotFound = recordstore.ErrNotFound
	// ErrValidation is returned on malformed input.
	ErrValidation = errors.New("validation error")
)

// Item is the explicit schema for a record in the inventory collection.
// JSON tags match the legacy wire format.
type Item struct {
	NumeroParte string `json:"numero_parte"`
	Cantidad    int    `json:"cantidad"`
	Descripcion string `json:"descripcion"`
}

// Validate checks the item's shape.
func (i Item) Validate() error {
	if i.NumeroParte == "" {
		return fmt.Errorf("%w: numero_parte is required", ErrValidation)
	}
	if i.Cantidad < 0 {
		return fmt.Errorf("%w: cantidad must not be negative", ErrValidation)
	}
	return nil
}

func (i Item) metadata() map[string]any {
	return map[string]any{
		"numero_parte": i.NumeroParte,
		"cantidad":     i.Cantidad,
		"descripcion":  i.Descripcion,
	}
}

func fromRecord(rec recordstore.Record) Item {
	return Item{
		NumeroParte: recordstore.MetaString(rec.Metadata, "numero_parte"),
		Cantidad:    recordstore.MetaInt(rec.Metadata, "cantidad"),
		Descripcion: recordstore.MetaString(rec.Metadata, "descripcion"),
	}
}

// itemKey derives the record key for a part number.
func itemKey(numeroParte string) string {
	return "item_" + numeroParte
}

// Service provides inventory item CRUD over the record store.
type Service struct {
	store      *recordstore.Store
	collection string
}

// NewService creates an inventory service operating on the given
// collection.
func NewService(store *recordstore.Store, collection string) *Service {
	return &Service{store: store, collection: collection}
}

// Add inserts a new item. Part numbers are unique; a duplicate fails with
// ErrDuplicatePart and leaves the existing item unmodified.
func (s *Service) Add(ctx context.Context, item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	_, err := s.store.AddRecord(ctx, s.collection, itemKey(item.NumeroParte), item.Descripcion, item.metadata())
	if errors.Is(err, recordstore.ErrDuplicateKey) {
		return ErrDuplicatePart
	}
	return err
}

// Get returns the item with the given part number, or ErrNotFound.
func (s *Service) Get(ctx context.Context, numeroParte string) (*Item, error) {
	rec, err := s.store.GetRecordByKey(ctx, s.collection, itemKey(numeroParte))
	if err != nil {
		return nil, err
	}
	item := fromRecord(*rec)
	return &item, nil
}

// List returns all items sorted by part number. Numeric part numbers sort
// numerically; the store itself guarantees no order.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	records, err := s.store.GetAllRecords(ctx, s.collection, 0)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, fromRecord(rec))
	}
	sort.Slice(items, func(a, b int) bool {
		return lessPartNumber(items[a].NumeroParte, items[b].NumeroParte)
	})
	return items, nil
}

// Update replaces the stored item for its part number. A missing part
// fails with ErrNotFound.
func (s *Service) Update(ctx context.Context, item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateRecord(ctx, s.collection, itemKey(item.NumeroParte), item.metadata()); err != nil {
		return err
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "inventory item updated", "numero_parte", item.NumeroParte)
	return nil
}

// Delete removes the item with the given part number. Deleting a missing
// part is not an error.
func (s *Service) Delete(ctx context.Context, numeroParte string) error {
	if numeroParte == "" {
		return fmt.Errorf("%w: numero_parte is required", ErrValidation)
	}
	return s.store.DeleteRecord(ctx, s.collection, itemKey(numeroParte))
}

// lessPartNumber orders part numbers numerically when both parse as
// integers, lexically otherwise.
func lessPartNumber(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
