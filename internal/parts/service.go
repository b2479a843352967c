package parts

import (
	"context"
	"errors"
	"fmt"

	"plantstock/internal/contextutil"
	"plantstock/internal/recordstore"
)

var (
	// ErrNotFound is returned when a part lookup misses.
	ErrNotFound = recordstore.ErrNotFound
	// ErrValidation is returned on malformed input.
	ErrValidation = errors.New("validation error")
)

// Part is the explicit schema for a record in the partes collection:
// an engineering part-number definition. JSON tags match the legacy wire
// format.
type Part struct {
	Cliente            string  `json:"cliente"`
	NumeroParte        string  `json:"numero_parte"`
	DescripcionIngles  string  `json:"descripcion_ingles"`
	DescripcionEspanol string  `json:"descripcion_espanol"`
	UnidadMedida       string  `json:"unidad_medida"`
	Peso               float64 `json:"peso"`
	UnidadPeso         string  `json:"unidad_peso"`
}

// Validate checks the part's shape.
func (p Part) Validate() error {
	if p.Cliente == "" {
		return fmt.Errorf("%w: cliente is required", ErrValidation)
	}
	if p.NumeroParte == "" {
		return fmt.Errorf("%w: numero_parte is required", ErrValidation)
	}
	return nil
}

// Document returns the stored label for the part record.
func (p Part) Document() string {
	return fmt.Sprintf("%s: %s / %s", p.NumeroParte, p.DescripcionIngles, p.DescripcionEspanol)
}

func (p Part) metadata() map[string]any {
	return map[string]any{
		"cliente":             p.Cliente,
		"numero_parte":        p.NumeroParte,
		"descripcion_ingles":  p.DescripcionIngles,
		"descripcion_espanol": p.DescripcionEspanol,
		"unidad_medida":       p.UnidadMedida,
		"peso":                p.Peso,
		"unidad_peso":         p.UnidadPeso,
	}
}

func fromRecord(rec recordstore.Record) Part {
	return Part{
		Cliente:            recordstore.MetaString(rec.Metadata, "cliente"),
		NumeroParte:        recordstore.MetaString(rec.Metadata, "numero_parte"),
		DescripcionIngles:  recordstore.MetaString(rec.Metadata, "descripcion_ingles"),
		DescripcionEspanol: recordstore.MetaString(rec.Metadata, "descripcion_espanol"),
		UnidadMedida:       recordstore.MetaString(rec.Metadata, "unidad_medida"),
		Peso:               recordstore.MetaFloat(rec.Metadata, "peso"),
		UnidadPeso:         recordstore.MetaString(rec.Metadata, "unidad_peso"),
	}
}

// Service provides part-number CRUD over the record store. Part records
// carry generated keys; the part number lives in metadata and is looked
// up by filter.
type Service struct {
	store      *recordstore.Store
	collection string
}

// NewService creates a parts service operating on the given collection.
func NewService(store *recordstore.Store, collection string) *Service {
	return &Service{store: store, collection: collection}
}

// Add inserts a new part definition under a generated key. Duplicate part
// numbers are rejected.
func (s *Service) Add(ctx context.Context, part Part) error {
	if err := part.Validate(); err != nil {
		return err
	}
	existing, err := s.store.FindRecords(ctx, s.collection, "numero_parte", part.NumeroParte)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: numero_parte %q already exists", ErrValidation, part.NumeroParte)
	}
	key, err := s.store.AddRecord(ctx, s.collection, "", part.Document(), part.metadata())
	if err != nil {
		return err
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "part added", "numero_parte", part.NumeroParte, "key", key)
	return nil
}

// List returns all part definitions. No ordering is guaranteed.
func (s *Service) List(ctx context.Context) ([]Part, error) {
	records, err := s.store.GetAllRecords(ctx, s.collection, 0)
	if err != nil {
		return nil, err
	}
	parts := make([]Part, 0, len(records))
	for _, rec := range records {
		parts = append(parts, fromRecord(rec))
	}
	return parts, nil
}

// FindByNumeroParte returns the part with the given part number, or
// ErrNotFound.
func (s *Service) FindByNumeroParte(ctx context.Context, numeroParte string) (*Part, error) {
	records, err := s.store.FindRecords(ctx, s.collection, "numero_parte", numeroParte)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	part := fromRecord(records[0])
	return &part, nil
}

// Update replaces the stored definition for the part number. A missing
// part fails with ErrNotFound.
func (s *Service) Update(ctx context.Context, part Part) error {
	if err := part.Validate(); err != nil {
		return err
	}
	records, err := s.store.FindRecords(ctx, s.collection, "numero_parte", part.NumeroParte)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrNotFound
	}
	if err := s.store.UpdateRecord(ctx, s.collection, records[0].Key, part.metadata()); err != nil {
		return err
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "part updated", "numero_parte", part.NumeroParte)
	return nil
}

// Delete removes all records carrying the part number. Zero matches is
// not an error.
func (s *Service) Delete(ctx context.Context, numeroParte string) error {
	if numeroParte == "" {
		return fmt.Errorf("%w: numero_parte is required", ErrValidation)
	}
	return s.store.DeleteRecordsByFilter(ctx, s.collection, "numero_parte", numeroParte)
}
