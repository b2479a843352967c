package recordstore

// Record is a key-addressed document plus its metadata payload.
// Key is unique within a collection. Document is a short stored label;
// the metadata map carries the record's actual fields.
type Record struct {
	Key      string
	Document string
	Metadata map[string]any
}

// Clone returns a deep copy of the record so callers can mutate the
// result without affecting store-internal state.
func (r Record) Clone() Record {
	meta := make(map[string]any, len(r.Metadata))
	for k, v := range r.Metadata {
		meta[k] = v
	}
	return Record{Key: r.Key, Document: r.Document, Metadata: meta}
}
