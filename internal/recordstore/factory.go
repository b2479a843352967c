package recordstore

import (
	"fmt"
	"path/filepath"
)

// Open creates a DocumentStore for the configured backend.
//
// Supported backends:
//
//	"qdrant" - Qdrant instance at qdrantURL (default)
//	"sqlite" - SQLite database at dataDir/plantstock.db
//	"memory" - in-memory (ephemeral, for testing)
func Open(backend, qdrantURL, dataDir string) (DocumentStore, error) {
	switch backend {
	case "qdrant", "":
		return NewQdrantStore(qdrantURL)
	case "sqlite":
		return NewSQLiteStore(filepath.Join(dataDir, "plantstock.db"))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: qdrant, sqlite, memory)", backend)
	}
}
