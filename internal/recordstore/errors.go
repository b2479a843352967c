package recordstore

import "errors"

var (
	// ErrNotFound is returned when a record lookup misses.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when adding a record whose key already
	// exists in the collection.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrBackingStore is returned when the underlying store is unreachable
	// or returned a transport-level failure.
	ErrBackingStore = errors.New("backing store error")
)
