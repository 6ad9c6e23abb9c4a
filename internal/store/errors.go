package store

import "errors"

var (
	// ErrKeyNotFound is returned when a requested key or path segment is absent.
	ErrKeyNotFound = errors.New("key not found")
	// ErrNotIndexable is returned when a path descends into a scalar value.
	ErrNotIndexable = errors.New("value is not indexable")
	// ErrTargetMissing is returned when a path-set addresses a non-existent intermediate container.
	ErrTargetMissing = errors.New("target container does not exist")

	errEmptyPath = errors.New("path must contain at least one segment")
)
