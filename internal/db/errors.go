package db

import "errors"

var (
	// ErrNotFound is returned when a referenced document or job does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when processing is requested for a document that
	// is already in flight or processing.
	ErrConflict = errors.New("document already queued for processing")
)
