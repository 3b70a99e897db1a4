package store

import "errors"

var (
	// ErrNoMatchingRoot is returned when no registered root is a prefix of an
	// entry's reference, so the entry has nowhere to be stored.
	ErrNoMatchingRoot = errors.New("refstore: no registered root matches reference")
)
