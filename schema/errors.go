package schema

import "errors"

var (
	// ErrUnknownCategory is returned when an item's category has no registered payload type.
	ErrUnknownCategory = errors.New("refstore: unknown category")

	// ErrMissingAttribute is returned when an item lacks its category, id, or reference.
	ErrMissingAttribute = errors.New("refstore: missing attribute")
)
