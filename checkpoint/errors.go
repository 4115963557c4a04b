package checkpoint

import "errors"

var (
	// ErrEmptyKey is returned when a document key is empty.
	ErrEmptyKey = errors.New("document key required")
)
