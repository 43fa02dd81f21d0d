package models

import "errors"

// Storage-level outcomes that services translate into client errors.
var (
	// ErrNotFound means no row matched the lookup (including ownership).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate record")
)
