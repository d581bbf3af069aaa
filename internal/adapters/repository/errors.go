package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrMedium marks failures of the durable medium itself. Fatal to the
	// attempted operation; the only store error class worth retrying.
	ErrMedium = errors.New("storage medium unavailable")

	// ErrCorruptData marks a stored snapshot that exists but cannot be
	// parsed. Surfaced to the caller rather than silently treated as an
	// empty collection, so data loss is visible.
	ErrCorruptData = errors.New("corrupt collection snapshot")
)
