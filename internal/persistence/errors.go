package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated,
	// e.g. a second snapshot for the same user and week.
	ErrDuplicate = errors.New("persistence: duplicate record")
)
