package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStaleState is returned when a compare-and-set update observes a
	// status different from the expected one. The caller should re-read
	// and decide whether to retry or abandon.
	ErrStaleState = errors.New("stale state: status changed since read")

	// ErrDuplicate is returned when a uniqueness constraint is violated,
	// e.g. a driver joining a queue they are already in.
	ErrDuplicate = errors.New("entity already exists")
)
