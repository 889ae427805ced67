package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOutOfOrder is returned when appending a sample whose timestamp
	// is not strictly greater than the token's latest stored sample.
	ErrOutOfOrder = errors.New("sample timestamp out of order")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable indicates the backing store is unreachable. It is
	// the only storage error that aborts a whole cycle; the scheduler
	// retries after a cooldown.
	ErrUnavailable = errors.New("store unavailable")
)
