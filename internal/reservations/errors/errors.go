package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	// ErrLockHeld means another request currently holds the room's
	// advisory lock.
	ErrLockHeld = errors.New("room lock is held by another request")
)
