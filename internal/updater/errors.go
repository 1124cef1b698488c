package updater

import "errors"

var (
	// ErrInvalidConfig is returned at construction when a required store
	// reference is missing.
	ErrInvalidConfig = errors.New("invalid configuration: nil store reference")

	// ErrUnauthorized is returned when the caller lacks the required
	// capability. The batch has no effect.
	ErrUnauthorized = errors.New("unauthorized: AUTH_FAILED")

	// ErrLengthMismatch is returned when parallel input sequences differ
	// in length. The batch has no effect.
	ErrLengthMismatch = errors.New("argument length mismatch")
)
