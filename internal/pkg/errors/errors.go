package errors

import "errors"

var (
	// ErrNotFound covers unknown ids and models the caller may not see.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the caller lacks admin or ownership rights.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange marks a position or sector index outside current bounds.
	ErrOutOfRange = errors.New("out of range")
	// ErrDimensionMismatch marks a matrix or vector of the wrong shape.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrSingularMatrix is returned when I − A cannot be inverted.
	ErrSingularMatrix = errors.New("singular matrix")
	// ErrConflict marks duplicates and in-use deletions.
	ErrConflict = errors.New("conflict")
)
