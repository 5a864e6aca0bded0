package vecdb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a named collection does not exist.
	ErrNotFound = errors.New("collection not found")

	// ErrUniqueViolation is returned when a collection name or an embedding
	// ID within a collection already exists.
	ErrUniqueViolation = errors.New("already exists")

	// ErrZeroVector is returned when a cosine collection receives a vector
	// with zero L2 norm, which cannot be normalized.
	ErrZeroVector = errors.New("zero vector cannot be normalized")

	// ErrClosed is returned when operating on a closed database.
	ErrClosed = errors.New("database is closed")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}
