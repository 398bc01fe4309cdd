package spatial

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyID is returned when inserting an object without id.
	ErrEmptyID = errors.New("object id is empty")

	// ErrDuplicateObject is matched by every *DuplicateObjectError.
	ErrDuplicateObject = errors.New("duplicate object id")

	// ErrInvalidK is returned by Nearest for k <= 0.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidPoint is returned for query points with NaN or infinite
	// coordinates.
	ErrInvalidPoint = errors.New("query point must be finite")

	// ErrInvalidTolerance is returned by FindClashes for a negative or NaN
	// tolerance.
	ErrInvalidTolerance = errors.New("clash tolerance must be a non-negative number")

	// ErrTreeUnavailable is returned by New when the tree cannot be built
	// with the requested parameters.
	ErrTreeUnavailable = errors.New("spatial tree unavailable")

	// ErrInvalidSnapshot is returned when a snapshot cannot be decoded.
	ErrInvalidSnapshot = errors.New("invalid index snapshot")

	// ErrNoSnapshot is returned by LoadCurrent when nothing was published.
	ErrNoSnapshot = errors.New("no published snapshot")
)

// DuplicateObjectError is returned when an id is already indexed. The index
// never overwrites an existing object.
type DuplicateObjectError struct {
	ID string
}

func (e *DuplicateObjectError) Error() string {
	return fmt.Sprintf("object %q already indexed", e.ID)
}

// Is reports whether target is ErrDuplicateObject.
func (e *DuplicateObjectError) Is(target error) bool { return target == ErrDuplicateObject }
