package mesh

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMesh is the sentinel matched by every mesh validation error.
	ErrInvalidMesh = errors.New("invalid mesh")

	// ErrMalformedBuffer is returned when a flat buffer length is not a
	// multiple of three.
	ErrMalformedBuffer = fmt.Errorf("%w: buffer length is not a multiple of 3", ErrInvalidMesh)
)

// IndexOutOfRangeError reports a triangle corner that references a vertex
// outside the vertex slice.
type IndexOutOfRangeError struct {
	Triangle    int
	Corner      int
	Index       int
	VertexCount int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("invalid mesh: triangle %d corner %d references vertex %d, mesh has %d vertices",
		e.Triangle, e.Corner, e.Index, e.VertexCount)
}

// Is makes errors.Is(err, ErrInvalidMesh) succeed.
func (e *IndexOutOfRangeError) Is(target error) bool { return target == ErrInvalidMesh }

// NormalsMismatchError reports a normals slice whose length differs from
// the vertex count.
type NormalsMismatchError struct {
	Normals  int
	Vertices int
}

func (e *NormalsMismatchError) Error() string {
	return fmt.Sprintf("invalid mesh: %d normals for %d vertices", e.Normals, e.Vertices)
}

// Is makes errors.Is(err, ErrInvalidMesh) succeed.
func (e *NormalsMismatchError) Is(target error) bool { return target == ErrInvalidMesh }
