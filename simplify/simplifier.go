package simplify

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/bimgeo/mesh"
)

// Method names recorded on every Result.
const (
	MethodBoundingBox      = "bounding_box"
	MethodConvexHull       = "convex_hull"
	MethodVertexClustering = "vertex_clustering"
	MethodPassthrough      = "passthrough"
)

// ErrInvalidRatio is matched by every *InvalidRatioError.
var ErrInvalidRatio = errors.New("invalid simplification ratio")

// InvalidRatioError is returned when a target ratio lies outside (0, 1].
type InvalidRatioError struct {
	Ratio float64
}

func (e *InvalidRatioError) Error() string {
	return fmt.Sprintf("simplification ratio %g outside (0, 1]", e.Ratio)
}

// Is reports whether target is ErrInvalidRatio.
func (e *InvalidRatioError) Is(target error) bool { return target == ErrInvalidRatio }

// Result is the output of a single simplification.
type Result struct {
	// Mesh is the simplified mesh. Never nil; empty for empty input.
	Mesh *mesh.Mesh
	// Method names the algorithm that produced Mesh. When Fallback is set
	// this is the fallback algorithm, not the requested one.
	Method string
	// Fallback is true when the requested algorithm could not be applied
	// and a simpler one was used instead.
	Fallback bool
}

// Simplifier reduces a mesh toward ratio * input triangle count.
// Implementations must be deterministic and safe for concurrent use.
type Simplifier interface {
	Name() string
	Simplify(m *mesh.Mesh, ratio float64) (Result, error)
}

// ValidateRatio returns an *InvalidRatioError unless 0 < ratio <= 1.
func ValidateRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio <= 0 || ratio > 1 {
		return &InvalidRatioError{Ratio: ratio}
	}
	return nil
}

// TargetTriangles returns the triangle budget for ratio, at least 1.
func TargetTriangles(triangles int, ratio float64) int {
	t := int(math.Round(ratio * float64(triangles)))
	if t < 1 {
		return 1
	}
	return t
}

func emptyResult(method string) Result {
	return Result{Mesh: &mesh.Mesh{}, Method: method}
}
