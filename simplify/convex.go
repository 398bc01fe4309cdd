package simplify

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hupe1980/bimgeo/mesh"
)

var (
	errHullUnavailable = errors.New("convex hull support not compiled in: build without -tags=nohull")
	errHullDegenerate  = errors.New("convex hull is degenerate")
)

// ConvexHull replaces a mesh with the convex hull of its vertices. When the
// hull cannot be built (fewer than four non-coplanar points, library compiled
// out, or degenerate output) the bounding box is returned instead with
// Result.Fallback set.
type ConvexHull struct {
	// Epsilon is the coplanarity tolerance relative to the mesh extent.
	// Zero selects 1e-9. The hull is built around the box center, so the
	// tolerance does not grow with the distance from the model origin.
	Epsilon float64
}

// Name implements Simplifier.
func (ConvexHull) Name() string { return MethodConvexHull }

// Simplify implements Simplifier. The ratio is validated but otherwise
// ignored: the hull size is determined by the input.
func (h ConvexHull) Simplify(m *mesh.Mesh, ratio float64) (Result, error) {
	if err := ValidateRatio(ratio); err != nil {
		return Result{}, err
	}
	if m.IsEmpty() {
		return emptyResult(h.Name()), nil
	}

	box, _ := m.Bounds()
	eps := h.epsilon() * math.Max(box.MaxExtent(), 1)

	if !HullAvailable || !hasVolume(m.Vertices, eps) {
		return Result{Mesh: boxMesh(box), Method: MethodBoundingBox, Fallback: true}, nil
	}

	out, err := buildHull(m.Vertices, mesh.FromPoint(box.Center()), h.epsilon())
	if err == nil {
		if err = out.Validate(); err == nil {
			out.Compact()
			if len(out.Triangles) < 4 {
				err = errHullDegenerate
			}
		}
	}
	if err != nil {
		return Result{Mesh: boxMesh(box), Method: MethodBoundingBox, Fallback: true}, nil
	}
	return Result{Mesh: out, Method: h.Name()}, nil
}

func (h ConvexHull) epsilon() float64 {
	if h.Epsilon > 0 {
		return h.Epsilon
	}
	return 1e-9
}

// hasVolume reports whether pts contains four points that are not coplanar
// within eps.
func hasVolume(pts []v3.Vec, eps float64) bool {
	if len(pts) < 4 {
		return false
	}
	p0 := pts[0]

	// Farthest point from p0.
	i1, best := -1, eps
	for i, p := range pts {
		if d := p.Sub(p0).Length(); d > best {
			i1, best = i, d
		}
	}
	if i1 < 0 {
		return false
	}
	dir := pts[i1].Sub(p0)

	// Point farthest from the line p0-p1.
	i2, best := -1, eps*dir.Length()
	for i, p := range pts {
		if a := dir.Cross(p.Sub(p0)).Length(); a > best {
			i2, best = i, a
		}
	}
	if i2 < 0 {
		return false
	}
	n := dir.Cross(pts[i2].Sub(p0))
	nl := n.Length()

	for _, p := range pts {
		if math.Abs(n.Dot(p.Sub(p0)))/nl > eps {
			return true
		}
	}
	return false
}
