package simplify

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hupe1980/bimgeo/bounds"
	"github.com/hupe1980/bimgeo/mesh"
)

// boxTriangles are outward-wound for the vertex order used by boxMesh.
var boxTriangles = []mesh.Triangle{
	{0, 2, 1}, {0, 3, 2}, // -z
	{4, 5, 6}, {4, 6, 7}, // +z
	{0, 1, 5}, {0, 5, 4}, // -y
	{1, 2, 6}, {1, 6, 5}, // +x
	{2, 3, 7}, {2, 7, 6}, // +y
	{3, 0, 4}, {3, 4, 7}, // -x
}

// BoundingBox replaces a mesh with its axis-aligned bounding box. The output
// always has 8 vertices and 12 triangles, regardless of the ratio.
type BoundingBox struct{}

// Name implements Simplifier.
func (BoundingBox) Name() string { return MethodBoundingBox }

// Simplify implements Simplifier.
func (b BoundingBox) Simplify(m *mesh.Mesh, ratio float64) (Result, error) {
	if err := ValidateRatio(ratio); err != nil {
		return Result{}, err
	}
	if m.IsEmpty() {
		return emptyResult(b.Name()), nil
	}
	box, _ := m.Bounds()
	return Result{Mesh: boxMesh(box), Method: b.Name()}, nil
}

func boxMesh(b bounds.Box) *mesh.Mesh {
	lo, hi := b.Min, b.Max
	out := &mesh.Mesh{
		Vertices: []v3.Vec{
			{X: lo[0], Y: lo[1], Z: lo[2]},
			{X: hi[0], Y: lo[1], Z: lo[2]},
			{X: hi[0], Y: hi[1], Z: lo[2]},
			{X: lo[0], Y: hi[1], Z: lo[2]},
			{X: lo[0], Y: lo[1], Z: hi[2]},
			{X: hi[0], Y: lo[1], Z: hi[2]},
			{X: hi[0], Y: hi[1], Z: hi[2]},
			{X: lo[0], Y: hi[1], Z: hi[2]},
		},
		Triangles: make([]mesh.Triangle, len(boxTriangles)),
	}
	copy(out.Triangles, boxTriangles)
	return out
}
