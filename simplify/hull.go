//go:build !nohull

package simplify

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/golang/geo/r3"
	quickhull "github.com/markus-wa/quickhull-go/v2"

	"github.com/hupe1980/bimgeo/mesh"
)

// HullAvailable reports whether ConvexHull computes real hulls. It is false
// when built with -tags=nohull.
const HullAvailable = true

// buildHull hulls pts in a frame centered on origin so that quickhull's
// scale-relative tolerance stays small for georeferenced coordinates. eps is
// relative to the extent of the centered cloud. Faces are wound outward.
func buildHull(pts []v3.Vec, origin v3.Vec, eps float64) (out *mesh.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", errHullDegenerate, r)
		}
	}()

	cloud := make([]r3.Vector, len(pts))
	for i, p := range pts {
		d := p.Sub(origin)
		cloud[i] = r3.Vector{X: d.X, Y: d.Y, Z: d.Z}
	}

	hull := new(quickhull.QuickHull).ConvexHull(cloud, false, false, eps)
	if len(hull.Vertices) < 4 || len(hull.Indices) == 0 || len(hull.Indices)%3 != 0 {
		return nil, errHullDegenerate
	}

	local := make([]v3.Vec, len(hull.Vertices))
	var centroid v3.Vec
	for i, v := range hull.Vertices {
		local[i] = v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
		centroid = centroid.Add(local[i])
	}
	centroid = centroid.DivScalar(float64(len(local)))

	out = &mesh.Mesh{
		Vertices:  make([]v3.Vec, len(local)),
		Triangles: make([]mesh.Triangle, 0, len(hull.Indices)/3),
	}
	for i, v := range local {
		out.Vertices[i] = v.Add(origin)
	}
	for i := 0; i+2 < len(hull.Indices); i += 3 {
		t := mesh.Triangle{hull.Indices[i], hull.Indices[i+1], hull.Indices[i+2]}
		if t[0] < 0 || t[1] < 0 || t[2] < 0 || t[0] >= len(local) || t[1] >= len(local) || t[2] >= len(local) {
			return nil, errHullDegenerate
		}
		a, b, c := local[t[0]], local[t[1]], local[t[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Dot(a.Sub(centroid)) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		out.Triangles = append(out.Triangles, t)
	}
	return out, nil
}
