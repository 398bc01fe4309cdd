//go:build nohull

package simplify

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hupe1980/bimgeo/mesh"
)

// HullAvailable reports whether ConvexHull computes real hulls. Build
// without -tags=nohull to enable.
const HullAvailable = false

func buildHull(_ []v3.Vec, _ v3.Vec, _ float64) (*mesh.Mesh, error) {
	return nil, errHullUnavailable
}
