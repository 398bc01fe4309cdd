package mesh

import (
	"errors"

	"github.com/deadsy/sdfx/render"
)

// ErrEmptyMesh is returned when exporting a mesh without triangles.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// SaveSTL writes the mesh as a binary STL file.
func (m *Mesh) SaveSTL(path string) error {
	tris := m.Triangles3()
	if len(tris) == 0 {
		return ErrEmptyMesh
	}
	return render.SaveSTL(path, tris)
}
