package mesh

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bimgeo/bounds"
)

// tetra returns a closed tetrahedron with outward winding.
func tetra() *Mesh {
	return &Mesh{
		Vertices: []v3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
		},
		Triangles: []Triangle{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	}
}

func TestFromFlat(t *testing.T) {
	tests := []struct {
		name      string
		vertices  []float64
		triangles []int
		wantErr   error
	}{
		{"valid", []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 2}, nil},
		{"empty", nil, nil, nil},
		{"ragged vertices", []float64{0, 0, 0, 1}, nil, ErrMalformedBuffer},
		{"ragged triangles", []float64{0, 0, 0}, []int{0, 0}, ErrMalformedBuffer},
		{"out of range", []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 3}, ErrInvalidMesh},
		{"negative index", []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, -1, 2}, ErrInvalidMesh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromFlat(tt.vertices, tt.triangles)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.vertices)/3, m.VertexCount())
			assert.Equal(t, len(tt.triangles)/3, m.TriangleCount())
		})
	}
}

func TestFlatRoundTrip(t *testing.T) {
	m := tetra()
	verts, tris := m.Flat()
	back, err := FromFlat(verts, tris)
	require.NoError(t, err)
	assert.Equal(t, m.Vertices, back.Vertices)
	assert.Equal(t, m.Triangles, back.Triangles)
}

func TestValidate_NormalsMismatch(t *testing.T) {
	m := tetra()
	m.Normals = []v3.Vec{{X: 1}}
	var nme *NormalsMismatchError
	require.ErrorAs(t, m.Validate(), &nme)
	assert.Equal(t, 4, nme.Vertices)
}

func TestIsEmpty(t *testing.T) {
	var nilMesh *Mesh
	assert.True(t, nilMesh.IsEmpty())
	assert.True(t, (&Mesh{}).IsEmpty())
	assert.True(t, (&Mesh{Vertices: []v3.Vec{{}}}).IsEmpty(), "vertices without triangles render nothing")
	assert.False(t, tetra().IsEmpty())
	assert.Equal(t, 0, nilMesh.TriangleCount())
}

func TestBounds(t *testing.T) {
	b, ok := tetra().Bounds()
	require.True(t, ok)
	assert.Equal(t, bounds.Point{0, 0, 0}, b.Min)
	assert.Equal(t, bounds.Point{1, 1, 1}, b.Max)

	_, ok = (&Mesh{}).Bounds()
	assert.False(t, ok)
}

func TestCompact(t *testing.T) {
	m := &Mesh{
		Vertices: []v3.Vec{
			{X: 0}, {X: 1}, {X: 2}, {X: 3}, {Y: 1},
		},
		Normals:   []v3.Vec{{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1}, {Z: 1}},
		Triangles: []Triangle{{0, 1, 4}, {2, 2, 3}, {1, 3, 4}},
	}
	assert.Equal(t, 1, m.DegenerateTriangles())

	m.Compact()
	require.NoError(t, m.Validate())
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, 4, m.VertexCount(), "vertex 2 was only used by the degenerate triangle")
	assert.Len(t, m.Normals, 4)
	assert.Zero(t, m.DegenerateTriangles())
	assert.Equal(t, Triangle{0, 1, 3}, m.Triangles[0])
	assert.Equal(t, Triangle{1, 2, 3}, m.Triangles[1])
}

func TestComputeNormals(t *testing.T) {
	m := tetra()
	m.ComputeNormals()
	require.Len(t, m.Normals, 4)

	// The apex normal points away from the centroid.
	centroid := v3.Vec{X: 0.25, Y: 0.25, Z: 0.25}
	for i, n := range m.Normals {
		assert.InDelta(t, 1, n.Length(), 1e-9)
		out := m.Vertices[i].Sub(centroid)
		assert.Greater(t, n.Dot(out), 0.0, "vertex %d", i)
	}
}

func TestFaceNormal_Degenerate(t *testing.T) {
	m := &Mesh{
		Vertices:  []v3.Vec{{X: 0}, {X: 1}, {X: 2}},
		Triangles: []Triangle{{0, 1, 2}},
	}
	assert.Equal(t, v3.Vec{}, m.FaceNormal(0))
	assert.Equal(t, 0.0, m.FaceArea(0))
}

func TestHash(t *testing.T) {
	a := tetra()
	b := tetra()
	assert.Equal(t, a.Hash(), b.Hash())

	b.Vertices[3].Z = 2
	assert.NotEqual(t, a.Hash(), b.Hash())

	c := tetra()
	c.ComputeNormals()
	assert.Equal(t, a.Hash(), c.Hash(), "normals are excluded")
}

func TestClone(t *testing.T) {
	a := tetra()
	c := a.Clone()
	c.Vertices[0].X = 42
	c.Triangles[0][0] = 3
	assert.Equal(t, 0.0, a.Vertices[0].X)
	assert.Equal(t, 0, a.Triangles[0][0])
}

func TestSaveSTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetra.stl")
	require.NoError(t, tetra().SaveSTL(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.ErrorIs(t, (&Mesh{}).SaveSTL(path), ErrEmptyMesh)
}
