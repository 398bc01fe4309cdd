package mesh

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hupe1980/bimgeo/bounds"
)

// Triangle holds three vertex indices in counter-clockwise order.
type Triangle [3]int

// IsDegenerate reports whether two corners share a vertex.
func (t Triangle) IsDegenerate() bool {
	return t[0] == t[1] || t[1] == t[2] || t[0] == t[2]
}

// Mesh is an indexed triangle mesh. Normals are optional; when present
// there is one per vertex.
type Mesh struct {
	Vertices  []v3.Vec   `json:"vertices"`
	Triangles []Triangle `json:"triangles"`
	Normals   []v3.Vec   `json:"normals,omitempty"`
}

// FromFlat builds a mesh from the extractor's flat buffers
// (3 floats per vertex, 3 indices per triangle) and validates it.
func FromFlat(vertices []float64, triangles []int) (*Mesh, error) {
	if len(vertices)%3 != 0 || len(triangles)%3 != 0 {
		return nil, ErrMalformedBuffer
	}

	m := &Mesh{
		Vertices:  make([]v3.Vec, len(vertices)/3),
		Triangles: make([]Triangle, len(triangles)/3),
	}
	for i := range m.Vertices {
		m.Vertices[i] = v3.Vec{X: vertices[3*i], Y: vertices[3*i+1], Z: vertices[3*i+2]}
	}
	for i := range m.Triangles {
		m.Triangles[i] = Triangle{triangles[3*i], triangles[3*i+1], triangles[3*i+2]}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Flat returns the mesh as flat vertex and index buffers.
func (m *Mesh) Flat() ([]float64, []int) {
	verts := make([]float64, 0, 3*len(m.Vertices))
	for _, v := range m.Vertices {
		verts = append(verts, v.X, v.Y, v.Z)
	}
	tris := make([]int, 0, 3*len(m.Triangles))
	for _, t := range m.Triangles {
		tris = append(tris, t[0], t[1], t[2])
	}
	return verts, tris
}

// Validate checks that every triangle index is in range and that normals,
// if any, match the vertex count.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, t := range m.Triangles {
		for c, idx := range t {
			if idx < 0 || idx >= n {
				return &IndexOutOfRangeError{Triangle: i, Corner: c, Index: idx, VertexCount: n}
			}
		}
	}
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return &NormalsMismatchError{Normals: len(m.Normals), Vertices: n}
	}
	return nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no renderable geometry.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Vertices) == 0 || len(m.Triangles) == 0
}

// Bounds returns the bounding box of all vertices.
func (m *Mesh) Bounds() (bounds.Box, bool) {
	if m == nil || len(m.Vertices) == 0 {
		return bounds.Box{}, false
	}
	b := bounds.Box{Min: ToPoint(m.Vertices[0]), Max: ToPoint(m.Vertices[0])}
	for _, v := range m.Vertices[1:] {
		b = b.ExtendPoint(ToPoint(v))
	}
	return b, true
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return &Mesh{}
	}
	c := &Mesh{
		Vertices:  append([]v3.Vec(nil), m.Vertices...),
		Triangles: append([]Triangle(nil), m.Triangles...),
	}
	if len(m.Normals) > 0 {
		c.Normals = append([]v3.Vec(nil), m.Normals...)
	}
	return c
}

// DegenerateTriangles counts triangles with repeated indices.
func (m *Mesh) DegenerateTriangles() int {
	n := 0
	for _, t := range m.Triangles {
		if t.IsDegenerate() {
			n++
		}
	}
	return n
}

// Compact drops degenerate triangles and vertices no triangle references.
// Surviving vertices keep their relative order.
func (m *Mesh) Compact() {
	tris := m.Triangles[:0]
	for _, t := range m.Triangles {
		if !t.IsDegenerate() {
			tris = append(tris, t)
		}
	}
	m.Triangles = tris

	used := make([]bool, len(m.Vertices))
	for _, t := range m.Triangles {
		used[t[0]], used[t[1]], used[t[2]] = true, true, true
	}

	remap := make([]int, len(m.Vertices))
	next := 0
	for i, u := range used {
		if !u {
			remap[i] = -1
			continue
		}
		remap[i] = next
		m.Vertices[next] = m.Vertices[i]
		if len(m.Normals) > 0 {
			m.Normals[next] = m.Normals[i]
		}
		next++
	}
	m.Vertices = m.Vertices[:next]
	if len(m.Normals) > 0 {
		m.Normals = m.Normals[:next]
	}
	for i, t := range m.Triangles {
		m.Triangles[i] = Triangle{remap[t[0]], remap[t[1]], remap[t[2]]}
	}
}

// Face returns triangle i as an sdfx triangle.
func (m *Mesh) Face(i int) *sdf.Triangle3 {
	t := m.Triangles[i]
	return &sdf.Triangle3{m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]}
}

// FaceArea returns the area of triangle i.
func (m *Mesh) FaceArea(i int) float64 {
	f := m.Face(i)
	return f[1].Sub(f[0]).Cross(f[2].Sub(f[0])).Length() / 2
}

// FaceNormal returns the unit normal of triangle i, or the zero vector for
// zero-area faces.
func (m *Mesh) FaceNormal(i int) v3.Vec {
	if m.FaceArea(i) == 0 {
		return v3.Vec{}
	}
	return m.Face(i).Normal()
}

// ComputeNormals replaces Normals with area-weighted vertex normals.
func (m *Mesh) ComputeNormals() {
	normals := make([]v3.Vec, len(m.Vertices))
	for i, t := range m.Triangles {
		if t.IsDegenerate() {
			continue
		}
		w := m.FaceArea(i)
		if w == 0 {
			continue
		}
		n := m.FaceNormal(i).MulScalar(w)
		for _, idx := range t {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i, n := range normals {
		normals[i] = normalize(n)
	}
	m.Normals = normals
}

// Triangles3 returns the mesh as an sdfx triangle soup, skipping
// degenerate faces.
func (m *Mesh) Triangles3() []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, len(m.Triangles))
	for i, t := range m.Triangles {
		if t.IsDegenerate() {
			continue
		}
		out = append(out, m.Face(i))
	}
	return out
}

// Hash returns a content hash over vertices and triangles. Normals are not
// part of the hash because no simplifier reads them for decisions.
func (m *Mesh) Hash() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 64)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(m.Vertices)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(m.Triangles)))
	_, _ = d.Write(buf)
	for _, v := range m.Vertices {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.X))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.Y))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.Z))
		_, _ = d.Write(buf)
	}
	for _, t := range m.Triangles {
		buf = buf[:0]
		for _, idx := range t {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(idx))
		}
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

// ToPoint converts an sdfx vector to a bounds point.
func ToPoint(v v3.Vec) bounds.Point {
	return bounds.Point{v.X, v.Y, v.Z}
}

// FromPoint converts a bounds point to an sdfx vector.
func FromPoint(p bounds.Point) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

func normalize(v v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return v.MulScalar(1 / l)
}
