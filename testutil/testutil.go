package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hupe1980/bimgeo/bounds"
	"github.com/hupe1980/bimgeo/mesh"
	"github.com/hupe1980/bimgeo/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Boxes returns n boxes with min corners uniform in [0, extent) and side
// lengths uniform in [0, maxSize).
func (r *RNG) Boxes(n int, extent, maxSize float64) []bounds.Box {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]bounds.Box, n)
	for i := range out {
		var lo, hi bounds.Point
		for a := 0; a < 3; a++ {
			lo[a] = r.rand.Float64() * extent
			hi[a] = lo[a] + r.rand.Float64()*maxSize
		}
		out[i] = bounds.Box{Min: lo, Max: hi}
	}
	return out
}

// Objects wraps Boxes into spatial objects with ids "obj-0000".. .
func (r *RNG) Objects(n int, extent, maxSize float64) []model.Object {
	boxes := r.Boxes(n, extent, maxSize)
	out := make([]model.Object, n)
	for i, b := range boxes {
		out[i] = model.Object{
			ID:          fmt.Sprintf("obj-%04d", i),
			ElementType: "IfcBuildingElementProxy",
			DisplayName: fmt.Sprintf("Proxy %d", i),
			Bounds:      b,
		}
	}
	return out
}

// UVSphere returns a closed sphere with single-vertex poles. It has
// slices*(stacks-1)+2 vertices and 2*slices*(stacks-1) triangles.
func UVSphere(slices, stacks int, radius float64) *mesh.Mesh {
	m := &mesh.Mesh{}
	m.Vertices = append(m.Vertices, v3.Vec{Z: radius})
	for s := 1; s < stacks; s++ {
		theta := math.Pi * float64(s) / float64(stacks)
		for j := 0; j < slices; j++ {
			phi := 2 * math.Pi * float64(j) / float64(slices)
			m.Vertices = append(m.Vertices, v3.Vec{
				X: radius * math.Sin(theta) * math.Cos(phi),
				Y: radius * math.Sin(theta) * math.Sin(phi),
				Z: radius * math.Cos(theta),
			})
		}
	}
	bottom := len(m.Vertices)
	m.Vertices = append(m.Vertices, v3.Vec{Z: -radius})

	ring := func(s, j int) int { return 1 + (s-1)*slices + (j % slices) }

	for j := 0; j < slices; j++ {
		m.Triangles = append(m.Triangles, mesh.Triangle{0, ring(1, j), ring(1, j+1)})
	}
	for s := 1; s < stacks-1; s++ {
		for j := 0; j < slices; j++ {
			a, b := ring(s, j), ring(s, j+1)
			c, d := ring(s+1, j), ring(s+1, j+1)
			m.Triangles = append(m.Triangles, mesh.Triangle{a, c, b}, mesh.Triangle{b, c, d})
		}
	}
	for j := 0; j < slices; j++ {
		m.Triangles = append(m.Triangles, mesh.Triangle{bottom, ring(stacks-1, j+1), ring(stacks-1, j)})
	}
	return m
}

// Cube returns an axis-aligned cube with 8 vertices and 12 triangles.
func Cube(min bounds.Point, size float64) *mesh.Mesh {
	b := bounds.Box{Min: min, Max: bounds.Point{min[0] + size, min[1] + size, min[2] + size}}
	return BoxMesh(b)
}

// BoxMesh returns the 8-vertex, 12-triangle mesh of b.
func BoxMesh(b bounds.Box) *mesh.Mesh {
	lo, hi := b.Min, b.Max
	return &mesh.Mesh{
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
		Triangles: []mesh.Triangle{
			{0, 2, 1}, {0, 3, 2},
			{4, 5, 6}, {4, 6, 7},
			{0, 1, 5}, {0, 5, 4},
			{1, 2, 6}, {1, 6, 5},
			{2, 3, 7}, {2, 7, 6},
			{3, 0, 4}, {3, 4, 7},
		},
	}
}

// Grid returns a flat nx by ny grid of quads in the z=0 plane, each quad
// split into two triangles.
func Grid(nx, ny int, cell float64) *mesh.Mesh {
	m := &mesh.Mesh{}
	for y := 0; y <= ny; y++ {
		for x := 0; x <= nx; x++ {
			m.Vertices = append(m.Vertices, v3.Vec{X: float64(x) * cell, Y: float64(y) * cell})
		}
	}
	idx := func(x, y int) int { return y*(nx+1) + x }
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			a, b := idx(x, y), idx(x+1, y)
			c, d := idx(x, y+1), idx(x+1, y+1)
			m.Triangles = append(m.Triangles, mesh.Triangle{a, b, d}, mesh.Triangle{a, d, c})
		}
	}
	return m
}

// Element wraps a mesh into an extractor record.
func Element(id, elementType string, m *mesh.Mesh) model.Element {
	verts, tris := m.Flat()
	b, _ := m.Bounds()
	return model.Element{
		ElementID:   id,
		ElementType: elementType,
		Name:        id,
		Vertices:    verts,
		Triangles:   tris,
		BoundingBox: b,
	}
}
