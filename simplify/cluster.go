package simplify

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hupe1980/bimgeo/mesh"
)

const defaultClusterIterations = 16

// VertexClustering decimates a mesh by snapping vertices to a uniform grid.
//
// All vertices falling into one cell collapse to their centroid, triangle
// indices are remapped through the cell table, and triangles whose corners
// collapse into fewer than three cells are discarded. The initial cell size
// gives roughly target^(1/3) cells along the longest axis; it is then refined
// by bisection toward the target triangle count. The closest count seen wins,
// ties going to the smaller mesh.
type VertexClustering struct {
	// MaxIterations bounds the bisection. Zero selects 16.
	MaxIterations int
}

// Name implements Simplifier.
func (VertexClustering) Name() string { return MethodVertexClustering }

// Simplify implements Simplifier.
func (c VertexClustering) Simplify(m *mesh.Mesh, ratio float64) (Result, error) {
	if err := ValidateRatio(ratio); err != nil {
		return Result{}, err
	}
	if m.IsEmpty() {
		return emptyResult(c.Name()), nil
	}

	in := m.TriangleCount()
	target := TargetTriangles(in, ratio)
	if target >= in {
		out := m.Clone()
		out.Compact()
		return Result{Mesh: out, Method: c.Name()}, nil
	}

	box, _ := m.Bounds()
	extent := box.MaxExtent()
	if extent == 0 {
		// Every vertex shares one cell.
		return emptyResult(c.Name()), nil
	}

	g := grid{m: m, origin: mesh.FromPoint(box.Min), target: target}

	cs := extent / math.Cbrt(float64(target))
	n := g.eval(cs)

	var lo, hi float64
	if n > target {
		lo, hi = cs, cs*2
		for g.eval(hi) > target && hi < extent*4 {
			lo, hi = hi, hi*2
		}
	} else {
		lo, hi = cs/2, cs
		for g.eval(lo) < target && lo > extent*1e-6 {
			lo, hi = lo/2, lo
		}
	}

	iters := c.MaxIterations
	if iters <= 0 {
		iters = defaultClusterIterations
	}
	for i := 0; i < iters && g.bestCount != target; i++ {
		mid := math.Sqrt(lo * hi)
		if g.eval(mid) > target {
			lo = mid
		} else {
			hi = mid
		}
	}

	return Result{Mesh: cluster(m, g.origin, g.bestSize), Method: c.Name()}, nil
}

// grid tracks the best cell size seen while searching.
type grid struct {
	m      *mesh.Mesh
	origin v3.Vec
	target int

	evaluated bool
	bestSize  float64
	bestCount int
}

func (g *grid) eval(cs float64) int {
	n := countClustered(g.m, g.origin, cs)
	if !g.evaluated || better(n, g.bestCount, g.target) {
		g.evaluated = true
		g.bestSize, g.bestCount = cs, n
	}
	return n
}

func better(n, best, target int) bool {
	dn, db := abs(n-target), abs(best-target)
	return dn < db || (dn == db && n < best)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

type cellKey [3]int64

func keyOf(v, origin v3.Vec, cs float64) cellKey {
	return cellKey{
		int64(math.Floor((v.X - origin.X) / cs)),
		int64(math.Floor((v.Y - origin.Y) / cs)),
		int64(math.Floor((v.Z - origin.Z) / cs)),
	}
}

// assign maps every vertex to a cell index. Cells are numbered in order of
// first appearance.
func assign(m *mesh.Mesh, origin v3.Vec, cs float64) (remap []int, cells int) {
	index := make(map[cellKey]int, len(m.Vertices)/2)
	remap = make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		k := keyOf(v, origin, cs)
		idx, ok := index[k]
		if !ok {
			idx = len(index)
			index[k] = idx
		}
		remap[i] = idx
	}
	return remap, len(index)
}

func countClustered(m *mesh.Mesh, origin v3.Vec, cs float64) int {
	remap, _ := assign(m, origin, cs)
	n := 0
	for _, t := range m.Triangles {
		if !(mesh.Triangle{remap[t[0]], remap[t[1]], remap[t[2]]}).IsDegenerate() {
			n++
		}
	}
	return n
}

func cluster(m *mesh.Mesh, origin v3.Vec, cs float64) *mesh.Mesh {
	remap, cells := assign(m, origin, cs)
	hasNormals := len(m.Normals) == len(m.Vertices)

	sums := make([]v3.Vec, cells)
	counts := make([]int, cells)
	var normals []v3.Vec
	if hasNormals {
		normals = make([]v3.Vec, cells)
	}
	for i, v := range m.Vertices {
		c := remap[i]
		sums[c] = sums[c].Add(v)
		counts[c]++
		if hasNormals {
			normals[c] = normals[c].Add(m.Normals[i])
		}
	}

	out := &mesh.Mesh{Vertices: make([]v3.Vec, cells)}
	for i := range sums {
		out.Vertices[i] = sums[i].MulScalar(1 / float64(counts[i]))
	}
	if hasNormals {
		for i, n := range normals {
			normals[i] = unit(n)
		}
		out.Normals = normals
	}

	out.Triangles = make([]mesh.Triangle, 0, len(m.Triangles))
	for _, t := range m.Triangles {
		r := mesh.Triangle{remap[t[0]], remap[t[1]], remap[t[2]]}
		if !r.IsDegenerate() {
			out.Triangles = append(out.Triangles, r)
		}
	}
	out.Compact()
	return out
}

func unit(v v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return v.MulScalar(1 / l)
}
