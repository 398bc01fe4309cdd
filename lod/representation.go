package lod

import (
	"sort"

	"github.com/google/uuid"

	"github.com/hupe1980/bimgeo/mesh"
)

// Representation is one tier of an element.
type Representation struct {
	Tier Tier
	// Mesh is shared with the generator cache and must not be modified.
	Mesh *mesh.Mesh
	// SimplificationRatio is the achieved output/input triangle count.
	// It is 0 for empty input and can exceed 1 when a bounding-box proxy
	// has more triangles than a tiny input.
	SimplificationRatio float64
	Method              string
	// Fallback is set when the tier's algorithm could not be applied and
	// the bounding box was used instead.
	Fallback bool
	// TargetRatio is the ratio requested from the simplifier.
	TargetRatio float64
}

// Summary is the per-tier record exposed to downstream consumers.
type Summary struct {
	VertexCount         int     `json:"vertex_count"`
	TriangleCount       int     `json:"triangle_count"`
	SimplificationRatio float64 `json:"simplification_ratio"`
	Method              string  `json:"method"`
}

// Summary returns the counts and method of r.
func (r Representation) Summary() Summary {
	return Summary{
		VertexCount:         r.Mesh.VertexCount(),
		TriangleCount:       r.Mesh.TriangleCount(),
		SimplificationRatio: r.SimplificationRatio,
		Method:              r.Method,
	}
}

// IsEmpty reports whether the representation has no geometry.
func (r Representation) IsEmpty() bool {
	return r.Mesh.IsEmpty()
}

// ElementLOD groups the representations generated for one element.
type ElementLOD struct {
	ElementID string
	// RunID identifies the generation run that produced the element.
	RunID                 uuid.UUID
	OriginalVertexCount   int
	OriginalTriangleCount int
	Representations       map[Tier]Representation
}

// Get returns the representation for tier.
func (e *ElementLOD) Get(tier Tier) (Representation, bool) {
	r, ok := e.Representations[tier]
	return r, ok
}

// Tiers returns the generated tiers in ascending order.
func (e *ElementLOD) Tiers() []Tier {
	out := make([]Tier, 0, len(e.Representations))
	for t := range e.Representations {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Summaries returns Summary for every tier.
func (e *ElementLOD) Summaries() map[Tier]Summary {
	out := make(map[Tier]Summary, len(e.Representations))
	for t, r := range e.Representations {
		out[t] = r.Summary()
	}
	return out
}
