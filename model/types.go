package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/bimgeo/bounds"
	"github.com/hupe1980/bimgeo/mesh"
)

// ErrMissingID is returned when an extractor record has no element id.
var ErrMissingID = errors.New("element id is empty")

// Metadata holds free-form element properties (storey, material, ...).
type Metadata map[string]any

// Clone returns a deep copy of the map. Nested maps and slices, as produced
// by decoding JSON, are copied; other values are copied by assignment.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Metadata:
		return t.Clone()
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	case []float64:
		return slices.Clone(t)
	case []int:
		return slices.Clone(t)
	default:
		return v
	}
}

// Object is a spatial record: a stable element id, its bounding box and
// lightweight descriptive data. Objects are treated as immutable once
// handed to an index.
type Object struct {
	ID          string     `json:"id"`
	ElementType string     `json:"element_type"`
	DisplayName string     `json:"display_name"`
	Bounds      bounds.Box `json:"bounds"`
	Metadata    Metadata   `json:"metadata,omitempty"`
}

// Clone returns a copy that shares no mutable state with o.
func (o Object) Clone() Object {
	o.Metadata = o.Metadata.Clone()
	return o
}

// String returns a short human-readable description.
func (o Object) String() string {
	return fmt.Sprintf("%s(%s %q)", o.ID, o.ElementType, o.DisplayName)
}

// Element is one record produced by the geometry extractor.
type Element struct {
	ElementID   string     `json:"element_id"`
	ElementType string     `json:"element_type"`
	Name        string     `json:"name"`
	Vertices    []float64  `json:"vertices"`
	Triangles   []int      `json:"triangles"`
	BoundingBox bounds.Box `json:"bounding_box"`
	Metadata    Metadata   `json:"metadata,omitempty"`
}

// Object derives the spatial record for the element. The bounding box is
// taken as delivered; see ResolveBounds for extractors that omit it.
func (e Element) Object() Object {
	return Object{
		ID:          e.ElementID,
		ElementType: e.ElementType,
		DisplayName: e.Name,
		Bounds:      e.ResolveBounds(),
		Metadata:    e.Metadata.Clone(),
	}
}

// Mesh builds and validates the element mesh.
func (e Element) Mesh() (*mesh.Mesh, error) {
	m, err := mesh.FromFlat(e.Vertices, e.Triangles)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", e.ElementID, err)
	}
	return m, nil
}

// ResolveBounds returns the delivered bounding box, or the box of the
// vertex buffer when the extractor left it zeroed.
func (e Element) ResolveBounds() bounds.Box {
	if e.BoundingBox != (bounds.Box{}) || len(e.Vertices) < 3 {
		return e.BoundingBox
	}
	b := bounds.Box{
		Min: bounds.Point{e.Vertices[0], e.Vertices[1], e.Vertices[2]},
		Max: bounds.Point{e.Vertices[0], e.Vertices[1], e.Vertices[2]},
	}
	for i := 3; i+2 < len(e.Vertices); i += 3 {
		b = b.ExtendPoint(bounds.Point{e.Vertices[i], e.Vertices[i+1], e.Vertices[i+2]})
	}
	return b
}

// Validate checks the id and the bounding box.
func (e Element) Validate() error {
	if e.ElementID == "" {
		return ErrMissingID
	}
	if err := e.ResolveBounds().Validate(); err != nil {
		return fmt.Errorf("element %s: %w", e.ElementID, err)
	}
	return nil
}
