// Package bounds provides the axis-aligned bounding box used to index
// building elements.
//
// A Box is an immutable value of six floats. Degenerate boxes (zero extent
// on one or more axes) are legal and describe point-like or flat elements.
//
// # Intersection Semantics
//
// All predicates are inclusive: two boxes that touch at a face, edge or
// corner intersect, and a point on a face is contained.
//
//	a := bounds.MustNew(bounds.Point{0, 0, 0}, bounds.Point{1, 1, 1})
//	b := bounds.MustNew(bounds.Point{1, 0, 0}, bounds.Point{2, 1, 1})
//	a.Intersects(b)    // true
//	a.OverlapVolume(b) // 0
package bounds
