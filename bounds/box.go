package bounds

import "math"

// Box is an axis-aligned bounding box. The zero value is the degenerate box
// at the origin.
type Box struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// New returns the box spanning min and max. It never swaps or clamps
// coordinates: min > max or a non-finite value on any axis is rejected
// with an *InvalidBoxError.
func New(min, max Point) (Box, error) {
	b := Box{Min: min, Max: max}
	if err := b.Validate(); err != nil {
		return Box{}, err
	}
	return b, nil
}

// MustNew is like New but panics on invalid input. Intended for tests and
// constants.
func MustNew(min, max Point) Box {
	b, err := New(min, max)
	if err != nil {
		panic(err)
	}
	return b
}

// FromPoints returns the smallest box containing all points.
// ok is false when pts is empty.
func FromPoints(pts ...Point) (b Box, ok bool) {
	if len(pts) == 0 {
		return Box{}, false
	}
	b = Box{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b = b.ExtendPoint(p)
	}
	return b, true
}

// Validate checks min <= max and finiteness on every axis.
func (b Box) Validate() error {
	for i := 0; i < 3; i++ {
		lo, hi := b.Min[i], b.Max[i]
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
			return &InvalidBoxError{Axis: i, Min: lo, Max: hi}
		}
	}
	return nil
}

// Center returns the midpoint of the box.
func (b Box) Center() Point {
	return Point{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Extents returns the per-axis side lengths.
func (b Box) Extents() [3]float64 {
	return [3]float64{
		b.Max[0] - b.Min[0],
		b.Max[1] - b.Min[1],
		b.Max[2] - b.Min[2],
	}
}

// MaxExtent returns the longest side length.
func (b Box) MaxExtent() float64 {
	e := b.Extents()
	return math.Max(e[0], math.Max(e[1], e[2]))
}

// Volume returns the product of the extents; 0 for degenerate boxes.
func (b Box) Volume() float64 {
	e := b.Extents()
	v := e[0] * e[1] * e[2]
	if v < 0 {
		return 0
	}
	return v
}

// IsDegenerate reports whether any extent is zero.
func (b Box) IsDegenerate() bool {
	e := b.Extents()
	return e[0] <= 0 || e[1] <= 0 || e[2] <= 0
}

// Intersects reports whether b and o overlap, touching included.
// The test is symmetric.
func (b Box) Intersects(o Box) bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] > o.Max[i] || b.Max[i] < o.Min[i] {
			return false
		}
	}
	return true
}

// Contains reports whether o lies entirely inside b, boundary included.
func (b Box) Contains(o Box) bool {
	for i := 0; i < 3; i++ {
		if o.Min[i] < b.Min[i] || o.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p lies inside b, boundary included.
func (b Box) ContainsPoint(p Point) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Overlap returns the intersection box. ok is false when the boxes are
// disjoint; touching boxes yield a degenerate overlap.
func (b Box) Overlap(o Box) (Box, bool) {
	if !b.Intersects(o) {
		return Box{}, false
	}
	var r Box
	for i := 0; i < 3; i++ {
		r.Min[i] = math.Max(b.Min[i], o.Min[i])
		r.Max[i] = math.Min(b.Max[i], o.Max[i])
	}
	return r, true
}

// OverlapVolume returns the volume shared by b and o. Each per-axis overlap
// is clamped at zero before the product is taken.
func (b Box) OverlapVolume(o Box) float64 {
	v := 1.0
	for i := 0; i < 3; i++ {
		d := math.Min(b.Max[i], o.Max[i]) - math.Max(b.Min[i], o.Min[i])
		if d <= 0 {
			return 0
		}
		v *= d
	}
	return v
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	var r Box
	for i := 0; i < 3; i++ {
		r.Min[i] = math.Min(b.Min[i], o.Min[i])
		r.Max[i] = math.Max(b.Max[i], o.Max[i])
	}
	return r
}

// ExtendPoint returns the smallest box containing b and p.
func (b Box) ExtendPoint(p Point) Box {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
	return b
}

// Expand grows the box by eps on every side. Negative eps shrinks it but
// never past the center.
func (b Box) Expand(eps float64) Box {
	c := b.Center()
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i]-eps, c[i])
		b.Max[i] = math.Max(b.Max[i]+eps, c[i])
	}
	return b
}

// DistanceToPoint returns the Euclidean distance from p to the closest
// point of b; 0 when p is inside.
func (b Box) DistanceToPoint(p Point) float64 {
	var sum float64
	for i := 0; i < 3; i++ {
		var d float64
		switch {
		case p[i] < b.Min[i]:
			d = b.Min[i] - p[i]
		case p[i] > b.Max[i]:
			d = p[i] - b.Max[i]
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

// PointBox returns the box of radius eps around p.
func PointBox(p Point, eps float64) Box {
	return Box{Min: p, Max: p}.Expand(eps)
}
