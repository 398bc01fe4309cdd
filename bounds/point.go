package bounds

import "math"

// Point is a position in model space.
type Point [3]float64

// DistanceSquared returns the squared Euclidean distance between p and q.
func (p Point) DistanceSquared(q Point) float64 {
	dx := p[0] - q[0]
	dy := p[1] - q[1]
	dz := p[2] - q[2]
	return dx*dx + dy*dy + dz*dz
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Sqrt(p.DistanceSquared(q))
}

// IsFinite reports whether all coordinates are finite.
func (p Point) IsFinite() bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
