package bounds

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitCube(offset Point) Box {
	return MustNew(offset, Point{offset[0] + 1, offset[1] + 1, offset[2] + 1})
}

func TestNew_RejectsInvertedAxis(t *testing.T) {
	tests := []struct {
		name string
		min  Point
		max  Point
		axis int
	}{
		{"x inverted", Point{2, 0, 0}, Point{1, 1, 1}, 0},
		{"y inverted", Point{0, 2, 0}, Point{1, 1, 1}, 1},
		{"z inverted", Point{0, 0, 2}, Point{1, 1, 1}, 2},
		{"nan", Point{math.NaN(), 0, 0}, Point{1, 1, 1}, 0},
		{"inf", Point{0, 0, 0}, Point{1, 1, math.Inf(1)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.min, tt.max)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidBox))

			var ibe *InvalidBoxError
			require.ErrorAs(t, err, &ibe)
			assert.Equal(t, tt.axis, ibe.Axis)
		})
	}
}

func TestNew_AllowsDegenerate(t *testing.T) {
	b, err := New(Point{1, 2, 3}, Point{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, b.IsDegenerate())
	assert.Equal(t, 0.0, b.Volume())
	assert.Equal(t, Point{1, 2, 3}, b.Center())
}

func TestBox_Derived(t *testing.T) {
	b := MustNew(Point{0, 0, 0}, Point{2, 4, 6})
	assert.Equal(t, Point{1, 2, 3}, b.Center())
	assert.Equal(t, [3]float64{2, 4, 6}, b.Extents())
	assert.Equal(t, 48.0, b.Volume())
	assert.Equal(t, 6.0, b.MaxExtent())
	assert.False(t, b.IsDegenerate())
}

func TestBox_IntersectsSymmetric(t *testing.T) {
	boxes := []Box{
		unitCube(Point{0, 0, 0}),
		unitCube(Point{0.5, 0, 0}),
		unitCube(Point{1, 0, 0}),
		unitCube(Point{3, 3, 3}),
		MustNew(Point{0.5, 0.5, 0.5}, Point{0.5, 0.5, 0.5}),
		MustNew(Point{-10, -10, -10}, Point{10, 10, 10}),
	}
	for i, a := range boxes {
		for j, b := range boxes {
			assert.Equal(t, a.Intersects(b), b.Intersects(a), "pair %d,%d", i, j)
		}
	}
}

func TestBox_FaceTouchingIntersects(t *testing.T) {
	a := MustNew(Point{0, 0, 0}, Point{1, 1, 1})
	b := MustNew(Point{1, 0, 0}, Point{2, 1, 1})

	assert.True(t, a.Intersects(b))
	assert.True(t, b.Intersects(a))
	assert.Equal(t, 0.0, a.OverlapVolume(b))

	overlap, ok := a.Overlap(b)
	require.True(t, ok)
	assert.True(t, overlap.IsDegenerate())
}

func TestBox_Disjoint(t *testing.T) {
	a := unitCube(Point{0, 0, 0})
	b := unitCube(Point{1.0001, 0, 0})
	assert.False(t, a.Intersects(b))
	_, ok := a.Overlap(b)
	assert.False(t, ok)
	assert.Equal(t, 0.0, a.OverlapVolume(b))
}

func TestBox_OverlapVolumeHalfCube(t *testing.T) {
	a := unitCube(Point{0, 0, 0})
	b := unitCube(Point{0.5, 0, 0})
	assert.InDelta(t, 0.5, a.OverlapVolume(b), 1e-12)
	assert.InDelta(t, 0.5, b.OverlapVolume(a), 1e-12)

	overlap, ok := a.Overlap(b)
	require.True(t, ok)
	assert.InDelta(t, 0.5, overlap.Volume(), 1e-12)
}

func TestBox_OverlapBoundedByVolumes(t *testing.T) {
	a := MustNew(Point{0, 0, 0}, Point{4, 4, 4})
	b := MustNew(Point{1, 1, 1}, Point{2, 2, 2})
	v := a.OverlapVolume(b)
	assert.Equal(t, b.Volume(), v)
	assert.LessOrEqual(t, v, math.Min(a.Volume(), b.Volume()))
	assert.True(t, a.Contains(b))
	assert.False(t, b.Contains(a))
}

func TestBox_ContainsPoint(t *testing.T) {
	b := unitCube(Point{0, 0, 0})
	assert.True(t, b.ContainsPoint(Point{0.5, 0.5, 0.5}))
	assert.True(t, b.ContainsPoint(Point{1, 1, 1}), "boundary is inclusive")
	assert.True(t, b.ContainsPoint(Point{0, 0.2, 1}))
	assert.False(t, b.ContainsPoint(Point{1.01, 0.5, 0.5}))
}

func TestBox_UnionAndExpand(t *testing.T) {
	a := unitCube(Point{0, 0, 0})
	b := unitCube(Point{2, 2, 2})
	u := a.Union(b)
	assert.Equal(t, Point{0, 0, 0}, u.Min)
	assert.Equal(t, Point{3, 3, 3}, u.Max)

	e := a.Expand(0.5)
	assert.Equal(t, Point{-0.5, -0.5, -0.5}, e.Min)
	assert.Equal(t, Point{1.5, 1.5, 1.5}, e.Max)

	shrunk := a.Expand(-2)
	assert.Equal(t, a.Center(), shrunk.Min)
	assert.Equal(t, a.Center(), shrunk.Max)
}

func TestBox_DistanceToPoint(t *testing.T) {
	b := unitCube(Point{0, 0, 0})
	assert.Equal(t, 0.0, b.DistanceToPoint(Point{0.5, 0.5, 0.5}))
	assert.InDelta(t, 1.0, b.DistanceToPoint(Point{2, 0.5, 0.5}), 1e-12)
	assert.InDelta(t, math.Sqrt(3), b.DistanceToPoint(Point{2, 2, 2}), 1e-12)
}

func TestFromPoints(t *testing.T) {
	_, ok := FromPoints()
	assert.False(t, ok)

	b, ok := FromPoints(Point{1, -1, 0}, Point{-2, 3, 5}, Point{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, Point{-2, -1, 0}, b.Min)
	assert.Equal(t, Point{1, 3, 5}, b.Max)
	require.NoError(t, b.Validate())
}
