package spatial_test

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bimgeo/bounds"
	"github.com/hupe1980/bimgeo/model"
	"github.com/hupe1980/bimgeo/spatial"
	"github.com/hupe1980/bimgeo/testutil"
)

func newIndex(t *testing.T, opts ...spatial.Option) *spatial.Index {
	t.Helper()
	ix, err := spatial.New(opts...)
	require.NoError(t, err)
	return ix
}

func object(id string, min, max bounds.Point) model.Object {
	return model.Object{ID: id, ElementType: "IfcWall", DisplayName: id, Bounds: bounds.MustNew(min, max)}
}

func unitCube(id string, x, y, z float64) model.Object {
	return object(id, bounds.Point{x, y, z}, bounds.Point{x + 1, y + 1, z + 1})
}

func ids(objs []model.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.ID
	}
	return out
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  spatial.Option
	}{
		{"min too large", spatial.WithNodeCapacity(30, 50)},
		{"min zero", spatial.WithNodeCapacity(0, 50)},
		{"epsilon zero", spatial.WithEpsilon(0)},
		{"negative threshold", spatial.WithCompactionThreshold(-0.1)},
		{"unknown compression", spatial.WithCompression(spatial.Compression(9))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := spatial.New(tt.opt)
			assert.ErrorIs(t, err, spatial.ErrTreeUnavailable)
		})
	}
}

func TestInsert_Validation(t *testing.T) {
	ix := newIndex(t)

	err := ix.Insert(model.Object{Bounds: bounds.MustNew(bounds.Point{}, bounds.Point{1, 1, 1})})
	assert.ErrorIs(t, err, spatial.ErrEmptyID)

	bad := model.Object{ID: "bad", Bounds: bounds.Box{Min: bounds.Point{1, 0, 0}, Max: bounds.Point{0, 1, 1}}}
	assert.ErrorIs(t, ix.Insert(bad), bounds.ErrInvalidBox)

	require.NoError(t, ix.Insert(unitCube("wall", 0, 0, 0)))
	err = ix.Insert(unitCube("wall", 5, 5, 5))
	require.ErrorIs(t, err, spatial.ErrDuplicateObject)
	var dup *spatial.DuplicateObjectError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "wall", dup.ID)

	got, ok := ix.Get("wall")
	require.True(t, ok)
	assert.Equal(t, bounds.Point{0, 0, 0}, got.Bounds.Min, "existing object must not be overwritten")
	assert.Equal(t, 1, ix.Len())
}

func TestInsert_DegenerateBox(t *testing.T) {
	ix := newIndex(t)
	flat := object("slab-face", bounds.Point{0, 0, 3}, bounds.Point{10, 10, 3})
	require.NoError(t, ix.Insert(flat))

	got := ix.QueryIntersecting(bounds.MustNew(bounds.Point{5, 5, 3}, bounds.Point{5, 5, 3}))
	assert.Equal(t, []string{"slab-face"}, ids(got))
}

func TestInsertManyReport(t *testing.T) {
	ix := newIndex(t)
	require.NoError(t, ix.Insert(unitCube("a", 0, 0, 0)))

	res := ix.InsertManyReport(context.Background(), []model.Object{
		unitCube("b", 1, 0, 0),
		unitCube("a", 2, 0, 0),
		{Bounds: bounds.MustNew(bounds.Point{}, bounds.Point{1, 1, 1})},
		unitCube("c", 3, 0, 0),
		unitCube("c", 4, 0, 0),
	})
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, res.Failed, 3)
	assert.ErrorIs(t, res.Failed["a"], spatial.ErrDuplicateObject)
	assert.ErrorIs(t, res.Failed["#2"], spatial.ErrEmptyID)
	assert.ErrorIs(t, res.Failed["c"], spatial.ErrDuplicateObject)
	assert.Equal(t, []string{"a", "b", "c"}, ids(ix.Objects()))
}

func TestInsertMany_BulkLoad(t *testing.T) {
	ix := newIndex(t, spatial.WithNodeCapacity(2, 4))
	objs := testutil.NewRNG(1).Objects(300, 100, 5)

	n := ix.InsertMany(context.Background(), objs)
	assert.Equal(t, 300, n)
	assert.Equal(t, 300, ix.Len())

	for _, o := range objs {
		assert.Contains(t, ids(ix.QueryIntersecting(o.Bounds)), o.ID)
	}
}

func TestInsertMany_Cancelled(t *testing.T) {
	ix := newIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := ix.InsertManyReport(ctx, testutil.NewRNG(1).Objects(10, 10, 1))
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Zero(t, res.Inserted)
	assert.Zero(t, ix.Len())
}

func TestQueryIntersecting_FaceTouching(t *testing.T) {
	ix := newIndex(t)
	require.NoError(t, ix.Insert(unitCube("a", 0, 0, 0)))
	require.NoError(t, ix.Insert(unitCube("b", 1, 0, 0)))
	require.NoError(t, ix.Insert(unitCube("c", 1, 1, 1)))
	require.NoError(t, ix.Insert(unitCube("far", 1.001, 0, 0)))

	a, _ := ix.Get("a")
	assert.Equal(t, []string{"a", "b", "c"}, ids(ix.QueryIntersecting(a.Bounds)),
		"face and corner contact count as intersection")
}

func TestQueryIntersecting_SymmetricAndReflexive(t *testing.T) {
	ix := newIndex(t)
	objs := testutil.NewRNG(7).Objects(200, 50, 6)
	for _, o := range objs {
		require.NoError(t, ix.Insert(o))
	}

	hits := make(map[string]map[string]bool, len(objs))
	for _, o := range objs {
		hits[o.ID] = make(map[string]bool)
		for _, h := range ix.QueryIntersecting(o.Bounds) {
			hits[o.ID][h.ID] = true
		}
	}

	for _, a := range objs {
		assert.True(t, hits[a.ID][a.ID], "object %s must intersect itself", a.ID)
		for _, b := range objs {
			want := a.Bounds.Intersects(b.Bounds)
			assert.Equal(t, want, hits[a.ID][b.ID], "%s vs %s", a.ID, b.ID)
			assert.Equal(t, hits[a.ID][b.ID], hits[b.ID][a.ID], "asymmetric %s vs %s", a.ID, b.ID)
		}
	}
}

func TestContainsPoint(t *testing.T) {
	ix := newIndex(t)
	require.NoError(t, ix.Insert(unitCube("a", 0, 0, 0)))
	require.NoError(t, ix.Insert(unitCube("b", 1, 0, 0)))
	require.NoError(t, ix.Insert(unitCube("c", 5, 5, 5)))

	assert.Equal(t, []string{"a"}, ids(ix.ContainsPoint(bounds.Point{0.5, 0.5, 0.5})))
	assert.Equal(t, []string{"a", "b"}, ids(ix.ContainsPoint(bounds.Point{1, 0.5, 0.5})))
	assert.Empty(t, ix.ContainsPoint(bounds.Point{3, 3, 3}))
}

func bruteNearest(objs []model.Object, p bounds.Point, k int) []string {
	sorted := slices.Clone(objs)
	slices.SortFunc(sorted, func(a, b model.Object) int {
		if c := cmp.Compare(a.Bounds.Center().Distance(p), b.Bounds.Center().Distance(p)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return ids(sorted[:min(k, len(sorted))])
}

func TestNearest_MatchesBruteForce(t *testing.T) {
	rng := testutil.NewRNG(42)
	// Large boxes make box distance a poor proxy for center distance.
	objs := rng.Objects(400, 100, 30)
	ix := newIndex(t, spatial.WithNodeCapacity(4, 8))
	require.Equal(t, len(objs), ix.InsertMany(context.Background(), objs))

	for q := 0; q < 25; q++ {
		p := bounds.Point{rng.Float64() * 120, rng.Float64() * 120, rng.Float64() * 120}
		for _, k := range []int{1, 3, 10, 50} {
			got, err := ix.Nearest(p, k)
			require.NoError(t, err)
			assert.Equal(t, bruteNearest(objs, p, k), ids(got), "p=%v k=%d", p, k)
		}
	}
}

func TestNearest_EdgeCases(t *testing.T) {
	ix := newIndex(t)

	got, err := ix.Nearest(bounds.Point{}, 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ix.Nearest(bounds.Point{}, 0)
	assert.ErrorIs(t, err, spatial.ErrInvalidK)

	require.NoError(t, ix.Insert(unitCube("b", 0, 0, 0)))
	require.NoError(t, ix.Insert(unitCube("a", 0, 0, 0)))

	got, err = ix.Nearest(bounds.Point{9, 9, 9}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got), "ties break by id")
}

func TestBounds(t *testing.T) {
	ix := newIndex(t)
	_, ok := ix.Bounds()
	assert.False(t, ok)

	require.NoError(t, ix.Insert(unitCube("a", 0, 0, 0)))
	require.NoError(t, ix.Insert(unitCube("b", 4, -2, 1)))
	b, ok := ix.Bounds()
	require.True(t, ok)
	assert.Equal(t, bounds.MustNew(bounds.Point{0, -2, 0}, bounds.Point{5, 1, 2}), b)
}

func TestRemove(t *testing.T) {
	ix := newIndex(t, spatial.WithCompactionThreshold(0))
	for i := 0; i < 10; i++ {
		require.NoError(t, ix.Insert(unitCube(fmt.Sprintf("o%d", i), float64(i), 0, 0)))
	}

	assert.True(t, ix.Remove("o3"))
	assert.True(t, ix.Remove("o4"))
	assert.False(t, ix.Remove("o4"))
	assert.False(t, ix.Remove("missing"))

	assert.Equal(t, 8, ix.Len())
	_, ok := ix.Get("o3")
	assert.False(t, ok)

	q := bounds.MustNew(bounds.Point{2.5, 0, 0}, bounds.Point{5, 1, 1})
	assert.Equal(t, []string{"o2", "o5"}, ids(ix.QueryIntersecting(q)))

	assert.Equal(t, 2, ix.Compact())
	assert.Equal(t, 0, ix.Compact())
	assert.Equal(t, []string{"o2", "o5"}, ids(ix.QueryIntersecting(q)))

	// Removed ids can be inserted again.
	require.NoError(t, ix.Insert(unitCube("o3", 3, 0, 0)))
	assert.Equal(t, []string{"o2", "o3", "o5"}, ids(ix.QueryIntersecting(q)))
}

func TestRemove_AutoCompaction(t *testing.T) {
	ix := newIndex(t, spatial.WithCompactionThreshold(0.25))
	for i := 0; i < 8; i++ {
		require.NoError(t, ix.Insert(unitCube(fmt.Sprintf("o%d", i), float64(2*i), 0, 0)))
	}

	require.True(t, ix.Remove("o0"))
	require.True(t, ix.Remove("o1"))
	require.True(t, ix.Remove("o2"))

	// 3 of 8 slots exceeded the threshold and triggered a rebuild.
	assert.Equal(t, 0, ix.Compact())
	assert.Equal(t, 5, ix.Len())

	got, err := ix.Nearest(bounds.Point{0, 0, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"o3"}, ids(got))
}

func TestMetadataIsolation(t *testing.T) {
	ix := newIndex(t)
	fire := map[string]any{"rating": "EI60"}
	w1 := unitCube("w1", 0, 0, 0)
	w1.Metadata = model.Metadata{"fire": fire, "storey": "L1"}
	require.NoError(t, ix.Insert(w1))

	fire["rating"] = "changed"
	w1.Metadata["storey"] = "changed"

	reads := map[string]func() []model.Object{
		"QueryIntersecting": func() []model.Object {
			return ix.QueryIntersecting(bounds.MustNew(bounds.Point{0, 0, 0}, bounds.Point{1, 1, 1}))
		},
		"ContainsPoint": func() []model.Object { return ix.ContainsPoint(bounds.Point{0.5, 0.5, 0.5}) },
		"Nearest": func() []model.Object {
			out, err := ix.Nearest(bounds.Point{0, 0, 0}, 1)
			require.NoError(t, err)
			return out
		},
		"Objects": ix.Objects,
		"Get": func() []model.Object {
			o, ok := ix.Get("w1")
			require.True(t, ok)
			return []model.Object{o}
		},
	}
	want := model.Metadata{"fire": map[string]any{"rating": "EI60"}, "storey": "L1"}
	for name, read := range reads {
		res := read()
		require.Len(t, res, 1, name)
		res[0].Metadata["storey"] = "injected by " + name
		res[0].Metadata["fire"].(map[string]any)["rating"] = "injected by " + name
	}

	got, ok := ix.Get("w1")
	require.True(t, ok)
	assert.Equal(t, want, got.Metadata)
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	ix := newIndex(t)
	objs := testutil.NewRNG(3).Objects(500, 100, 4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, o := range objs {
			assert.NoError(t, ix.Insert(o))
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = ix.QueryIntersecting(objs[i].Bounds)
				_, err := ix.Nearest(objs[i].Bounds.Center(), 3)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, len(objs), ix.Len())
}

func TestMetrics(t *testing.T) {
	mc := &spatial.BasicMetricsCollector{}
	ix := newIndex(t, spatial.WithMetricsCollector(mc))

	require.NoError(t, ix.Insert(unitCube("a", 0, 0, 0)))
	require.Error(t, ix.Insert(unitCube("a", 0, 0, 0)))
	ix.InsertMany(context.Background(), []model.Object{unitCube("b", 0.5, 0, 0)})
	ix.QueryIntersecting(bounds.MustNew(bounds.Point{}, bounds.Point{1, 1, 1}))
	_, _ = ix.Nearest(bounds.Point{}, 0)
	ix.Remove("zzz")
	_, err := ix.FindClashes(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, int64(2), mc.InsertCount.Load())
	assert.Equal(t, int64(1), mc.InsertErrors.Load())
	assert.Equal(t, int64(1), mc.BatchInsertItems.Load())
	assert.Equal(t, int64(1), mc.QueryCount.Load())
	assert.Equal(t, int64(1), mc.NearestErrors.Load())
	assert.Equal(t, int64(1), mc.RemoveMisses.Load())
	assert.Equal(t, int64(1), mc.ClashesFound.Load())
}
