package spatial

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dhconnelly/rtreego"

	"github.com/hupe1980/bimgeo/bounds"
	"github.com/hupe1980/bimgeo/model"
)

const dims = 3

// entry is what the R-tree stores: a handle into the arena and the padded
// rectangle. rtreego deletes by pointer equality, so entries are always
// handled as *entry.
type entry struct {
	handle uint32
	rect   rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *entry) Bounds() rtreego.Rect { return e.rect }

type slot struct {
	obj   model.Object
	entry *entry
}

// Index is an R-tree over element bounding boxes.
//
// Index is safe for concurrent use: writers (Insert, Remove, Compact) are
// serialized and exclude readers; queries run in parallel.
type Index struct {
	mu         sync.RWMutex
	opts       options
	tree       *rtreego.Rtree
	arena      []slot
	ids        map[string]uint32
	tombstones *roaring.Bitmap
}

// New returns an empty index.
func New(optFns ...Option) (*Index, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Index{
		opts:       opts,
		tree:       rtreego.NewTree(dims, opts.minChildren, opts.maxChildren),
		ids:        make(map[string]uint32),
		tombstones: roaring.New(),
	}, nil
}

func (ix *Index) rect(b bounds.Box) rtreego.Rect {
	p := b.Expand(ix.opts.epsilon)
	r, err := rtreego.NewRectFromPoints(p.Min[:], p.Max[:])
	if err != nil {
		// Only a dimension mismatch fails, and both points have three.
		panic(err)
	}
	return r
}

func validateObject(obj model.Object) error {
	if obj.ID == "" {
		return ErrEmptyID
	}
	if err := obj.Bounds.Validate(); err != nil {
		return fmt.Errorf("object %s: %w", obj.ID, err)
	}
	return nil
}

// Insert adds obj to the index. An id that is already indexed fails with a
// *DuplicateObjectError; the existing object is left untouched.
func (ix *Index) Insert(obj model.Object) error {
	start := time.Now()
	err := ix.insert(obj)
	ix.opts.metrics.RecordInsert(time.Since(start), err)
	return err
}

func (ix *Index) insert(obj model.Object) error {
	if err := validateObject(obj); err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	e, err := ix.addLocked(obj)
	if err != nil {
		return err
	}
	ix.tree.Insert(e)
	return nil
}

// addLocked appends obj to the arena without touching the tree.
func (ix *Index) addLocked(obj model.Object) (*entry, error) {
	if _, ok := ix.ids[obj.ID]; ok {
		return nil, &DuplicateObjectError{ID: obj.ID}
	}
	h := uint32(len(ix.arena))
	e := &entry{handle: h, rect: ix.rect(obj.Bounds)}
	ix.arena = append(ix.arena, slot{obj: obj.Clone(), entry: e})
	ix.ids[obj.ID] = h
	return e, nil
}

// BatchResult reports the outcome of InsertManyReport.
type BatchResult struct {
	// Inserted is the number of objects added.
	Inserted int
	// Failed maps object ids to their insert error. Objects without id are
	// keyed "#<position>"; repeated ids get a "#<position>" suffix.
	Failed map[string]error
	// Err is set when the context ended before every object was tried.
	Err error
}

// InsertMany inserts objs best-effort. Invalid and duplicate objects are
// logged and skipped. It returns the number of objects inserted.
func (ix *Index) InsertMany(ctx context.Context, objs []model.Object) int {
	res := ix.InsertManyReport(ctx, objs)
	for key, err := range res.Failed {
		ix.opts.logger.Warn("skipping object", slog.String("id", key), slog.Any("error", err))
	}
	if res.Err != nil {
		ix.opts.logger.Warn("batch insert interrupted", slog.Int("inserted", res.Inserted), slog.Any("error", res.Err))
	}
	return res.Inserted
}

// InsertManyReport is InsertMany with per-object errors. When the index is
// empty the tree is bulk-loaded.
func (ix *Index) InsertManyReport(ctx context.Context, objs []model.Object) BatchResult {
	start := time.Now()
	res := BatchResult{Failed: make(map[string]error)}

	fail := func(i int, id string, err error) {
		key := id
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}
		if _, dup := res.Failed[key]; dup {
			key = fmt.Sprintf("%s#%d", key, i)
		}
		res.Failed[key] = err
	}

	ix.mu.Lock()
	added := make([]rtreego.Spatial, 0, len(objs))
	for i, obj := range objs {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				res.Err = err
				break
			}
		}
		if err := validateObject(obj); err != nil {
			fail(i, obj.ID, err)
			continue
		}
		e, err := ix.addLocked(obj)
		if err != nil {
			fail(i, obj.ID, err)
			continue
		}
		added = append(added, e)
	}
	if ix.tree.Size() == 0 {
		ix.tree = rtreego.NewTree(dims, ix.opts.minChildren, ix.opts.maxChildren, added...)
	} else {
		for _, e := range added {
			ix.tree.Insert(e)
		}
	}
	ix.mu.Unlock()

	res.Inserted = len(added)
	ix.opts.metrics.RecordBatchInsert(len(objs), len(res.Failed), time.Since(start))
	ix.opts.logger.Debug("batch insert",
		slog.Int("count", len(objs)),
		slog.Int("inserted", res.Inserted),
		slog.Int("failed", len(res.Failed)),
		slog.Duration("duration", time.Since(start)),
	)
	return res
}

// QueryIntersecting returns every object whose box intersects box, touching
// included, ordered by id.
func (ix *Index) QueryIntersecting(box bounds.Box) []model.Object {
	start := time.Now()
	ix.mu.RLock()
	out := cloneAll(ix.intersectingLocked(box, nil))
	ix.mu.RUnlock()
	sortByID(out)
	ix.opts.metrics.RecordQuery("intersecting", len(out), time.Since(start))
	return out
}

// intersectingLocked appends the exact matches for box to dst.
func (ix *Index) intersectingLocked(box bounds.Box, dst []model.Object) []model.Object {
	for _, s := range ix.tree.SearchIntersect(ix.rect(box)) {
		obj := ix.arena[s.(*entry).handle].obj
		if obj.Bounds.Intersects(box) {
			dst = append(dst, obj)
		}
	}
	return dst
}

// ContainsPoint returns every object whose box contains p, boundary
// included, ordered by id.
func (ix *Index) ContainsPoint(p bounds.Point) []model.Object {
	start := time.Now()
	if !p.IsFinite() {
		return nil
	}
	ix.mu.RLock()
	var out []model.Object
	for _, s := range ix.tree.SearchIntersect(ix.rect(bounds.Box{Min: p, Max: p})) {
		obj := ix.arena[s.(*entry).handle].obj
		if obj.Bounds.ContainsPoint(p) {
			out = append(out, obj.Clone())
		}
	}
	ix.mu.RUnlock()
	sortByID(out)
	ix.opts.metrics.RecordQuery("contains_point", len(out), time.Since(start))
	return out
}

type candidate struct {
	handle uint32
	dist   float64
}

// Nearest returns the k objects whose box centers are closest to p,
// ordered by distance and then id. Fewer than k objects are returned when
// the index holds fewer.
//
// The tree orders by distance to the box, which is a lower bound of the
// distance to the center. The candidate set is doubled until the k-th
// center distance is strictly below the box distance of every object left
// out.
func (ix *Index) Nearest(p bounds.Point, k int) ([]model.Object, error) {
	start := time.Now()
	out, err := ix.nearest(p, k)
	ix.opts.metrics.RecordNearest(k, time.Since(start), err)
	return out, err
}

func (ix *Index) nearest(p bounds.Point, k int) ([]model.Object, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	if !p.IsFinite() {
		return nil, ErrInvalidPoint
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	size := ix.tree.Size()
	if size == 0 {
		return nil, nil
	}

	pt := rtreego.Point(p[:])
	m := min(k, size)
	var cands []candidate
	for {
		found := ix.tree.NearestNeighbors(m, pt)
		cands = cands[:0]
		var bound float64
		for _, s := range found {
			e := s.(*entry)
			obj := ix.arena[e.handle].obj
			bound = max(bound, obj.Bounds.Expand(ix.opts.epsilon).DistanceToPoint(p))
			cands = append(cands, candidate{handle: e.handle, dist: obj.Bounds.Center().Distance(p)})
		}
		slices.SortFunc(cands, func(a, b candidate) int {
			if c := cmp.Compare(a.dist, b.dist); c != 0 {
				return c
			}
			return cmp.Compare(ix.arena[a.handle].obj.ID, ix.arena[b.handle].obj.ID)
		})
		if len(found) < m || m >= size || cands[k-1].dist < bound {
			break
		}
		m = min(2*m, size)
	}

	n := min(k, len(cands))
	out := make([]model.Object, n)
	for i := range n {
		out[i] = ix.arena[cands[i].handle].obj.Clone()
	}
	return out, nil
}

// Get returns the object indexed under id.
func (ix *Index) Get(id string) (model.Object, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	h, ok := ix.ids[id]
	if !ok {
		return model.Object{}, false
	}
	return ix.arena[h].obj.Clone(), true
}

// Len returns the number of live objects.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// Bounds returns the union of all live boxes. ok is false for an empty
// index.
func (ix *Index) Bounds() (b bounds.Box, ok bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for h := range ix.arena {
		if ix.tombstones.Contains(uint32(h)) {
			continue
		}
		if !ok {
			b, ok = ix.arena[h].obj.Bounds, true
			continue
		}
		b = b.Union(ix.arena[h].obj.Bounds)
	}
	return b, ok
}

// Objects returns all live objects ordered by id.
func (ix *Index) Objects() []model.Object {
	ix.mu.RLock()
	out := cloneAll(ix.liveLocked())
	ix.mu.RUnlock()
	sortByID(out)
	return out
}

func (ix *Index) liveLocked() []model.Object {
	out := make([]model.Object, 0, len(ix.ids))
	for h := range ix.arena {
		if !ix.tombstones.Contains(uint32(h)) {
			out = append(out, ix.arena[h].obj)
		}
	}
	return out
}

// Remove deletes the object indexed under id and reports whether it
// existed. The arena is compacted automatically once the share of removed
// slots exceeds the compaction threshold.
func (ix *Index) Remove(id string) bool {
	start := time.Now()
	ix.mu.Lock()
	h, ok := ix.ids[id]
	if ok {
		ix.tree.Delete(ix.arena[h].entry)
		ix.tombstones.Add(h)
		delete(ix.ids, id)
		ix.arena[h].obj = model.Object{}
		ix.arena[h].entry = nil
		if t := ix.opts.compactionThreshold; t > 0 && ix.deadFractionLocked() > t {
			ix.compactLocked()
		}
	}
	ix.mu.Unlock()
	ix.opts.metrics.RecordRemove(ok, time.Since(start))
	return ok
}

func (ix *Index) deadFractionLocked() float64 {
	if len(ix.arena) == 0 {
		return 0
	}
	return float64(ix.tombstones.GetCardinality()) / float64(len(ix.arena))
}

// Compact drops removed slots from the arena and bulk-loads a fresh tree.
// It returns the number of slots reclaimed.
func (ix *Index) Compact() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.compactLocked()
}

func (ix *Index) compactLocked() int {
	dead := int(ix.tombstones.GetCardinality())
	if dead == 0 {
		return 0
	}
	live := ix.liveLocked()
	ix.arena = make([]slot, 0, len(live))
	ix.ids = make(map[string]uint32, len(live))
	ix.tombstones.Clear()
	entries := make([]rtreego.Spatial, 0, len(live))
	for _, obj := range live {
		h := uint32(len(ix.arena))
		e := &entry{handle: h, rect: ix.rect(obj.Bounds)}
		ix.arena = append(ix.arena, slot{obj: obj, entry: e})
		ix.ids[obj.ID] = h
		entries = append(entries, e)
	}
	ix.tree = rtreego.NewTree(dims, ix.opts.minChildren, ix.opts.maxChildren, entries...)
	ix.opts.logger.Debug("compacted index", slog.Int("reclaimed", dead), slog.Int("live", len(live)))
	return dead
}

// cloneAll replaces every object in objs with a clone. Objects leaving the
// index never share metadata with the arena.
func cloneAll(objs []model.Object) []model.Object {
	for i := range objs {
		objs[i] = objs[i].Clone()
	}
	return objs
}

func sortByID(objs []model.Object) {
	slices.SortFunc(objs, func(a, b model.Object) int { return cmp.Compare(a.ID, b.ID) })
}
