package spatial

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/bimgeo/bounds"
	"github.com/hupe1980/bimgeo/model"
)

// Clash is a pair of objects whose boxes overlap by more than the scan
// tolerance. A.ID is always less than B.ID.
type Clash struct {
	A             model.Object `json:"a"`
	B             model.Object `json:"b"`
	OverlapVolume float64      `json:"overlap_volume"`
	Overlap       bounds.Box   `json:"overlap"`
}

// ProgressFunc receives the number of objects scanned so far and the total.
type ProgressFunc func(done, total int)

// DefaultProgressInterval is the minimum time between progress callbacks.
const DefaultProgressInterval = 250 * time.Millisecond

type clashOptions struct {
	progress ProgressFunc
	interval time.Duration
}

// ClashOption configures FindClashes.
type ClashOption func(*clashOptions)

// WithProgress registers fn for progress reports. Calls are throttled; the
// final call always reports (total, total) on success.
func WithProgress(fn ProgressFunc) ClashOption {
	return func(o *clashOptions) {
		o.progress = fn
	}
}

// WithProgressInterval changes the progress throttle. 0 reports after
// every object.
func WithProgressInterval(d time.Duration) ClashOption {
	return func(o *clashOptions) {
		o.interval = d
	}
}

// FindClashes reports every pair of objects whose overlap volume exceeds
// tolerance, ordered by (A.ID, B.ID). Touching boxes have zero overlap and
// are never reported. The scan holds the read lock throughout, so writers
// wait until it returns.
func (ix *Index) FindClashes(ctx context.Context, tolerance float64, optFns ...ClashOption) ([]Clash, error) {
	start := time.Now()
	clashes, scanned, err := ix.findClashes(ctx, tolerance, optFns)
	d := time.Since(start)
	ix.opts.metrics.RecordClashScan(scanned, len(clashes), d, err)
	if err != nil {
		return nil, err
	}
	ix.opts.logger.Debug("clash scan",
		slog.Int("objects", scanned),
		slog.Int("clashes", len(clashes)),
		slog.Float64("tolerance", tolerance),
		slog.Duration("duration", d),
	)
	return clashes, nil
}

func (ix *Index) findClashes(ctx context.Context, tolerance float64, optFns []ClashOption) ([]Clash, int, error) {
	if tolerance < 0 || math.IsNaN(tolerance) {
		return nil, 0, fmt.Errorf("%w: %g", ErrInvalidTolerance, tolerance)
	}
	opts := clashOptions{interval: DefaultProgressInterval}
	for _, fn := range optFns {
		fn(&opts)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	total := len(ix.ids)
	var every int
	if opts.interval <= 0 {
		every = 1
	}
	sometimes := rate.Sometimes{First: 1, Every: every, Interval: opts.interval}
	report := func(done int) {
		if opts.progress != nil {
			sometimes.Do(func() { opts.progress(done, total) })
		}
	}

	var (
		clashes []Clash
		done    int
		cands   []model.Object
	)
	for h := range ix.arena {
		if ix.tombstones.Contains(uint32(h)) {
			continue
		}
		if done%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, done, err
			}
		}
		a := ix.arena[h].obj
		cands = ix.intersectingLocked(a.Bounds, cands[:0])
		for _, b := range cands {
			// Each unordered pair is handled once, from its smaller id.
			if b.ID <= a.ID {
				continue
			}
			vol := a.Bounds.OverlapVolume(b.Bounds)
			if vol <= tolerance {
				continue
			}
			overlap, _ := a.Bounds.Overlap(b.Bounds)
			clashes = append(clashes, Clash{A: a.Clone(), B: b.Clone(), OverlapVolume: vol, Overlap: overlap})
		}
		done++
		report(done)
	}

	if opts.progress != nil {
		opts.progress(total, total)
	}

	slices.SortFunc(clashes, func(x, y Clash) int {
		if c := cmp.Compare(x.A.ID, y.A.ID); c != 0 {
			return c
		}
		return cmp.Compare(x.B.ID, y.B.ID)
	})
	return clashes, done, nil
}
