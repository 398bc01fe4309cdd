package bimgeo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/bimgeo/blobstore"
	"github.com/hupe1980/bimgeo/lod"
	"github.com/hupe1980/bimgeo/model"
	"github.com/hupe1980/bimgeo/spatial"
)

// Pipeline builds a spatial index and LOD representations from extractor
// elements. The two halves run concurrently and share only the element id.
type Pipeline struct {
	opts options
	gen  *lod.Generator
}

// New creates a Pipeline.
func New(optFns ...Option) (*Pipeline, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.scanClashes && (opts.clashTolerance < 0 || math.IsNaN(opts.clashTolerance)) {
		return nil, fmt.Errorf("%w: %g", spatial.ErrInvalidTolerance, opts.clashTolerance)
	}
	for _, t := range opts.tiers {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %d", lod.ErrUnknownTier, t)
		}
	}

	lodOpts := []lod.Option{lod.WithLogger(opts.logger.Logger)}
	if opts.metrics != nil {
		lodOpts = append(lodOpts, lod.WithMetricsCollector(opts.metrics))
	}
	gen, err := lod.New(append(lodOpts, opts.lodOptions...)...)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{opts: opts, gen: gen}
	if _, err := p.newIndex(); err != nil {
		return nil, err
	}
	return p, nil
}

// Generator returns the LOD generator used by Build.
func (p *Pipeline) Generator() *lod.Generator { return p.gen }

func (p *Pipeline) newIndex() (*spatial.Index, error) {
	idxOpts := []spatial.Option{spatial.WithLogger(p.opts.logger.Logger)}
	if p.opts.metrics != nil {
		idxOpts = append(idxOpts, spatial.WithMetricsCollector(p.opts.metrics))
	}
	return spatial.New(append(idxOpts, p.opts.indexOptions...)...)
}

// Report summarizes a Build run. Failure maps hold *ElementError values
// that match ErrInvalidElement for malformed input.
type Report struct {
	RunID       uuid.UUID
	Elements    int
	Indexed     int
	IndexFailed map[string]error
	Generated   int
	LODFailed   map[string]error
	// Clashes is only populated when the pipeline was configured with
	// WithClashTolerance.
	Clashes  []spatial.Clash
	Duration time.Duration
}

// Result is the output of Build.
type Result struct {
	Index  *spatial.Index
	LODs   *lod.BatchReport
	Report Report

	logger *Logger
}

// Build indexes the elements' bounding boxes and generates their LOD tiers
// concurrently. Bad elements are skipped and reported; Build itself only
// fails when ctx ends or the index cannot be created.
func (p *Pipeline) Build(ctx context.Context, elements []model.Element) (*Result, error) {
	start := time.Now()

	ix, err := p.newIndex()
	if err != nil {
		return nil, err
	}

	objs := make([]model.Object, len(elements))
	for i := range elements {
		objs[i] = elements[i].Object()
	}

	var (
		indexed spatial.BatchResult
		lods    *lod.BatchReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		indexed = ix.InsertManyReport(gctx, objs)
		return indexed.Err
	})
	g.Go(func() error {
		lods = p.gen.GenerateBatch(gctx, elements, p.opts.tiers)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger := p.opts.logger.WithRunID(lods.RunID.String())
	logger.LogBatchInsert(ctx, len(objs), len(indexed.Failed))
	logger.LogBatchGenerate(ctx, lods.Total(), len(lods.Failed), lods.Duration)

	res := &Result{
		Index:  ix,
		LODs:   lods,
		logger: logger,
		Report: Report{
			RunID:       lods.RunID,
			Elements:    len(elements),
			Indexed:     indexed.Inserted,
			IndexFailed: translateFailures(indexed.Failed),
			Generated:   lods.Succeeded,
			LODFailed:   translateFailures(lods.Failed),
		},
	}

	if p.opts.scanClashes {
		scanStart := time.Now()
		clashes, err := ix.FindClashes(ctx, p.opts.clashTolerance)
		logger.LogClashScan(ctx, ix.Len(), len(clashes), time.Since(scanStart), err)
		if err != nil {
			return nil, translateError(err)
		}
		res.Report.Clashes = clashes
	}

	res.Report.Duration = time.Since(start)
	return res, nil
}

// Add indexes and generates a single element into an existing result.
// Unlike Build it fails on the first error, and nothing is added when the
// element is invalid. Add must not run concurrently with other Add calls
// on the same result.
func (p *Pipeline) Add(ctx context.Context, res *Result, el model.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := el.Validate(); err != nil {
		return &ElementError{ElementID: el.ElementID, cause: translateError(err)}
	}
	if _, ok := res.Index.Get(el.ElementID); ok {
		err := &spatial.DuplicateObjectError{ID: el.ElementID}
		return &ElementError{ElementID: el.ElementID, cause: translateError(err)}
	}

	elod, err := p.gen.GenerateElement(el, p.opts.tiers)
	if err != nil {
		res.logger.LogGenerate(ctx, el.ElementID, 0, err)
		return &ElementError{ElementID: el.ElementID, cause: translateError(err)}
	}
	res.logger.LogGenerate(ctx, el.ElementID, len(elod.Representations), nil)

	err = res.Index.Insert(el.Object())
	res.logger.LogInsert(ctx, el.ElementID, err)
	if err != nil {
		return &ElementError{ElementID: el.ElementID, cause: translateError(err)}
	}

	res.LODs.Elements[el.ElementID] = elod
	res.LODs.Succeeded++
	res.Report.Elements++
	res.Report.Indexed++
	res.Report.Generated++
	return nil
}

// ElementView joins the index record and the LOD output of one element.
// LOD is nil when generation failed for the element.
type ElementView struct {
	Object model.Object
	LOD    *lod.ElementLOD
}

// Element looks up id in both outputs. It fails with ErrNotFound when the
// element was not indexed.
func (r *Result) Element(id string) (ElementView, error) {
	obj, ok := r.Index.Get(id)
	if !ok {
		return ElementView{}, &ElementError{ElementID: id, cause: ErrNotFound}
	}
	return ElementView{Object: obj, LOD: r.LODs.Elements[id]}, nil
}

// Clashes runs a clash scan over the built index.
func (r *Result) Clashes(ctx context.Context, tolerance float64, opts ...spatial.ClashOption) ([]spatial.Clash, error) {
	clashes, err := r.Index.FindClashes(ctx, tolerance, opts...)
	return clashes, translateError(err)
}

// Publish stores an index snapshot in store and moves CURRENT to it.
func (r *Result) Publish(ctx context.Context, store blobstore.Store) (string, error) {
	name, err := r.Index.Publish(ctx, store)
	r.logger.LogSnapshot(ctx, name, err)
	return name, translateError(err)
}

// LoadIndex loads the snapshot CURRENT points at. A store without a
// published snapshot yields ErrNotFound.
func LoadIndex(ctx context.Context, store blobstore.Store, opts ...spatial.Option) (*spatial.Index, error) {
	ix, err := spatial.LoadCurrent(ctx, store, opts...)
	if err != nil {
		return nil, translateError(err)
	}
	return ix, nil
}
