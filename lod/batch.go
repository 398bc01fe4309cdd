package lod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/bimgeo/internal/workpool"
	"github.com/hupe1980/bimgeo/model"
)

// ErrDuplicateElement is recorded when a batch names the same element twice.
var ErrDuplicateElement = errors.New("duplicate element id in batch")

// BatchReport aggregates a GenerateBatch run.
type BatchReport struct {
	RunID     uuid.UUID
	Elements  map[string]*ElementLOD
	Succeeded int
	// Failed maps element id to the reason it was skipped. Elements
	// without an id are keyed "#<position>".
	Failed   map[string]error
	Duration time.Duration
}

// Total returns the number of elements attempted.
func (r *BatchReport) Total() int {
	return r.Succeeded + len(r.Failed)
}

// GenerateBatch generates tiers for every element on a worker pool. A
// failing element is logged and recorded in the report; the rest proceed.
// Cancelling ctx stops queueing new elements, which are reported with
// ctx.Err().
func (g *Generator) GenerateBatch(ctx context.Context, elements []model.Element, tiers []Tier) *BatchReport {
	start := time.Now()
	runID := uuid.New()
	logger := g.opts.logger.With(slog.String("run_id", runID.String()))

	report := &BatchReport{
		RunID:    runID,
		Elements: make(map[string]*ElementLOD, len(elements)),
		Failed:   make(map[string]error),
	}

	var mu sync.Mutex
	fail := func(key string, err error) {
		mu.Lock()
		report.Failed[key] = err
		mu.Unlock()
		logger.Warn("skipping element", slog.String("element_id", key), slog.Any("error", err))
	}

	pool := workpool.New(g.opts.workers)
	var wg sync.WaitGroup

	seen := make(map[string]struct{}, len(elements))
	for i := range elements {
		el := elements[i]
		key := el.ElementID
		if key == "" {
			key = fmt.Sprintf("#%d", i)
			fail(key, model.ErrMissingID)
			continue
		}
		if _, dup := seen[key]; dup {
			fail(fmt.Sprintf("%s#%d", key, i), fmt.Errorf("%w: %s", ErrDuplicateElement, key))
			continue
		}
		seen[key] = struct{}{}

		wg.Add(1)
		err := pool.Submit(ctx, func() {
			defer wg.Done()
			elod, err := g.generateElement(el, tiers, runID)
			if err != nil {
				fail(key, err)
				return
			}
			mu.Lock()
			report.Elements[key] = elod
			report.Succeeded++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			fail(key, err)
		}
	}

	wg.Wait()
	pool.Close()

	report.Duration = time.Since(start)
	g.opts.metrics.RecordBatch(report.Total(), len(report.Failed), report.Duration)

	if n := len(report.Failed); n > 0 {
		logger.Warn("lod batch completed with failures",
			slog.Int("total", report.Total()),
			slog.Int("failed", n),
			slog.Int("success", report.Succeeded),
		)
	} else {
		logger.Info("lod batch completed", slog.Int("count", report.Succeeded))
	}
	return report
}
