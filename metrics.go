package bimgeo

import (
	"time"

	"github.com/hupe1980/bimgeo/lod"
	"github.com/hupe1980/bimgeo/spatial"
)

// MetricsCollector receives events from both the spatial index and the LOD
// generator. metrics/prom provides a Prometheus implementation.
type MetricsCollector interface {
	spatial.MetricsCollector
	lod.MetricsCollector
}

// BasicMetricsCollector provides simple in-memory counters for both halves
// of the pipeline.
type BasicMetricsCollector struct {
	Index spatial.BasicMetricsCollector
	LOD   lod.BasicMetricsCollector
}

var _ MetricsCollector = (*BasicMetricsCollector)(nil)

func (b *BasicMetricsCollector) RecordInsert(d time.Duration, err error) {
	b.Index.RecordInsert(d, err)
}

func (b *BasicMetricsCollector) RecordBatchInsert(count, failed int, d time.Duration) {
	b.Index.RecordBatchInsert(count, failed, d)
}

func (b *BasicMetricsCollector) RecordQuery(kind string, results int, d time.Duration) {
	b.Index.RecordQuery(kind, results, d)
}

func (b *BasicMetricsCollector) RecordNearest(k int, d time.Duration, err error) {
	b.Index.RecordNearest(k, d, err)
}

func (b *BasicMetricsCollector) RecordRemove(found bool, d time.Duration) {
	b.Index.RecordRemove(found, d)
}

func (b *BasicMetricsCollector) RecordClashScan(objects, clashes int, d time.Duration, err error) {
	b.Index.RecordClashScan(objects, clashes, d, err)
}

func (b *BasicMetricsCollector) RecordGenerate(tier lod.Tier, method string, in, out int, d time.Duration, err error) {
	b.LOD.RecordGenerate(tier, method, in, out, d, err)
}

func (b *BasicMetricsCollector) RecordBatch(count, failed int, d time.Duration) {
	b.LOD.RecordBatch(count, failed, d)
}

func (b *BasicMetricsCollector) RecordCacheLookup(hit bool) {
	b.LOD.RecordCacheLookup(hit)
}
