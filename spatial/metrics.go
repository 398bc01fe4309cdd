package spatial

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives index operation events. Implement it to export
// metrics to a monitoring system; see the metrics/prom package.
type MetricsCollector interface {
	// RecordInsert is called after each single insert. err is nil on success.
	RecordInsert(duration time.Duration, err error)

	// RecordBatchInsert is called after each batch with the number of
	// objects attempted and failed.
	RecordBatchInsert(count, failed int, duration time.Duration)

	// RecordQuery is called after window and point queries. kind is
	// "intersecting" or "contains_point".
	RecordQuery(kind string, results int, duration time.Duration)

	// RecordNearest is called after each nearest-neighbor query.
	RecordNearest(k int, duration time.Duration, err error)

	// RecordRemove is called after each removal; found reports whether the
	// id existed.
	RecordRemove(found bool, duration time.Duration)

	// RecordClashScan is called after each FindClashes run.
	RecordClashScan(objects, clashes int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)              {}
func (NoopMetricsCollector) RecordBatchInsert(int, int, time.Duration)      {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration)         {}
func (NoopMetricsCollector) RecordNearest(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordRemove(bool, time.Duration)               {}
func (NoopMetricsCollector) RecordClashScan(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory counters.
type BasicMetricsCollector struct {
	InsertCount       atomic.Int64
	InsertErrors      atomic.Int64
	InsertTotalNanos  atomic.Int64
	BatchInsertCount  atomic.Int64
	BatchInsertItems  atomic.Int64
	BatchInsertFailed atomic.Int64
	QueryCount        atomic.Int64
	QueryResults      atomic.Int64
	NearestCount      atomic.Int64
	NearestErrors     atomic.Int64
	RemoveCount       atomic.Int64
	RemoveMisses      atomic.Int64
	ClashScanCount    atomic.Int64
	ClashesFound      atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordBatchInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchInsert(count, failed int, _ time.Duration) {
	b.BatchInsertCount.Add(1)
	b.BatchInsertItems.Add(int64(count))
	b.BatchInsertFailed.Add(int64(failed))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, results int, _ time.Duration) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
}

// RecordNearest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordNearest(_ int, _ time.Duration, err error) {
	b.NearestCount.Add(1)
	if err != nil {
		b.NearestErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(found bool, _ time.Duration) {
	b.RemoveCount.Add(1)
	if !found {
		b.RemoveMisses.Add(1)
	}
}

// RecordClashScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClashScan(_, clashes int, _ time.Duration, err error) {
	b.ClashScanCount.Add(1)
	if err == nil {
		b.ClashesFound.Add(int64(clashes))
	}
}

// AvgInsertNanos returns the mean single-insert latency.
func (b *BasicMetricsCollector) AvgInsertNanos() int64 {
	n := b.InsertCount.Load()
	if n == 0 {
		return 0
	}
	return b.InsertTotalNanos.Load() / n
}
