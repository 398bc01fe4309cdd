package lod

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector receives generation events. Implementations must be safe
// for concurrent use.
type MetricsCollector interface {
	// RecordGenerate is called once per generated tier. in and out are
	// triangle counts.
	RecordGenerate(tier Tier, method string, in, out int, duration time.Duration, err error)

	// RecordBatch is called after GenerateBatch with the number of
	// elements attempted and failed.
	RecordBatch(count, failed int, duration time.Duration)

	// RecordCacheLookup is called for every cache lookup.
	RecordCacheLookup(hit bool)
}

// NoopMetricsCollector discards every event.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordGenerate(Tier, string, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)                         {}
func (NoopMetricsCollector) RecordCacheLookup(bool)                                      {}

// BasicMetricsCollector counts events in memory.
type BasicMetricsCollector struct {
	GenerateCount  atomic.Int64
	GenerateErrors atomic.Int64
	BatchCount     atomic.Int64
	BatchElements  atomic.Int64
	BatchFailed    atomic.Int64
	CacheHits      atomic.Int64
	CacheMisses    atomic.Int64

	mu       sync.Mutex
	byTier   map[Tier]int64
	byMethod map[string]int64
}

// RecordGenerate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGenerate(tier Tier, method string, _, _ int, _ time.Duration, err error) {
	b.GenerateCount.Add(1)
	if err != nil {
		b.GenerateErrors.Add(1)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.byTier == nil {
		b.byTier = make(map[Tier]int64)
		b.byMethod = make(map[string]int64)
	}
	b.byTier[tier]++
	b.byMethod[method]++
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchElements.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// RecordCacheLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheLookup(hit bool) {
	if hit {
		b.CacheHits.Add(1)
	} else {
		b.CacheMisses.Add(1)
	}
}

// TierCount returns how many representations of tier were generated.
func (b *BasicMetricsCollector) TierCount(tier Tier) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byTier[tier]
}

// MethodCount returns how many representations were produced by method.
func (b *BasicMetricsCollector) MethodCount(method string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byMethod[method]
}
