// Package prom exports index and LOD generator metrics to Prometheus.
//
//	c, err := prom.New(prometheus.DefaultRegisterer)
//	ix, err := spatial.New(spatial.WithMetricsCollector(c))
//	gen, err := lod.New(lod.WithMetricsCollector(c))
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/bimgeo/lod"
	"github.com/hupe1980/bimgeo/spatial"
)

// Namespace prefixes every metric name.
const Namespace = "bimgeo"

var (
	_ spatial.MetricsCollector = (*Collector)(nil)
	_ lod.MetricsCollector     = (*Collector)(nil)
)

// Collector implements spatial.MetricsCollector and lod.MetricsCollector.
type Collector struct {
	opLatency    *prometheus.HistogramVec
	objects      *prometheus.CounterVec
	queryResults *prometheus.CounterVec
	clashes      prometheus.Counter
	generated    *prometheus.CounterVec
	triangles    *prometheus.CounterVec
	batchItems   *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// New creates a Collector and registers its metrics on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of index and LOD operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		objects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "index_objects_total",
			Help:      "Objects offered to the spatial index by outcome",
		}, []string{"result"}),
		queryResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "query_results_total",
			Help:      "Objects returned by spatial queries",
		}, []string{"kind"}),
		clashes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "clashes_found_total",
			Help:      "Clashes reported by completed clash scans",
		}),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lod_generated_total",
			Help:      "LOD representations generated",
		}, []string{"tier", "method", "status"}),
		triangles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lod_triangles_total",
			Help:      "Triangles entering and leaving simplification",
		}, []string{"tier", "direction"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lod_batch_elements_total",
			Help:      "Elements processed by LOD batches by outcome",
		}, []string{"result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lod_cache_lookups_total",
			Help:      "LOD cache lookups by outcome",
		}, []string{"result"}),
	}

	for _, m := range []prometheus.Collector{
		c.opLatency, c.objects, c.queryResults, c.clashes,
		c.generated, c.triangles, c.batchItems, c.cacheLookups,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	c.opLatency.WithLabelValues(op, status(err)).Observe(d.Seconds())
}

// RecordInsert implements spatial.MetricsCollector.
func (c *Collector) RecordInsert(d time.Duration, err error) {
	c.observe("insert", d, err)
	if err != nil {
		c.objects.WithLabelValues("failed").Inc()
		return
	}
	c.objects.WithLabelValues("inserted").Inc()
}

// RecordBatchInsert implements spatial.MetricsCollector.
func (c *Collector) RecordBatchInsert(count, failed int, d time.Duration) {
	c.observe("insert_batch", d, nil)
	c.objects.WithLabelValues("inserted").Add(float64(count - failed))
	c.objects.WithLabelValues("failed").Add(float64(failed))
}

// RecordQuery implements spatial.MetricsCollector.
func (c *Collector) RecordQuery(kind string, results int, d time.Duration) {
	c.observe(kind, d, nil)
	c.queryResults.WithLabelValues(kind).Add(float64(results))
}

// RecordNearest implements spatial.MetricsCollector.
func (c *Collector) RecordNearest(_ int, d time.Duration, err error) {
	c.observe("nearest", d, err)
}

// RecordRemove implements spatial.MetricsCollector.
func (c *Collector) RecordRemove(found bool, d time.Duration) {
	c.observe("remove", d, nil)
	if found {
		c.objects.WithLabelValues("removed").Inc()
	}
}

// RecordClashScan implements spatial.MetricsCollector.
func (c *Collector) RecordClashScan(_, clashes int, d time.Duration, err error) {
	c.observe("clash_scan", d, err)
	if err == nil {
		c.clashes.Add(float64(clashes))
	}
}

// RecordGenerate implements lod.MetricsCollector.
func (c *Collector) RecordGenerate(tier lod.Tier, method string, in, out int, d time.Duration, err error) {
	c.observe("lod_generate", d, err)
	c.generated.WithLabelValues(tier.String(), method, status(err)).Inc()
	if err == nil {
		c.triangles.WithLabelValues(tier.String(), "in").Add(float64(in))
		c.triangles.WithLabelValues(tier.String(), "out").Add(float64(out))
	}
}

// RecordBatch implements lod.MetricsCollector.
func (c *Collector) RecordBatch(count, failed int, d time.Duration) {
	c.observe("lod_batch", d, nil)
	c.batchItems.WithLabelValues("succeeded").Add(float64(count - failed))
	c.batchItems.WithLabelValues("failed").Add(float64(failed))
}

// RecordCacheLookup implements lod.MetricsCollector.
func (c *Collector) RecordCacheLookup(hit bool) {
	if hit {
		c.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	c.cacheLookups.WithLabelValues("miss").Inc()
}
