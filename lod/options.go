package lod

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/bimgeo/simplify"
)

type options struct {
	ratios      map[Tier]float64
	simplifiers map[Tier]simplify.Simplifier
	cache       *Cache
	logger      *slog.Logger
	metrics     MetricsCollector
	workers     int
}

func defaultOptions() options {
	return options{
		ratios: map[Tier]float64{
			LOD100: 1,
			LOD200: 1,
			LOD300: 0.25,
			LOD350: 0.5,
			LOD400: 1,
			LOD500: 1,
		},
		simplifiers: map[Tier]simplify.Simplifier{
			LOD100: simplify.BoundingBox{},
			LOD200: simplify.ConvexHull{},
			LOD300: simplify.VertexClustering{},
			LOD350: simplify.VertexClustering{},
			LOD400: simplify.Passthrough{},
			LOD500: simplify.Passthrough{},
		},
		logger:  slog.New(slog.DiscardHandler),
		metrics: NoopMetricsCollector{},
		workers: runtime.GOMAXPROCS(0),
	}
}

// Option configures a Generator.
type Option func(*options)

// WithTargetRatio sets the triangle ratio requested for tier. The ratio
// must lie in (0, 1]; New rejects anything else.
func WithTargetRatio(tier Tier, ratio float64) Option {
	return func(o *options) {
		o.ratios[tier] = ratio
	}
}

// WithSimplifier replaces the algorithm used for tier.
func WithSimplifier(tier Tier, s simplify.Simplifier) Option {
	return func(o *options) {
		if s != nil {
			o.simplifiers[tier] = s
		}
	}
}

// WithCache memoizes representations by mesh content. The cache may be
// shared between generators.
func WithCache(c *Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithLogger sets the logger. nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics sink.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithWorkers sets the GenerateBatch pool size. n <= 0 selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}
