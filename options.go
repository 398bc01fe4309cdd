package bimgeo

import (
	"github.com/hupe1980/bimgeo/lod"
	"github.com/hupe1980/bimgeo/spatial"
)

type options struct {
	tiers          []lod.Tier
	logger         *Logger
	metrics        MetricsCollector
	indexOptions   []spatial.Option
	lodOptions     []lod.Option
	clashTolerance float64
	scanClashes    bool
}

func defaultOptions() options {
	return options{
		logger: NoopLogger(),
	}
}

// Option configures a Pipeline.
type Option func(*options)

// WithTiers restricts LOD generation to tiers. Empty means all tiers.
func WithTiers(tiers ...lod.Tier) Option {
	return func(o *options) {
		o.tiers = tiers
	}
}

// WithLogger sets the pipeline logger. The same handler is passed down to
// the index and the LOD generator.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector wires mc into both the index and the LOD generator.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

// WithIndexOptions appends options for the spatial index. They are applied
// after the pipeline's own logger and metrics settings.
func WithIndexOptions(opts ...spatial.Option) Option {
	return func(o *options) {
		o.indexOptions = append(o.indexOptions, opts...)
	}
}

// WithLODOptions appends options for the LOD generator. They are applied
// after the pipeline's own logger and metrics settings.
func WithLODOptions(opts ...lod.Option) Option {
	return func(o *options) {
		o.lodOptions = append(o.lodOptions, opts...)
	}
}

// WithClashTolerance makes Build finish with a clash scan at the given
// overlap volume tolerance (cubic meters).
func WithClashTolerance(tolerance float64) Option {
	return func(o *options) {
		o.clashTolerance = tolerance
		o.scanClashes = true
	}
}
