package spatial

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/hupe1980/bimgeo/codec"
	"github.com/hupe1980/bimgeo/internal/compress"
)

const (
	// DefaultMinChildren and DefaultMaxChildren bound the R-tree node fan-out.
	DefaultMinChildren = 25
	DefaultMaxChildren = 50

	// DefaultEpsilon pads tree rectangles, in model units (meters).
	DefaultEpsilon = 1e-6

	// DefaultCompactionThreshold is the tombstoned fraction of the arena
	// that triggers an automatic rebuild.
	DefaultCompactionThreshold = 0.25
)

// Compression selects the snapshot body compression.
type Compression = compress.Type

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

// ParseCompression maps "none", "lz4" or "zstd" to a Compression.
func ParseCompression(s string) (Compression, error) {
	return compress.Parse(s)
}

type options struct {
	logger              *slog.Logger
	metrics             MetricsCollector
	minChildren         int
	maxChildren         int
	epsilon             float64
	codec               codec.Codec
	compression         Compression
	compactionThreshold float64
}

func defaultOptions() options {
	return options{
		logger:              slog.New(slog.DiscardHandler),
		metrics:             NoopMetricsCollector{},
		minChildren:         DefaultMinChildren,
		maxChildren:         DefaultMaxChildren,
		epsilon:             DefaultEpsilon,
		codec:               codec.Default,
		compression:         CompressionZSTD,
		compactionThreshold: DefaultCompactionThreshold,
	}
}

func (o options) validate() error {
	if o.minChildren < 1 || o.maxChildren < 2 || o.minChildren > o.maxChildren/2 {
		return fmt.Errorf("%w: node capacity min=%d max=%d (need 1 <= min <= max/2)",
			ErrTreeUnavailable, o.minChildren, o.maxChildren)
	}
	if !(o.epsilon > 0) || math.IsInf(o.epsilon, 0) {
		return fmt.Errorf("%w: epsilon %g must be positive and finite", ErrTreeUnavailable, o.epsilon)
	}
	if o.compactionThreshold < 0 || o.compactionThreshold > 1 || math.IsNaN(o.compactionThreshold) {
		return fmt.Errorf("%w: compaction threshold %g outside [0, 1]", ErrTreeUnavailable, o.compactionThreshold)
	}
	if o.compression > CompressionZSTD {
		return fmt.Errorf("%w: unknown compression %d", ErrTreeUnavailable, o.compression)
	}
	return nil
}

// Option configures an Index.
type Option func(*options)

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

// WithNodeCapacity sets the minimum and maximum R-tree node fan-out.
func WithNodeCapacity(minChildren, maxChildren int) Option {
	return func(o *options) {
		o.minChildren = minChildren
		o.maxChildren = maxChildren
	}
}

// WithEpsilon sets the rectangle padding used for tree queries. It only
// widens candidate sets; results are always filtered exactly.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		o.epsilon = eps
	}
}

// WithCodec sets the codec used when writing snapshots.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = codec.OrDefault(c)
	}
}

// WithCompression sets the snapshot body compression.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCompactionThreshold sets the tombstoned fraction that triggers an
// automatic arena rebuild after Remove. 0 disables automatic compaction.
func WithCompactionThreshold(f float64) Option {
	return func(o *options) {
		o.compactionThreshold = f
	}
}
