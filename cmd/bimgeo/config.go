package main

import (
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hupe1980/bimgeo/codec"
	"github.com/hupe1980/bimgeo/lod"
	"github.com/hupe1980/bimgeo/spatial"
)

// Config validation errors
var (
	ErrInvalidOutputDir      = errors.New("output_dir cannot be empty")
	ErrInvalidLogFormat      = errors.New("log_format must be 'json' or 'text'")
	ErrInvalidLogLevel       = errors.New("log_level must be debug, info, warn, or error")
	ErrInvalidCodec          = errors.New("codec must be 'json' or 'go-json'")
	ErrInvalidCompression    = errors.New("compression must be none, lz4, or zstd")
	ErrInvalidClashTolerance = errors.New("clash_tolerance must be a non-negative number")
	ErrInvalidTier           = errors.New("tiers must be a subset of 100,200,300,350,400,500")
	ErrInvalidStore          = errors.New("store must be empty, 'local', 's3', or 'minio'")
	ErrMissingBucket         = errors.New("bucket is required for s3 and minio stores")
	ErrMissingMinioEndpoint  = errors.New("minio_endpoint is required for the minio store")
)

// Config is read from BIMGEO_* environment variables, optionally seeded
// from a .env file.
type Config struct {
	OutputDir      string  `envconfig:"OUTPUT_DIR" default:"out"`
	LogFormat      string  `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	Codec          string  `envconfig:"CODEC" default:"go-json"`
	Compression    string  `envconfig:"COMPRESSION" default:"zstd"`
	ClashTolerance float64 `envconfig:"CLASH_TOLERANCE" default:"0"`
	Tiers          []int   `envconfig:"TIERS"`
	Workers        int     `envconfig:"WORKERS" default:"0"`
	CacheSize      int     `envconfig:"CACHE_SIZE" default:"1024"`
	ExportSTL      bool    `envconfig:"EXPORT_STL" default:"true"`
	MetricsAddr    string  `envconfig:"METRICS_ADDR"`

	// Store selects where build publishes the index snapshot in addition
	// to OutputDir. Empty disables publishing.
	Store          string `envconfig:"STORE"`
	Bucket         string `envconfig:"BUCKET"`
	Prefix         string `envconfig:"PREFIX" default:"bimgeo"`
	CommitTable    string `envconfig:"COMMIT_TABLE"`
	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioSecure    bool   `envconfig:"MINIO_SECURE" default:"true"`
}

// LoadConfig loads envFile (if it exists) and processes the environment.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		// A missing .env file is not an error.
		_ = godotenv.Load(envFile)
	}
	var cfg Config
	if err := envconfig.Process("BIMGEO", &cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfig validates the configuration and returns an error if invalid
func ValidateConfig(cfg *Config) error {
	if cfg.OutputDir == "" {
		return ErrInvalidOutputDir
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return ErrInvalidLogFormat
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return ErrInvalidLogLevel
	}
	if _, ok := codec.ByName(cfg.Codec); !ok {
		return ErrInvalidCodec
	}
	if _, err := spatial.ParseCompression(cfg.Compression); err != nil {
		return ErrInvalidCompression
	}
	if cfg.ClashTolerance < 0 || math.IsNaN(cfg.ClashTolerance) {
		return ErrInvalidClashTolerance
	}
	if _, err := cfg.LODTiers(); err != nil {
		return ErrInvalidTier
	}
	switch cfg.Store {
	case "", "local":
	case "s3":
		if cfg.Bucket == "" {
			return ErrMissingBucket
		}
	case "minio":
		if cfg.Bucket == "" {
			return ErrMissingBucket
		}
		if cfg.MinioEndpoint == "" {
			return ErrMissingMinioEndpoint
		}
	default:
		return ErrInvalidStore
	}
	return nil
}

// LODTiers converts Tiers to lod.Tier values. Empty means all tiers.
func (cfg *Config) LODTiers() ([]lod.Tier, error) {
	out := make([]lod.Tier, 0, len(cfg.Tiers))
	for _, n := range cfg.Tiers {
		t := lod.Tier(n)
		if !t.Valid() {
			return nil, lod.ErrUnknownTier
		}
		out = append(out, t)
	}
	return out, nil
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
