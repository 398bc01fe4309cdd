package bimgeo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with bimgeo-specific helpers so that pipeline
// events use consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// LogInsert logs a single index insert.
func (l *Logger) LogInsert(ctx context.Context, id string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"id", id,
		)
	}
}

// LogBatchInsert logs an index batch insert.
func (l *Logger) LogBatchInsert(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch insert completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "batch insert completed",
			"count", count,
		)
	}
}

// LogClashScan logs a clash scan.
func (l *Logger) LogClashScan(ctx context.Context, objects, clashes int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clash scan failed",
			"objects", objects,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "clash scan completed",
		"objects", objects,
		"clashes", clashes,
		"duration", d,
	)
}

// LogGenerate logs LOD generation for one element.
func (l *Logger) LogGenerate(ctx context.Context, elementID string, tiers int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "lod generation failed",
			"element_id", elementID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "lod generation completed",
			"element_id", elementID,
			"tiers", tiers,
		)
	}
}

// LogBatchGenerate logs a multi-element LOD run.
func (l *Logger) LogBatchGenerate(ctx context.Context, count, failed int, d time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "lod batch completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
			"duration", d,
		)
	} else {
		l.InfoContext(ctx, "lod batch completed",
			"count", count,
			"duration", d,
		)
	}
}

// LogSnapshot logs a snapshot write.
func (l *Logger) LogSnapshot(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
		)
	}
}
