package prodsearch

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/time/rate"

	"github.com/hupe1980/prodsearch/resultlog"
)

// ProgressLogInterval is the minimum spacing of Info progress lines.
const ProgressLogInterval = 5 * time.Second

// Logger wraps slog.Logger with search-specific helpers.
type Logger struct {
	*slog.Logger

	progress *rate.Sometimes
}

func newLogger(l *slog.Logger) *Logger {
	return &Logger{
		Logger:   l,
		progress: &rate.Sometimes{Interval: ProgressLogInterval},
	}
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return newLogger(slog.New(handler))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return newLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return newLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return newLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})))
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return newLogger(l.Logger.With("run_id", id))
}

// LogStart logs the start of a run along with the host's parallelism.
func (l *Logger) LogStart(ctx context.Context, r Range, workers int, chunkSize uint64) {
	l.InfoContext(ctx, "search started",
		"start", r.Start,
		"limit", r.Limit,
		"workers", workers,
		"chunk_size", chunkSize,
		"cpu", cpuid.CPU.BrandName,
		"physical_cores", cpuid.CPU.PhysicalCores,
		"logical_cores", cpuid.CPU.LogicalCores,
	)
}

// LogResume logs a resumption from a checkpoint.
func (l *Logger) LogResume(ctx context.Context, next, found uint64, rec *resultlog.Reconciliation) {
	args := []any{
		"next_position", next,
		"found_count", found,
	}
	if rec != nil && rec.TruncatedFrom >= 0 {
		args = append(args,
			"dropped_lines", rec.DroppedLines,
			"torn_bytes", rec.TornBytes,
		)
		l.WarnContext(ctx, "resumed; uncommitted results removed", args...)
		return
	}
	l.InfoContext(ctx, "resumed from checkpoint", args...)
}

// LogLimitChange logs the adoption of a limit that differs from the saved one.
func (l *Logger) LogLimitChange(ctx context.Context, saved, requested uint64) {
	l.WarnContext(ctx, "limit differs from checkpoint; using requested limit",
		"saved_limit", saved,
		"limit", requested,
	)
}

// LogChunk logs a completed chunk.
func (l *Logger) LogChunk(ctx context.Context, lo, hi uint64, matches int, d time.Duration) {
	l.DebugContext(ctx, "chunk completed",
		"lo", lo,
		"hi", hi,
		"matches", matches,
		"duration", d,
	)
}

// LogProgress logs an Info progress line at most once per ProgressLogInterval.
func (l *Logger) LogProgress(ctx context.Context, next, limit, found uint64, perSec float64) {
	l.progress.Do(func() {
		l.InfoContext(ctx, "progress",
			"next_position", next,
			"limit", limit,
			"found_count", found,
			"rate_per_sec", perSec,
		)
	})
}

// LogCheckpoint logs a checkpoint write.
func (l *Logger) LogCheckpoint(ctx context.Context, path string, next uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"path", path,
			"next_position", next,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "checkpoint saved",
			"path", path,
			"next_position", next,
		)
	}
}

// LogArchive logs a snapshot upload.
func (l *Logger) LogArchive(ctx context.Context, seq uint64, next uint64, err error) {
	if err != nil {
		l.WarnContext(ctx, "archive failed",
			"next_position", next,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "archive published",
			"sequence", seq,
			"next_position", next,
		)
	}
}

// LogPrune logs a failure to delete snapshots older than seq.
func (l *Logger) LogPrune(ctx context.Context, seq uint64, err error) {
	l.WarnContext(ctx, "archive prune failed",
		"sequence", seq,
		"error", err,
	)
}

// LogFinish logs the end of a run.
func (l *Logger) LogFinish(ctx context.Context, r *Report, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"phase", r.Phase,
			"next_position", r.NextPosition,
			"found_count", r.FoundCount,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "search finished",
		"phase", r.Phase,
		"next_position", r.NextPosition,
		"found_count", r.FoundCount,
		"new_matches", r.NewMatches,
		"chunks", r.Chunks,
		"elapsed", r.Elapsed,
	)
}
