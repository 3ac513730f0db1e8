package prodsearch

import (
	"context"
	"log/slog"
	"time"

	"github.com/hupe1980/prodsearch/archive"
	"github.com/hupe1980/prodsearch/codec"
	"github.com/hupe1980/prodsearch/internal/fs"
)

const (
	// DefaultStart is the first integer scanned when a range does not say.
	DefaultStart = 1
	// DefaultChunkSize is the number of integers between checkpoints.
	DefaultChunkSize = 500_000
	// MaxChunkSize bounds the work lost to a crash.
	MaxChunkSize = 100_000_000
	// DefaultOutputPath is the result file.
	DefaultOutputPath = "found.txt"
	// DefaultStatePath is the checkpoint file.
	DefaultStatePath = "state.json"
)

// Sink receives the matches of every committed chunk after they are appended to
// the result file and before the checkpoint is saved. hi is the exclusive end of
// the chunk. A chunk may be delivered again after a resume, so Commit must be
// idempotent.
type Sink interface {
	Commit(ctx context.Context, hi uint64, values []uint64) error
}

// Progress is passed to the progress callback after each checkpoint.
type Progress struct {
	ChunkLo      uint64
	ChunkHi      uint64
	ChunkMatches int
	NextPosition uint64
	FoundCount   uint64
	Limit        uint64
	Elapsed      time.Duration
}

type options struct {
	workers          int
	chunkSize        uint64
	outputPath       string
	statePath        string
	fresh            bool
	logger           *Logger
	metricsCollector MetricsCollector
	progress         func(Progress)
	archiver         *archive.Archiver
	archiveEvery     int
	sinks            []Sink
	fs               fs.FileSystem
	codec            codec.Codec
	sieveLimit       uint64
}

// Option configures a Searcher.
type Option func(*options)

func defaultOptions() options {
	return options{
		chunkSize:        DefaultChunkSize,
		outputPath:       DefaultOutputPath,
		statePath:        DefaultStatePath,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		fs:               fs.Default,
		codec:            codec.Default,
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// WithWorkers sets the worker pool size. 0 selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithChunkSize sets the number of integers scanned between checkpoints.
func WithChunkSize(n uint64) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithOutputPath sets the result file.
func WithOutputPath(path string) Option {
	return func(o *options) {
		o.outputPath = path
	}
}

// WithStatePath sets the checkpoint file.
func WithStatePath(path string) Option {
	return func(o *options) {
		o.statePath = path
	}
}

// WithFresh discards any saved state and truncates the result file.
func WithFresh(fresh bool) Option {
	return func(o *options) {
		o.fresh = fresh
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel installs a text logger on stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithProgress registers a callback invoked on the coordinating goroutine after
// every checkpoint.
func WithProgress(fn func(Progress)) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithArchiver publishes a snapshot after every `every` checkpoints and when a
// run ends. every <= 0 archives only at the end.
func WithArchiver(a *archive.Archiver, every int) Option {
	return func(o *options) {
		o.archiver = a
		o.archiveEvery = every
	}
}

// WithSink adds a sink for committed matches.
func WithSink(s Sink) Option {
	return func(o *options) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// WithFileSystem sets the filesystem used for the result, state and lock files.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}

// WithCodec sets the codec used for the state file.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithSieveLimit overrides the sieve size of the primality oracle.
func WithSieveLimit(limit uint64) Option {
	return func(o *options) {
		o.sieveLimit = limit
	}
}
