package prodsearch

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see examples/observability.
type MetricsCollector interface {
	// RecordChunk is called after each chunk is evaluated and appended.
	// size is the number of integers scanned, matches the number accepted.
	RecordChunk(size uint64, matches int, duration time.Duration, err error)

	// RecordCheckpoint is called after each checkpoint write.
	RecordCheckpoint(duration time.Duration, err error)

	// RecordArchive is called after each snapshot upload.
	RecordArchive(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordChunk(uint64, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCheckpoint(time.Duration, error)        {}
func (NoopMetricsCollector) RecordArchive(time.Duration, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	ChunkCount           atomic.Int64
	ChunkErrors          atomic.Int64
	ChunkTotalNanos      atomic.Int64
	IntegersScanned      atomic.Uint64
	Matches              atomic.Int64
	CheckpointCount      atomic.Int64
	CheckpointErrors     atomic.Int64
	CheckpointTotalNanos atomic.Int64
	ArchiveCount         atomic.Int64
	ArchiveErrors        atomic.Int64
}

// RecordChunk implements MetricsCollector.
func (b *BasicMetricsCollector) RecordChunk(size uint64, matches int, duration time.Duration, err error) {
	b.ChunkCount.Add(1)
	b.ChunkTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ChunkErrors.Add(1)
		return
	}
	b.IntegersScanned.Add(size)
	b.Matches.Add(int64(matches))
}

// RecordCheckpoint implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheckpoint(duration time.Duration, err error) {
	b.CheckpointCount.Add(1)
	b.CheckpointTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CheckpointErrors.Add(1)
	}
}

// RecordArchive implements MetricsCollector.
func (b *BasicMetricsCollector) RecordArchive(_ time.Duration, err error) {
	b.ArchiveCount.Add(1)
	if err != nil {
		b.ArchiveErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ChunkCount:         b.ChunkCount.Load(),
		ChunkErrors:        b.ChunkErrors.Load(),
		ChunkAvgNanos:      avg(b.ChunkTotalNanos.Load(), b.ChunkCount.Load()),
		IntegersScanned:    b.IntegersScanned.Load(),
		Matches:            b.Matches.Load(),
		CheckpointCount:    b.CheckpointCount.Load(),
		CheckpointErrors:   b.CheckpointErrors.Load(),
		CheckpointAvgNanos: avg(b.CheckpointTotalNanos.Load(), b.CheckpointCount.Load()),
		ArchiveCount:       b.ArchiveCount.Load(),
		ArchiveErrors:      b.ArchiveErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ChunkCount         int64
	ChunkErrors        int64
	ChunkAvgNanos      int64
	IntegersScanned    uint64
	Matches            int64
	CheckpointCount    int64
	CheckpointErrors   int64
	CheckpointAvgNanos int64
	ArchiveCount       int64
	ArchiveErrors      int64
}
