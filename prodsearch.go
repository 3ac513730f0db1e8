package prodsearch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/prodsearch/checkpoint"
	"github.com/hupe1980/prodsearch/internal/scan"
	"github.com/hupe1980/prodsearch/prime"
	"github.com/hupe1980/prodsearch/productive"
	"github.com/hupe1980/prodsearch/resultlog"
)

// Phase is the state of a Searcher.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseScanning
	PhaseCheckpointing
	PhaseDone
	PhaseCancelled
	// PhaseFailed follows a fatal error. The last checkpoint is the resume point.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseScanning:
		return "scanning"
	case PhaseCheckpointing:
		return "checkpointing"
	case PhaseDone:
		return "done"
	case PhaseCancelled:
		return "cancelled"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Range is the half-open interval [Start, Limit).
type Range struct {
	Start uint64
	Limit uint64
}

// Validate returns a *RangeError when Start > Limit.
func (r Range) Validate() error {
	if r.Start > r.Limit {
		return &RangeError{Start: r.Start, Limit: r.Limit}
	}
	return nil
}

// Report summarises a run.
type Report struct {
	Phase Phase
	Range Range
	// ResumedFrom is the position the run started scanning at.
	ResumedFrom  uint64
	Resumed      bool
	NextPosition uint64
	FoundCount   uint64
	NewMatches   uint64
	Chunks       int
	Archives     int
	Elapsed      time.Duration
	RunID        string
}

// Searcher scans ranges for productive numbers.
type Searcher struct {
	opts      options
	oracle    *prime.Oracle
	predicate *productive.Predicate
	pool      *scan.Pool

	phase atomic.Int32
	runMu sync.Mutex
}

// New validates the options and builds the primality tables.
func New(optFns ...Option) (*Searcher, error) {
	opts := applyOptions(optFns)

	if opts.chunkSize == 0 || opts.chunkSize > MaxChunkSize {
		return nil, fmt.Errorf("%w: %d (must be in [1, %d])", ErrInvalidChunkSize, opts.chunkSize, MaxChunkSize)
	}
	if opts.workers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, opts.workers)
	}

	oracle := prime.New(func(o *prime.Options) {
		if opts.sieveLimit > 0 {
			o.SieveLimit = opts.sieveLimit
		}
	})

	return &Searcher{
		opts:      opts,
		oracle:    oracle,
		predicate: productive.New(oracle),
		pool:      scan.NewPool(opts.workers),
	}, nil
}

// Phase returns the current phase.
func (s *Searcher) Phase() Phase { return Phase(s.phase.Load()) }

func (s *Searcher) setPhase(p Phase) { s.phase.Store(int32(p)) }

// Oracle returns the primality oracle.
func (s *Searcher) Oracle() *prime.Oracle { return s.oracle }

// Predicate returns the productive predicate.
func (s *Searcher) Predicate() *productive.Predicate { return s.predicate }

// Workers returns the worker pool size.
func (s *Searcher) Workers() int { return s.pool.Workers() }

// run holds the mutable state of one Run.
type run struct {
	*Searcher

	logger  *Logger
	manager *checkpoint.Manager
	stream  *resultlog.Stream
	state   checkpoint.State
	report  *Report
	began   time.Time

	sinceArchive int
}

// Run scans r, resuming from the saved checkpoint unless the searcher was
// created WithFresh. Cancelling ctx stops the scan at the next chunk boundary;
// the report is then returned together with ctx.Err().
func (s *Searcher) Run(ctx context.Context, r Range) (*Report, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !s.runMu.TryLock() {
		return nil, ErrRunning
	}
	defer s.runMu.Unlock()

	runID := uuid.NewString()
	rn := &run{
		Searcher: s,
		logger:   s.opts.logger.WithRunID(runID),
		manager:  checkpoint.NewManager(s.opts.fs, s.opts.codec, s.opts.statePath),
		report:   &Report{Range: r, RunID: runID},
		began:    time.Now(),
	}

	s.setPhase(PhaseLoading)
	report, err := rn.execute(ctx)
	report.Elapsed = time.Since(rn.began)
	if err != nil && report.Phase != PhaseCancelled {
		report.Phase = PhaseFailed
	}
	s.setPhase(report.Phase)
	rn.logger.LogFinish(ctx, report, errIfFatal(report, err))
	return report, err
}

func errIfFatal(r *Report, err error) error {
	if r.Phase == PhaseFailed {
		return err
	}
	return nil
}

func (rn *run) execute(ctx context.Context) (*Report, error) {
	r := rn.report.Range

	lock, err := checkpoint.Lock(rn.opts.fs, rn.opts.statePath)
	if err != nil {
		return rn.report, translateError("lock", rn.opts.statePath, err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := rn.load(r); err != nil {
		return rn.report, err
	}
	defer func() { _ = rn.stream.Close() }()

	rn.logger.LogStart(ctx, Range{Start: rn.report.ResumedFrom, Limit: r.Limit}, rn.pool.Workers(), rn.opts.chunkSize)

	next := rn.report.ResumedFrom
	for next < r.Limit {
		if err := ctx.Err(); err != nil {
			rn.report.Phase = PhaseCancelled
			rn.archive(context.WithoutCancel(ctx), true)
			return rn.report, err
		}

		chunk := scan.Next(next, r.Limit, rn.opts.chunkSize)
		if err := rn.step(ctx, chunk); err != nil {
			return rn.report, err
		}
		next = chunk.Hi
	}

	rn.report.Phase = PhaseDone
	rn.archive(context.WithoutCancel(ctx), true)
	return rn.report, nil
}

// load initialises the run from disk. On return rn.stream is open and
// rn.report.ResumedFrom is the first integer to scan.
func (rn *run) load(r Range) error {
	out := rn.opts.outputPath

	var saved *checkpoint.State
	if !rn.opts.fresh {
		var err error
		saved, err = rn.manager.Load()
		if err != nil {
			return translateError("load state", rn.manager.Path(), err)
		}
	}

	if saved == nil {
		if !rn.opts.fresh {
			if err := rn.requireEmptyOutput(); err != nil {
				return err
			}
		}
		// The initial checkpoint replaces any previous one before the result
		// file is truncated. If the run stops in between, resuming cuts every
		// old line at or above start.
		rn.state = checkpoint.State{
			NextPosition: r.Start,
			Start:        r.Start,
			Limit:        r.Limit,
		}
		rn.report.ResumedFrom = r.Start
		rn.report.NextPosition = r.Start
		if err := rn.save(context.Background()); err != nil {
			return err
		}
		stream, err := resultlog.Create(rn.opts.fs, out)
		if err != nil {
			return translateError("create results", out, err)
		}
		rn.stream = stream
		return nil
	}

	stream, rec, err := resultlog.Open(rn.opts.fs, out, saved.NextPosition, saved.FoundCount)
	if err != nil {
		return translateError("open results", out, err)
	}
	rn.stream = stream
	rn.state = *saved
	rn.report.Resumed = true
	rn.report.ResumedFrom = max(saved.NextPosition, r.Start)
	rn.report.NextPosition = saved.NextPosition
	rn.report.FoundCount = saved.FoundCount
	rn.logger.LogResume(context.Background(), saved.NextPosition, saved.FoundCount, rec)

	if saved.Limit != r.Limit {
		rn.logger.LogLimitChange(context.Background(), saved.Limit, r.Limit)
		if rn.report.ResumedFrom < r.Limit {
			rn.state.Limit = r.Limit
		}
	}
	return nil
}

// requireEmptyOutput rejects a non-empty result file that no checkpoint
// accounts for.
func (rn *run) requireEmptyOutput() error {
	out := rn.opts.outputPath
	fi, err := rn.opts.fs.Stat(out)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return translateError("stat results", out, err)
	}
	if fi.Size() > 0 {
		return fmt.Errorf("%s: %w: result file is not empty but no checkpoint exists; start fresh to overwrite it",
			out, ErrCorruptState)
	}
	return nil
}

// step evaluates one chunk and commits it: results first, then sinks, then the
// checkpoint. A chunk that has started always completes, so the commit ignores
// cancellation of ctx.
func (rn *run) step(ctx context.Context, chunk scan.Chunk) error {
	ctx = context.WithoutCancel(ctx)
	rn.setPhase(PhaseScanning)
	t0 := time.Now()
	matches := rn.pool.Evaluate(chunk, rn.predicate.IsProductive)

	rn.setPhase(PhaseCheckpointing)
	if err := rn.stream.Append(matches); err != nil {
		rn.opts.metricsCollector.RecordChunk(chunk.Len(), len(matches), time.Since(t0), err)
		return translateError("append results", rn.stream.Path(), err)
	}
	for _, sink := range rn.opts.sinks {
		if err := sink.Commit(ctx, chunk.Hi, matches); err != nil {
			rn.opts.metricsCollector.RecordChunk(chunk.Len(), len(matches), time.Since(t0), err)
			return translateError("commit sink", "", err)
		}
	}
	d := time.Since(t0)
	rn.opts.metricsCollector.RecordChunk(chunk.Len(), len(matches), d, nil)
	rn.logger.LogChunk(ctx, chunk.Lo, chunk.Hi, len(matches), d)

	rn.state.NextPosition = chunk.Hi
	rn.state.FoundCount += uint64(len(matches))
	if err := rn.save(ctx); err != nil {
		return err
	}

	rn.report.NextPosition = rn.state.NextPosition
	rn.report.FoundCount = rn.state.FoundCount
	rn.report.NewMatches += uint64(len(matches))
	rn.report.Chunks++
	rn.sinceArchive++

	elapsed := time.Since(rn.began)
	scanned := chunk.Hi - rn.report.ResumedFrom
	rn.logger.LogProgress(ctx, chunk.Hi, rn.report.Range.Limit, rn.state.FoundCount,
		float64(scanned)/max(elapsed.Seconds(), 1e-9))

	if rn.opts.progress != nil {
		rn.opts.progress(Progress{
			ChunkLo:      chunk.Lo,
			ChunkHi:      chunk.Hi,
			ChunkMatches: len(matches),
			NextPosition: rn.state.NextPosition,
			FoundCount:   rn.state.FoundCount,
			Limit:        rn.report.Range.Limit,
			Elapsed:      elapsed,
		})
	}

	if rn.opts.archiveEvery > 0 && rn.sinceArchive >= rn.opts.archiveEvery {
		rn.archive(ctx, false)
	}
	return nil
}

func (rn *run) save(ctx context.Context) error {
	rn.state.Version = checkpoint.CurrentVersion
	rn.state.RunID = rn.report.RunID
	rn.state.UpdatedAt = time.Now().UTC()

	t0 := time.Now()
	err := rn.manager.Save(&rn.state)
	rn.opts.metricsCollector.RecordCheckpoint(time.Since(t0), err)
	rn.logger.LogCheckpoint(ctx, rn.manager.Path(), rn.state.NextPosition, err)
	if err != nil {
		return translateError("save state", rn.manager.Path(), err)
	}
	return nil
}

// archive publishes a snapshot. Failures are logged and counted only. A final
// archive is skipped when nothing changed since the last one.
func (rn *run) archive(ctx context.Context, final bool) {
	if rn.opts.archiver == nil || (final && rn.sinceArchive == 0) {
		return
	}
	t0 := time.Now()
	m, err := rn.opts.archiver.Snapshot(ctx, rn.opts.outputPath, rn.opts.statePath)
	if m == nil {
		rn.opts.metricsCollector.RecordArchive(time.Since(t0), err)
		rn.logger.LogArchive(ctx, 0, rn.state.NextPosition, err)
		return
	}

	// The snapshot is published even if pruning older ones failed.
	rn.opts.metricsCollector.RecordArchive(time.Since(t0), nil)
	rn.sinceArchive = 0
	rn.report.Archives++
	rn.logger.LogArchive(ctx, m.Sequence, rn.state.NextPosition, nil)
	if err != nil {
		rn.logger.LogPrune(ctx, m.Sequence, err)
	}
}
