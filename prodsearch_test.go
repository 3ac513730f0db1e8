package prodsearch_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hupe1980/prodsearch"
	"github.com/hupe1980/prodsearch/archive"
	"github.com/hupe1980/prodsearch/blobstore"
	"github.com/hupe1980/prodsearch/checkpoint"
	"github.com/hupe1980/prodsearch/internal/fs"
	"github.com/hupe1980/prodsearch/resultlog"
	"github.com/hupe1980/prodsearch/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testLimit = 20_000

var (
	referenceOnce sync.Once
	reference     []uint64
)

func referenceBelow(t *testing.T, limit uint64) []uint64 {
	t.Helper()
	if limit == testLimit {
		referenceOnce.Do(func() { reference = testutil.ProductiveBelow(1, testLimit) })
		return reference
	}
	return testutil.ProductiveBelow(1, limit)
}

type paths struct {
	out   string
	state string
}

func newPaths(t *testing.T) paths {
	dir := t.TempDir()
	return paths{out: filepath.Join(dir, "found.txt"), state: filepath.Join(dir, "state.json")}
}

func (p paths) options(extra ...prodsearch.Option) []prodsearch.Option {
	return append([]prodsearch.Option{
		prodsearch.WithOutputPath(p.out),
		prodsearch.WithStatePath(p.state),
		prodsearch.WithChunkSize(1_000),
		prodsearch.WithWorkers(4),
	}, extra...)
}

func newSearcher(t *testing.T, opts ...prodsearch.Option) *prodsearch.Searcher {
	t.Helper()
	s, err := prodsearch.New(opts...)
	require.NoError(t, err)
	return s
}

func readResults(t *testing.T, path string) []uint64 {
	t.Helper()
	values, err := resultlog.ReadAll(nil, path)
	require.NoError(t, err)
	return values
}

func TestRun_MatchesReference(t *testing.T) {
	p := newPaths(t)
	s := newSearcher(t, p.options()...)

	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: testLimit})
	require.NoError(t, err)

	want := referenceBelow(t, testLimit)
	assert.Equal(t, prodsearch.PhaseDone, report.Phase)
	assert.Equal(t, prodsearch.PhaseDone, s.Phase())
	assert.False(t, report.Resumed)
	assert.Equal(t, uint64(testLimit), report.NextPosition)
	assert.Equal(t, uint64(len(want)), report.FoundCount)
	assert.Equal(t, uint64(len(want)), report.NewMatches)
	assert.Equal(t, 20, report.Chunks)
	assert.NotEmpty(t, report.RunID)

	if diff := cmp.Diff(want, readResults(t, p.out)); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}

	state, err := checkpoint.Load(p.state)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, uint64(testLimit), state.NextPosition)
	assert.Equal(t, uint64(len(want)), state.FoundCount)
	assert.Equal(t, uint64(1), state.Start)
	assert.Equal(t, uint64(testLimit), state.Limit)
	assert.Equal(t, report.RunID, state.RunID)
}

func TestRun_WorkerCountIndependence(t *testing.T) {
	var streams [][]uint64
	for _, workers := range []int{1, 2, 8} {
		p := newPaths(t)
		s := newSearcher(t, p.options(prodsearch.WithWorkers(workers), prodsearch.WithChunkSize(3_333))...)
		assert.Equal(t, workers, s.Workers())

		_, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: testLimit})
		require.NoError(t, err)
		streams = append(streams, readResults(t, p.out))
	}
	for i := 1; i < len(streams); i++ {
		if diff := cmp.Diff(streams[0], streams[i]); diff != "" {
			t.Fatalf("stream %d differs (-workers=1 +other):\n%s", i, diff)
		}
	}
	assert.Equal(t, referenceBelow(t, testLimit), streams[0])
}

// runInterrupted cancels every run after `every` chunks and resumes until done.
func runInterrupted(t *testing.T, p paths, r prodsearch.Range, every int, extra ...prodsearch.Option) int {
	t.Helper()
	interruptions := 0
	for {
		ctx, cancel := context.WithCancel(context.Background())
		chunks := 0
		s := newSearcher(t, p.options(append(extra, prodsearch.WithProgress(func(prodsearch.Progress) {
			chunks++
			if chunks == every {
				cancel()
			}
		}))...)...)

		report, err := s.Run(ctx, r)
		cancel()
		if report.Phase == prodsearch.PhaseDone {
			require.NoError(t, err)
			return interruptions
		}
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, prodsearch.PhaseCancelled, report.Phase)
		assert.Equal(t, every, report.Chunks)
		interruptions++
		require.Less(t, interruptions, 100)
	}
}

func TestRun_IdempotentResume(t *testing.T) {
	for _, every := range []int{1, 3, 7} {
		p := newPaths(t)
		n := runInterrupted(t, p, prodsearch.Range{Start: 1, Limit: testLimit}, every)
		assert.Positive(t, n)

		if diff := cmp.Diff(referenceBelow(t, testLimit), readResults(t, p.out)); diff != "" {
			t.Fatalf("every=%d: results mismatch (-want +got):\n%s", every, diff)
		}
	}
}

func TestRun_ResumeReportsPosition(t *testing.T) {
	p := newPaths(t)
	ctx, cancel := context.WithCancel(context.Background())
	s := newSearcher(t, p.options(prodsearch.WithProgress(func(pr prodsearch.Progress) {
		if pr.NextPosition >= 5_001 {
			cancel()
		}
	}))...)
	_, err := s.Run(ctx, prodsearch.Range{Start: 1, Limit: testLimit})
	require.ErrorIs(t, err, context.Canceled)

	s = newSearcher(t, p.options()...)
	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: testLimit})
	require.NoError(t, err)
	assert.True(t, report.Resumed)
	assert.Equal(t, uint64(5_001), report.ResumedFrom)
	assert.Equal(t, uint64(testLimit), report.NextPosition)
	assert.Equal(t, 15, report.Chunks)
}

func TestRun_ResumeDiscardsUncommittedTail(t *testing.T) {
	p := newPaths(t)
	ctx, cancel := context.WithCancel(context.Background())
	s := newSearcher(t, p.options(prodsearch.WithProgress(func(prodsearch.Progress) { cancel() }))...)
	_, err := s.Run(ctx, prodsearch.Range{Start: 1, Limit: testLimit})
	require.ErrorIs(t, err, context.Canceled)

	// Simulate a crash after the next chunk's results hit the disk but before
	// its checkpoint: one complete line above the checkpoint and a torn line.
	f, err := os.OpenFile(p.out, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("1006\n10")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s = newSearcher(t, p.options()...)
	_, err = s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: testLimit})
	require.NoError(t, err)

	if diff := cmp.Diff(referenceBelow(t, testLimit), readResults(t, p.out)); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_CheckpointFailureKeepsLastCheckpoint(t *testing.T) {
	p := newPaths(t)
	r := prodsearch.Range{Start: 1, Limit: testLimit}

	ctx, cancel := context.WithCancel(context.Background())
	chunks := 0
	s := newSearcher(t, p.options(prodsearch.WithProgress(func(prodsearch.Progress) {
		chunks++
		if chunks == 2 {
			cancel()
		}
	}))...)
	_, err := s.Run(ctx, r)
	require.ErrorIs(t, err, context.Canceled)

	before, err := checkpoint.Load(p.state)
	require.NoError(t, err)
	require.Equal(t, uint64(2_001), before.NextPosition)

	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule(filepath.Base(p.state), fs.Fault{FailOnRename: true})

	mc := &prodsearch.BasicMetricsCollector{}
	s = newSearcher(t, p.options(prodsearch.WithFileSystem(faulty), prodsearch.WithMetricsCollector(mc))...)
	report, err := s.Run(context.Background(), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, prodsearch.ErrIOFailure)
	assert.ErrorIs(t, err, fs.ErrInjected)
	var ioErr *prodsearch.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "save state", ioErr.Op)
	assert.Equal(t, prodsearch.PhaseFailed, report.Phase)
	assert.Equal(t, prodsearch.PhaseFailed, s.Phase())
	assert.Equal(t, int64(1), mc.GetStats().CheckpointErrors)

	after, err := checkpoint.Load(p.state)
	require.NoError(t, err)
	assert.Equal(t, before.NextPosition, after.NextPosition)
	assert.Equal(t, before.FoundCount, after.FoundCount)

	s = newSearcher(t, p.options()...)
	_, err = s.Run(context.Background(), r)
	require.NoError(t, err)
	if diff := cmp.Diff(referenceBelow(t, testLimit), readResults(t, p.out)); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_AppendFailure(t *testing.T) {
	p := newPaths(t)
	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule(filepath.Base(p.out), fs.Fault{FailOnSync: true})

	s := newSearcher(t, p.options(prodsearch.WithFileSystem(faulty))...)
	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: testLimit})
	require.ErrorIs(t, err, prodsearch.ErrIOFailure)
	assert.Equal(t, prodsearch.PhaseFailed, report.Phase)

	// Only the initial checkpoint exists; it accounts for no results.
	state, err := checkpoint.Load(p.state)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.NextPosition)
	assert.Zero(t, state.FoundCount)
}

func TestRun_FreshCrashBeforeTruncate(t *testing.T) {
	p := newPaths(t)
	r := prodsearch.Range{Start: 1, Limit: 5_000}
	s := newSearcher(t, p.options()...)
	_, err := s.Run(context.Background(), r)
	require.NoError(t, err)

	before, err := os.ReadFile(p.out)
	require.NoError(t, err)

	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule(filepath.Base(p.out), fs.Fault{FailOnOpen: true})
	s = newSearcher(t, p.options(prodsearch.WithFresh(true), prodsearch.WithFileSystem(faulty))...)
	_, err = s.Run(context.Background(), r)
	require.ErrorIs(t, err, prodsearch.ErrIOFailure)

	// The new checkpoint is in place; the old results are still on disk.
	state, err := checkpoint.Load(p.state)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.NextPosition)
	assert.Zero(t, state.FoundCount)
	after, err := os.ReadFile(p.out)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	s = newSearcher(t, p.options()...)
	report, err := s.Run(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, report.Resumed)
	assert.Equal(t, referenceBelow(t, 5_000), readResults(t, p.out))
}

func TestRun_LockUsesFileSystem(t *testing.T) {
	p := newPaths(t)
	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule(checkpoint.LockSuffix, fs.Fault{FailOnOpen: true})

	s := newSearcher(t, p.options(prodsearch.WithFileSystem(faulty))...)
	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 1_000})
	require.ErrorIs(t, err, prodsearch.ErrIOFailure)
	assert.ErrorIs(t, err, fs.ErrInjected)
	var ioErr *prodsearch.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "lock", ioErr.Op)
	assert.Equal(t, prodsearch.PhaseFailed, report.Phase)

	_, statErr := os.Stat(p.state)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRun_CorruptState(t *testing.T) {
	p := newPaths(t)
	require.NoError(t, os.WriteFile(p.state, []byte(`{"next_position": -5}`), 0o644))

	s := newSearcher(t, p.options()...)
	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 5_000})
	require.ErrorIs(t, err, prodsearch.ErrCorruptState)
	assert.Equal(t, prodsearch.PhaseFailed, report.Phase)

	s = newSearcher(t, p.options(prodsearch.WithFresh(true))...)
	report, err = s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 5_000})
	require.NoError(t, err)
	assert.False(t, report.Resumed)
	assert.Equal(t, referenceBelow(t, 5_000), readResults(t, p.out))
}

func TestRun_ResultsDisagreeWithCheckpoint(t *testing.T) {
	p := newPaths(t)
	s := newSearcher(t, p.options()...)
	_, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 5_000})
	require.NoError(t, err)

	// Lose a committed line.
	values := readResults(t, p.out)
	require.NoError(t, os.WriteFile(p.out, []byte("1\n2\n"), 0o644))
	require.Greater(t, len(values), 2)

	s = newSearcher(t, p.options()...)
	_, err = s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 10_000})
	require.ErrorIs(t, err, prodsearch.ErrCorruptState)
}

func TestRun_OrphanResults(t *testing.T) {
	p := newPaths(t)
	require.NoError(t, os.WriteFile(p.out, []byte("1\n2\n4\n"), 0o644))

	s := newSearcher(t, p.options()...)
	_, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 5_000})
	require.ErrorIs(t, err, prodsearch.ErrCorruptState)

	_, statErr := os.Stat(p.state)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRun_FreshTruncatesResults(t *testing.T) {
	p := newPaths(t)
	s := newSearcher(t, p.options()...)
	_, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 5_000})
	require.NoError(t, err)

	s = newSearcher(t, p.options(prodsearch.WithFresh(true))...)
	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1_000, Limit: 3_000})
	require.NoError(t, err)
	assert.False(t, report.Resumed)

	want := testutil.ProductiveBelow(1_000, 3_000)
	assert.Equal(t, want, readResults(t, p.out))
	assert.Equal(t, uint64(len(want)), report.FoundCount)
}

func TestRun_InvalidRange(t *testing.T) {
	p := newPaths(t)
	s := newSearcher(t, p.options()...)

	report, err := s.Run(context.Background(), prodsearch.Range{Start: 10, Limit: 5})
	require.ErrorIs(t, err, prodsearch.ErrInvalidRange)
	assert.Nil(t, report)

	var re *prodsearch.RangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, uint64(10), re.Start)
	assert.Equal(t, uint64(5), re.Limit)

	for _, name := range []string{p.out, p.state} {
		_, statErr := os.Stat(name)
		assert.True(t, errors.Is(statErr, os.ErrNotExist), name)
	}
	assert.Equal(t, prodsearch.PhaseIdle, s.Phase())
}

func TestRun_EmptyRange(t *testing.T) {
	p := newPaths(t)
	s := newSearcher(t, p.options()...)

	report, err := s.Run(context.Background(), prodsearch.Range{Start: 42, Limit: 42})
	require.NoError(t, err)
	assert.Equal(t, prodsearch.PhaseDone, report.Phase)
	assert.Zero(t, report.Chunks)

	state, err := checkpoint.Load(p.state)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), state.NextPosition)
	assert.Zero(t, state.FoundCount)
	assert.Empty(t, readResults(t, p.out))
}

func TestRun_LimitChanges(t *testing.T) {
	p := newPaths(t)
	s := newSearcher(t, p.options()...)
	_, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 5_000})
	require.NoError(t, err)

	// A lower limit than the saved position finishes without scanning.
	s = newSearcher(t, p.options()...)
	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 3_000})
	require.NoError(t, err)
	assert.Equal(t, prodsearch.PhaseDone, report.Phase)
	assert.Zero(t, report.Chunks)
	assert.Equal(t, uint64(5_000), report.NextPosition)

	// A higher limit extends the search.
	s = newSearcher(t, p.options()...)
	report, err = s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 12_000})
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000), report.ResumedFrom)
	assert.Equal(t, 7, report.Chunks)
	assert.Equal(t, referenceBelow(t, 12_000), readResults(t, p.out))

	state, err := checkpoint.Load(p.state)
	require.NoError(t, err)
	assert.Equal(t, uint64(12_000), state.Limit)
}

func TestRun_ConcurrentRun(t *testing.T) {
	p := newPaths(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	s := newSearcher(t, p.options(prodsearch.WithProgress(func(prodsearch.Progress) {
		once.Do(func() {
			close(started)
			<-release
		})
	}))...)

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 3_000})
		done <- err
	}()

	<-started
	_, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 3_000})
	assert.ErrorIs(t, err, prodsearch.ErrRunning)
	close(release)
	require.NoError(t, <-done)
}

type recordingSink struct {
	mu     sync.Mutex
	values []uint64
	his    []uint64
	err    error
}

func (r *recordingSink) Commit(_ context.Context, hi uint64, values []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.his = append(r.his, hi)
	r.values = append(r.values, values...)
	return nil
}

func TestRun_Sink(t *testing.T) {
	p := newPaths(t)
	sink := &recordingSink{}
	s := newSearcher(t, p.options(prodsearch.WithSink(sink))...)

	_, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 5_000})
	require.NoError(t, err)
	assert.Equal(t, readResults(t, p.out), sink.values)
	assert.Equal(t, []uint64{1_001, 2_001, 3_001, 4_001, 5_000}, sink.his)
}

func TestRun_SinkFailure(t *testing.T) {
	p := newPaths(t)
	boom := errors.New("boom")
	s := newSearcher(t, p.options(prodsearch.WithSink(&recordingSink{err: boom}))...)

	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 5_000})
	require.ErrorIs(t, err, prodsearch.ErrIOFailure)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, prodsearch.PhaseFailed, report.Phase)

	state, err := checkpoint.Load(p.state)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.NextPosition)
}

func TestRun_Archive(t *testing.T) {
	p := newPaths(t)
	store := blobstore.NewLocalStore(t.TempDir())
	a := archive.New(store, func(o *archive.Options) {
		o.Compression = archive.LZ4
		o.Keep = 2
	})
	mc := &prodsearch.BasicMetricsCollector{}

	s := newSearcher(t, p.options(
		prodsearch.WithArchiver(a, 4),
		prodsearch.WithMetricsCollector(mc),
	)...)
	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 10_000})
	require.NoError(t, err)
	// Every 4 of 10 chunks, plus the final partial interval.
	assert.Equal(t, 3, report.Archives)
	assert.Equal(t, int64(3), mc.GetStats().ArchiveCount)
	assert.Zero(t, mc.GetStats().ArchiveErrors)

	m, err := a.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000), m.NextPosition)
	assert.Equal(t, report.FoundCount, m.FoundCount)

	restored := newPaths(t)
	require.NoError(t, a.Restore(context.Background(), m, restored.out, restored.state))
	assert.Equal(t, readResults(t, p.out), readResults(t, restored.out))

	state, err := checkpoint.Load(restored.state)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000), state.NextPosition)
}

type failingStore struct{ blobstore.Store }

func (failingStore) Put(context.Context, string, io.Reader) error { return errors.New("offline") }

func TestRun_ArchiveFailureIsNotFatal(t *testing.T) {
	p := newPaths(t)
	a := archive.New(failingStore{blobstore.NewMemoryStore()}, func(o *archive.Options) {
		o.Compression = archive.None
	})
	mc := &prodsearch.BasicMetricsCollector{}

	s := newSearcher(t, p.options(prodsearch.WithArchiver(a, 1), prodsearch.WithMetricsCollector(mc))...)
	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 3_000})
	require.NoError(t, err)
	assert.Equal(t, prodsearch.PhaseDone, report.Phase)
	assert.Zero(t, report.Archives)
	assert.Positive(t, mc.GetStats().ArchiveErrors)
}

// undeletableStore publishes normally but cannot delete old snapshots.
type undeletableStore struct{ *blobstore.MemoryStore }

func (undeletableStore) Delete(context.Context, string) error { return errors.New("delete denied") }

func TestRun_ArchivePruneFailure(t *testing.T) {
	p := newPaths(t)
	a := archive.New(undeletableStore{blobstore.NewMemoryStore()}, func(o *archive.Options) {
		o.Compression = archive.None
		o.Keep = 1
	})
	mc := &prodsearch.BasicMetricsCollector{}

	s := newSearcher(t, p.options(prodsearch.WithArchiver(a, 1), prodsearch.WithMetricsCollector(mc))...)
	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 4_000})
	require.NoError(t, err)
	// One snapshot per chunk; the final archive has nothing new to publish.
	assert.Equal(t, 4, report.Archives)
	assert.Equal(t, int64(4), mc.GetStats().ArchiveCount)
	assert.Zero(t, mc.GetStats().ArchiveErrors)

	m, err := a.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), m.Sequence)
	assert.Equal(t, uint64(4_000), m.NextPosition)
}

func TestRun_Metrics(t *testing.T) {
	p := newPaths(t)
	mc := &prodsearch.BasicMetricsCollector{}
	s := newSearcher(t, p.options(prodsearch.WithMetricsCollector(mc))...)

	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 5_500})
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(6), stats.ChunkCount)
	assert.Equal(t, uint64(5_499), stats.IntegersScanned)
	assert.Equal(t, int64(report.FoundCount), stats.Matches)
	// The initial checkpoint plus one per chunk.
	assert.Equal(t, int64(7), stats.CheckpointCount)
	assert.Zero(t, stats.CheckpointErrors)
	assert.Zero(t, stats.ChunkErrors)
}

func TestNew_Validation(t *testing.T) {
	_, err := prodsearch.New(prodsearch.WithChunkSize(0))
	assert.ErrorIs(t, err, prodsearch.ErrInvalidChunkSize)

	_, err = prodsearch.New(prodsearch.WithChunkSize(prodsearch.MaxChunkSize + 1))
	assert.ErrorIs(t, err, prodsearch.ErrInvalidChunkSize)

	_, err = prodsearch.New(prodsearch.WithWorkers(-1))
	assert.ErrorIs(t, err, prodsearch.ErrInvalidWorkers)

	s, err := prodsearch.New(prodsearch.WithChunkSize(prodsearch.MaxChunkSize), prodsearch.WithSieveLimit(1_000))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), s.Oracle().Sieve().Limit())
	assert.True(t, s.Predicate().IsProductive(2026))
	assert.Positive(t, s.Workers())
	assert.Equal(t, prodsearch.PhaseIdle, s.Phase())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", prodsearch.PhaseIdle.String())
	assert.Equal(t, "checkpointing", prodsearch.PhaseCheckpointing.String())
	assert.Equal(t, "cancelled", prodsearch.PhaseCancelled.String())
	assert.Equal(t, "phase(99)", prodsearch.Phase(99).String())
}
