package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/prodsearch/blobstore"
	"github.com/hupe1980/prodsearch/checkpoint"
	"github.com/hupe1980/prodsearch/codec"
	"github.com/hupe1980/prodsearch/internal/fs"
	"github.com/hupe1980/prodsearch/persistence"
)

var (
	// ErrNoSnapshot is returned by Latest when nothing was published yet.
	ErrNoSnapshot = errors.New("archive: no snapshot")
	// ErrChecksumMismatch is returned by Restore when a blob does not match its
	// manifest entry.
	ErrChecksumMismatch = errors.New("archive: checksum mismatch")
	// ErrPrune is returned by Snapshot together with the published manifest
	// when older snapshots could not be deleted.
	ErrPrune = errors.New("archive: prune")
)

const (
	latestName   = "LATEST"
	snapshotsDir = "snapshots"
	manifestName = "MANIFEST.json"
	stateName    = "state.json"
	resultsName  = "found.txt"
)

// Options configures an Archiver.
type Options struct {
	Compression Compression
	// Prefix is prepended to every blob name.
	Prefix string
	// Keep is the number of snapshots retained. 0 keeps all.
	Keep  int
	Codec codec.Codec
	FS    fs.FileSystem
	// Now is the clock used for manifest timestamps.
	Now func() time.Time
}

// Archiver uploads snapshots to a store. Methods are safe for concurrent use.
type Archiver struct {
	store blobstore.Store
	opts  Options

	mu        sync.Mutex
	seq       uint64
	seqLoaded bool
}

// New creates an Archiver.
func New(store blobstore.Store, optFns ...func(o *Options)) *Archiver {
	opts := Options{
		Compression: Zstd,
		Codec:       codec.Default,
		FS:          fs.Default,
		Now:         time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Compression == "" {
		opts.Compression = Zstd
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.FS == nil {
		opts.FS = fs.Default
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Archiver{store: store, opts: opts}
}

// Store returns the underlying blob store.
func (a *Archiver) Store() blobstore.Store { return a.store }

// Compression returns the configured compression.
func (a *Archiver) Compression() Compression { return a.opts.Compression }

func (a *Archiver) name(parts ...string) string {
	return path.Join(append([]string{a.opts.Prefix}, parts...)...)
}

func (a *Archiver) snapshotDir(seq uint64) string {
	return a.name(snapshotsDir, fmt.Sprintf("%020d", seq))
}

// Snapshot uploads the result file and checkpoint and publishes a manifest for
// them. The checkpoint must be valid; the result file is uploaded as it is on
// disk. A non-nil manifest means the snapshot was published, even when the
// error reports a failed prune (ErrPrune).
func (a *Archiver) Snapshot(ctx context.Context, resultsPath, statePath string) (*Manifest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := checkpoint.NewManager(a.opts.FS, a.opts.Codec, statePath).Load()
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("archive: no checkpoint at %s", statePath)
	}
	stateData, err := persistence.ReadFile(a.opts.FS, statePath)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", statePath, err)
	}

	if !a.seqLoaded {
		seq, err := a.latestSequence(ctx)
		if err != nil {
			return nil, err
		}
		a.seq, a.seqLoaded = seq, true
	}
	seq := a.seq + 1
	dir := a.snapshotDir(seq)

	m := &Manifest{
		Version:      ManifestVersion,
		Sequence:     seq,
		CreatedAt:    a.opts.Now().UTC(),
		Compression:  a.opts.Compression,
		NextPosition: state.NextPosition,
		FoundCount:   state.FoundCount,
		RunID:        state.RunID,
	}

	m.Results, err = a.uploadResults(ctx, path.Join(dir, resultsName+a.opts.Compression.Ext()), resultsPath)
	if err != nil {
		return nil, err
	}

	m.State = Object{
		Name:       path.Join(dir, stateName),
		Size:       int64(len(stateData)),
		StoredSize: int64(len(stateData)),
		CRC32:      persistence.Checksum(stateData),
	}
	if err := a.store.Put(ctx, m.State.Name, bytes.NewReader(stateData)); err != nil {
		return nil, fmt.Errorf("archive: upload %s: %w", m.State.Name, err)
	}

	manifestData, err := a.opts.Codec.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("archive: encode manifest: %w", err)
	}
	manifestPath := path.Join(dir, manifestName)
	if err := a.store.Put(ctx, manifestPath, bytes.NewReader(manifestData)); err != nil {
		return nil, fmt.Errorf("archive: upload %s: %w", manifestPath, err)
	}

	if err := a.publish(ctx, seq, manifestPath); err != nil {
		return nil, err
	}
	a.seq = seq

	if err := a.prune(ctx, seq); err != nil {
		return m, fmt.Errorf("%w: %w", ErrPrune, err)
	}
	return m, nil
}

func (a *Archiver) uploadResults(ctx context.Context, name, resultsPath string) (Object, error) {
	f, err := a.opts.FS.OpenFile(resultsPath, os.O_RDONLY, 0)
	if err != nil {
		return Object{}, fmt.Errorf("archive: open %s: %w", resultsPath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	zw, err := compressor(&buf, a.opts.Compression)
	if err != nil {
		return Object{}, err
	}
	cw := persistence.NewChecksumWriter(zw)
	if _, err := io.Copy(cw, f); err != nil {
		_ = zw.Close()
		return Object{}, fmt.Errorf("archive: compress %s: %w", resultsPath, err)
	}
	if err := zw.Close(); err != nil {
		return Object{}, fmt.Errorf("archive: compress %s: %w", resultsPath, err)
	}

	obj := Object{
		Name:       name,
		Size:       cw.Len(),
		StoredSize: int64(buf.Len()),
		CRC32:      cw.Sum(),
	}
	if err := a.store.Put(ctx, name, &buf); err != nil {
		return Object{}, fmt.Errorf("archive: upload %s: %w", name, err)
	}
	return obj, nil
}

func (a *Archiver) publish(ctx context.Context, seq uint64, manifestPath string) error {
	if c, ok := a.store.(blobstore.Committer); ok {
		if err := c.Commit(ctx, seq, manifestPath); err != nil {
			return fmt.Errorf("archive: commit snapshot %d: %w", seq, err)
		}
		return nil
	}
	if err := a.store.Put(ctx, a.name(latestName), strings.NewReader(manifestPath)); err != nil {
		return fmt.Errorf("archive: publish snapshot %d: %w", seq, err)
	}
	return nil
}

// latestPointer returns the manifest name of the newest snapshot.
func (a *Archiver) latestPointer(ctx context.Context) (uint64, string, error) {
	if c, ok := a.store.(blobstore.Committer); ok {
		seq, name, err := c.Latest(ctx)
		if errors.Is(err, blobstore.ErrNotFound) {
			return 0, "", ErrNoSnapshot
		}
		return seq, name, err
	}

	data, err := blobstore.ReadAll(ctx, a.store, a.name(latestName))
	if errors.Is(err, blobstore.ErrNotFound) {
		return 0, "", ErrNoSnapshot
	}
	if err != nil {
		return 0, "", err
	}
	name := strings.TrimSpace(string(data))
	seq, err := sequenceOf(name)
	if err != nil {
		return 0, "", err
	}
	return seq, name, nil
}

func (a *Archiver) latestSequence(ctx context.Context) (uint64, error) {
	seq, _, err := a.latestPointer(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return 0, nil
	}
	return seq, err
}

// sequenceOf extracts the sequence from ".../snapshots/<seq>/MANIFEST.json".
func sequenceOf(name string) (uint64, error) {
	dir := path.Base(path.Dir(name))
	seq, err := strconv.ParseUint(dir, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("archive: malformed snapshot name %q", name)
	}
	return seq, nil
}

// Latest returns the manifest of the newest published snapshot.
func (a *Archiver) Latest(ctx context.Context) (*Manifest, error) {
	_, name, err := a.latestPointer(ctx)
	if err != nil {
		return nil, err
	}
	data, err := blobstore.ReadAll(ctx, a.store, name)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", name, err)
	}
	var m Manifest
	if err := a.opts.Codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("archive: decode %s: %w", name, err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("archive: unsupported manifest version %d", m.Version)
	}
	return &m, nil
}

// Restore downloads a snapshot and replaces the local result and state files.
// Both blobs are fetched and verified before either local file changes; the
// result file is then renamed into place and the state file written last.
func (a *Archiver) Restore(ctx context.Context, m *Manifest, resultsPath, statePath string) error {
	stateData, err := blobstore.ReadAll(ctx, a.store, m.State.Name)
	if err != nil {
		return fmt.Errorf("archive: fetch %s: %w", m.State.Name, err)
	}
	if err := verify(m.State, int64(len(stateData)), persistence.Checksum(stateData)); err != nil {
		return err
	}

	tmpName, err := a.fetchResults(ctx, m, resultsPath)
	if err != nil {
		return err
	}
	if err := a.opts.FS.Rename(tmpName, resultsPath); err != nil {
		_ = a.opts.FS.Remove(tmpName)
		return fmt.Errorf("archive: rename %s: %w", resultsPath, err)
	}
	if err := a.opts.FS.SyncDir(filepath.Dir(resultsPath)); err != nil {
		return fmt.Errorf("archive: sync dir %s: %w", filepath.Dir(resultsPath), err)
	}
	return persistence.WriteFile(a.opts.FS, statePath, stateData)
}

// fetchResults decompresses the result blob into a synced temporary file next
// to resultsPath and returns its name. The file is removed on failure.
func (a *Archiver) fetchResults(ctx context.Context, m *Manifest, resultsPath string) (name string, err error) {
	rc, err := a.store.Get(ctx, m.Results.Name)
	if err != nil {
		return "", fmt.Errorf("archive: fetch %s: %w", m.Results.Name, err)
	}
	defer rc.Close()

	dec, err := decompressor(rc, m.Compression)
	if err != nil {
		return "", err
	}
	defer dec.Close()

	tmpName := persistence.TempName(resultsPath)
	f, err := a.opts.FS.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("archive: create temp file: %w", err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
		}
		if err != nil {
			_ = a.opts.FS.Remove(tmpName)
		}
	}()

	cw := persistence.NewChecksumWriter(f)
	if _, err = io.Copy(cw, dec); err != nil {
		return "", fmt.Errorf("archive: decompress %s: %w", m.Results.Name, err)
	}
	if err = verify(m.Results, cw.Len(), cw.Sum()); err != nil {
		return "", err
	}
	if err = f.Sync(); err != nil {
		return "", fmt.Errorf("archive: sync %s: %w", tmpName, err)
	}
	err = f.Close()
	f = nil
	if err != nil {
		return "", fmt.Errorf("archive: close %s: %w", tmpName, err)
	}
	return tmpName, nil
}

func verify(o Object, size int64, sum uint32) error {
	if size != o.Size || sum != o.CRC32 {
		return fmt.Errorf("%w: %s: got %d bytes crc %08x, manifest has %d bytes crc %08x",
			ErrChecksumMismatch, o.Name, size, sum, o.Size, o.CRC32)
	}
	return nil
}

// prune deletes snapshots older than the newest Keep.
func (a *Archiver) prune(ctx context.Context, current uint64) error {
	if a.opts.Keep <= 0 || current <= uint64(a.opts.Keep) {
		return nil
	}
	cutoff := current - uint64(a.opts.Keep)

	names, err := a.store.List(ctx, a.name(snapshotsDir)+"/")
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range names {
		seq, err := sequenceOf(name)
		if err != nil || seq > cutoff {
			continue
		}
		if err := a.store.Delete(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
