package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrConflict is returned by a Committer when the sequence was already taken.
var ErrConflict = errors.New("blobstore: commit conflict")

// Store reads and writes whole named blobs. Put replaces any existing blob of
// the same name; readers never observe a partial write.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader) error
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	// List returns the names with the given prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Committer publishes a pointer to the latest snapshot with compare-and-swap
// semantics. Commit fails with ErrConflict if seq was already committed.
type Committer interface {
	Commit(ctx context.Context, seq uint64, name string) error
	// Latest returns the highest committed sequence and its name, or ErrNotFound.
	Latest(ctx context.Context) (seq uint64, name string, err error)
}

// ReadAll fetches a blob into memory.
func ReadAll(ctx context.Context, s Store, name string) ([]byte, error) {
	rc, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
