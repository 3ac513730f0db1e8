package prodsearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/prodsearch/checkpoint"
)

var (
	// ErrInvalidRange is returned by Run when start exceeds limit.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidChunkSize is returned by New for a chunk size outside
	// [1, MaxChunkSize].
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidWorkers is returned by New for a negative worker count.
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrCorruptState is returned when the state file or the result stream
	// cannot be trusted. A fresh start is required to continue.
	ErrCorruptState = checkpoint.ErrCorruptState

	// ErrIOFailure is returned when writing results or the checkpoint fails. The
	// last saved checkpoint remains the resume point.
	ErrIOFailure = errors.New("io failure")

	// ErrLocked is returned when another process holds the state file lock.
	ErrLocked = checkpoint.ErrLocked

	// ErrRunning is returned when Run is called on a Searcher that is already
	// running.
	ErrRunning = errors.New("search already running")
)

// RangeError reports a range with Start > Limit.
type RangeError struct {
	Start uint64
	Limit uint64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: start %d exceeds limit %d", e.Start, e.Limit)
}

// Is reports whether target is ErrInvalidRange.
func (e *RangeError) Is(target error) bool { return target == ErrInvalidRange }

// IOError describes a failed write.
//
// The original underlying error can be accessed via errors.Unwrap.
type IOError struct {
	Op    string
	Path  string
	cause error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.cause)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Path, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// Is reports whether target is ErrIOFailure.
func (e *IOError) Is(target error) bool { return target == ErrIOFailure }

// translateError maps a storage error to the public taxonomy. Corrupt state and
// lock contention pass through; everything else becomes an IOError.
func translateError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCorruptState) || errors.Is(err, ErrLocked) {
		return err
	}
	return &IOError{Op: op, Path: path, cause: err}
}
