package resultlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/hupe1980/prodsearch/checkpoint"
	"github.com/hupe1980/prodsearch/internal/fs"
)

// ErrOutOfOrder is returned by Append when a value does not exceed its
// predecessor.
var ErrOutOfOrder = errors.New("resultlog: values must be strictly increasing")

// Stream appends results to a file.
type Stream struct {
	fs      fs.FileSystem
	path    string
	f       fs.File
	buf     []byte
	count   uint64
	last    uint64
	hasLast bool
}

// Reconciliation describes what Open removed from the file.
type Reconciliation struct {
	Kept          uint64 // committed lines retained
	DroppedLines  uint64 // complete lines at or above the resume position
	TornBytes     int64  // bytes of an unterminated final line
	TruncatedFrom int64  // new file size, or -1 when nothing was cut
}

// Create truncates or creates path and returns an empty stream.
func Create(fsys fs.FileSystem, path string) (*Stream, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("resultlog: create %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("resultlog: sync %s: %w", path, err)
	}
	return &Stream{fs: fsys, path: path, f: f}, nil
}

// Open reconciles an existing file with a checkpoint and opens it for appending.
// Lines at or above next and any torn final line are cut off; the count of the
// remaining lines must equal expected. A missing file is treated as empty.
func Open(fsys fs.FileSystem, path string, next, expected uint64) (*Stream, *Reconciliation, error) {
	if fsys == nil {
		fsys = fs.Default
	}

	rec, last, err := scan(fsys, path, next)
	if err != nil {
		return nil, nil, err
	}
	if rec.Kept != expected {
		return nil, nil, fmt.Errorf("resultlog: %s: %w: %d committed results, checkpoint records %d",
			path, checkpoint.ErrCorruptState, rec.Kept, expected)
	}

	if rec.TruncatedFrom >= 0 {
		if err := fsys.Truncate(path, rec.TruncatedFrom); err != nil {
			return nil, nil, fmt.Errorf("resultlog: truncate %s: %w", path, err)
		}
	}

	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("resultlog: open %s: %w", path, err)
	}
	if rec.TruncatedFrom >= 0 {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return nil, nil, fmt.Errorf("resultlog: sync %s: %w", path, err)
		}
	}

	s := &Stream{fs: fsys, path: path, f: f, count: rec.Kept}
	if rec.Kept > 0 {
		s.last, s.hasLast = last, true
	}
	return s, rec, nil
}

// scan walks the file and decides where the committed prefix ends.
func scan(fsys fs.FileSystem, path string, next uint64) (*Reconciliation, uint64, error) {
	rec := &Reconciliation{TruncatedFrom: -1}

	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if errors.Is(err, os.ErrNotExist) {
		return rec, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("resultlog: open %s: %w", path, err)
	}
	defer f.Close()

	var (
		r       = bufio.NewReaderSize(f, 64*1024)
		offset  int64
		lineNo  uint64
		last    uint64
		hasLast bool
		cut     bool
	)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 && line[len(line)-1] != '\n' {
			// Unterminated tail: a write interrupted mid-line.
			rec.TornBytes = int64(len(line))
			if !cut {
				rec.TruncatedFrom = offset
			}
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("resultlog: read %s: %w", path, err)
		}
		lineNo++

		if !cut {
			v, perr := strconv.ParseUint(string(line[:len(line)-1]), 10, 64)
			if perr != nil {
				return nil, 0, fmt.Errorf("resultlog: %s:%d: %w: %q is not a result", path, lineNo, checkpoint.ErrCorruptState, line[:len(line)-1])
			}
			if v >= next {
				cut = true
				rec.TruncatedFrom = offset
			} else {
				if hasLast && v <= last {
					return nil, 0, fmt.Errorf("resultlog: %s:%d: %w: %d does not exceed %d", path, lineNo, checkpoint.ErrCorruptState, v, last)
				}
				last, hasLast = v, true
				rec.Kept++
			}
		}
		if cut {
			rec.DroppedLines++
		}
		offset += int64(len(line))
	}
	return rec, last, nil
}

// Path returns the file path.
func (s *Stream) Path() string { return s.path }

// Count returns the number of results in the file.
func (s *Stream) Count() uint64 { return s.count }

// Last returns the greatest value in the file.
func (s *Stream) Last() (uint64, bool) { return s.last, s.hasLast }

// Append writes values and fsyncs the file. Values must be strictly increasing
// and exceed every value already in the stream; nothing is written otherwise.
func (s *Stream) Append(values []uint64) error {
	if len(values) == 0 {
		return nil
	}
	last, hasLast := s.last, s.hasLast
	for _, v := range values {
		if hasLast && v <= last {
			return fmt.Errorf("%w: %d after %d", ErrOutOfOrder, v, last)
		}
		last, hasLast = v, true
	}

	s.buf = s.buf[:0]
	for _, v := range values {
		s.buf = strconv.AppendUint(s.buf, v, 10)
		s.buf = append(s.buf, '\n')
	}
	if _, err := s.f.Write(s.buf); err != nil {
		return fmt.Errorf("resultlog: write %s: %w", s.path, err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("resultlog: sync %s: %w", s.path, err)
	}

	s.count += uint64(len(values))
	s.last, s.hasLast = last, true
	return nil
}

// Close closes the underlying file.
func (s *Stream) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
