package resultlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/prodsearch/internal/fs"
)

// Summary describes the contents of a result file.
type Summary struct {
	Lines           uint64
	Distinct        uint64
	Min             uint64
	Max             uint64
	Duplicates      uint64
	OrderViolations uint64 // lines not greater than the previous line
	Malformed       uint64
	TornTail        bool

	// Values holds every distinct value read.
	Values *roaring64.Bitmap
}

// Clean reports whether the file is a well-formed, strictly increasing stream.
func (s *Summary) Clean() bool {
	return s.Duplicates == 0 && s.OrderViolations == 0 && s.Malformed == 0 && !s.TornTail
}

// Audit reads a result stream and summarizes it. Unlike Open it does not stop at
// the first problem.
func Audit(r io.Reader) (*Summary, error) {
	sum := &Summary{Values: roaring64.New()}
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		prev    uint64
		hasPrev bool
	)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 && line[len(line)-1] != '\n' {
			sum.TornTail = true
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sum.Lines++

		v, perr := strconv.ParseUint(string(line[:len(line)-1]), 10, 64)
		if perr != nil {
			sum.Malformed++
			continue
		}
		if sum.Values.Contains(v) {
			sum.Duplicates++
		} else {
			sum.Values.Add(v)
		}
		if hasPrev && v <= prev {
			sum.OrderViolations++
		}
		prev, hasPrev = v, true
	}

	sum.Distinct = sum.Values.GetCardinality()
	if sum.Distinct > 0 {
		sum.Min = sum.Values.Minimum()
		sum.Max = sum.Values.Maximum()
	}
	return sum, nil
}

// AuditFile audits the result file at path.
func AuditFile(fsys fs.FileSystem, path string) (*Summary, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("resultlog: open %s: %w", path, err)
	}
	defer f.Close()
	return Audit(f)
}

// ReadAll returns every value in the result file in file order. It fails on the
// first malformed line; a torn final line is ignored.
func ReadAll(fsys fs.FileSystem, path string) ([]uint64, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("resultlog: open %s: %w", path, err)
	}
	defer f.Close()

	var out []uint64
	br := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 && line[len(line)-1] != '\n' {
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("resultlog: read %s: %w", path, err)
		}
		v, err := strconv.ParseUint(string(line[:len(line)-1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("resultlog: %s:%d: %w", path, len(out)+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}
