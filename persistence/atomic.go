package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hupe1980/prodsearch/internal/fs"
)

// TempSuffix marks in-flight temporary files. Leftovers from a crash can be
// removed safely; they never hold the live copy.
const TempSuffix = ".tmp-"

// TempName returns a unique temporary path next to filename.
func TempName(filename string) string {
	return filename + TempSuffix + uuid.NewString()
}

// SaveToFile atomically replaces filename with the bytes produced by writeFunc.
// If fsys is nil, fs.Default is used.
func SaveToFile(fsys fs.FileSystem, filename string, writeFunc func(io.Writer) error) error {
	if fsys == nil {
		fsys = fs.Default
	}
	dir := filepath.Dir(filename)
	tmpName := TempName(filename)

	tmp, err := fsys.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("persistence: create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(tmp, 64*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("persistence: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("persistence: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persistence: close %s: %w", tmpName, err)
	}
	if err := fsys.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("persistence: rename %s: %w", filename, err)
	}
	// The rename happened; the deferred cleanup must not touch the final file.
	tmpName = ""

	if err := fsys.SyncDir(dir); err != nil {
		return fmt.Errorf("persistence: sync dir %s: %w", dir, err)
	}
	return nil
}

// WriteFile atomically replaces filename with data.
func WriteFile(fsys fs.FileSystem, filename string, data []byte) error {
	return SaveToFile(fsys, filename, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// LoadFromFile opens filename and hands it to readFunc.
func LoadFromFile(fsys fs.FileSystem, filename string, readFunc func(io.Reader) error) error {
	if fsys == nil {
		fsys = fs.Default
	}
	f, err := fsys.OpenFile(filename, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return readFunc(bufio.NewReader(f))
}

// ReadFile returns the full content of filename.
func ReadFile(fsys fs.FileSystem, filename string) ([]byte, error) {
	var data []byte
	err := LoadFromFile(fsys, filename, func(r io.Reader) error {
		var err error
		data, err = io.ReadAll(r)
		return err
	})
	return data, err
}
