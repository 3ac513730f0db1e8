package checkpoint

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hupe1980/prodsearch/codec"
	"github.com/hupe1980/prodsearch/internal/fs"
	"github.com/hupe1980/prodsearch/persistence"
)

// Manager loads and saves the state file at one path.
type Manager struct {
	fs    fs.FileSystem
	codec codec.Codec
	path  string
	mu    sync.Mutex
}

// NewManager creates a Manager. Nil fsys and c select the local filesystem and
// codec.Default.
func NewManager(fsys fs.FileSystem, c codec.Codec, path string) *Manager {
	if fsys == nil {
		fsys = fs.Default
	}
	if c == nil {
		c = codec.Default
	}
	return &Manager{fs: fsys, codec: c, path: path}
}

// Path returns the state file path.
func (m *Manager) Path() string { return m.path }

// Load returns the saved state, or nil with no error if no state file exists.
func (m *Manager) Load() (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := persistence.ReadFile(m.fs, m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read %s: %w", m.path, err)
	}
	return m.decode(data)
}

func (m *Manager) decode(data []byte) (*State, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("checkpoint: %s: %w: empty file", m.path, ErrCorruptState)
	}

	var raw rawState
	if err := m.codec.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("checkpoint: %s: %w: %v", m.path, ErrCorruptState, err)
	}
	s, err := raw.decode()
	if err != nil {
		return nil, fmt.Errorf("checkpoint: %s: %w", m.path, err)
	}
	return s, nil
}

// Save atomically replaces the state file with s.
func (m *Manager) Save(s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.codec.Marshal(s)
	if err != nil {
		return fmt.Errorf("checkpoint: encode: %w", err)
	}
	err = persistence.SaveToFile(m.fs, m.path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", m.path, err)
	}
	return nil
}

// Remove deletes the state file. A missing file is not an error.
func (m *Manager) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fs.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checkpoint: remove %s: %w", m.path, err)
	}
	return nil
}

// Load reads the state file at path from the local filesystem.
func Load(path string) (*State, error) {
	return NewManager(nil, nil, path).Load()
}

// Save writes s to path on the local filesystem.
func Save(path string, s *State) error {
	return NewManager(nil, nil, path).Save(s)
}
