//go:build !unix

package checkpoint

import "github.com/hupe1980/prodsearch/internal/fs"

// FileLock is a no-op on platforms without flock.
type FileLock struct{}

// Lock always succeeds on this platform.
func Lock(fsys fs.FileSystem, path string) (*FileLock, error) { return &FileLock{}, nil }

// Unlock is a no-op.
func (l *FileLock) Unlock() error { return nil }
