//go:build unix

package checkpoint

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/hupe1980/prodsearch/internal/fs"
)

// FileLock is an exclusive advisory lock on a state file.
type FileLock struct {
	f  fs.File
	fd uintptr
	ok bool // fd is flocked
}

// Lock opens path+LockSuffix on fsys and takes a non-blocking exclusive flock
// on it. Files without an OS descriptor are held open but not flocked. The lock
// is released by Unlock or when the process exits. A nil fsys selects the local
// filesystem.
func Lock(fsys fs.FileSystem, path string) (*FileLock, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	name := path + LockSuffix
	f, err := fsys.OpenFile(name, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open lock %s: %w", name, err)
	}
	fd, ok := fs.Descriptor(f)
	if !ok {
		return &FileLock{f: f}, nil
	}
	if err := unix.Flock(int(fd), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("checkpoint: %s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("checkpoint: flock %s: %w", name, err)
	}
	return &FileLock{f: f, fd: fd, ok: true}, nil
}

// Unlock releases the lock. The lock file itself is left in place.
func (l *FileLock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	var err error
	if l.ok {
		err = unix.Flock(int(l.fd), unix.LOCK_UN)
	}
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
