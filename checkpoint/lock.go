package checkpoint

import "errors"

// ErrLocked is returned by Lock when another process holds the lock.
var ErrLocked = errors.New("state file is locked by another process")

// LockSuffix is appended to the state path to form the lock file name.
const LockSuffix = ".lock"
