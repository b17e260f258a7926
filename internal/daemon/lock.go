package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLocked means another watch daemon holds the lock.
var ErrLocked = errors.New("watch lock held by another process")

// Lock is the exclusive marker that keeps two watch daemons from
// running against the same home directory.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock takes the watch lock under dir, creating dir if needed.
// A second caller fails with ErrLocked until the first releases it.
func AcquireLock(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	path := filepath.Join(dir, "watch.lock")
	file, err := lockFile(path)
	if err != nil {
		return nil, err
	}
	return &Lock{path: path, file: file}, nil
}

// Release drops the lock and removes the lock file. Releasing twice
// is a no-op.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	// Remove before unlocking so a waiter never sees a stale file.
	_ = os.Remove(l.path)
	err := unlockFile(l.file)
	l.file = nil
	return err
}
