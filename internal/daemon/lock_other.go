//go:build !unix

package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// lockFile creates path exclusively. An existing file means another
// daemon is running; its Release removes the file.
func lockFile(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}

	fmt.Fprintf(file, "%d\n", os.Getpid())
	return file, nil
}

func unlockFile(file *os.File) error {
	return file.Close()
}
