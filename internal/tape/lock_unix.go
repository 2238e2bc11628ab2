//go:build unix
// +build unix

package tape

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes a non-blocking exclusive lock on the tape file using
// flock.
func lockFile(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == unix.EWOULDBLOCK {
		return ErrTapeBusy
	}
	if err != nil {
		return fmt.Errorf("lock tape: %w", err)
	}
	return nil
}

// unlockFile releases the lock on the tape file.
func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
