//go:build !unix
// +build !unix

package tape

import "os"

// File locking is advisory and Unix-only; elsewhere the tape is opened
// without exclusion.
func lockFile(f *os.File) error {
	return nil
}

func unlockFile(f *os.File) error {
	return nil
}
