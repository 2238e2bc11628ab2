package tape

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrTapeBusy is returned when another process already holds the tape
// file.
var ErrTapeBusy = errors.New("tape: file is locked by another process")

// Writer appends rendered segments to the tape file. The file is held
// exclusively for the lifetime of the writer.
type Writer struct {
	f   *os.File
	buf *bufio.Writer
}

// OpenWriter opens the tape file for appending, creating it and its
// directory as needed, and takes an exclusive lock on it.
func OpenWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create tape directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open tape: %w", err)
	}

	if err := lockFile(f); err != nil {
		f.Close()
		return nil, err
	}

	return &Writer{f: f, buf: bufio.NewWriter(f)}, nil
}

// WriteString buffers s for the tape.
func (w *Writer) WriteString(s string) error {
	_, err := w.buf.WriteString(s)
	return err
}

// Flush pushes buffered output to the file.
func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush tape: %w", err)
	}
	return nil
}

// Name returns the tape file path.
func (w *Writer) Name() string {
	return w.f.Name()
}

// Close flushes, releases the lock, and closes the tape file.
func (w *Writer) Close() error {
	flushErr := w.buf.Flush()
	unlockFile(w.f)
	closeErr := w.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flush tape: %w", flushErr)
	}
	return closeErr
}
