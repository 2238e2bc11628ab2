package host

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"stenotape/internal/logging"
	"stenotape/internal/tape"
)

// maxEventBytes bounds one feed line. A full history snapshot with long
// definitions fits well under this.
const maxEventBytes = 1 << 20

// readError marks feed errors that end a session without making the
// tape unusable.
type readError struct{ err error }

func (e *readError) Error() string { return "read events: " + e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

// ServeReader feeds events from r to the engine until EOF. Blank lines
// are ignored and malformed ones are logged and skipped; an engine
// error ends the feed. It returns the number of events applied.
func ServeReader(r io.Reader, eng *tape.Engine, log *logging.Logger) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxEventBytes)

	events := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		ev, err := DecodeEvent(line)
		if err != nil {
			log.Warn("skipping malformed event", "error", err)
			continue
		}
		log.Debug("stroke received", "keys", ev.Keys, "history", len(ev.Translations))
		if err := eng.OnStroke(ev.Stroke(), ev.Snapshot()); err != nil {
			return events, err
		}
		events++
	}
	if err := scanner.Err(); err != nil {
		return events, &readError{err}
	}
	return events, nil
}

// Listener accepts stroke feeds on a Unix socket. Connections are
// served one at a time; only one steno engine produces events.
type Listener struct {
	socketPath string
	eng        *tape.Engine
	log        *logging.Logger

	mu       sync.Mutex
	listener net.Listener
	conn     net.Conn

	running  atomic.Bool
	wg       sync.WaitGroup
	errs     chan error
	sessions atomic.Uint64
}

// NewListener creates a listener that feeds the engine from socketPath.
func NewListener(socketPath string, eng *tape.Engine, log *logging.Logger) *Listener {
	return &Listener{
		socketPath: socketPath,
		eng:        eng,
		log:        log,
		errs:       make(chan error, 1),
	}
}

// Errors delivers the fatal error that stopped the accept loop, if any.
func (l *Listener) Errors() <-chan error {
	return l.errs
}

// Start begins accepting connections.
func (l *Listener) Start() error {
	// Ensure socket directory exists
	socketDir := filepath.Dir(l.socketPath)
	if err := os.MkdirAll(socketDir, 0700); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}

	// Remove stale socket file
	if err := os.Remove(l.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}

	// Set socket permissions (owner only)
	if err := os.Chmod(l.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("set socket permissions: %w", err)
	}

	l.mu.Lock()
	l.listener = listener
	l.mu.Unlock()
	l.running.Store(true)

	l.wg.Add(1)
	go l.acceptLoop()

	return nil
}

// Stop shuts the listener down and removes the socket file.
func (l *Listener) Stop() error {
	if !l.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	l.mu.Lock()
	if l.listener != nil {
		l.listener.Close()
	}
	if l.conn != nil {
		l.conn.Close()
	}
	l.mu.Unlock()

	l.wg.Wait()

	if err := os.Remove(l.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove socket: %w", err)
	}
	return nil
}

// acceptLoop serves one connection at a time.
func (l *Listener) acceptLoop() {
	defer l.wg.Done()

	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if !l.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			l.log.Warn("accept failed", "error", err)
			continue
		}

		l.mu.Lock()
		l.conn = conn
		l.mu.Unlock()

		session := l.sessions.Add(1)
		l.log.Info("host connected", "session", session)

		events, err := ServeReader(conn, l.eng, l.log)
		conn.Close()

		l.mu.Lock()
		l.conn = nil
		l.mu.Unlock()

		var rerr *readError
		switch {
		case err == nil:
			l.log.Info("host disconnected", "session", session, "events", events)
		case errors.As(err, &rerr):
			if l.running.Load() {
				l.log.Warn("stroke feed ended", "session", session, "events", events, "error", err)
			}
		default:
			// An engine error means the tape is gone; stop feeding.
			l.log.Error("stroke feed failed", "session", session, "events", events, "error", err)
			select {
			case l.errs <- err:
			default:
			}
			return
		}
	}
}
