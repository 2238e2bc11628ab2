package dict

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long the watcher waits after the last change
// before reloading, so editors that save in several steps trigger one
// reload.
const reloadDebounce = 200 * time.Millisecond

// Watcher reloads an index when any of its dictionary files change on
// disk.
type Watcher struct {
	ix        *Index
	fsWatcher *fsnotify.Watcher
	notify    func(error)

	// watched holds the absolute dictionary paths for event filtering.
	watched map[string]bool

	mu      sync.Mutex
	pending *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher creates a watcher for the index's dictionary files. notify
// is called with the result of every reload and with watch errors; nil
// discards them.
func NewWatcher(ix *Index, notify func(error)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if notify == nil {
		notify = func(error) {}
	}

	return &Watcher{
		ix:        ix,
		fsWatcher: fsWatcher,
		notify:    notify,
		watched:   make(map[string]bool),
		done:      make(chan struct{}),
	}, nil
}

// Start watches the parent directories of the dictionary files.
// Watching directories instead of the files themselves keeps renames by
// atomic-save editors visible.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for _, path := range w.ix.Paths() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		w.watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return err
		}
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()

	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()

	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.watched[abs] {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.notify(fmt.Errorf("watch dictionaries: %w", err))
		}
	}
}

// schedule arms the debounce timer, restarting it if already armed.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}
	w.notify(w.ix.Reload())
}
