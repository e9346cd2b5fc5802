// Package watch detects external modifications to a persistence store
// file and triggers a reload callback.
//
// Editors, sync tools, and second application instances rewrite store
// files behind a running application's back. The watcher monitors the
// store's directory (the file itself may be replaced by rename, which
// drops a direct watch), filters events down to the backing file, and
// coalesces event bursts with a debounce timer before invoking the
// callback.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// defaultDebounce coalesces the write+rename bursts produced by
// atomic whole-file saves.
const defaultDebounce = 100 * time.Millisecond

// Watcher monitors one store file for external changes.
type Watcher struct {
	mu sync.Mutex

	path     string
	debounce time.Duration
	onChange func()
	log      zerolog.Logger

	fsw   *fsnotify.Watcher
	timer *time.Timer

	closed   bool
	closedWg sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the event coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(w *Watcher) {
		w.log = log
	}
}

// New starts watching the store file at path and calls onChange after
// each debounced burst of external modifications. The file's parent
// directory must exist; the file itself may not yet.
func New(path string, onChange func(), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		debounce: defaultDebounce,
		onChange: onChange,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}
	w.fsw = fsw

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Close stops the watcher and cancels any pending callback. Safe to
// call multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.closedWg.Wait()
	return err
}

// processLoop consumes fsnotify events until the watcher closes.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("path", w.path).Msg("store watch error")
		}
	}
}

// handleEvent schedules the debounced callback for events touching
// the backing file.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

// fire invokes the callback once for a settled burst.
func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	onChange := w.onChange
	w.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}
