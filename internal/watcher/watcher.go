package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// ErrClosed is returned when using a closed watcher.
var ErrClosed = errors.New("watcher: watcher is closed")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce window.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.window = d }
}

// WithClock sets the clock driving the debouncer.
func WithClock(c clockwork.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// WithErrorHandler receives fsnotify errors.
func WithErrorHandler(h func(error)) Option {
	return func(w *Watcher) { w.onError = h }
}

// Watcher calls a handler after a file changes. The parent directory is
// watched so editors that save by rename are still seen.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	handler func()
	onError func(error)
	window  time.Duration
	clock   clockwork.Clock
	deb     *Debouncer

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// WatchFile starts watching path and calls handler once per burst of
// changes to it.
func WatchFile(path string, handler func(), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:    filepath.Clean(abs),
		fs:      fsw,
		handler: handler,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.deb = NewDebouncer(w.window, w.clock)

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	go w.run()
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Close stops watching. Pending callbacks are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.closed = true
	w.mu.Unlock()

	w.deb.Cancel()
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.deb.Trigger(func() {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if !closed && w.handler != nil {
			w.handler()
		}
	})
}
