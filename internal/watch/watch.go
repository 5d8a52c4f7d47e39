// Package watch reports changes to analysis inputs. On Linux it uses
// inotify; elsewhere it polls modification times.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vk/genmaths/internal/fsutil"
	"github.com/vk/genmaths/internal/gofront"
)

// DefaultDebounce is how long a file must stay quiet before its change is
// reported.
const DefaultDebounce = 300 * time.Millisecond

// backend is the platform mechanism behind a Watcher. run blocks until
// close is called and reports every raw change through notify.
type backend interface {
	add(path string) error
	run(notify func(path string))
	close() error
}

// Watcher reports changed Go and HCL files on Events. Bursts of changes to
// one file are merged into one event.
type Watcher struct {
	events   chan string
	done     chan struct{}
	debounce time.Duration
	backend  backend

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// New returns a Watcher using the platform's native mechanism.
func New(debounce time.Duration) (*Watcher, error) {
	b, err := newNative()
	if err != nil {
		return nil, err
	}
	return start(b, debounce), nil
}

// NewPoller returns a Watcher that scans its paths every interval.
func NewPoller(interval, debounce time.Duration) *Watcher {
	return start(newPoller(interval), debounce)
}

func start(b backend, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		events:   make(chan string),
		done:     make(chan struct{}),
		debounce: debounce,
		backend:  b,
		timers:   make(map[string]*time.Timer),
	}
	go b.run(w.changed)
	return w
}

// Add watches path. A directory is watched with all its subdirectories,
// except the ones input discovery skips. A file is watched through its
// directory.
func (w *Watcher) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	if !info.IsDir() {
		return w.backend.add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && fsutil.IgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.backend.add(p)
	})
}

// Events delivers the paths of changed files. The channel is not closed by
// Close; stop receiving once the Watcher is closed.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Close stops watching. Pending events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.backend.close()
}

func (w *Watcher) changed(path string) {
	if !Relevant(path) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case w.events <- path:
		case <-w.done:
		}
	})
}

// Relevant reports whether a change to path can affect the analysis.
// Generated output never is, or emitting would trigger another run.
func Relevant(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, gofront.GeneratedSuffix) {
		return false
	}
	switch filepath.Ext(base) {
	case ".go", ".hcl":
		return true
	}
	return false
}
