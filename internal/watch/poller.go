package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type stamp struct {
	mod  time.Time
	size int64
}

// poller scans the files of its directories (not recursively, Watcher.Add
// registers each subdirectory) and reports additions, removals and
// modifications.
type poller struct {
	interval time.Duration
	done     chan struct{}

	mu    sync.Mutex
	dirs  map[string]bool
	files map[string]stamp
}

func newPoller(interval time.Duration) *poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &poller{
		interval: interval,
		done:     make(chan struct{}),
		dirs:     make(map[string]bool),
		files:    make(map[string]stamp),
	}
}

func (p *poller) add(dir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirs[dir] = true
	// Record the current state so only later changes are reported.
	for path, s := range scan(dir) {
		p.files[path] = s
	}
	return nil
}

func (p *poller) run(notify func(string)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			for _, path := range p.poll() {
				notify(path)
			}
		}
	}
}

func (p *poller) poll() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := make(map[string]stamp, len(p.files))
	for dir := range p.dirs {
		for path, s := range scan(dir) {
			current[path] = s
		}
	}

	var changed []string
	for path, s := range current {
		if old, ok := p.files[path]; !ok || old != s {
			changed = append(changed, path)
		}
	}
	for path := range p.files {
		if _, ok := current[path]; !ok {
			changed = append(changed, path)
		}
	}
	p.files = current
	return changed
}

func (p *poller) close() error {
	close(p.done)
	return nil
}

func scan(dir string) map[string]stamp {
	out := make(map[string]stamp)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.Type()&fs.ModeType != 0 {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out[filepath.Join(dir, e.Name())] = stamp{mod: info.ModTime(), size: info.Size()}
	}
	return out
}
