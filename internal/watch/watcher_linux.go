//go:build linux

package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

const inotifyMask = unix.IN_MODIFY | unix.IN_CLOSE_WRITE | unix.IN_CREATE |
	unix.IN_DELETE | unix.IN_MOVED_FROM | unix.IN_MOVED_TO

// pollTimeout is in milliseconds.
const pollTimeout = 100

type inotify struct {
	fd   int
	done chan struct{}

	mu      sync.Mutex
	watches map[int]string
}

func newNative() (backend, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init failed: %w", err)
	}
	return &inotify{fd: fd, done: make(chan struct{}), watches: make(map[int]string)}, nil
}

func (n *inotify) add(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	wd, err := unix.InotifyAddWatch(n.fd, abs, inotifyMask)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}
	n.mu.Lock()
	n.watches[wd] = abs
	n.mu.Unlock()
	return nil
}

func (n *inotify) run(notify func(string)) {
	buf := make([]byte, (unix.SizeofInotifyEvent+unix.NAME_MAX+1)*16)
	for {
		select {
		case <-n.done:
			return
		default:
		}

		// Block until events arrive. The timeout only bounds how long a
		// closed watcher takes to notice done.
		fds := []unix.PollFd{{Fd: int32(n.fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(fds, pollTimeout); err != nil && !errors.Is(err, unix.EINTR) {
			return
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		count, err := unix.Read(n.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return
		}

		offset := 0
		for offset+unix.SizeofInotifyEvent <= count {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			nameStart := offset + unix.SizeofInotifyEvent
			name := strings.TrimRight(string(buf[nameStart:nameStart+int(event.Len)]), "\x00")
			offset = nameStart + int(event.Len)

			n.mu.Lock()
			dir := n.watches[int(event.Wd)]
			n.mu.Unlock()
			if dir == "" || name == "" {
				continue
			}
			path := filepath.Join(dir, name)
			if event.Mask&unix.IN_ISDIR != 0 {
				if event.Mask&unix.IN_CREATE != 0 {
					_ = n.add(path)
				}
				continue
			}
			notify(path)
		}
	}
}

func (n *inotify) close() error {
	close(n.done)
	return unix.Close(n.fd)
}
