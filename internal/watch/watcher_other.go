//go:build !linux

package watch

import "time"

func newNative() (backend, error) {
	return newPoller(time.Second), nil
}
