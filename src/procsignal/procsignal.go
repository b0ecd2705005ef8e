// Package procsignal asks another process to shut down the way a user
// closing its window would.
package procsignal

import "github.com/pkg/errors"

// ErrNoWindow is returned on Windows when the process owns no top-level window.
var ErrNoWindow = errors.New("process has no top-level window")

func checkPID(pid int) error {
	if pid <= 0 {
		return errors.Errorf("invalid pid %d", pid)
	}
	return nil
}
