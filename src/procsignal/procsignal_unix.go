//go:build unix

package procsignal

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// RequestClose sends SIGINT to pid.
func RequestClose(pid int) error {
	if err := checkPID(pid); err != nil {
		return err
	}
	if err := unix.Kill(pid, unix.SIGINT); err != nil {
		return errors.Wrapf(err, "interrupt process %d", pid)
	}
	return nil
}
