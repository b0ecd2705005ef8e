//go:build !unix && !windows

package procsignal

import (
	"os"

	"github.com/pkg/errors"
)

// RequestClose delivers os.Interrupt to pid.
func RequestClose(pid int) error {
	if err := checkPID(pid); err != nil {
		return err
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return errors.Wrapf(err, "find process %d", pid)
	}
	return errors.Wrapf(p.Signal(os.Interrupt), "interrupt process %d", pid)
}
