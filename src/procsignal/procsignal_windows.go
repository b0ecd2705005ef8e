//go:build windows

package procsignal

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

const wmClose = 0x0010

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procPostMessageW             = user32.NewProc("PostMessageW")
)

// Windows never releases callbacks, so there is one for the process. The
// target pid travels in lParam; results are guarded by enumMu for the
// duration of one EnumWindows call.
var (
	enumMu       sync.Mutex
	enumPosted   int
	enumPostErr  error
	enumCallback = windows.NewCallback(closeWindowsOf)
)

func closeWindowsOf(hwnd, pid uintptr) uintptr {
	var owner uint32
	procGetWindowThreadProcessID.Call(hwnd, uintptr(unsafe.Pointer(&owner)))
	if owner != uint32(pid) {
		return 1
	}
	if ok, _, err := procPostMessageW.Call(hwnd, wmClose, 0, 0); ok == 0 {
		enumPostErr = err
		return 1
	}
	enumPosted++
	return 1
}

// RequestClose posts WM_CLOSE to every top-level window owned by pid.
func RequestClose(pid int) error {
	if err := checkPID(pid); err != nil {
		return err
	}
	if err := user32.Load(); err != nil {
		return errors.Wrap(err, "load user32")
	}

	enumMu.Lock()
	defer enumMu.Unlock()
	enumPosted, enumPostErr = 0, nil
	if ok, _, err := procEnumWindows.Call(enumCallback, uintptr(pid)); ok == 0 {
		return errors.Wrap(err, "enumerate windows")
	}

	if enumPosted == 0 {
		if enumPostErr != nil {
			return errors.Wrapf(enumPostErr, "post WM_CLOSE to process %d", pid)
		}
		return errors.Wrapf(ErrNoWindow, "process %d", pid)
	}
	return nil
}
