package render

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

var (
	// ErrIncompatibleDriver is returned when no physical device satisfies the
	// renderer, or when the driver lacks an entry point the renderer needs.
	ErrIncompatibleDriver = errors.New("incompatible driver")

	// ErrFrameDropped marks a frame that was abandoned part way. It is
	// transient: the caller keeps ticking.
	ErrFrameDropped = errors.New("frame dropped")
)

var resultNames = map[vulkan.Result]string{
	vulkan.NotReady:                  "VK_NOT_READY",
	vulkan.Timeout:                   "VK_TIMEOUT",
	vulkan.EventSet:                  "VK_EVENT_SET",
	vulkan.EventReset:                "VK_EVENT_RESET",
	vulkan.Incomplete:                "VK_INCOMPLETE",
	vulkan.ErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY",
	vulkan.ErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	vulkan.ErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED",
	vulkan.ErrorDeviceLost:           "VK_ERROR_DEVICE_LOST",
	vulkan.ErrorMemoryMapFailed:      "VK_ERROR_MEMORY_MAP_FAILED",
	vulkan.ErrorLayerNotPresent:      "VK_ERROR_LAYER_NOT_PRESENT",
	vulkan.ErrorExtensionNotPresent:  "VK_ERROR_EXTENSION_NOT_PRESENT",
	vulkan.ErrorFeatureNotPresent:    "VK_ERROR_FEATURE_NOT_PRESENT",
	vulkan.ErrorIncompatibleDriver:   "VK_ERROR_INCOMPATIBLE_DRIVER",
	vulkan.ErrorTooManyObjects:       "VK_ERROR_TOO_MANY_OBJECTS",
	vulkan.ErrorFormatNotSupported:   "VK_ERROR_FORMAT_NOT_SUPPORTED",
	vulkan.ErrorSurfaceLost:          "VK_ERROR_SURFACE_LOST_KHR",
	vulkan.ErrorNativeWindowInUse:    "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
	vulkan.Suboptimal:                "VK_SUBOPTIMAL_KHR",
	vulkan.ErrorOutOfDate:            "VK_ERROR_OUT_OF_DATE_KHR",
	vulkan.ErrorIncompatibleDisplay:  "VK_ERROR_INCOMPATIBLE_DISPLAY_KHR",
	vulkan.ErrorValidationFailed:     "VK_ERROR_VALIDATION_FAILED_EXT",
}

// ResultError is a failed Vulkan call. Use errors.As to get at the result code.
type ResultError struct {
	Result vulkan.Result
}

func (e *ResultError) Error() string {
	name, ok := resultNames[e.Result]
	if !ok {
		name = "unknown result"
	}
	return fmt.Sprintf("vulkan error: %s (%d)", name, e.Result)
}

// Is lets a driver-reported VK_ERROR_INCOMPATIBLE_DRIVER match ErrIncompatibleDriver.
func (e *ResultError) Is(target error) bool {
	return target == ErrIncompatibleDriver && e.Result == vulkan.ErrorIncompatibleDriver
}

// NewError returns nil for VK_SUCCESS and a *ResultError with a stack trace
// for anything else.
func NewError(retVal vulkan.Result) error {
	if !IsError(retVal) {
		return nil
	}
	return errors.WithStack(&ResultError{Result: retVal})
}

func IsError(ret vulkan.Result) bool {
	return ret != vulkan.Success
}

// presentable reports whether an acquire or present result left the chain usable.
func presentable(ret vulkan.Result) bool {
	return ret == vulkan.Success || ret == vulkan.Suboptimal
}

// FrameError records which step of a frame failed. It matches ErrFrameDropped
// and unwraps to the underlying cause.
type FrameError struct {
	Step string
	Err  error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame dropped at %s: %v", e.Step, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

func (e *FrameError) Is(target error) bool {
	return target == ErrFrameDropped
}
