package render

/*
#include <stdlib.h>

typedef void (*prism_void_fn)(void);
typedef prism_void_fn (*prism_get_proc_addr)(void *handle, const char *name);

static void *prism_proc_addr(void *get_proc_addr, void *handle, const char *name) {
	return (void *)((prism_get_proc_addr)get_proc_addr)(handle, name);
}
*/
import "C"
import (
	"unsafe"

	"github.com/vulkan-go/vulkan"
)

// VulkanLoader looks entry points up through the loader's
// vkGetInstanceProcAddr, the same pointer the vulkan package was initialized
// with. Device scope goes through the vkGetDeviceProcAddr it hands out.
type VulkanLoader struct {
	Instance            vulkan.Instance
	GetInstanceProcAddr unsafe.Pointer
}

func (l VulkanLoader) InstanceProcAddr(name string) unsafe.Pointer {
	return procAddr(l.GetInstanceProcAddr, unsafe.Pointer(l.Instance), name)
}

func (l VulkanLoader) DeviceProcAddr(device vulkan.Device, name string) unsafe.Pointer {
	getDeviceProcAddr := l.InstanceProcAddr("vkGetDeviceProcAddr")
	return procAddr(getDeviceProcAddr, unsafe.Pointer(device), name)
}

// procAddr calls a vkGet*ProcAddr function pointer for name.
func procAddr(getProcAddr, handle unsafe.Pointer, name string) unsafe.Pointer {
	if getProcAddr == nil {
		return nil
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.prism_proc_addr(getProcAddr, handle, cname)
}
