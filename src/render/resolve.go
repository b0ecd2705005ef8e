package render

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// ProcLoader looks up driver entry points by name. A nil result means the
// driver does not export the function.
type ProcLoader interface {
	InstanceProcAddr(name string) unsafe.Pointer
	DeviceProcAddr(device vulkan.Device, name string) unsafe.Pointer
}

// Resolve looks up name at device scope, or at instance scope when device is nil.
func Resolve(loader ProcLoader, device vulkan.Device, name string) unsafe.Pointer {
	if device == nil {
		return loader.InstanceProcAddr(name)
	}
	return loader.DeviceProcAddr(device, name)
}

// ResolveOrFail is Resolve for entry points the renderer cannot run without.
func ResolveOrFail(loader ProcLoader, device vulkan.Device, name string) error {
	if Resolve(loader, device, name) == nil {
		return errors.Wrapf(ErrIncompatibleDriver, "missing entry point %s", name)
	}
	return nil
}

type instanceEntry struct {
	name string
	bind func(*InstanceFuncs)
}

type deviceEntry struct {
	name string
	bind func(*DeviceFuncs)
}

var instanceEntries = []instanceEntry{
	{"vkEnumeratePhysicalDevices", func(f *InstanceFuncs) { f.EnumeratePhysicalDevices = vulkan.EnumeratePhysicalDevices }},
	{"vkEnumerateDeviceExtensionProperties", func(f *InstanceFuncs) { f.EnumerateDeviceExtensionProperties = vulkan.EnumerateDeviceExtensionProperties }},
	{"vkGetPhysicalDeviceProperties", func(f *InstanceFuncs) { f.GetPhysicalDeviceProperties = vulkan.GetPhysicalDeviceProperties }},
	{"vkGetPhysicalDeviceQueueFamilyProperties", func(f *InstanceFuncs) {
		f.GetPhysicalDeviceQueueFamilyProperties = vulkan.GetPhysicalDeviceQueueFamilyProperties
	}},
	{"vkGetPhysicalDeviceSurfaceSupportKHR", func(f *InstanceFuncs) { f.GetPhysicalDeviceSurfaceSupport = vulkan.GetPhysicalDeviceSurfaceSupport }},
	{"vkGetPhysicalDeviceSurfaceFormatsKHR", func(f *InstanceFuncs) { f.GetPhysicalDeviceSurfaceFormats = vulkan.GetPhysicalDeviceSurfaceFormats }},
	{"vkGetPhysicalDeviceSurfaceCapabilitiesKHR", func(f *InstanceFuncs) {
		f.GetPhysicalDeviceSurfaceCapabilities = vulkan.GetPhysicalDeviceSurfaceCapabilities
	}},
	{"vkGetPhysicalDeviceSurfacePresentModesKHR", func(f *InstanceFuncs) {
		f.GetPhysicalDeviceSurfacePresentModes = vulkan.GetPhysicalDeviceSurfacePresentModes
	}},
	{"vkCreateDevice", func(f *InstanceFuncs) { f.CreateDevice = vulkan.CreateDevice }},
	{"vkDestroyDevice", func(f *InstanceFuncs) { f.DestroyDevice = vulkan.DestroyDevice }},
}

// Only bound when VK_EXT_debug_report is enabled on the instance.
var debugReportEntries = []instanceEntry{
	{"vkCreateDebugReportCallbackEXT", func(f *InstanceFuncs) { f.CreateDebugReportCallback = vulkan.CreateDebugReportCallback }},
	{"vkDestroyDebugReportCallbackEXT", func(f *InstanceFuncs) { f.DestroyDebugReportCallback = vulkan.DestroyDebugReportCallback }},
}

var deviceEntries = []deviceEntry{
	{"vkDeviceWaitIdle", func(f *DeviceFuncs) { f.DeviceWaitIdle = vulkan.DeviceWaitIdle }},
	{"vkGetDeviceQueue", func(f *DeviceFuncs) { f.GetDeviceQueue = vulkan.GetDeviceQueue }},
	{"vkCreateCommandPool", func(f *DeviceFuncs) { f.CreateCommandPool = vulkan.CreateCommandPool }},
	{"vkDestroyCommandPool", func(f *DeviceFuncs) { f.DestroyCommandPool = vulkan.DestroyCommandPool }},
	{"vkCreateSwapchainKHR", func(f *DeviceFuncs) { f.CreateSwapchain = vulkan.CreateSwapchain }},
	{"vkDestroySwapchainKHR", func(f *DeviceFuncs) { f.DestroySwapchain = vulkan.DestroySwapchain }},
	{"vkGetSwapchainImagesKHR", func(f *DeviceFuncs) { f.GetSwapchainImages = vulkan.GetSwapchainImages }},
	{"vkCreateRenderPass", func(f *DeviceFuncs) { f.CreateRenderPass = vulkan.CreateRenderPass }},
	{"vkDestroyRenderPass", func(f *DeviceFuncs) { f.DestroyRenderPass = vulkan.DestroyRenderPass }},
	{"vkCreateShaderModule", func(f *DeviceFuncs) { f.CreateShaderModule = vulkan.CreateShaderModule }},
	{"vkDestroyShaderModule", func(f *DeviceFuncs) { f.DestroyShaderModule = vulkan.DestroyShaderModule }},
	{"vkCreatePipelineLayout", func(f *DeviceFuncs) { f.CreatePipelineLayout = vulkan.CreatePipelineLayout }},
	{"vkDestroyPipelineLayout", func(f *DeviceFuncs) { f.DestroyPipelineLayout = vulkan.DestroyPipelineLayout }},
	{"vkCreateGraphicsPipelines", func(f *DeviceFuncs) { f.CreateGraphicsPipelines = vulkan.CreateGraphicsPipelines }},
	{"vkDestroyPipeline", func(f *DeviceFuncs) { f.DestroyPipeline = vulkan.DestroyPipeline }},
	{"vkCreateImageView", func(f *DeviceFuncs) { f.CreateImageView = vulkan.CreateImageView }},
	{"vkDestroyImageView", func(f *DeviceFuncs) { f.DestroyImageView = vulkan.DestroyImageView }},
	{"vkCreateFramebuffer", func(f *DeviceFuncs) { f.CreateFramebuffer = vulkan.CreateFramebuffer }},
	{"vkDestroyFramebuffer", func(f *DeviceFuncs) { f.DestroyFramebuffer = vulkan.DestroyFramebuffer }},
	{"vkAllocateCommandBuffers", func(f *DeviceFuncs) { f.AllocateCommandBuffers = vulkan.AllocateCommandBuffers }},
	{"vkFreeCommandBuffers", func(f *DeviceFuncs) { f.FreeCommandBuffers = vulkan.FreeCommandBuffers }},
	{"vkBeginCommandBuffer", func(f *DeviceFuncs) { f.BeginCommandBuffer = vulkan.BeginCommandBuffer }},
	{"vkEndCommandBuffer", func(f *DeviceFuncs) { f.EndCommandBuffer = vulkan.EndCommandBuffer }},
	{"vkCmdBeginRenderPass", func(f *DeviceFuncs) { f.CmdBeginRenderPass = vulkan.CmdBeginRenderPass }},
	{"vkCmdBindPipeline", func(f *DeviceFuncs) { f.CmdBindPipeline = vulkan.CmdBindPipeline }},
	{"vkCmdDraw", func(f *DeviceFuncs) { f.CmdDraw = vulkan.CmdDraw }},
	{"vkCmdEndRenderPass", func(f *DeviceFuncs) { f.CmdEndRenderPass = vulkan.CmdEndRenderPass }},
	{"vkCreateSemaphore", func(f *DeviceFuncs) { f.CreateSemaphore = vulkan.CreateSemaphore }},
	{"vkDestroySemaphore", func(f *DeviceFuncs) { f.DestroySemaphore = vulkan.DestroySemaphore }},
	{"vkCreateFence", func(f *DeviceFuncs) { f.CreateFence = vulkan.CreateFence }},
	{"vkDestroyFence", func(f *DeviceFuncs) { f.DestroyFence = vulkan.DestroyFence }},
	{"vkWaitForFences", func(f *DeviceFuncs) { f.WaitForFences = vulkan.WaitForFences }},
	{"vkResetFences", func(f *DeviceFuncs) { f.ResetFences = vulkan.ResetFences }},
	{"vkAcquireNextImageKHR", func(f *DeviceFuncs) { f.AcquireNextImage = vulkan.AcquireNextImage }},
	{"vkQueueSubmit", func(f *DeviceFuncs) { f.QueueSubmit = vulkan.QueueSubmit }},
	{"vkQueuePresentKHR", func(f *DeviceFuncs) { f.QueuePresent = vulkan.QueuePresent }},
}

// ResolveInstanceFuncs checks every required instance entry point and returns
// the bound table. The debug report functions are bound only if present.
func ResolveInstanceFuncs(loader ProcLoader) (*InstanceFuncs, error) {
	funcs := &InstanceFuncs{}
	for _, e := range instanceEntries {
		if err := ResolveOrFail(loader, nil, e.name); err != nil {
			return nil, err
		}
		e.bind(funcs)
	}
	for _, e := range debugReportEntries {
		if Resolve(loader, nil, e.name) == nil {
			funcs.CreateDebugReportCallback = nil
			funcs.DestroyDebugReportCallback = nil
			break
		}
		e.bind(funcs)
	}
	return funcs, nil
}

// ResolveDeviceFuncs checks every device entry point against device.
func ResolveDeviceFuncs(loader ProcLoader, device vulkan.Device) (*DeviceFuncs, error) {
	if device == nil {
		return nil, errors.New("resolve device functions: nil device")
	}
	funcs := &DeviceFuncs{}
	for _, e := range deviceEntries {
		if err := ResolveOrFail(loader, device, e.name); err != nil {
			return nil, err
		}
		e.bind(funcs)
	}
	return funcs, nil
}

// cString terminates s for the C side of the vulkan package.
func cString(s string) string {
	if len(s) > 0 && s[len(s)-1] == 0 {
		return s
	}
	return s + "\x00"
}

func cStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = cString(s)
	}
	return out
}
