package render

import (
	"github.com/vulkan-go/vulkan"
)

// InstanceFuncs holds the instance-level entry points the renderer calls.
// DestroyDevice lives here so a device can be released even when its own
// table failed to resolve.
// The debug report pair is optional and left nil when the extension is absent.
type InstanceFuncs struct {
	EnumeratePhysicalDevices               func(vulkan.Instance, *uint32, []vulkan.PhysicalDevice) vulkan.Result
	EnumerateDeviceExtensionProperties     func(vulkan.PhysicalDevice, string, *uint32, []vulkan.ExtensionProperties) vulkan.Result
	GetPhysicalDeviceProperties            func(vulkan.PhysicalDevice, *vulkan.PhysicalDeviceProperties)
	GetPhysicalDeviceQueueFamilyProperties func(vulkan.PhysicalDevice, *uint32, []vulkan.QueueFamilyProperties)
	GetPhysicalDeviceSurfaceSupport        func(vulkan.PhysicalDevice, uint32, vulkan.Surface, *vulkan.Bool32) vulkan.Result
	GetPhysicalDeviceSurfaceFormats        func(vulkan.PhysicalDevice, vulkan.Surface, *uint32, []vulkan.SurfaceFormat) vulkan.Result
	GetPhysicalDeviceSurfaceCapabilities   func(vulkan.PhysicalDevice, vulkan.Surface, *vulkan.SurfaceCapabilities) vulkan.Result
	GetPhysicalDeviceSurfacePresentModes   func(vulkan.PhysicalDevice, vulkan.Surface, *uint32, []vulkan.PresentMode) vulkan.Result
	CreateDevice                           func(vulkan.PhysicalDevice, *vulkan.DeviceCreateInfo, *vulkan.AllocationCallbacks, *vulkan.Device) vulkan.Result
	DestroyDevice                          func(vulkan.Device, *vulkan.AllocationCallbacks)

	CreateDebugReportCallback  func(vulkan.Instance, *vulkan.DebugReportCallbackCreateInfo, *vulkan.AllocationCallbacks, *vulkan.DebugReportCallback) vulkan.Result
	DestroyDebugReportCallback func(vulkan.Instance, vulkan.DebugReportCallback, *vulkan.AllocationCallbacks)
}

// DeviceFuncs holds the device-level entry points, resolved against one
// logical device.
type DeviceFuncs struct {
	DeviceWaitIdle func(vulkan.Device) vulkan.Result
	GetDeviceQueue func(vulkan.Device, uint32, uint32, *vulkan.Queue)

	CreateCommandPool  func(vulkan.Device, *vulkan.CommandPoolCreateInfo, *vulkan.AllocationCallbacks, *vulkan.CommandPool) vulkan.Result
	DestroyCommandPool func(vulkan.Device, vulkan.CommandPool, *vulkan.AllocationCallbacks)

	CreateSwapchain    func(vulkan.Device, *vulkan.SwapchainCreateInfo, *vulkan.AllocationCallbacks, *vulkan.Swapchain) vulkan.Result
	DestroySwapchain   func(vulkan.Device, vulkan.Swapchain, *vulkan.AllocationCallbacks)
	GetSwapchainImages func(vulkan.Device, vulkan.Swapchain, *uint32, []vulkan.Image) vulkan.Result

	CreateRenderPass        func(vulkan.Device, *vulkan.RenderPassCreateInfo, *vulkan.AllocationCallbacks, *vulkan.RenderPass) vulkan.Result
	DestroyRenderPass       func(vulkan.Device, vulkan.RenderPass, *vulkan.AllocationCallbacks)
	CreateShaderModule      func(vulkan.Device, *vulkan.ShaderModuleCreateInfo, *vulkan.AllocationCallbacks, *vulkan.ShaderModule) vulkan.Result
	DestroyShaderModule     func(vulkan.Device, vulkan.ShaderModule, *vulkan.AllocationCallbacks)
	CreatePipelineLayout    func(vulkan.Device, *vulkan.PipelineLayoutCreateInfo, *vulkan.AllocationCallbacks, *vulkan.PipelineLayout) vulkan.Result
	DestroyPipelineLayout   func(vulkan.Device, vulkan.PipelineLayout, *vulkan.AllocationCallbacks)
	CreateGraphicsPipelines func(vulkan.Device, vulkan.PipelineCache, uint32, []vulkan.GraphicsPipelineCreateInfo, *vulkan.AllocationCallbacks, []vulkan.Pipeline) vulkan.Result
	DestroyPipeline         func(vulkan.Device, vulkan.Pipeline, *vulkan.AllocationCallbacks)

	CreateImageView    func(vulkan.Device, *vulkan.ImageViewCreateInfo, *vulkan.AllocationCallbacks, *vulkan.ImageView) vulkan.Result
	DestroyImageView   func(vulkan.Device, vulkan.ImageView, *vulkan.AllocationCallbacks)
	CreateFramebuffer  func(vulkan.Device, *vulkan.FramebufferCreateInfo, *vulkan.AllocationCallbacks, *vulkan.Framebuffer) vulkan.Result
	DestroyFramebuffer func(vulkan.Device, vulkan.Framebuffer, *vulkan.AllocationCallbacks)

	AllocateCommandBuffers func(vulkan.Device, *vulkan.CommandBufferAllocateInfo, []vulkan.CommandBuffer) vulkan.Result
	FreeCommandBuffers     func(vulkan.Device, vulkan.CommandPool, uint32, []vulkan.CommandBuffer)
	BeginCommandBuffer     func(vulkan.CommandBuffer, *vulkan.CommandBufferBeginInfo) vulkan.Result
	EndCommandBuffer       func(vulkan.CommandBuffer) vulkan.Result
	CmdBeginRenderPass     func(vulkan.CommandBuffer, *vulkan.RenderPassBeginInfo, vulkan.SubpassContents)
	CmdBindPipeline        func(vulkan.CommandBuffer, vulkan.PipelineBindPoint, vulkan.Pipeline)
	CmdDraw                func(vulkan.CommandBuffer, uint32, uint32, uint32, uint32)
	CmdEndRenderPass       func(vulkan.CommandBuffer)

	CreateSemaphore  func(vulkan.Device, *vulkan.SemaphoreCreateInfo, *vulkan.AllocationCallbacks, *vulkan.Semaphore) vulkan.Result
	DestroySemaphore func(vulkan.Device, vulkan.Semaphore, *vulkan.AllocationCallbacks)
	CreateFence      func(vulkan.Device, *vulkan.FenceCreateInfo, *vulkan.AllocationCallbacks, *vulkan.Fence) vulkan.Result
	DestroyFence     func(vulkan.Device, vulkan.Fence, *vulkan.AllocationCallbacks)
	WaitForFences    func(vulkan.Device, uint32, []vulkan.Fence, vulkan.Bool32, uint64) vulkan.Result
	ResetFences      func(vulkan.Device, uint32, []vulkan.Fence) vulkan.Result

	AcquireNextImage func(vulkan.Device, vulkan.Swapchain, uint64, vulkan.Semaphore, vulkan.Fence, *uint32) vulkan.Result
	QueueSubmit      func(vulkan.Queue, uint32, []vulkan.SubmitInfo, vulkan.Fence) vulkan.Result
	QueuePresent     func(vulkan.Queue, *vulkan.PresentInfo) vulkan.Result
}

// Tables supplies the capability tables. Instance is asked once per
// renderer, Device once per logical device.
type Tables interface {
	Instance() (*InstanceFuncs, error)
	Device(device vulkan.Device) (*DeviceFuncs, error)
}

// LoaderTables resolves both tables through a ProcLoader and binds them to
// the vulkan package.
type LoaderTables struct {
	Loader ProcLoader
}

func (t LoaderTables) Instance() (*InstanceFuncs, error) {
	return ResolveInstanceFuncs(t.Loader)
}

func (t LoaderTables) Device(device vulkan.Device) (*DeviceFuncs, error) {
	return ResolveDeviceFuncs(t.Loader, device)
}
