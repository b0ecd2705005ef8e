//go:build amd64 || arm64

package render

import (
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// Handles are only pointer-sized opaque values here, so the fake driver can
// hand out addresses it never dereferences. They start well above the
// runtime's minimum legal pointer.
const fakeHandleBase = 0x100000

type fakeFamily struct {
	graphics bool
	present  bool
}

type fakeDevice struct {
	name       string
	extensions []string
	families   []fakeFamily
	formats    []vulkan.SurfaceFormat
	handle     vulkan.PhysicalDevice
}

type fakeFence struct {
	signaled   bool
	pending    int // submission that will signal it, -1 if none
	lastSignal int // submission that last signaled it, -1 for creation
}

type fakeSubmit struct {
	fence   vulkan.Fence
	command vulkan.CommandBuffer
	wait    vulkan.Semaphore
	signal  vulkan.Semaphore
}

type fakeWait struct {
	fence      vulkan.Fence
	lastSignal int
}

type fakePresent struct {
	image uint32
	wait  vulkan.Semaphore
}

type fakeFailure struct {
	result vulkan.Result
	at     int // 1-based call to fail, 0 for every call
}

// fakeDriver is an in-memory stand-in for a Vulkan driver. It tracks every
// object it creates so tests can check that each one is released exactly
// once and in which order.
type fakeDriver struct {
	t *testing.T

	devices       []*fakeDevice
	caps          vulkan.SurfaceCapabilities
	presentModes  []vulkan.PresentMode
	images        uint32   // images per swapchain, 0 means MinImageCount
	acquireOrder  []uint32 // image indices handed out in turn, round robin if empty
	failures      map[string]fakeFailure
	calls         map[string]int
	missingDebug  bool
	deviceErr     error
	deviceCreated vulkan.DeviceCreateInfo

	next      uintptr
	live      map[uintptr]string
	created   map[string]int
	destroyed map[string]int
	sequence  []string // releases and idle waits, in order

	fences    map[vulkan.Fence]*fakeFence
	deadlocks int
	waits     []fakeWait
	submits   []fakeSubmit
	presents  []fakePresent
	acquired  int
	idleWaits int

	queues        map[uint32]vulkan.Queue
	swapchainInfo vulkan.SwapchainCreateInfo
	swapImages    []vulkan.Image
	renderPass    vulkan.RenderPassCreateInfo
	pipeline      vulkan.GraphicsPipelineCreateInfo
	commandPool   vulkan.CommandPoolCreateInfo
	recorded      map[vulkan.CommandBuffer][]string
	shaderSizes   []uint
	debugInfo     *vulkan.DebugReportCallbackCreateInfo
}

func newFakeDriver(t *testing.T, devices ...*fakeDevice) *fakeDriver {
	d := &fakeDriver{
		t:         t,
		devices:   devices,
		failures:  map[string]fakeFailure{},
		calls:     map[string]int{},
		live:      map[uintptr]string{},
		created:   map[string]int{},
		destroyed: map[string]int{},
		fences:    map[vulkan.Fence]*fakeFence{},
		queues:    map[uint32]vulkan.Queue{},
		recorded:  map[vulkan.CommandBuffer][]string{},
		caps: vulkan.SurfaceCapabilities{
			MinImageCount:    2,
			MaxImageCount:    8,
			CurrentExtent:    vulkan.Extent2D{Width: 800, Height: 600},
			MinImageExtent:   vulkan.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:   vulkan.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform: vulkan.SurfaceTransformIdentityBit,
		},
		presentModes: []vulkan.PresentMode{vulkan.PresentModeFifo},
	}
	for _, dev := range devices {
		dev.handle = vulkan.PhysicalDevice(d.raw())
	}
	return d
}

// goodDevice passes every selection filter with one family doing both roles.
func goodDevice(name string) *fakeDevice {
	return &fakeDevice{
		name:       name,
		extensions: []string{"VK_KHR_maintenance1", vulkan.KhrSwapchainExtensionName},
		families:   []fakeFamily{{graphics: true, present: true}},
		formats:    []vulkan.SurfaceFormat{srgbFormat()},
	}
}

func srgbFormat() vulkan.SurfaceFormat {
	return vulkan.SurfaceFormat{Format: vulkan.FormatB8g8r8a8Srgb, ColorSpace: vulkan.ColorSpaceSrgbNonlinear}
}

func (d *fakeDriver) failOn(name string, result vulkan.Result) {
	d.failures[name] = fakeFailure{result: result}
}

func (d *fakeDriver) failAt(name string, at int, result vulkan.Result) {
	d.failures[name] = fakeFailure{result: result, at: at}
}

func (d *fakeDriver) call(name string) vulkan.Result {
	d.calls[name]++
	if f, ok := d.failures[name]; ok && (f.at == 0 || f.at == d.calls[name]) {
		return f.result
	}
	return vulkan.Success
}

func (d *fakeDriver) raw() unsafe.Pointer {
	d.next++
	return unsafe.Add(unsafe.Pointer(nil), fakeHandleBase+int(d.next)*16)
}

func (d *fakeDriver) create(kind string) unsafe.Pointer {
	p := d.raw()
	d.live[uintptr(p)] = kind
	d.created[kind]++
	return p
}

func (d *fakeDriver) release(p unsafe.Pointer, kind string) {
	d.t.Helper()
	got, ok := d.live[uintptr(p)]
	if !ok {
		d.t.Errorf("%s %#x released but not live", kind, uintptr(p))
		return
	}
	if got != kind {
		d.t.Errorf("%#x released as %s but created as %s", uintptr(p), kind, got)
	}
	delete(d.live, uintptr(p))
	d.destroyed[kind]++
	d.sequence = append(d.sequence, kind)
}

// liveKinds counts the objects that are still alive, by kind.
func (d *fakeDriver) liveKinds() map[string]int {
	out := map[string]int{}
	for _, kind := range d.live {
		out[kind]++
	}
	return out
}

func (d *fakeDriver) device(p vulkan.PhysicalDevice) *fakeDevice {
	for _, dev := range d.devices {
		if dev.handle == p {
			return dev
		}
	}
	d.t.Fatalf("unknown physical device %p", p)
	return nil
}

func (d *fakeDriver) Instance() (*InstanceFuncs, error) {
	funcs := &InstanceFuncs{
		EnumeratePhysicalDevices:               d.enumeratePhysicalDevices,
		EnumerateDeviceExtensionProperties:     d.enumerateDeviceExtensionProperties,
		GetPhysicalDeviceProperties:            d.getPhysicalDeviceProperties,
		GetPhysicalDeviceQueueFamilyProperties: d.getPhysicalDeviceQueueFamilyProperties,
		GetPhysicalDeviceSurfaceSupport:        d.getPhysicalDeviceSurfaceSupport,
		GetPhysicalDeviceSurfaceFormats:        d.getPhysicalDeviceSurfaceFormats,
		GetPhysicalDeviceSurfaceCapabilities:   d.getPhysicalDeviceSurfaceCapabilities,
		GetPhysicalDeviceSurfacePresentModes:   d.getPhysicalDeviceSurfacePresentModes,
		CreateDevice:                           d.createDevice,
		DestroyDevice:                          d.destroyDevice,
	}
	if !d.missingDebug {
		funcs.CreateDebugReportCallback = d.createDebugReportCallback
		funcs.DestroyDebugReportCallback = d.destroyDebugReportCallback
	}
	return funcs, nil
}

func (d *fakeDriver) Device(device vulkan.Device) (*DeviceFuncs, error) {
	if d.deviceErr != nil {
		return nil, d.deviceErr
	}
	return &DeviceFuncs{
		DeviceWaitIdle:          d.deviceWaitIdle,
		GetDeviceQueue:          d.getDeviceQueue,
		CreateCommandPool:       d.createCommandPool,
		DestroyCommandPool:      d.destroyCommandPool,
		CreateSwapchain:         d.createSwapchain,
		DestroySwapchain:        d.destroySwapchain,
		GetSwapchainImages:      d.getSwapchainImages,
		CreateRenderPass:        d.createRenderPass,
		DestroyRenderPass:       d.destroyRenderPass,
		CreateShaderModule:      d.createShaderModule,
		DestroyShaderModule:     d.destroyShaderModule,
		CreatePipelineLayout:    d.createPipelineLayout,
		DestroyPipelineLayout:   d.destroyPipelineLayout,
		CreateGraphicsPipelines: d.createGraphicsPipelines,
		DestroyPipeline:         d.destroyPipeline,
		CreateImageView:         d.createImageView,
		DestroyImageView:        d.destroyImageView,
		CreateFramebuffer:       d.createFramebuffer,
		DestroyFramebuffer:      d.destroyFramebuffer,
		AllocateCommandBuffers:  d.allocateCommandBuffers,
		FreeCommandBuffers:      d.freeCommandBuffers,
		BeginCommandBuffer:      d.beginCommandBuffer,
		EndCommandBuffer:        d.endCommandBuffer,
		CmdBeginRenderPass:      d.cmdBeginRenderPass,
		CmdBindPipeline:         d.cmdBindPipeline,
		CmdDraw:                 d.cmdDraw,
		CmdEndRenderPass:        d.cmdEndRenderPass,
		CreateSemaphore:         d.createSemaphore,
		DestroySemaphore:        d.destroySemaphore,
		CreateFence:             d.createFence,
		DestroyFence:            d.destroyFence,
		WaitForFences:           d.waitForFences,
		ResetFences:             d.resetFences,
		AcquireNextImage:        d.acquireNextImage,
		QueueSubmit:             d.queueSubmit,
		QueuePresent:            d.queuePresent,
	}, nil
}

// instance level

func (d *fakeDriver) enumeratePhysicalDevices(_ vulkan.Instance, count *uint32, out []vulkan.PhysicalDevice) vulkan.Result {
	if r := d.call("EnumeratePhysicalDevices"); r != vulkan.Success {
		return r
	}
	if out == nil {
		*count = uint32(len(d.devices))
		return vulkan.Success
	}
	n := copyCount(count, len(d.devices))
	for i := 0; i < n; i++ {
		out[i] = d.devices[i].handle
	}
	return vulkan.Success
}

func (d *fakeDriver) enumerateDeviceExtensionProperties(p vulkan.PhysicalDevice, _ string, count *uint32, out []vulkan.ExtensionProperties) vulkan.Result {
	if r := d.call("EnumerateDeviceExtensionProperties"); r != vulkan.Success {
		return r
	}
	exts := d.device(p).extensions
	if out == nil {
		*count = uint32(len(exts))
		return vulkan.Success
	}
	n := copyCount(count, len(exts))
	for i := 0; i < n; i++ {
		copy(out[i].ExtensionName[:], exts[i])
	}
	return vulkan.Success
}

func (d *fakeDriver) getPhysicalDeviceProperties(p vulkan.PhysicalDevice, props *vulkan.PhysicalDeviceProperties) {
	copy(props.DeviceName[:], d.device(p).name)
}

func (d *fakeDriver) getPhysicalDeviceQueueFamilyProperties(p vulkan.PhysicalDevice, count *uint32, out []vulkan.QueueFamilyProperties) {
	families := d.device(p).families
	if out == nil {
		*count = uint32(len(families))
		return
	}
	n := copyCount(count, len(families))
	for i := 0; i < n; i++ {
		out[i].QueueCount = 1
		if families[i].graphics {
			out[i].QueueFlags = vulkan.QueueFlags(vulkan.QueueGraphicsBit)
		}
	}
}

func (d *fakeDriver) getPhysicalDeviceSurfaceSupport(p vulkan.PhysicalDevice, family uint32, _ vulkan.Surface, supported *vulkan.Bool32) vulkan.Result {
	if r := d.call("GetPhysicalDeviceSurfaceSupport"); r != vulkan.Success {
		return r
	}
	*supported = vulkan.False
	if d.device(p).families[family].present {
		*supported = vulkan.True
	}
	return vulkan.Success
}

func (d *fakeDriver) getPhysicalDeviceSurfaceFormats(p vulkan.PhysicalDevice, _ vulkan.Surface, count *uint32, out []vulkan.SurfaceFormat) vulkan.Result {
	if r := d.call("GetPhysicalDeviceSurfaceFormats"); r != vulkan.Success {
		return r
	}
	formats := d.device(p).formats
	if out == nil {
		*count = uint32(len(formats))
		return vulkan.Success
	}
	n := copyCount(count, len(formats))
	copy(out, formats[:n])
	return vulkan.Success
}

func (d *fakeDriver) getPhysicalDeviceSurfaceCapabilities(_ vulkan.PhysicalDevice, _ vulkan.Surface, caps *vulkan.SurfaceCapabilities) vulkan.Result {
	if r := d.call("GetPhysicalDeviceSurfaceCapabilities"); r != vulkan.Success {
		return r
	}
	*caps = d.caps
	return vulkan.Success
}

func (d *fakeDriver) getPhysicalDeviceSurfacePresentModes(_ vulkan.PhysicalDevice, _ vulkan.Surface, count *uint32, out []vulkan.PresentMode) vulkan.Result {
	if r := d.call("GetPhysicalDeviceSurfacePresentModes"); r != vulkan.Success {
		return r
	}
	if out == nil {
		*count = uint32(len(d.presentModes))
		return vulkan.Success
	}
	n := copyCount(count, len(d.presentModes))
	copy(out, d.presentModes[:n])
	return vulkan.Success
}

func (d *fakeDriver) createDevice(_ vulkan.PhysicalDevice, info *vulkan.DeviceCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.Device) vulkan.Result {
	if r := d.call("CreateDevice"); r != vulkan.Success {
		return r
	}
	d.deviceCreated = *info
	*out = vulkan.Device(d.create("device"))
	return vulkan.Success
}

func (d *fakeDriver) createDebugReportCallback(_ vulkan.Instance, info *vulkan.DebugReportCallbackCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.DebugReportCallback) vulkan.Result {
	if r := d.call("CreateDebugReportCallback"); r != vulkan.Success {
		return r
	}
	d.debugInfo = info
	*out = vulkan.DebugReportCallback(d.create("debugReport"))
	return vulkan.Success
}

func (d *fakeDriver) destroyDebugReportCallback(_ vulkan.Instance, cb vulkan.DebugReportCallback, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(cb), "debugReport")
}

// device level

func (d *fakeDriver) deviceWaitIdle(vulkan.Device) vulkan.Result {
	if r := d.call("DeviceWaitIdle"); r != vulkan.Success {
		return r
	}
	d.idleWaits++
	d.sequence = append(d.sequence, "waitIdle")
	for _, f := range d.fences {
		if f.pending >= 0 {
			f.signaled, f.lastSignal, f.pending = true, f.pending, -1
		}
	}
	return vulkan.Success
}

func (d *fakeDriver) getDeviceQueue(_ vulkan.Device, family, _ uint32, out *vulkan.Queue) {
	q, ok := d.queues[family]
	if !ok {
		q = vulkan.Queue(d.raw())
		d.queues[family] = q
	}
	*out = q
}

func (d *fakeDriver) destroyDevice(dev vulkan.Device, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(dev), "device")
}

func (d *fakeDriver) createCommandPool(_ vulkan.Device, info *vulkan.CommandPoolCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.CommandPool) vulkan.Result {
	if r := d.call("CreateCommandPool"); r != vulkan.Success {
		return r
	}
	d.commandPool = *info
	*out = vulkan.CommandPool(d.create("commandPool"))
	return vulkan.Success
}

func (d *fakeDriver) destroyCommandPool(_ vulkan.Device, pool vulkan.CommandPool, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(pool), "commandPool")
}

func (d *fakeDriver) createSwapchain(_ vulkan.Device, info *vulkan.SwapchainCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.Swapchain) vulkan.Result {
	if r := d.call("CreateSwapchain"); r != vulkan.Success {
		return r
	}
	d.swapchainInfo = *info
	n := d.images
	if n == 0 {
		n = info.MinImageCount
	}
	d.swapImages = make([]vulkan.Image, n)
	for i := range d.swapImages {
		d.swapImages[i] = vulkan.Image(d.raw())
	}
	*out = vulkan.Swapchain(d.create("swapchain"))
	return vulkan.Success
}

func (d *fakeDriver) destroySwapchain(_ vulkan.Device, sc vulkan.Swapchain, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(sc), "swapchain")
}

func (d *fakeDriver) getSwapchainImages(_ vulkan.Device, _ vulkan.Swapchain, count *uint32, out []vulkan.Image) vulkan.Result {
	if r := d.call("GetSwapchainImages"); r != vulkan.Success {
		return r
	}
	if out == nil {
		*count = uint32(len(d.swapImages))
		return vulkan.Success
	}
	n := copyCount(count, len(d.swapImages))
	copy(out, d.swapImages[:n])
	return vulkan.Success
}

func (d *fakeDriver) createRenderPass(_ vulkan.Device, info *vulkan.RenderPassCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.RenderPass) vulkan.Result {
	if r := d.call("CreateRenderPass"); r != vulkan.Success {
		return r
	}
	d.renderPass = *info
	*out = vulkan.RenderPass(d.create("renderPass"))
	return vulkan.Success
}

func (d *fakeDriver) destroyRenderPass(_ vulkan.Device, rp vulkan.RenderPass, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(rp), "renderPass")
}

func (d *fakeDriver) createShaderModule(_ vulkan.Device, info *vulkan.ShaderModuleCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.ShaderModule) vulkan.Result {
	if r := d.call("CreateShaderModule"); r != vulkan.Success {
		return r
	}
	d.shaderSizes = append(d.shaderSizes, info.CodeSize)
	*out = vulkan.ShaderModule(d.create("shaderModule"))
	return vulkan.Success
}

func (d *fakeDriver) destroyShaderModule(_ vulkan.Device, m vulkan.ShaderModule, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(m), "shaderModule")
}

func (d *fakeDriver) createPipelineLayout(_ vulkan.Device, _ *vulkan.PipelineLayoutCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.PipelineLayout) vulkan.Result {
	if r := d.call("CreatePipelineLayout"); r != vulkan.Success {
		return r
	}
	*out = vulkan.PipelineLayout(d.create("pipelineLayout"))
	return vulkan.Success
}

func (d *fakeDriver) destroyPipelineLayout(_ vulkan.Device, l vulkan.PipelineLayout, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(l), "pipelineLayout")
}

func (d *fakeDriver) createGraphicsPipelines(_ vulkan.Device, _ vulkan.PipelineCache, n uint32, infos []vulkan.GraphicsPipelineCreateInfo, _ *vulkan.AllocationCallbacks, out []vulkan.Pipeline) vulkan.Result {
	if r := d.call("CreateGraphicsPipelines"); r != vulkan.Success {
		return r
	}
	d.pipeline = infos[0]
	for i := uint32(0); i < n; i++ {
		out[i] = vulkan.Pipeline(d.create("pipeline"))
	}
	return vulkan.Success
}

func (d *fakeDriver) destroyPipeline(_ vulkan.Device, p vulkan.Pipeline, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(p), "pipeline")
}

func (d *fakeDriver) createImageView(_ vulkan.Device, _ *vulkan.ImageViewCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.ImageView) vulkan.Result {
	if r := d.call("CreateImageView"); r != vulkan.Success {
		return r
	}
	*out = vulkan.ImageView(d.create("imageView"))
	return vulkan.Success
}

func (d *fakeDriver) destroyImageView(_ vulkan.Device, v vulkan.ImageView, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(v), "imageView")
}

func (d *fakeDriver) createFramebuffer(_ vulkan.Device, _ *vulkan.FramebufferCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.Framebuffer) vulkan.Result {
	if r := d.call("CreateFramebuffer"); r != vulkan.Success {
		return r
	}
	*out = vulkan.Framebuffer(d.create("framebuffer"))
	return vulkan.Success
}

func (d *fakeDriver) destroyFramebuffer(_ vulkan.Device, fb vulkan.Framebuffer, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(fb), "framebuffer")
}

func (d *fakeDriver) allocateCommandBuffers(_ vulkan.Device, info *vulkan.CommandBufferAllocateInfo, out []vulkan.CommandBuffer) vulkan.Result {
	if r := d.call("AllocateCommandBuffers"); r != vulkan.Success {
		return r
	}
	for i := uint32(0); i < info.CommandBufferCount; i++ {
		out[i] = vulkan.CommandBuffer(d.create("commandBuffer"))
	}
	return vulkan.Success
}

func (d *fakeDriver) freeCommandBuffers(_ vulkan.Device, _ vulkan.CommandPool, n uint32, bufs []vulkan.CommandBuffer) {
	for _, cb := range bufs[:n] {
		d.release(unsafe.Pointer(cb), "commandBuffer")
	}
}

func (d *fakeDriver) beginCommandBuffer(cb vulkan.CommandBuffer, _ *vulkan.CommandBufferBeginInfo) vulkan.Result {
	if r := d.call("BeginCommandBuffer"); r != vulkan.Success {
		return r
	}
	d.recorded[cb] = append(d.recorded[cb], "begin")
	return vulkan.Success
}

func (d *fakeDriver) endCommandBuffer(cb vulkan.CommandBuffer) vulkan.Result {
	if r := d.call("EndCommandBuffer"); r != vulkan.Success {
		return r
	}
	d.recorded[cb] = append(d.recorded[cb], "end")
	return vulkan.Success
}

func (d *fakeDriver) cmdBeginRenderPass(cb vulkan.CommandBuffer, _ *vulkan.RenderPassBeginInfo, _ vulkan.SubpassContents) {
	d.recorded[cb] = append(d.recorded[cb], "beginRenderPass")
}

func (d *fakeDriver) cmdBindPipeline(cb vulkan.CommandBuffer, _ vulkan.PipelineBindPoint, _ vulkan.Pipeline) {
	d.recorded[cb] = append(d.recorded[cb], "bindPipeline")
}

func (d *fakeDriver) cmdDraw(cb vulkan.CommandBuffer, vertices, instances, _, _ uint32) {
	if vertices != 3 || instances != 1 {
		d.t.Errorf("draw(%d, %d), want draw(3, 1)", vertices, instances)
	}
	d.recorded[cb] = append(d.recorded[cb], "draw")
}

func (d *fakeDriver) cmdEndRenderPass(cb vulkan.CommandBuffer) {
	d.recorded[cb] = append(d.recorded[cb], "endRenderPass")
}

func (d *fakeDriver) createSemaphore(_ vulkan.Device, _ *vulkan.SemaphoreCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.Semaphore) vulkan.Result {
	if r := d.call("CreateSemaphore"); r != vulkan.Success {
		return r
	}
	*out = vulkan.Semaphore(d.create("semaphore"))
	return vulkan.Success
}

func (d *fakeDriver) destroySemaphore(_ vulkan.Device, s vulkan.Semaphore, _ *vulkan.AllocationCallbacks) {
	d.release(unsafe.Pointer(s), "semaphore")
}

func (d *fakeDriver) createFence(_ vulkan.Device, info *vulkan.FenceCreateInfo, _ *vulkan.AllocationCallbacks, out *vulkan.Fence) vulkan.Result {
	if r := d.call("CreateFence"); r != vulkan.Success {
		return r
	}
	f := vulkan.Fence(d.create("fence"))
	d.fences[f] = &fakeFence{
		signaled:   info.Flags&vulkan.FenceCreateFlags(vulkan.FenceCreateSignaledBit) != 0,
		pending:    -1,
		lastSignal: -1,
	}
	*out = f
	return vulkan.Success
}

func (d *fakeDriver) destroyFence(_ vulkan.Device, f vulkan.Fence, _ *vulkan.AllocationCallbacks) {
	delete(d.fences, f)
	d.release(unsafe.Pointer(f), "fence")
}

// waitForFences completes the pending submission of every fence. A fence
// that is unsignaled with nothing pending would block forever on a real
// driver; here it counts as a deadlock and times out.
func (d *fakeDriver) waitForFences(_ vulkan.Device, n uint32, fences []vulkan.Fence, _ vulkan.Bool32, _ uint64) vulkan.Result {
	if r := d.call("WaitForFences"); r != vulkan.Success {
		return r
	}
	for _, fence := range fences[:n] {
		f, ok := d.fences[fence]
		if !ok {
			d.t.Errorf("wait on unknown fence %p", fence)
			return vulkan.ErrorDeviceLost
		}
		if !f.signaled {
			if f.pending < 0 {
				d.deadlocks++
				return vulkan.Timeout
			}
			f.signaled, f.lastSignal, f.pending = true, f.pending, -1
		}
		d.waits = append(d.waits, fakeWait{fence: fence, lastSignal: f.lastSignal})
	}
	return vulkan.Success
}

func (d *fakeDriver) resetFences(_ vulkan.Device, n uint32, fences []vulkan.Fence) vulkan.Result {
	if r := d.call("ResetFences"); r != vulkan.Success {
		return r
	}
	for _, fence := range fences[:n] {
		if f, ok := d.fences[fence]; ok {
			f.signaled = false
		}
	}
	return vulkan.Success
}

func (d *fakeDriver) acquireNextImage(_ vulkan.Device, _ vulkan.Swapchain, _ uint64, _ vulkan.Semaphore, _ vulkan.Fence, index *uint32) vulkan.Result {
	r := d.call("AcquireNextImage")
	if r != vulkan.Success && r != vulkan.Suboptimal {
		return r
	}
	if len(d.acquireOrder) > 0 {
		*index = d.acquireOrder[d.acquired%len(d.acquireOrder)]
	} else {
		*index = uint32(d.acquired % len(d.swapImages))
	}
	d.acquired++
	return r
}

func (d *fakeDriver) queueSubmit(_ vulkan.Queue, n uint32, submits []vulkan.SubmitInfo, fence vulkan.Fence) vulkan.Result {
	if r := d.call("QueueSubmit"); r != vulkan.Success {
		return r
	}
	if n != 1 {
		d.t.Errorf("submit count %d, want 1", n)
	}
	s := submits[0]
	d.submits = append(d.submits, fakeSubmit{
		fence:   fence,
		command: s.PCommandBuffers[0],
		wait:    s.PWaitSemaphores[0],
		signal:  s.PSignalSemaphores[0],
	})
	if f, ok := d.fences[fence]; ok {
		if f.signaled || f.pending >= 0 {
			d.t.Errorf("submit with fence %p that was not reset", fence)
		}
		f.pending = len(d.submits) - 1
	}
	return vulkan.Success
}

func (d *fakeDriver) queuePresent(_ vulkan.Queue, info *vulkan.PresentInfo) vulkan.Result {
	r := d.call("QueuePresent")
	d.presents = append(d.presents, fakePresent{image: info.PImageIndices[0], wait: info.PWaitSemaphores[0]})
	return r
}

func copyCount(count *uint32, have int) int {
	n := int(*count)
	if have < n {
		n = have
	}
	*count = uint32(n)
	return n
}

type fakeAssets struct {
	files  map[string][]byte
	loads  map[string]int
	frees  map[string]int
	failOn string
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{
		files: map[string][]byte{
			DefaultVertexShader:   spirvStub(16),
			DefaultFragmentShader: spirvStub(24),
		},
		loads: map[string]int{},
		frees: map[string]int{},
	}
}

func spirvStub(n int) []byte {
	b := make([]byte, n)
	b[0], b[1], b[2], b[3] = 0x03, 0x02, 0x23, 0x07
	return b
}

func (a *fakeAssets) Load(name string) ([]byte, error) {
	if name == a.failOn {
		return nil, errAssetMissing
	}
	b, ok := a.files[name]
	if !ok {
		return nil, errAssetMissing
	}
	a.loads[name]++
	return b, nil
}

func (a *fakeAssets) Free(name string) {
	a.frees[name]++
}

var (
	errAssetMissing = errors.New("asset missing")

	fakeInstance = vulkan.Instance(unsafe.Add(unsafe.Pointer(nil), 0x10000))
	fakeSurface  = vulkan.Surface(unsafe.Add(unsafe.Pointer(nil), 0x20000))
)

func newTestRenderer(t *testing.T, d *fakeDriver, assets *fakeAssets) (*Renderer, error) {
	t.Helper()
	return New(Options{
		Instance: fakeInstance,
		Surface:  fakeSurface,
		Tables:   d,
		Assets:   assets,
	})
}
