package render

import (
	"math"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// Frame holds everything tied to one swapchain image. The semaphores and the
// fence are used by whichever frame slot has the same index, independently of
// which image that slot acquires.
type Frame struct {
	Image          vulkan.Image
	View           vulkan.ImageView
	Framebuffer    vulkan.Framebuffer
	Command        vulkan.CommandBuffer
	ImageAcquired  vulkan.Semaphore
	RenderComplete vulkan.Semaphore
	InFlight       vulkan.Fence

	// orphaned is set when InFlight was reset but nothing was submitted to
	// signal it, and the fence could not be replaced.
	orphaned bool
}

// Chain is the swapchain and everything derived from it. It is built and
// replaced as a whole.
type Chain struct {
	Swapchain      vulkan.Swapchain
	Extent         vulkan.Extent2D
	Format         vulkan.SurfaceFormat
	PresentMode    vulkan.PresentMode
	RenderPass     vulkan.RenderPass
	PipelineLayout vulkan.PipelineLayout
	Pipeline       vulkan.Pipeline
	Frames         []Frame
}

type SwapchainDimensions struct {
	Width  uint32
	Height uint32
	Format vulkan.Format
}

// chooseExtent takes the surface's current extent unless the surface leaves
// it to the swapchain, in which case the largest allowed extent is used.
func chooseExtent(caps vulkan.SurfaceCapabilities) vulkan.Extent2D {
	caps.CurrentExtent.Deref()
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return vulkan.Extent2D{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height}
	}
	caps.MaxImageExtent.Deref()
	return vulkan.Extent2D{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height}
}

// choosePresentMode prefers FIFO relaxed and otherwise keeps FIFO, which is
// always available.
func choosePresentMode(modes []vulkan.PresentMode) vulkan.PresentMode {
	for _, m := range modes {
		if m == vulkan.PresentModeFifoRelaxed {
			return m
		}
	}
	return vulkan.PresentModeFifo
}

func (r *Renderer) presentModes() ([]vulkan.PresentMode, error) {
	var count uint32
	if err := NewError(r.inst.GetPhysicalDeviceSurfacePresentModes(r.physical, r.surface, &count, nil)); err != nil {
		return nil, err
	}
	modes := make([]vulkan.PresentMode, count)
	if count == 0 {
		return modes, nil
	}
	if err := NewError(r.inst.GetPhysicalDeviceSurfacePresentModes(r.physical, r.surface, &count, modes)); err != nil {
		return nil, err
	}
	return modes[:count], nil
}

// buildChain creates a swapchain for the renderer's surface and all the
// objects that depend on it. On failure every object created so far is
// released in reverse order and the renderer is left untouched.
func (r *Renderer) buildChain() (_ *Chain, err error) {
	fn, dev := r.dev, r.device
	var undo cleanup
	defer func() {
		if err != nil {
			undo.run()
		}
	}()

	var caps vulkan.SurfaceCapabilities
	if err := NewError(r.inst.GetPhysicalDeviceSurfaceCapabilities(r.physical, r.surface, &caps)); err != nil {
		return nil, errors.Wrap(err, "query surface capabilities")
	}
	caps.Deref()
	modes, err := r.presentModes()
	if err != nil {
		return nil, errors.Wrap(err, "query present modes")
	}

	ch := &Chain{
		Extent:      chooseExtent(caps),
		Format:      r.surfaceFormat,
		PresentMode: choosePresentMode(modes),
	}

	swapchainInfo := vulkan.SwapchainCreateInfo{
		SType:            vulkan.StructureTypeSwapchainCreateInfo,
		Surface:          r.surface,
		MinImageCount:    caps.MinImageCount,
		ImageFormat:      ch.Format.Format,
		ImageColorSpace:  ch.Format.ColorSpace,
		ImageExtent:      ch.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vulkan.ImageUsageFlags(vulkan.ImageUsageColorAttachmentBit),
		ImageSharingMode: vulkan.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vulkan.CompositeAlphaOpaqueBit,
		PresentMode:      ch.PresentMode,
		Clipped:          vulkan.True,
	}
	if r.graphicsFamily != r.presentFamily {
		swapchainInfo.ImageSharingMode = vulkan.SharingModeConcurrent
		swapchainInfo.QueueFamilyIndexCount = 2
		swapchainInfo.PQueueFamilyIndices = []uint32{r.graphicsFamily, r.presentFamily}
	}
	if err := NewError(fn.CreateSwapchain(dev, &swapchainInfo, nil, &ch.Swapchain)); err != nil {
		return nil, errors.Wrap(err, "create swapchain")
	}
	swapchain := ch.Swapchain
	undo.push(func() { fn.DestroySwapchain(dev, swapchain, nil) })

	if ch.RenderPass, err = createRenderPass(fn, dev, ch.Format.Format); err != nil {
		return nil, err
	}
	renderPass := ch.RenderPass
	undo.push(func() { fn.DestroyRenderPass(dev, renderPass, nil) })

	if ch.PipelineLayout, ch.Pipeline, err = r.createPipeline(ch.RenderPass, ch.Extent, &undo); err != nil {
		return nil, err
	}

	var count uint32
	if err := NewError(fn.GetSwapchainImages(dev, ch.Swapchain, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "get swapchain images")
	}
	images := make([]vulkan.Image, count)
	if err := NewError(fn.GetSwapchainImages(dev, ch.Swapchain, &count, images)); err != nil {
		return nil, errors.Wrap(err, "get swapchain images")
	}
	if count == 0 {
		return nil, errors.New("swapchain has no images")
	}
	ch.Frames = make([]Frame, count)
	for i := range ch.Frames {
		ch.Frames[i].Image = images[i]
	}

	commands := make([]vulkan.CommandBuffer, count)
	allocInfo := vulkan.CommandBufferAllocateInfo{
		SType:              vulkan.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        r.commandPool,
		Level:              vulkan.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}
	if err := NewError(fn.AllocateCommandBuffers(dev, &allocInfo, commands)); err != nil {
		return nil, errors.Wrap(err, "allocate command buffers")
	}
	pool := r.commandPool
	undo.push(func() { fn.FreeCommandBuffers(dev, pool, count, commands) })

	for i := range ch.Frames {
		f := &ch.Frames[i]
		f.Command = commands[i]
		if err := r.createTarget(ch, f, &undo); err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}
		if err := r.recordFrame(ch, f); err != nil {
			return nil, errors.Wrapf(err, "record command buffer %d", i)
		}
	}

	for i := range ch.Frames {
		if err := r.createSync(&ch.Frames[i], &undo); err != nil {
			return nil, errors.Wrapf(err, "frame slot %d", i)
		}
	}

	undo.disarm()
	r.log.Debug("built swapchain",
		"images", count,
		"width", ch.Extent.Width,
		"height", ch.Extent.Height,
		"present_mode", int(ch.PresentMode))
	return ch, nil
}

// createTarget creates the image view and framebuffer for one image.
func (r *Renderer) createTarget(ch *Chain, f *Frame, undo *cleanup) error {
	fn, dev := r.dev, r.device

	viewInfo := vulkan.ImageViewCreateInfo{
		SType:    vulkan.StructureTypeImageViewCreateInfo,
		Image:    f.Image,
		ViewType: vulkan.ImageViewType2d,
		Format:   ch.Format.Format,
		Components: vulkan.ComponentMapping{
			R: vulkan.ComponentSwizzleIdentity,
			G: vulkan.ComponentSwizzleIdentity,
			B: vulkan.ComponentSwizzleIdentity,
			A: vulkan.ComponentSwizzleIdentity,
		},
		SubresourceRange: vulkan.ImageSubresourceRange{
			AspectMask: vulkan.ImageAspectFlags(vulkan.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	if err := NewError(fn.CreateImageView(dev, &viewInfo, nil, &f.View)); err != nil {
		return errors.Wrap(err, "create image view")
	}
	view := f.View
	undo.push(func() { fn.DestroyImageView(dev, view, nil) })

	fbInfo := vulkan.FramebufferCreateInfo{
		SType:           vulkan.StructureTypeFramebufferCreateInfo,
		RenderPass:      ch.RenderPass,
		AttachmentCount: 1,
		PAttachments:    []vulkan.ImageView{f.View},
		Width:           ch.Extent.Width,
		Height:          ch.Extent.Height,
		Layers:          1,
	}
	if err := NewError(fn.CreateFramebuffer(dev, &fbInfo, nil, &f.Framebuffer)); err != nil {
		return errors.Wrap(err, "create framebuffer")
	}
	fb := f.Framebuffer
	undo.push(func() { fn.DestroyFramebuffer(dev, fb, nil) })
	return nil
}

// recordFrame records the fixed clear-and-draw sequence into f.Command once.
func (r *Renderer) recordFrame(ch *Chain, f *Frame) error {
	fn := r.dev

	beginInfo := vulkan.CommandBufferBeginInfo{
		SType: vulkan.StructureTypeCommandBufferBeginInfo,
	}
	if err := NewError(fn.BeginCommandBuffer(f.Command, &beginInfo)); err != nil {
		return errors.Wrap(err, "begin command buffer")
	}

	clearValues := make([]vulkan.ClearValue, 1)
	clearValues[0].SetColor(r.clearColor[:])
	passInfo := vulkan.RenderPassBeginInfo{
		SType:       vulkan.StructureTypeRenderPassBeginInfo,
		RenderPass:  ch.RenderPass,
		Framebuffer: f.Framebuffer,
		RenderArea: vulkan.Rect2D{
			Offset: vulkan.Offset2D{X: 0, Y: 0},
			Extent: ch.Extent,
		},
		ClearValueCount: 1,
		PClearValues:    clearValues,
	}
	fn.CmdBeginRenderPass(f.Command, &passInfo, vulkan.SubpassContentsInline)
	fn.CmdBindPipeline(f.Command, vulkan.PipelineBindPointGraphics, ch.Pipeline)
	fn.CmdDraw(f.Command, 3, 1, 0, 0)
	fn.CmdEndRenderPass(f.Command)

	if err := NewError(fn.EndCommandBuffer(f.Command)); err != nil {
		return errors.Wrap(err, "end command buffer")
	}
	return nil
}

// createSync creates a slot's two semaphores and its fence. The fence starts
// signaled so the first wait on it returns at once.
func (r *Renderer) createSync(f *Frame, undo *cleanup) error {
	fn, dev := r.dev, r.device

	semInfo := vulkan.SemaphoreCreateInfo{SType: vulkan.StructureTypeSemaphoreCreateInfo}
	if err := NewError(fn.CreateSemaphore(dev, &semInfo, nil, &f.ImageAcquired)); err != nil {
		return errors.Wrap(err, "create image-acquired semaphore")
	}
	acquired := f.ImageAcquired
	undo.push(func() { fn.DestroySemaphore(dev, acquired, nil) })

	if err := NewError(fn.CreateSemaphore(dev, &semInfo, nil, &f.RenderComplete)); err != nil {
		return errors.Wrap(err, "create render-complete semaphore")
	}
	complete := f.RenderComplete
	undo.push(func() { fn.DestroySemaphore(dev, complete, nil) })

	fence, err := r.createFence()
	if err != nil {
		return err
	}
	f.InFlight = fence
	undo.push(func() { fn.DestroyFence(dev, fence, nil) })
	return nil
}

func (r *Renderer) createFence() (vulkan.Fence, error) {
	info := vulkan.FenceCreateInfo{
		SType: vulkan.StructureTypeFenceCreateInfo,
		Flags: vulkan.FenceCreateFlags(vulkan.FenceCreateSignaledBit),
	}
	var fence vulkan.Fence
	if err := NewError(r.dev.CreateFence(r.device, &info, nil, &fence)); err != nil {
		return nil, errors.Wrap(err, "create in-flight fence")
	}
	return fence, nil
}
