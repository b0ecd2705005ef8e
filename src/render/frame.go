package render

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// DrawFrame runs one tick: wait for the current slot's fence, acquire an
// image, submit that image's command buffer and present it. Any failure
// abandons the tick and returns an error matching ErrFrameDropped; the
// renderer stays usable and the caller should keep ticking. An image index
// outside the swapchain is a driver fault and is not a dropped frame.
func (r *Renderer) DrawFrame() error {
	ch := r.chain
	if ch == nil || len(ch.Frames) == 0 {
		return &FrameError{Step: "start", Err: errors.New("no swapchain")}
	}
	fn, dev := r.dev, r.device
	slot := &ch.Frames[r.currentFrame]

	// An orphaned fence has nothing pending, so waiting on it would never return.
	if !slot.orphaned {
		if err := NewError(fn.WaitForFences(dev, 1, []vulkan.Fence{slot.InFlight}, vulkan.True, vulkan.MaxUint64)); err != nil {
			return r.dropFrame("wait for fence", err)
		}
	}

	var imageIndex uint32
	ret := fn.AcquireNextImage(dev, ch.Swapchain, vulkan.MaxUint64, slot.ImageAcquired, vulkan.NullFence, &imageIndex)
	if !presentable(ret) {
		return r.dropFrame("acquire", NewError(ret))
	}
	// The image is now acquired and slot.ImageAcquired has a signal pending
	// that nothing will wait on, so the slot cannot be used again.
	if int(imageIndex) >= len(ch.Frames) {
		r.log.Error("driver returned an image outside the swapchain", "index", imageIndex, "images", len(ch.Frames))
		return errors.Errorf("acquire returned image index %d of %d", imageIndex, len(ch.Frames))
	}
	image := &ch.Frames[imageIndex]

	if err := NewError(fn.ResetFences(dev, 1, []vulkan.Fence{slot.InFlight})); err != nil {
		return r.dropFrame("reset fence", err)
	}

	submits := []vulkan.SubmitInfo{{
		SType:                vulkan.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vulkan.Semaphore{slot.ImageAcquired},
		PWaitDstStageMask:    []vulkan.PipelineStageFlags{vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vulkan.CommandBuffer{image.Command},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vulkan.Semaphore{slot.RenderComplete},
	}}
	if err := NewError(fn.QueueSubmit(r.graphicsQueue, 1, submits, slot.InFlight)); err != nil {
		r.rearmFence(slot)
		return r.dropFrame("submit", err)
	}
	slot.orphaned = false

	presentInfo := vulkan.PresentInfo{
		SType:              vulkan.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vulkan.Semaphore{slot.RenderComplete},
		SwapchainCount:     1,
		PSwapchains:        []vulkan.Swapchain{ch.Swapchain},
		PImageIndices:      []uint32{imageIndex},
	}
	ret = fn.QueuePresent(r.presentQueue, &presentInfo)
	r.currentFrame = (r.currentFrame + 1) % len(ch.Frames)
	if !presentable(ret) {
		return r.dropFrame("present", NewError(ret))
	}
	return nil
}

// rearmFence restores the slot's fence after a failed submit left it reset
// with nothing pending, which would make the next wait on it block forever.
// The fence is replaced by a new signaled one; if that fails the next wait
// is skipped instead.
func (r *Renderer) rearmFence(slot *Frame) {
	fence, err := r.createFence()
	if err != nil {
		r.log.Warn("could not replace in-flight fence after failed submit", "error", err)
		slot.orphaned = true
		return
	}
	r.dev.DestroyFence(r.device, slot.InFlight, nil)
	slot.InFlight = fence
	r.log.Warn("replaced in-flight fence after failed submit", "frame", r.currentFrame)
}

func (r *Renderer) dropFrame(step string, err error) error {
	r.log.Debug("frame dropped", "step", step, "frame", r.currentFrame, "error", err)
	return &FrameError{Step: step, Err: err}
}
