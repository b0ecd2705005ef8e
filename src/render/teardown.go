package render

import (
	"github.com/vulkan-go/vulkan"
)

// destroyChain releases every object in ch, leaving the slice and handles
// zeroed. The device must already be idle; no waiting happens here.
func destroyChain(fn *DeviceFuncs, dev vulkan.Device, pool vulkan.CommandPool, ch *Chain) {
	if ch == nil {
		return
	}

	commands := make([]vulkan.CommandBuffer, 0, len(ch.Frames))
	for _, f := range ch.Frames {
		if f.Command != nil {
			commands = append(commands, f.Command)
		}
	}
	if len(commands) > 0 {
		fn.FreeCommandBuffers(dev, pool, uint32(len(commands)), commands)
	}

	for i := range ch.Frames {
		f := &ch.Frames[i]
		if f.InFlight != nil {
			fn.DestroyFence(dev, f.InFlight, nil)
		}
		if f.RenderComplete != nil {
			fn.DestroySemaphore(dev, f.RenderComplete, nil)
		}
		if f.ImageAcquired != nil {
			fn.DestroySemaphore(dev, f.ImageAcquired, nil)
		}
		if f.Framebuffer != nil {
			fn.DestroyFramebuffer(dev, f.Framebuffer, nil)
		}
		if f.View != nil {
			fn.DestroyImageView(dev, f.View, nil)
		}
	}
	ch.Frames = nil

	if ch.Pipeline != nil {
		fn.DestroyPipeline(dev, ch.Pipeline, nil)
		ch.Pipeline = nil
	}
	if ch.PipelineLayout != nil {
		fn.DestroyPipelineLayout(dev, ch.PipelineLayout, nil)
		ch.PipelineLayout = nil
	}
	if ch.RenderPass != nil {
		fn.DestroyRenderPass(dev, ch.RenderPass, nil)
		ch.RenderPass = nil
	}
	if ch.Swapchain != nil {
		fn.DestroySwapchain(dev, ch.Swapchain, nil)
		ch.Swapchain = nil
	}
}

// WaitIdle blocks until the device has finished all submitted work.
func (r *Renderer) WaitIdle() error {
	if r.device == nil || r.dev == nil {
		return nil
	}
	return NewError(r.dev.DeviceWaitIdle(r.device))
}

// RebuildChain replaces the swapchain and its dependents. It is never called
// from DrawFrame; an out-of-date swapchain just drops frames until the caller
// rebuilds.
func (r *Renderer) RebuildChain() error {
	if err := r.WaitIdle(); err != nil {
		return err
	}
	r.releaseChain()
	ch, err := r.buildChain()
	if err != nil {
		return err
	}
	r.chain = ch
	r.currentFrame = 0
	return nil
}

func (r *Renderer) releaseChain() {
	destroyChain(r.dev, r.device, r.commandPool, r.chain)
	r.chain = nil
	r.currentFrame = 0
}

// Destroy waits for the device, then releases the chain, the command pool,
// the logical device and the debug report callback. It is safe to call more
// than once and on a partially constructed Renderer. The surface and
// instance belong to the caller.
//
// The wait is redundant when the caller already drained the device, as the
// prism frame loop does before returning; it is kept so that cleanup after
// a failed New or an aborted loop is still safe.
func (r *Renderer) Destroy() {
	if r == nil {
		return
	}
	if r.device != nil {
		if r.dev != nil {
			if err := r.WaitIdle(); err != nil {
				r.log.Warn("wait idle before destroy", "error", err)
			}
			r.releaseChain()
			if r.commandPool != nil {
				r.dev.DestroyCommandPool(r.device, r.commandPool, nil)
				r.commandPool = nil
			}
		}
		r.inst.DestroyDevice(r.device, nil)
		r.device = nil
	}
	if r.debugReport != nil {
		r.inst.DestroyDebugReportCallback(r.instance, r.debugReport, nil)
		r.debugReport = nil
	}
}
