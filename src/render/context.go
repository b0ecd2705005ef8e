package render

import (
	"github.com/vulkan-go/vulkan"
)

// Context is what a frame loop needs from a renderer.
type Context interface {
	Device() vulkan.Device
	SwapchainDimensions() SwapchainDimensions
	ImageCount() int
	CurrentFrame() int
	DrawFrame() error
	WaitIdle() error
}

var _ Context = (*Renderer)(nil)

func (r *Renderer) Device() vulkan.Device {
	return r.device
}

// SwapchainDimensions is zero when no chain is built.
func (r *Renderer) SwapchainDimensions() SwapchainDimensions {
	if r.chain == nil {
		return SwapchainDimensions{}
	}
	return SwapchainDimensions{
		Width:  r.chain.Extent.Width,
		Height: r.chain.Extent.Height,
		Format: r.chain.Format.Format,
	}
}

func (r *Renderer) ImageCount() int {
	if r.chain == nil {
		return 0
	}
	return len(r.chain.Frames)
}

// CurrentFrame is the frame slot the next DrawFrame will use.
func (r *Renderer) CurrentFrame() int {
	return r.currentFrame
}

// QueueFamilies returns the graphics and present queue family indices.
func (r *Renderer) QueueFamilies() (graphics, present uint32) {
	return r.graphicsFamily, r.presentFamily
}

func (r *Renderer) PresentMode() vulkan.PresentMode {
	if r.chain == nil {
		return vulkan.PresentModeFifo
	}
	return r.chain.PresentMode
}
