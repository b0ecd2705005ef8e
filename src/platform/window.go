// Package platform owns the window, the Vulkan instance and the window
// surface. All of it must be used from the main OS thread.
package platform

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

var getInstanceProcAddr unsafe.Pointer

// Init starts glfw and points the vulkan package at the loader glfw found.
func Init() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "init glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("no vulkan loader found")
	}
	proc := glfw.GetVulkanGetInstanceProcAddress()
	if proc == nil {
		glfw.Terminate()
		return errors.New("vkGetInstanceProcAddr not found")
	}
	vulkan.SetGetInstanceProcAddr(proc)
	if err := vulkan.Init(); err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "init vulkan")
	}
	getInstanceProcAddr = proc
	return nil
}

func Terminate() {
	getInstanceProcAddr = nil
	glfw.Terminate()
}

// GetInstanceProcAddr is the loader's vkGetInstanceProcAddr, nil before Init.
func GetInstanceProcAddr() unsafe.Pointer {
	return getInstanceProcAddr
}

type Window struct {
	win *glfw.Window
}

// NewWindow opens a fixed-size window with no client API attached.
func NewWindow(width, height int, title string) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	return &Window{win: win}, nil
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) Destroy() {
	if w.win != nil {
		w.win.Destroy()
		w.win = nil
	}
}

// RequiredExtensions lists the instance extensions needed to present to the window.
func (w *Window) RequiredExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

func (w *Window) CreateSurface(instance vulkan.Instance) (vulkan.Surface, error) {
	ptr, err := w.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window surface")
	}
	return vulkan.SurfaceFromPointer(ptr), nil
}

func DestroySurface(instance vulkan.Instance, surface vulkan.Surface) {
	if instance != nil && surface != nil {
		vulkan.DestroySurface(instance, surface, nil)
	}
}
