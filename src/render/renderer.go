package render

import (
	"log/slog"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// Assets hands out shader bytecode by name. The renderer frees every name it
// loads once it is done with the bytes.
type Assets interface {
	Load(name string) ([]byte, error)
	Free(name string)
}

type Options struct {
	// Instance and Surface are created and destroyed by the caller.
	Instance vulkan.Instance
	Surface  vulkan.Surface

	// Tables defaults to LoaderTables over a VulkanLoader built from
	// Instance and GetInstanceProcAddr.
	Tables Tables
	// GetInstanceProcAddr is the loader's vkGetInstanceProcAddr. Only needed
	// when Tables is nil.
	GetInstanceProcAddr unsafe.Pointer

	Assets Assets

	VertexShader   string
	FragmentShader string
	ClearColor     [4]float32

	// Layers are forwarded to logical device creation.
	Layers []string
	// Debug installs a debug report callback that logs through Logger.
	Debug  bool
	Logger *slog.Logger
}

const (
	DefaultVertexShader   = "main.vert.spv"
	DefaultFragmentShader = "main.frag.spv"
)

// Renderer owns the device-side objects for one surface. It is not safe for
// concurrent use.
type Renderer struct {
	log    *slog.Logger
	assets Assets
	inst   *InstanceFuncs
	dev    *DeviceFuncs

	vertexShader   string
	fragmentShader string
	clearColor     [4]float32

	instance       vulkan.Instance
	surface        vulkan.Surface
	physical       vulkan.PhysicalDevice
	device         vulkan.Device
	graphicsFamily uint32
	presentFamily  uint32
	graphicsQueue  vulkan.Queue
	presentQueue   vulkan.Queue
	surfaceFormat  vulkan.SurfaceFormat
	commandPool    vulkan.CommandPool
	debugReport    vulkan.DebugReportCallback

	chain        *Chain
	currentFrame int
}

// New selects a physical device for opts.Surface, creates the logical device
// and builds the first swapchain. Whatever was created is released again if
// any step fails.
func New(opts Options) (_ *Renderer, err error) {
	if opts.Instance == nil || opts.Surface == nil {
		return nil, errors.New("render: instance and surface are required")
	}
	if opts.Assets == nil {
		return nil, errors.New("render: no asset loader")
	}
	if opts.Logger == nil {
		opts.Logger = newNopLogger()
	}
	if opts.Tables == nil {
		if opts.GetInstanceProcAddr == nil {
			return nil, errors.New("render: no capability tables and no vkGetInstanceProcAddr")
		}
		opts.Tables = LoaderTables{Loader: VulkanLoader{
			Instance:            opts.Instance,
			GetInstanceProcAddr: opts.GetInstanceProcAddr,
		}}
	}
	if opts.VertexShader == "" {
		opts.VertexShader = DefaultVertexShader
	}
	if opts.FragmentShader == "" {
		opts.FragmentShader = DefaultFragmentShader
	}

	r := &Renderer{
		log:            opts.Logger,
		assets:         opts.Assets,
		vertexShader:   opts.VertexShader,
		fragmentShader: opts.FragmentShader,
		clearColor:     opts.ClearColor,
		instance:       opts.Instance,
		surface:        opts.Surface,
	}
	defer func() {
		if err != nil {
			r.Destroy()
		}
	}()

	if r.inst, err = opts.Tables.Instance(); err != nil {
		return nil, errors.Wrap(err, "resolve instance functions")
	}
	if opts.Debug {
		if err = r.installDebugReport(); err != nil {
			return nil, err
		}
	}

	sel, err := selectDevice(r.inst, r.instance, r.surface, r.log)
	if err != nil {
		return nil, err
	}
	r.physical = sel.physical
	r.graphicsFamily = sel.graphicsFamily
	r.presentFamily = sel.presentFamily
	r.surfaceFormat = sel.surfaceFormat

	if r.device, err = createLogicalDevice(r.inst, sel, opts.Layers); err != nil {
		return nil, err
	}
	if r.dev, err = opts.Tables.Device(r.device); err != nil {
		return nil, errors.Wrap(err, "resolve device functions")
	}

	r.dev.GetDeviceQueue(r.device, r.graphicsFamily, 0, &r.graphicsQueue)
	r.dev.GetDeviceQueue(r.device, r.presentFamily, 0, &r.presentQueue)

	poolInfo := vulkan.CommandPoolCreateInfo{
		SType:            vulkan.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: r.graphicsFamily,
	}
	if err = NewError(r.dev.CreateCommandPool(r.device, &poolInfo, nil, &r.commandPool)); err != nil {
		return nil, errors.Wrap(err, "create command pool")
	}

	if r.chain, err = r.buildChain(); err != nil {
		return nil, errors.Wrap(err, "build swapchain")
	}
	return r, nil
}
