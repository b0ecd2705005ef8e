package render

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

var requiredDeviceExtensions = []string{
	vulkan.KhrSwapchainExtensionName,
}

// The only surface format the renderer draws into.
const (
	requiredFormat     = vulkan.FormatB8g8r8a8Srgb
	requiredColorSpace = vulkan.ColorSpaceSrgbNonlinear
)

type deviceSelection struct {
	physical       vulkan.PhysicalDevice
	name           string
	graphicsFamily uint32
	presentFamily  uint32
	surfaceFormat  vulkan.SurfaceFormat
}

// selectDevice returns the first enumerated device that has the swapchain
// extension, a graphics and a present queue family for surface, and the
// required surface format. Devices after the first match are not examined.
func selectDevice(funcs *InstanceFuncs, instance vulkan.Instance, surface vulkan.Surface, log *slog.Logger) (deviceSelection, error) {
	var count uint32
	if err := NewError(funcs.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return deviceSelection{}, errors.Wrap(err, "enumerate physical devices")
	}
	if count == 0 {
		return deviceSelection{}, errors.Wrap(ErrIncompatibleDriver, "no physical devices")
	}
	devices := make([]vulkan.PhysicalDevice, count)
	if err := NewError(funcs.EnumeratePhysicalDevices(instance, &count, devices)); err != nil {
		return deviceSelection{}, errors.Wrap(err, "enumerate physical devices")
	}

	for _, physical := range devices[:count] {
		name := deviceName(funcs, physical)

		ok, err := hasExtensions(funcs, physical, requiredDeviceExtensions)
		if err != nil {
			return deviceSelection{}, errors.Wrapf(err, "device %q: enumerate extensions", name)
		}
		if !ok {
			log.Debug("rejected device", "device", name, "reason", "missing required extensions")
			continue
		}

		graphics, present, err := findQueueFamilies(funcs, physical, surface)
		if err != nil {
			return deviceSelection{}, errors.Wrapf(err, "device %q: query queue families", name)
		}
		if graphics == 0 || present == 0 {
			log.Debug("rejected device", "device", name, "reason", "no graphics or present queue family")
			continue
		}

		format, ok, err := findSurfaceFormat(funcs, physical, surface)
		if err != nil {
			return deviceSelection{}, errors.Wrapf(err, "device %q: query surface formats", name)
		}
		if !ok {
			log.Debug("rejected device", "device", name, "reason", "surface format unsupported")
			continue
		}

		sel := deviceSelection{
			physical:       physical,
			name:           name,
			graphicsFamily: graphics - 1,
			presentFamily:  present - 1,
			surfaceFormat:  format,
		}
		log.Info("selected device", "device", name,
			"graphics_family", sel.graphicsFamily, "present_family", sel.presentFamily)
		return sel, nil
	}
	return deviceSelection{}, errors.Wrap(ErrIncompatibleDriver, "no device supports the surface")
}

func deviceName(funcs *InstanceFuncs, physical vulkan.PhysicalDevice) string {
	var props vulkan.PhysicalDeviceProperties
	funcs.GetPhysicalDeviceProperties(physical, &props)
	props.Deref()
	return vulkan.ToString(props.DeviceName[:])
}

func hasExtensions(funcs *InstanceFuncs, physical vulkan.PhysicalDevice, required []string) (bool, error) {
	var count uint32
	if err := NewError(funcs.EnumerateDeviceExtensionProperties(physical, "", &count, nil)); err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	props := make([]vulkan.ExtensionProperties, count)
	if err := NewError(funcs.EnumerateDeviceExtensionProperties(physical, "", &count, props)); err != nil {
		return false, err
	}
	available := make(map[string]bool, count)
	for _, p := range props[:count] {
		p.Deref()
		available[vulkan.ToString(p.ExtensionName[:])] = true
	}
	for _, name := range required {
		if !available[name] {
			return false, nil
		}
	}
	return true, nil
}

// findQueueFamilies scans every family in ascending order and returns
// index+1 of the last family with graphics support and of the last family
// able to present to surface, 0 meaning none. The scan stops early once a
// single family holds both roles.
func findQueueFamilies(funcs *InstanceFuncs, physical vulkan.PhysicalDevice, surface vulkan.Surface) (graphics, present uint32, err error) {
	var count uint32
	funcs.GetPhysicalDeviceQueueFamilyProperties(physical, &count, nil)
	families := make([]vulkan.QueueFamilyProperties, count)
	funcs.GetPhysicalDeviceQueueFamilyProperties(physical, &count, families)

	for i := uint32(0); i < count; i++ {
		families[i].Deref()
		if families[i].QueueFlags&vulkan.QueueFlags(vulkan.QueueGraphicsBit) != 0 {
			graphics = i + 1
		}
		var supported vulkan.Bool32
		if err := NewError(funcs.GetPhysicalDeviceSurfaceSupport(physical, i, surface, &supported)); err != nil {
			return 0, 0, err
		}
		if supported.B() {
			present = i + 1
		}
		if graphics != 0 && graphics == present {
			break
		}
	}
	return graphics, present, nil
}

func findSurfaceFormat(funcs *InstanceFuncs, physical vulkan.PhysicalDevice, surface vulkan.Surface) (vulkan.SurfaceFormat, bool, error) {
	var count uint32
	if err := NewError(funcs.GetPhysicalDeviceSurfaceFormats(physical, surface, &count, nil)); err != nil {
		return vulkan.SurfaceFormat{}, false, err
	}
	if count == 0 {
		return vulkan.SurfaceFormat{}, false, nil
	}
	formats := make([]vulkan.SurfaceFormat, count)
	if err := NewError(funcs.GetPhysicalDeviceSurfaceFormats(physical, surface, &count, formats)); err != nil {
		return vulkan.SurfaceFormat{}, false, err
	}
	for _, f := range formats[:count] {
		f.Deref()
		if f.Format == requiredFormat && f.ColorSpace == requiredColorSpace {
			return vulkan.SurfaceFormat{Format: f.Format, ColorSpace: f.ColorSpace}, true, nil
		}
	}
	return vulkan.SurfaceFormat{}, false, nil
}

// createLogicalDevice creates one queue per distinct family with the
// swapchain extension enabled.
func createLogicalDevice(funcs *InstanceFuncs, sel deviceSelection, layers []string) (vulkan.Device, error) {
	families := []uint32{sel.graphicsFamily}
	if sel.presentFamily != sel.graphicsFamily {
		families = append(families, sel.presentFamily)
	}
	queueInfos := make([]vulkan.DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		queueInfos = append(queueInfos, vulkan.DeviceQueueCreateInfo{
			SType:            vulkan.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	info := vulkan.DeviceCreateInfo{
		SType:                   vulkan.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(requiredDeviceExtensions)),
		PpEnabledExtensionNames: cStrings(requiredDeviceExtensions),
		PEnabledFeatures:        []vulkan.PhysicalDeviceFeatures{{}},
	}
	if len(layers) > 0 {
		info.EnabledLayerCount = uint32(len(layers))
		info.PpEnabledLayerNames = cStrings(layers)
	}

	var device vulkan.Device
	if err := NewError(funcs.CreateDevice(sel.physical, &info, nil, &device)); err != nil {
		return nil, errors.Wrapf(err, "create logical device on %q", sel.name)
	}
	return device, nil
}
