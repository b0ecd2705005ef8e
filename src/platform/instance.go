package platform

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

const (
	ValidationLayer = "VK_LAYER_KHRONOS_validation"
	debugReportExt  = "VK_EXT_debug_report"
)

type InstanceConfig struct {
	AppName    string
	Extensions []string
	// Debug enables the validation layer when it is installed and the
	// debug report extension.
	Debug  bool
	Logger *slog.Logger
}

// Instance is a created Vulkan instance and the layers enabled on it, which
// are also to be enabled on the logical device.
type Instance struct {
	Handle vulkan.Instance
	Layers []string
}

// CreateInstance creates a Vulkan 1.0 instance with the given extensions.
func CreateInstance(cfg InstanceConfig) (*Instance, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var layers []string
	if cfg.Debug {
		available, err := instanceLayers()
		if err != nil {
			return nil, err
		}
		layers = selectLayers(available, []string{ValidationLayer})
		if len(layers) == 0 {
			log.Warn("validation layer not installed", "layer", ValidationLayer)
		}
	}
	extensions := instanceExtensions(cfg.Extensions, cfg.Debug)

	appInfo := vulkan.ApplicationInfo{
		SType:              vulkan.StructureTypeApplicationInfo,
		PApplicationName:   cfg.AppName + "\x00",
		ApplicationVersion: vulkan.MakeVersion(1, 0, 0),
		PEngineName:        "prism\x00",
		EngineVersion:      vulkan.MakeVersion(1, 0, 0),
		ApiVersion:         vulkan.ApiVersion10,
	}
	info := vulkan.InstanceCreateInfo{
		SType:                   vulkan.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: terminated(extensions),
	}
	if len(layers) > 0 {
		info.EnabledLayerCount = uint32(len(layers))
		info.PpEnabledLayerNames = terminated(layers)
	}

	var handle vulkan.Instance
	if err := vulkan.Error(vulkan.CreateInstance(&info, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "create instance")
	}
	if err := vulkan.InitInstance(handle); err != nil {
		vulkan.DestroyInstance(handle, nil)
		return nil, errors.Wrap(err, "load instance functions")
	}
	log.Debug("created instance", "extensions", extensions, "layers", layers)
	return &Instance{Handle: handle, Layers: layers}, nil
}

func (i *Instance) Destroy() {
	if i != nil && i.Handle != nil {
		vulkan.DestroyInstance(i.Handle, nil)
		i.Handle = nil
	}
}

func instanceLayers() ([]string, error) {
	var count uint32
	if err := vulkan.Error(vulkan.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.Wrap(err, "enumerate instance layers")
	}
	props := make([]vulkan.LayerProperties, count)
	if err := vulkan.Error(vulkan.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, errors.Wrap(err, "enumerate instance layers")
	}
	names := make([]string, 0, count)
	for _, p := range props[:count] {
		p.Deref()
		names = append(names, vulkan.ToString(p.LayerName[:]))
	}
	return names, nil
}

// selectLayers keeps the wanted layers that are available, in wanted order.
func selectLayers(available, wanted []string) []string {
	have := make(map[string]bool, len(available))
	for _, name := range available {
		have[name] = true
	}
	var out []string
	for _, name := range wanted {
		if have[name] {
			out = append(out, name)
		}
	}
	return out
}

// instanceExtensions returns required without duplicates, plus debug report
// when debug is set.
func instanceExtensions(required []string, debug bool) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, name := range required {
		add(name)
	}
	if debug {
		add(debugReportExt)
	}
	return out
}

func terminated(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s + "\x00"
	}
	return out
}
