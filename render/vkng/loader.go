// Package vkng drives the render pipeline through vkngwrapper.
package vkng

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/alovak/alovak/render"
)

// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
const instanceCreateEnumeratePortability core1_0.InstanceCreateFlags = 0x00000001

// Loader is a render.Loader backed by a Vulkan loader.
type Loader struct {
	loader core.Loader
}

var _ render.Loader = (*Loader)(nil)

// NewLoader creates a loader from a vkGetInstanceProcAddr pointer.
func NewLoader(procAddr unsafe.Pointer) (*Loader, error) {
	loader, err := core.CreateLoaderFromProcAddr(procAddr)
	if err != nil {
		return nil, errors.Wrap(err, "create vulkan loader")
	}
	return &Loader{loader: loader}, nil
}

// NewSDLLoader creates a loader from the proc address SDL found. SDL must
// already be initialized with a Vulkan-capable window.
func NewSDLLoader() (*Loader, error) {
	return NewLoader(sdl.VulkanGetVkGetInstanceProcAddr())
}

func (l *Loader) AvailableExtensions() (map[string]struct{}, error) {
	extensions, res, err := l.loader.AvailableExtensions()
	if err != nil {
		return nil, driverError("vkEnumerateInstanceExtensionProperties", res, err)
	}
	return names(extensions), nil
}

func (l *Loader) AvailableLayers() (map[string]struct{}, error) {
	layers, res, err := l.loader.AvailableLayers()
	if err != nil {
		return nil, driverError("vkEnumerateInstanceLayerProperties", res, err)
	}
	return names(layers), nil
}

func (l *Loader) CreateInstance(options render.InstanceOptions) (render.Instance, error) {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:       options.ApplicationName,
		ApplicationVersion:    common.Version(options.ApplicationVersion),
		EngineName:            options.EngineName,
		EngineVersion:         common.Version(options.EngineVersion),
		APIVersion:            common.APIVersion(options.APIVersion),
		EnabledExtensionNames: options.ExtensionNames,
		EnabledLayerNames:     options.LayerNames,
		Flags:                 instanceCreateFlags(options),
	}

	// Cover messages emitted by vkCreateInstance and vkDestroyInstance
	if options.Reporter != nil {
		instanceOptions.Next = messengerOptions(options.Reporter)
	}

	instance, res, err := l.loader.CreateInstance(nil, instanceOptions)
	if err != nil {
		return nil, driverError("vkCreateInstance", res, err)
	}

	return &Instance{instance: instance}, nil
}

func instanceCreateFlags(options render.InstanceOptions) core1_0.InstanceCreateFlags {
	var flags core1_0.InstanceCreateFlags
	if options.EnumeratePortability {
		flags |= instanceCreateEnumeratePortability
	}
	return flags
}

func names[T any](properties map[string]T) map[string]struct{} {
	set := make(map[string]struct{}, len(properties))
	for name := range properties {
		set[name] = struct{}{}
	}
	return set
}

func driverError(op string, res common.VkResult, err error) error {
	return render.NewDriverError(op, int32(res), res.String(), err)
}
