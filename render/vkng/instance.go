package vkng

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2"

	"github.com/alovak/alovak/render"
)

// SDLWindow is the surface handle this backend accepts.
type SDLWindow interface {
	render.SurfaceHandle
	SDLWindow() *sdl.Window
}

type Instance struct {
	instance core1_0.Instance
}

var _ render.Instance = (*Instance)(nil)

func (i *Instance) PhysicalDevices() ([]render.PhysicalDevice, error) {
	physicalDevices, res, err := i.instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, driverError("vkEnumeratePhysicalDevices", res, err)
	}

	devices := make([]render.PhysicalDevice, 0, len(physicalDevices))
	for _, device := range physicalDevices {
		devices = append(devices, &PhysicalDevice{device: device})
	}
	return devices, nil
}

func (i *Instance) CreateSurface(handle render.SurfaceHandle) (render.Surface, error) {
	window, ok := handle.(SDLWindow)
	if !ok || handle.Platform() != render.PlatformSDL2 {
		return nil, errors.Newf("unsupported surface platform %s", handle.Platform())
	}
	sdlWindow := window.SDLWindow()
	if sdlWindow == nil {
		return nil, errors.New("surface handle has no sdl window")
	}

	surfaceLoader := khr_surface.CreateExtensionFromInstance(i.instance)
	surface, err := vkng_sdl2.CreateSurface(i.instance, surfaceLoader, sdlWindow)
	if err != nil {
		return nil, errors.Wrap(err, "create sdl2 surface")
	}

	return &Surface{surface: surface}, nil
}

func (i *Instance) CreateMessenger(reporter render.Reporter) (render.Messenger, error) {
	debugLoader := ext_debug_utils.CreateExtensionFromInstance(i.instance)
	messenger, res, err := debugLoader.CreateDebugUtilsMessenger(i.instance, nil, messengerOptions(reporter))
	if err != nil {
		return nil, driverError("vkCreateDebugUtilsMessengerEXT", res, err)
	}
	return &Messenger{messenger: messenger}, nil
}

func (i *Instance) Destroy() {
	i.instance.Destroy(nil)
}
