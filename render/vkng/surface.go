package vkng

import (
	"math"

	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"

	"github.com/alovak/alovak/render"
)

type Surface struct {
	surface khr_surface.Surface
}

var _ render.Surface = (*Surface)(nil)

func (s *Surface) SupportsPresent(device render.PhysicalDevice, queueFamily int) (bool, error) {
	physicalDevice, err := unwrapPhysicalDevice(device)
	if err != nil {
		return false, err
	}

	supported, res, err := s.surface.PhysicalDeviceSurfaceSupport(physicalDevice, queueFamily)
	if err != nil {
		return false, driverError("vkGetPhysicalDeviceSurfaceSupportKHR", res, err)
	}
	return supported, nil
}

func (s *Surface) Capabilities(device render.PhysicalDevice) (render.SurfaceCapabilities, error) {
	physicalDevice, err := unwrapPhysicalDevice(device)
	if err != nil {
		return render.SurfaceCapabilities{}, err
	}

	capabilities, res, err := s.surface.PhysicalDeviceSurfaceCapabilities(physicalDevice)
	if err != nil {
		return render.SurfaceCapabilities{}, driverError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res, err)
	}

	return render.SurfaceCapabilities{
		MinImageCount: capabilities.MinImageCount,
		MaxImageCount: capabilities.MaxImageCount,
		CurrentExtent: currentExtent(capabilities.CurrentExtent),
		MinImageExtent: render.Extent{
			Width:  capabilities.MinImageExtent.Width,
			Height: capabilities.MinImageExtent.Height,
		},
		MaxImageExtent: render.Extent{
			Width:  capabilities.MaxImageExtent.Width,
			Height: capabilities.MaxImageExtent.Height,
		},
		CurrentTransform:        render.SurfaceTransform(capabilities.CurrentTransform),
		SupportedCompositeAlpha: render.CompositeAlpha(capabilities.SupportedCompositeAlpha),
	}, nil
}

// currentExtent maps the 0xFFFFFFFF sentinel, which arrives here as an
// unsigned value widened to int, to render.UndefinedExtentSize.
func currentExtent(extent core1_0.Extent2D) render.Extent {
	if uint32(extent.Width) == math.MaxUint32 && uint32(extent.Height) == math.MaxUint32 {
		return render.Extent{Width: render.UndefinedExtentSize, Height: render.UndefinedExtentSize}
	}
	return render.Extent{Width: extent.Width, Height: extent.Height}
}

func (s *Surface) Formats(device render.PhysicalDevice) ([]render.SurfaceFormat, error) {
	physicalDevice, err := unwrapPhysicalDevice(device)
	if err != nil {
		return nil, err
	}

	surfaceFormats, res, err := s.surface.PhysicalDeviceSurfaceFormats(physicalDevice)
	if err != nil {
		return nil, driverError("vkGetPhysicalDeviceSurfaceFormatsKHR", res, err)
	}

	formats := make([]render.SurfaceFormat, 0, len(surfaceFormats))
	for _, format := range surfaceFormats {
		formats = append(formats, render.SurfaceFormat{
			Format:     render.Format(format.Format),
			ColorSpace: render.ColorSpace(format.ColorSpace),
		})
	}
	return formats, nil
}

func (s *Surface) PresentModes(device render.PhysicalDevice) ([]render.PresentMode, error) {
	physicalDevice, err := unwrapPhysicalDevice(device)
	if err != nil {
		return nil, err
	}

	presentModes, res, err := s.surface.PhysicalDeviceSurfacePresentModes(physicalDevice)
	if err != nil {
		return nil, driverError("vkGetPhysicalDeviceSurfacePresentModesKHR", res, err)
	}

	modes := make([]render.PresentMode, 0, len(presentModes))
	for _, mode := range presentModes {
		modes = append(modes, render.PresentMode(mode))
	}
	return modes, nil
}

func (s *Surface) Destroy() {
	s.surface.Destroy(nil)
}
