package vkng

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/core/driver"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/alovak/alovak/render"
)

type Device struct {
	device             core1_0.Device
	swapchainExtension khr_swapchain.Extension
}

var _ render.Device = (*Device)(nil)

func newDevice(device core1_0.Device) *Device {
	return &Device{
		device:             device,
		swapchainExtension: khr_swapchain.CreateExtensionFromDevice(device),
	}
}

func (d *Device) Queue(queueFamily int) render.Queue {
	return retrievedQueue(d.device.GetQueue(queueFamily, 0))
}

// retrievedQueue returns nil when the driver handed back a null queue handle.
func retrievedQueue(queue core1_0.Queue) render.Queue {
	if queue == nil || queue.Handle() == driver.VkQueue(driver.NullHandle) {
		return nil
	}
	return queue
}

func (d *Device) CreateSwapchain(surface render.Surface, config render.SwapchainConfig) (render.Swapchain, error) {
	s, ok := surface.(*Surface)
	if !ok {
		return nil, errors.Newf("surface %T does not belong to this driver", surface)
	}

	swapchain, res, err := d.swapchainExtension.CreateSwapchain(d.device, nil, khr_swapchain.SwapchainCreateInfo{
		Surface: s.surface,

		MinImageCount:    config.ImageCount,
		ImageFormat:      core1_0.Format(config.ImageFormat),
		ImageColorSpace:  khr_surface.ColorSpace(config.ColorSpace),
		ImageExtent:      core1_0.Extent2D{Width: config.Extent.Width, Height: config.Extent.Height},
		ImageArrayLayers: config.ArrayLayers,
		ImageUsage:       core1_0.ImageUsageFlags(config.ImageUsage),

		ImageSharingMode:   core1_0.SharingMode(config.SharingMode),
		QueueFamilyIndices: config.QueueFamilyIndices,

		PreTransform:   khr_surface.SurfaceTransformFlags(config.Transform),
		CompositeAlpha: khr_surface.CompositeAlphaFlags(config.CompositeAlpha),
		PresentMode:    khr_surface.PresentMode(config.PresentMode),
		Clipped:        config.Clipped,
	})
	if err != nil {
		return nil, driverError("vkCreateSwapchainKHR", res, err)
	}

	return &Swapchain{swapchain: swapchain}, nil
}

func (d *Device) CreateImageView(options render.ImageViewOptions) (render.ImageViewHandle, error) {
	image, ok := options.Image.(core1_0.Image)
	if !ok {
		return nil, errors.Newf("image %T does not belong to this driver", options.Image)
	}

	imageView, res, err := d.device.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType(options.ViewType),
		Format:   core1_0.Format(options.Format),
		Components: core1_0.ComponentMapping{
			R: core1_0.ComponentSwizzle(options.Components.R),
			G: core1_0.ComponentSwizzle(options.Components.G),
			B: core1_0.ComponentSwizzle(options.Components.B),
			A: core1_0.ComponentSwizzle(options.Components.A),
		},
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectFlags(options.Aspect),
			BaseMipLevel:   options.BaseMipLevel,
			LevelCount:     options.LevelCount,
			BaseArrayLayer: options.BaseArrayLayer,
			LayerCount:     options.LayerCount,
		},
	})
	if err != nil {
		return nil, driverError("vkCreateImageView", res, err)
	}

	return &ImageView{imageView: imageView}, nil
}

func (d *Device) Destroy() {
	d.device.Destroy(nil)
}

type Swapchain struct {
	swapchain khr_swapchain.Swapchain
}

func (s *Swapchain) Images() ([]render.Image, error) {
	swapchainImages, res, err := s.swapchain.SwapchainImages()
	if err != nil {
		return nil, driverError("vkGetSwapchainImagesKHR", res, err)
	}

	images := make([]render.Image, 0, len(swapchainImages))
	for _, image := range swapchainImages {
		images = append(images, image)
	}
	return images, nil
}

func (s *Swapchain) Destroy() {
	s.swapchain.Destroy(nil)
}

type ImageView struct {
	imageView core1_0.ImageView
}

func (v *ImageView) Destroy() {
	v.imageView.Destroy(nil)
}
