package render

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

type ImageUsage uint32

const ImageUsageColorAttachment ImageUsage = 0x10

type SharingMode int32

const (
	SharingModeExclusive SharingMode = iota
	SharingModeConcurrent
)

func (m SharingMode) String() string {
	switch m {
	case SharingModeExclusive:
		return "exclusive"
	case SharingModeConcurrent:
		return "concurrent"
	}
	return fmt.Sprintf("SharingMode(%d)", int32(m))
}

// SwapchainConfig is the fully negotiated set of swapchain parameters.
type SwapchainConfig struct {
	ImageFormat    Format
	ColorSpace     ColorSpace
	PresentMode    PresentMode
	ImageCount     int
	Extent         Extent
	ImageUsage     ImageUsage
	ArrayLayers    int
	Transform      SurfaceTransform
	CompositeAlpha CompositeAlpha
	Clipped        bool

	SharingMode SharingMode
	// QueueFamilyIndices is only set for SharingModeConcurrent.
	QueueFamilyIndices []int
}

// QuerySurfaceCapabilities takes a fresh snapshot for the device and surface.
func QuerySurfaceCapabilities(surface Surface, device PhysicalDevice) (SurfaceCapabilitySet, error) {
	capabilities, err := surface.Capabilities(device)
	if err != nil {
		return SurfaceCapabilitySet{}, stageError(ErrSurfaceIncompatible, err, "query surface capabilities")
	}

	formats, err := surface.Formats(device)
	if err != nil {
		return SurfaceCapabilitySet{}, stageError(ErrSurfaceIncompatible, err, "query surface formats")
	}

	presentModes, err := surface.PresentModes(device)
	if err != nil {
		return SurfaceCapabilitySet{}, stageError(ErrSurfaceIncompatible, err, "query present modes")
	}

	return SurfaceCapabilitySet{
		Capabilities: capabilities,
		Formats:      formats,
		PresentModes: presentModes,
	}, nil
}

// ChooseSurfaceFormat prefers B8G8R8A8_UNORM with the sRGB nonlinear color
// space wherever it appears and otherwise takes the first entry.
func ChooseSurfaceFormat(availableFormats []SurfaceFormat) (SurfaceFormat, error) {
	if len(availableFormats) == 0 {
		return SurfaceFormat{}, stageError(ErrSurfaceIncompatible, nil, "surface reports no formats")
	}

	for _, format := range availableFormats {
		if format.Format == FormatB8G8R8A8Unorm && format.ColorSpace == ColorSpaceSRGBNonlinear {
			return format, nil
		}
	}

	return availableFormats[0], nil
}

// ChoosePresentMode prefers mailbox and falls back to FIFO, which every
// conforming driver supports.
func ChoosePresentMode(availablePresentModes []PresentMode) (PresentMode, error) {
	if len(availablePresentModes) == 0 {
		return 0, stageError(ErrSurfaceIncompatible, nil, "surface reports no present modes")
	}

	for _, presentMode := range availablePresentModes {
		if presentMode == PresentModeMailbox {
			return presentMode, nil
		}
	}

	return PresentModeFIFO, nil
}

// ChooseImageCount asks for one image more than the minimum, capped by the
// maximum when the surface has one.
func ChooseImageCount(capabilities SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func ChooseSharingMode(assignment QueueFamilyAssignment) (SharingMode, []int) {
	if assignment.Shared() {
		return SharingModeExclusive, nil
	}
	return SharingModeConcurrent, []int{assignment.Graphics, assignment.Present}
}

// ChooseExtent uses the surface's current extent. A surface that leaves the
// size to the swapchain gets fallback clamped to its image extent limits.
func ChooseExtent(capabilities SurfaceCapabilities, fallback Extent) (Extent, error) {
	extent := capabilities.CurrentExtent
	if extent.Width == UndefinedExtentSize {
		extent = Extent{
			Width:  clamp(fallback.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
			Height: clamp(fallback.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
		}
	}

	if extent.Zero() {
		return Extent{}, stageError(ErrSurfaceIncompatible, nil, "surface extent is %s", extent)
	}
	return extent, nil
}

func clamp(value, min, max int) int {
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return value
}

// NewSwapchainConfig applies the selection policy to a capability snapshot.
func NewSwapchainConfig(set SurfaceCapabilitySet, assignment QueueFamilyAssignment, fallback Extent) (SwapchainConfig, error) {
	surfaceFormat, err := ChooseSurfaceFormat(set.Formats)
	if err != nil {
		return SwapchainConfig{}, err
	}

	presentMode, err := ChoosePresentMode(set.PresentModes)
	if err != nil {
		return SwapchainConfig{}, err
	}

	extent, err := ChooseExtent(set.Capabilities, fallback)
	if err != nil {
		return SwapchainConfig{}, err
	}

	sharingMode, queueFamilyIndices := ChooseSharingMode(assignment)

	return SwapchainConfig{
		ImageFormat:    surfaceFormat.Format,
		ColorSpace:     surfaceFormat.ColorSpace,
		PresentMode:    presentMode,
		ImageCount:     ChooseImageCount(set.Capabilities),
		Extent:         extent,
		ImageUsage:     ImageUsageColorAttachment,
		ArrayLayers:    1,
		Transform:      set.Capabilities.CurrentTransform,
		CompositeAlpha: CompositeAlphaOpaque,
		Clipped:        true,

		SharingMode:        sharingMode,
		QueueFamilyIndices: queueFamilyIndices,
	}, nil
}

// SwapchainContext owns the swapchain. The images belong to the swapchain
// and are only borrowed.
type SwapchainContext struct {
	device    *LogicalDevice
	swapchain Swapchain
	config    SwapchainConfig
	images    []Image
	logger    logrus.FieldLogger

	views     int
	destroyed bool
}

// NegotiateSwapchain queries the surface for the selected device, derives a
// SwapchainConfig and creates the swapchain on device.
func NegotiateSwapchain(ic *InstanceContext, candidate PhysicalDeviceCandidate, device *LogicalDevice, assignment QueueFamilyAssignment, fallback Extent) (*SwapchainContext, error) {
	set, err := QuerySurfaceCapabilities(ic.surface, candidate.Device)
	if err != nil {
		return nil, err
	}

	config, err := NewSwapchainConfig(set, assignment, fallback)
	if err != nil {
		return nil, err
	}

	swapchain, err := device.device.CreateSwapchain(ic.surface, config)
	if err != nil {
		return nil, stageError(ErrSwapchainCreationFailed, err, "create swapchain")
	}

	images, err := swapchain.Images()
	if err != nil {
		swapchain.Destroy()
		return nil, stageError(ErrSwapchainCreationFailed, err, "retrieve swapchain images")
	}

	device.swapchains++

	logger := device.logger.WithFields(logrus.Fields{
		"format":  SurfaceFormat{Format: config.ImageFormat, ColorSpace: config.ColorSpace}.String(),
		"present": config.PresentMode.String(),
		"extent":  config.Extent.String(),
		"sharing": config.SharingMode.String(),
	})
	logger.WithField("images", len(images)).Info("swapchain created")

	return &SwapchainContext{
		device:    device,
		swapchain: swapchain,
		config:    config,
		images:    images,
		logger:    logger,
	}, nil
}

func (sc *SwapchainContext) Swapchain() Swapchain { return sc.swapchain }

func (sc *SwapchainContext) Config() SwapchainConfig { return sc.config }

func (sc *SwapchainContext) Format() Format { return sc.config.ImageFormat }

func (sc *SwapchainContext) Extent() Extent { return sc.config.Extent }

func (sc *SwapchainContext) Images() []Image { return sc.images }

// ImageCount is the number of images the driver actually created, which may
// exceed the requested count.
func (sc *SwapchainContext) ImageCount() int { return len(sc.images) }

// Destroy releases the swapchain and with it the borrowed images. It fails
// while image views of those images are alive.
func (sc *SwapchainContext) Destroy() error {
	if sc == nil || sc.destroyed {
		return nil
	}
	if sc.views > 0 {
		return errors.Wrapf(ErrDependentsAlive, "destroy swapchain: %d image view(s) alive", sc.views)
	}

	sc.swapchain.Destroy()
	sc.swapchain = nil
	sc.images = nil
	sc.destroyed = true
	sc.device.swapchains--

	sc.logger.Debug("swapchain destroyed")
	return nil
}
