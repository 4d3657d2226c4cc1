package render

import "fmt"

type Platform int

const (
	PlatformUnknown Platform = iota
	PlatformSDL2
)

func (p Platform) String() string {
	switch p {
	case PlatformSDL2:
		return "sdl2"
	default:
		return "unknown"
	}
}

// SurfaceHandle is the presentation target handed over by the windowing
// layer. It must be fully constructed before the pipeline runs and must
// outlive every object the pipeline creates from it. A nil pointer wrapped
// in a non-nil SurfaceHandle is not detected here; the driver rejects it
// when it creates the surface.
type SurfaceHandle interface {
	Platform() Platform
}

type Format int32

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8Unorm Format = 37
	FormatR8G8B8A8SRGB  Format = 43
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8SRGB  Format = 50
)

var formatNames = map[Format]string{
	FormatUndefined:     "UNDEFINED",
	FormatR8G8B8A8Unorm: "R8G8B8A8_UNORM",
	FormatR8G8B8A8SRGB:  "R8G8B8A8_SRGB",
	FormatB8G8R8A8Unorm: "B8G8R8A8_UNORM",
	FormatB8G8R8A8SRGB:  "B8G8R8A8_SRGB",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int32(f))
}

type ColorSpace int32

const ColorSpaceSRGBNonlinear ColorSpace = 0

func (c ColorSpace) String() string {
	if c == ColorSpaceSRGBNonlinear {
		return "SRGB_NONLINEAR"
	}
	return fmt.Sprintf("ColorSpace(%d)", int32(c))
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

func (f SurfaceFormat) String() string {
	return f.Format.String() + "/" + f.ColorSpace.String()
}

type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "IMMEDIATE"
	case PresentModeMailbox:
		return "MAILBOX"
	case PresentModeFIFO:
		return "FIFO"
	case PresentModeFIFORelaxed:
		return "FIFO_RELAXED"
	}
	return fmt.Sprintf("PresentMode(%d)", int32(m))
}

// UndefinedExtentSize in SurfaceCapabilities.CurrentExtent means the surface
// size is decided by the swapchain.
const UndefinedExtentSize = -1

type Extent struct {
	Width  int
	Height int
}

func (e Extent) Zero() bool { return e.Width == 0 || e.Height == 0 }

func (e Extent) String() string { return fmt.Sprintf("%dx%d", e.Width, e.Height) }

type SurfaceTransform uint32

const SurfaceTransformIdentity SurfaceTransform = 0x1

type CompositeAlpha uint32

const CompositeAlphaOpaque CompositeAlpha = 0x1

type SurfaceCapabilities struct {
	MinImageCount int
	// MaxImageCount of zero means there is no upper bound.
	MaxImageCount int

	CurrentExtent  Extent
	MinImageExtent Extent
	MaxImageExtent Extent

	CurrentTransform        SurfaceTransform
	SupportedCompositeAlpha CompositeAlpha
}

// SurfaceCapabilitySet is a snapshot for one (physical device, surface) pair.
type SurfaceCapabilitySet struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}
