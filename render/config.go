package render

const (
	SurfaceExtensionName                = "VK_KHR_surface"
	SwapchainExtensionName              = "VK_KHR_swapchain"
	DebugUtilsExtensionName             = "VK_EXT_debug_utils"
	PortabilityEnumerationExtensionName = "VK_KHR_portability_enumeration"
	PortabilitySubsetExtensionName      = "VK_KHR_portability_subset"

	KhronosValidationLayer = "VK_LAYER_KHRONOS_validation"
)

// Config drives a pipeline run. InstanceExtensions are the extensions the
// windowing layer needs; DeviceExtensions must contain SwapchainExtensionName.
type Config struct {
	ApplicationName    string
	ApplicationVersion Version
	EngineName         string
	EngineVersion      Version
	APIVersion         Version

	InstanceExtensions []string

	EnableValidation bool
	ValidationLayers []string

	DeviceExtensions []string

	// FallbackExtent is used when the surface leaves the extent to the
	// swapchain, usually the window's drawable size.
	FallbackExtent Extent
}

func DefaultConfig() Config {
	return Config{
		ApplicationName:    "Alovak App",
		ApplicationVersion: MakeVersion(0, 0, 1),
		EngineName:         "Alovak",
		EngineVersion:      MakeVersion(0, 0, 3),
		APIVersion:         Vulkan1_0,
		InstanceExtensions: []string{SurfaceExtensionName},
		EnableValidation:   false,
		ValidationLayers:   []string{KhronosValidationLayer},
		DeviceExtensions:   []string{SwapchainExtensionName},
		FallbackExtent:     Extent{Width: 800, Height: 600},
	}
}

func appendUnique(names []string, more ...string) []string {
	for _, name := range more {
		if !contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
