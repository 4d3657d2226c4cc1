// Package render negotiates a GPU device and a presentable swapchain for a
// window surface.
package render

// Loader is the driver entry point. It is the only way to reach an Instance.
type Loader interface {
	AvailableExtensions() (map[string]struct{}, error)
	AvailableLayers() (map[string]struct{}, error)
	CreateInstance(options InstanceOptions) (Instance, error)
}

type InstanceOptions struct {
	ApplicationName    string
	ApplicationVersion Version
	EngineName         string
	EngineVersion      Version
	APIVersion         Version

	ExtensionNames []string
	LayerNames     []string

	// EnumeratePortability sets the portability enumeration instance flag.
	EnumeratePortability bool

	// Reporter, when set, receives diagnostics emitted while the instance
	// itself is being created. It is silenced before the instance is
	// destroyed.
	Reporter Reporter
}

type Instance interface {
	PhysicalDevices() ([]PhysicalDevice, error)
	CreateSurface(handle SurfaceHandle) (Surface, error)
	CreateMessenger(reporter Reporter) (Messenger, error)
	Destroy()
}

type PhysicalDevice interface {
	Properties() (DeviceProperties, error)
	QueueFamilies() ([]QueueFamily, error)
	Extensions() (map[string]struct{}, error)
	CreateDevice(options DeviceOptions) (Device, error)
}

type Surface interface {
	SupportsPresent(device PhysicalDevice, queueFamily int) (bool, error)
	Capabilities(device PhysicalDevice) (SurfaceCapabilities, error)
	Formats(device PhysicalDevice) ([]SurfaceFormat, error)
	PresentModes(device PhysicalDevice) ([]PresentMode, error)
	Destroy()
}

type QueueCreateInfo struct {
	QueueFamilyIndex int
	QueuePriorities  []float32
}

type DeviceOptions struct {
	QueueCreateInfos []QueueCreateInfo
	ExtensionNames   []string
}

// Device is a logical device. Queue returns nil when the driver has no queue
// for the family.
type Device interface {
	Queue(queueFamily int) Queue
	CreateSwapchain(surface Surface, config SwapchainConfig) (Swapchain, error)
	CreateImageView(options ImageViewOptions) (ImageViewHandle, error)
	Destroy()
}

type Swapchain interface {
	Images() ([]Image, error)
	Destroy()
}

type ImageViewHandle interface {
	Destroy()
}

type Messenger interface {
	Destroy()
}

// Queue and Image are driver handles the pipeline hands back to the driver
// without looking inside them.
type Queue interface{}

type Image interface{}
