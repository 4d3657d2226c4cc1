package render_test

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/alovak/alovak/render"
)

var errInjected = errors.New("injected driver failure")

// fakeDriver is an in-memory driver that counts every object it creates and
// destroys. Failures are injected per operation name.
type fakeDriver struct {
	mu sync.Mutex

	extensions map[string]struct{}
	layers     map[string]struct{}
	devices    []*fakePhysicalDevice

	fail             map[string]error
	failImageViewAt  int
	imageViewAttempt int

	created   map[string]int
	destroyed map[string]int
	events    []string

	instanceOptions render.InstanceOptions
	deviceOptions   render.DeviceOptions
	swapchainConfig render.SwapchainConfig
	viewOptions     []render.ImageViewOptions
	messengerTarget render.Reporter
}

type fakePhysicalDevice struct {
	driver *fakeDriver

	properties    render.DeviceProperties
	families      []render.QueueFamily
	present       map[int]bool
	extensions    []string
	missingQueues map[int]bool

	capabilities render.SurfaceCapabilities
	formats      []render.SurfaceFormat
	presentModes []render.PresentMode
	images       int
}

func newFakeDriver(devices ...*fakePhysicalDevice) *fakeDriver {
	d := &fakeDriver{
		extensions: set(render.SurfaceExtensionName, render.DebugUtilsExtensionName),
		layers:     set(render.KhronosValidationLayer),
		fail:       map[string]error{},
		created:    map[string]int{},
		destroyed:  map[string]int{},
	}
	for _, device := range devices {
		d.addDevice(device)
	}
	return d
}

func (d *fakeDriver) addDevice(device *fakePhysicalDevice) {
	device.driver = d
	d.devices = append(d.devices, device)
}

// capableDevice has a single family that does graphics and presents, the
// swapchain extension and a well behaved surface.
func capableDevice(name string) *fakePhysicalDevice {
	return &fakePhysicalDevice{
		properties: render.DeviceProperties{
			Name:       name,
			Type:       render.DeviceTypeDiscreteGPU,
			APIVersion: render.Vulkan1_2,
		},
		families: []render.QueueFamily{
			{Index: 0, Flags: render.QueueGraphics | render.QueueCompute | render.QueueTransfer, Count: 16},
		},
		present:    map[int]bool{0: true},
		extensions: []string{render.SwapchainExtensionName},
		capabilities: render.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           render.Extent{Width: 800, Height: 600},
			MinImageExtent:          render.Extent{Width: 1, Height: 1},
			MaxImageExtent:          render.Extent{Width: 4096, Height: 4096},
			CurrentTransform:        render.SurfaceTransformIdentity,
			SupportedCompositeAlpha: render.CompositeAlphaOpaque,
		},
		formats: []render.SurfaceFormat{
			{Format: render.FormatB8G8R8A8SRGB, ColorSpace: render.ColorSpaceSRGBNonlinear},
			{Format: render.FormatB8G8R8A8Unorm, ColorSpace: render.ColorSpaceSRGBNonlinear},
		},
		presentModes: []render.PresentMode{render.PresentModeFIFO, render.PresentModeMailbox},
		images:       3,
	}
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, name := range names {
		m[name] = struct{}{}
	}
	return m
}

func (d *fakeDriver) record(kind string, create bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if create {
		d.created[kind]++
		d.events = append(d.events, "create "+kind)
	} else {
		d.destroyed[kind]++
		d.events = append(d.events, "destroy "+kind)
	}
}

func (d *fakeDriver) failure(op string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err, ok := d.fail[op]; ok {
		return err
	}
	return nil
}

// live reports objects created but not yet destroyed, by kind.
func (d *fakeDriver) live() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	live := map[string]int{}
	for kind, n := range d.created {
		if n-d.destroyed[kind] != 0 {
			live[kind] = n - d.destroyed[kind]
		}
	}
	return live
}

func (d *fakeDriver) destroyEvents() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var events []string
	for _, event := range d.events {
		if len(event) > 8 && event[:8] == "destroy " {
			events = append(events, event[8:])
		}
	}
	return events
}

func requireNoLeaks(t *testing.T, d *fakeDriver) {
	t.Helper()
	require.Empty(t, d.live(), "driver objects leaked")
}

func (d *fakeDriver) AvailableExtensions() (map[string]struct{}, error) {
	if err := d.failure("AvailableExtensions"); err != nil {
		return nil, err
	}
	return d.extensions, nil
}

func (d *fakeDriver) AvailableLayers() (map[string]struct{}, error) {
	if err := d.failure("AvailableLayers"); err != nil {
		return nil, err
	}
	return d.layers, nil
}

func (d *fakeDriver) CreateInstance(options render.InstanceOptions) (render.Instance, error) {
	if err := d.failure("CreateInstance"); err != nil {
		return nil, err
	}
	d.instanceOptions = options
	d.record("instance", true)
	return &fakeInstance{driver: d}, nil
}

type fakeInstance struct {
	driver *fakeDriver
}

func (i *fakeInstance) PhysicalDevices() ([]render.PhysicalDevice, error) {
	if err := i.driver.failure("PhysicalDevices"); err != nil {
		return nil, err
	}

	devices := make([]render.PhysicalDevice, 0, len(i.driver.devices))
	for _, device := range i.driver.devices {
		devices = append(devices, device)
	}
	return devices, nil
}

func (i *fakeInstance) CreateSurface(handle render.SurfaceHandle) (render.Surface, error) {
	if err := i.driver.failure("CreateSurface"); err != nil {
		return nil, err
	}
	i.driver.record("surface", true)
	return &fakeSurface{driver: i.driver}, nil
}

func (i *fakeInstance) CreateMessenger(reporter render.Reporter) (render.Messenger, error) {
	if err := i.driver.failure("CreateMessenger"); err != nil {
		return nil, err
	}
	i.driver.messengerTarget = reporter
	i.driver.record("messenger", true)
	return &fakeObject{driver: i.driver, kind: "messenger"}, nil
}

func (i *fakeInstance) Destroy() {
	// The loader reports through the creation-time reporter while tearing down.
	if reporter := i.driver.instanceOptions.Reporter; reporter != nil {
		reporter.Report(render.Diagnostic{Severity: render.SeverityInfo, Message: "destroying instance"})
	}
	i.driver.record("instance", false)
}

// emit sends a diagnostic the way a validation layer would.
func (d *fakeDriver) emit(diagnostic render.Diagnostic) {
	if d.messengerTarget != nil {
		d.messengerTarget.Report(diagnostic)
	}
}

func (p *fakePhysicalDevice) Properties() (render.DeviceProperties, error) {
	if err := p.driver.failure("Properties"); err != nil {
		return render.DeviceProperties{}, err
	}
	return p.properties, nil
}

func (p *fakePhysicalDevice) QueueFamilies() ([]render.QueueFamily, error) {
	if err := p.driver.failure("QueueFamilies"); err != nil {
		return nil, err
	}
	return p.families, nil
}

func (p *fakePhysicalDevice) Extensions() (map[string]struct{}, error) {
	if err := p.driver.failure("Extensions"); err != nil {
		return nil, err
	}
	return set(p.extensions...), nil
}

func (p *fakePhysicalDevice) CreateDevice(options render.DeviceOptions) (render.Device, error) {
	if err := p.driver.failure("CreateDevice"); err != nil {
		return nil, err
	}
	p.driver.deviceOptions = options
	p.driver.record("device", true)
	return &fakeDevice{driver: p.driver, physical: p}, nil
}

type fakeSurface struct {
	driver *fakeDriver
}

func (s *fakeSurface) SupportsPresent(device render.PhysicalDevice, queueFamily int) (bool, error) {
	if err := s.driver.failure("SupportsPresent"); err != nil {
		return false, err
	}
	return device.(*fakePhysicalDevice).present[queueFamily], nil
}

func (s *fakeSurface) Capabilities(device render.PhysicalDevice) (render.SurfaceCapabilities, error) {
	if err := s.driver.failure("Capabilities"); err != nil {
		return render.SurfaceCapabilities{}, err
	}
	return device.(*fakePhysicalDevice).capabilities, nil
}

func (s *fakeSurface) Formats(device render.PhysicalDevice) ([]render.SurfaceFormat, error) {
	if err := s.driver.failure("Formats"); err != nil {
		return nil, err
	}
	return device.(*fakePhysicalDevice).formats, nil
}

func (s *fakeSurface) PresentModes(device render.PhysicalDevice) ([]render.PresentMode, error) {
	if err := s.driver.failure("PresentModes"); err != nil {
		return nil, err
	}
	return device.(*fakePhysicalDevice).presentModes, nil
}

func (s *fakeSurface) Destroy() {
	s.driver.record("surface", false)
}

type fakeQueue struct {
	family int
}

type fakeImage struct {
	index int
}

type fakeDevice struct {
	driver   *fakeDriver
	physical *fakePhysicalDevice
}

func (d *fakeDevice) Queue(queueFamily int) render.Queue {
	if d.physical.missingQueues[queueFamily] {
		return nil
	}
	return &fakeQueue{family: queueFamily}
}

func (d *fakeDevice) CreateSwapchain(surface render.Surface, config render.SwapchainConfig) (render.Swapchain, error) {
	if err := d.driver.failure("CreateSwapchain"); err != nil {
		return nil, err
	}
	d.driver.swapchainConfig = config
	d.driver.record("swapchain", true)
	return &fakeSwapchain{driver: d.driver, images: d.physical.images}, nil
}

func (d *fakeDevice) CreateImageView(options render.ImageViewOptions) (render.ImageViewHandle, error) {
	d.driver.imageViewAttempt++
	if d.driver.failImageViewAt == d.driver.imageViewAttempt {
		return nil, errInjected
	}
	if err := d.driver.failure("CreateImageView"); err != nil {
		return nil, err
	}
	d.driver.viewOptions = append(d.driver.viewOptions, options)
	d.driver.record("image view", true)
	return &fakeObject{driver: d.driver, kind: "image view"}, nil
}

func (d *fakeDevice) Destroy() {
	d.driver.record("device", false)
}

type fakeSwapchain struct {
	driver *fakeDriver
	images int
}

func (s *fakeSwapchain) Images() ([]render.Image, error) {
	if err := s.driver.failure("Images"); err != nil {
		return nil, err
	}

	images := make([]render.Image, s.images)
	for i := range images {
		images[i] = &fakeImage{index: i}
	}
	return images, nil
}

func (s *fakeSwapchain) Destroy() {
	s.driver.record("swapchain", false)
}

type fakeObject struct {
	driver *fakeDriver
	kind   string
}

func (o *fakeObject) Destroy() {
	o.driver.record(o.kind, false)
}

type fakeHandle struct{}

func (fakeHandle) Platform() render.Platform { return render.PlatformSDL2 }

func nullLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

func newInstance(t *testing.T, d *fakeDriver) *render.InstanceContext {
	t.Helper()

	ic, err := render.CreateInstance(d, render.DefaultConfig(), fakeHandle{}, nil, nullLogger())
	require.NoError(t, err)
	return ic
}

// stack builds every stage up to the swapchain on the first suitable device.
type stack struct {
	ic         *render.InstanceContext
	candidate  render.PhysicalDeviceCandidate
	assignment render.QueueFamilyAssignment
	device     *render.LogicalDevice
}

func newStack(t *testing.T, d *fakeDriver) stack {
	t.Helper()

	ic := newInstance(t, d)
	candidate, assignment, err := render.SelectPhysicalDevice(ic, []string{render.SwapchainExtensionName})
	require.NoError(t, err)

	device, err := render.CreateLogicalDevice(ic, candidate, assignment, []string{render.SwapchainExtensionName})
	require.NoError(t, err)

	return stack{ic: ic, candidate: candidate, assignment: assignment, device: device}
}

func (s stack) destroy(t *testing.T) {
	t.Helper()
	require.NoError(t, s.device.Destroy())
	require.NoError(t, s.ic.Destroy())
}
