package render

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// LogicalDevice owns the driver device and the queues retrieved from it. When
// graphics and present share a family both queues are the same handle.
type LogicalDevice struct {
	ic            *InstanceContext
	device        Device
	graphicsQueue Queue
	presentQueue  Queue
	assignment    QueueFamilyAssignment
	extensions    []string
	logger        logrus.FieldLogger

	swapchains int
	destroyed  bool
}

// CreateLogicalDevice creates one queue per unique family in assignment and
// enables requiredExtensions, which must include the swapchain extension.
func CreateLogicalDevice(ic *InstanceContext, candidate PhysicalDeviceCandidate, assignment QueueFamilyAssignment, requiredExtensions []string) (*LogicalDevice, error) {
	if !contains(requiredExtensions, SwapchainExtensionName) {
		return nil, stageError(ErrDeviceCreationFailed, nil, "device extensions do not include %s", SwapchainExtensionName)
	}

	extensionNames := appendUnique(nil, requiredExtensions...)
	if _, hasPortability := candidate.Extensions[PortabilitySubsetExtensionName]; hasPortability {
		extensionNames = appendUnique(extensionNames, PortabilitySubsetExtensionName)
	}

	var queueFamilies []QueueCreateInfo
	for _, queueFamily := range assignment.UniqueFamilies() {
		queueFamilies = append(queueFamilies, QueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{1.0},
		})
	}

	device, err := candidate.Device.CreateDevice(DeviceOptions{
		QueueCreateInfos: queueFamilies,
		ExtensionNames:   extensionNames,
	})
	if err != nil {
		return nil, stageError(ErrDeviceCreationFailed, err, "create device on %q", candidate.Properties.Name)
	}

	graphicsQueue := device.Queue(assignment.Graphics)
	if graphicsQueue == nil {
		device.Destroy()
		return nil, stageError(ErrQueueRetrievalFailed, nil, "no queue in graphics family %d", assignment.Graphics)
	}

	presentQueue := graphicsQueue
	if !assignment.Shared() {
		presentQueue = device.Queue(assignment.Present)
		if presentQueue == nil {
			device.Destroy()
			return nil, stageError(ErrQueueRetrievalFailed, nil, "no queue in present family %d", assignment.Present)
		}
	}

	ic.devices++

	logger := ic.logger.WithField("device", candidate.Properties.Name)
	logger.WithFields(logrus.Fields{
		"extensions": extensionNames,
		"families":   assignment.UniqueFamilies(),
	}).Debug("logical device created")

	return &LogicalDevice{
		ic:            ic,
		device:        device,
		graphicsQueue: graphicsQueue,
		presentQueue:  presentQueue,
		assignment:    assignment,
		extensions:    extensionNames,
		logger:        logger,
	}, nil
}

func (d *LogicalDevice) Device() Device { return d.device }

func (d *LogicalDevice) GraphicsQueue() Queue { return d.graphicsQueue }

func (d *LogicalDevice) PresentQueue() Queue { return d.presentQueue }

func (d *LogicalDevice) Assignment() QueueFamilyAssignment { return d.assignment }

// Extensions returns the device extensions that were enabled.
func (d *LogicalDevice) Extensions() []string {
	return append([]string(nil), d.extensions...)
}

// Destroy releases the device. Queues go with it. It fails while a swapchain
// created on this device is alive.
func (d *LogicalDevice) Destroy() error {
	if d == nil || d.destroyed {
		return nil
	}
	if d.swapchains > 0 {
		return errors.Wrapf(ErrDependentsAlive, "destroy device: %d swapchain(s) alive", d.swapchains)
	}

	d.device.Destroy()
	d.device = nil
	d.graphicsQueue = nil
	d.presentQueue = nil
	d.destroyed = true
	d.ic.devices--

	d.logger.Debug("logical device destroyed")
	return nil
}
