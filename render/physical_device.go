package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 1 << iota
	QueueCompute
	QueueTransfer
	QueueSparseBinding
)

func (f QueueFlags) String() string {
	var names []string
	if f&QueueGraphics != 0 {
		names = append(names, "graphics")
	}
	if f&QueueCompute != 0 {
		names = append(names, "compute")
	}
	if f&QueueTransfer != 0 {
		names = append(names, "transfer")
	}
	if f&QueueSparseBinding != 0 {
		names = append(names, "sparse")
	}
	return strings.Join(names, "|")
}

type QueueFamily struct {
	Index int
	Flags QueueFlags
	Count int
}

func (f QueueFamily) SupportsGraphics() bool { return f.Flags&QueueGraphics != 0 }

type DeviceType int32

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "integrated"
	case DeviceTypeDiscreteGPU:
		return "discrete"
	case DeviceTypeVirtualGPU:
		return "virtual"
	case DeviceTypeCPU:
		return "cpu"
	}
	return "other"
}

type DeviceProperties struct {
	Name              string
	Type              DeviceType
	VendorID          uint32
	DeviceID          uint32
	APIVersion        Version
	DriverVersion     Version
	PipelineCacheUUID uuid.UUID
}

// PhysicalDeviceCandidate is a device as the selector saw it. It borrows the
// driver's handle and is never modified after selection.
type PhysicalDeviceCandidate struct {
	Index         int
	Device        PhysicalDevice
	Properties    DeviceProperties
	QueueFamilies []QueueFamily
	Extensions    map[string]struct{}
}

// QueueFamilyAssignment is fully resolved: both roles always hold a valid
// queue family index, possibly the same one.
type QueueFamilyAssignment struct {
	Graphics int
	Present  int
}

func (a QueueFamilyAssignment) Shared() bool { return a.Graphics == a.Present }

// UniqueFamilies lists each family once, graphics first.
func (a QueueFamilyAssignment) UniqueFamilies() []int {
	if a.Shared() {
		return []int{a.Graphics}
	}
	return []int{a.Graphics, a.Present}
}

type queueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i *queueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

// deviceInspection is everything the selector and the device report need to
// know about one physical device.
type deviceInspection struct {
	candidate         PhysicalDeviceCandidate
	indices           queueFamilyIndices
	presentSupport    []bool
	missingExtensions []string
}

func (d *deviceInspection) suitable() bool {
	return d.indices.IsComplete() && len(d.missingExtensions) == 0
}

func (d *deviceInspection) rejection() string {
	switch {
	case d.indices.GraphicsFamily == nil && d.indices.PresentFamily == nil:
		return "no graphics or present queue family"
	case d.indices.GraphicsFamily == nil:
		return "no graphics queue family"
	case d.indices.PresentFamily == nil:
		return "no present queue family"
	case len(d.missingExtensions) > 0:
		return fmt.Sprintf("missing extensions %s", strings.Join(d.missingExtensions, ", "))
	}
	return ""
}

func (d *deviceInspection) assignment() QueueFamilyAssignment {
	return QueueFamilyAssignment{
		Graphics: *d.indices.GraphicsFamily,
		Present:  *d.indices.PresentFamily,
	}
}

// inspectDevice stops querying present support at the first capable family
// unless fullScan is set.
func inspectDevice(index int, device PhysicalDevice, surface Surface, requiredExtensions []string, fullScan bool) (*deviceInspection, error) {
	properties, err := device.Properties()
	if err != nil {
		return nil, stageError(ErrNoSuitablePhysicalDevice, err, "query properties of device %d", index)
	}

	queueFamilies, err := device.QueueFamilies()
	if err != nil {
		return nil, stageError(ErrNoSuitableQueueFamily, err, "enumerate queue families of %q", properties.Name)
	}

	extensions, err := device.Extensions()
	if err != nil {
		return nil, stageError(ErrNoSuitablePhysicalDevice, err, "enumerate extensions of %q", properties.Name)
	}

	inspection := &deviceInspection{
		candidate: PhysicalDeviceCandidate{
			Index:         index,
			Device:        device,
			Properties:    properties,
			QueueFamilies: queueFamilies,
			Extensions:    extensions,
		},
		presentSupport: make([]bool, len(queueFamilies)),
	}

	for _, queueFamily := range queueFamilies {
		if queueFamily.SupportsGraphics() {
			graphicsFamily := queueFamily.Index
			inspection.indices.GraphicsFamily = &graphicsFamily
			break
		}
	}

	for i, queueFamily := range queueFamilies {
		if inspection.indices.PresentFamily != nil && !fullScan {
			break
		}

		supported, err := surface.SupportsPresent(device, queueFamily.Index)
		if err != nil {
			return nil, stageError(ErrNoSuitableQueueFamily, err, "query present support of %q family %d", properties.Name, queueFamily.Index)
		}
		inspection.presentSupport[i] = supported

		if supported && inspection.indices.PresentFamily == nil {
			presentFamily := queueFamily.Index
			inspection.indices.PresentFamily = &presentFamily
		}
	}

	for _, ext := range requiredExtensions {
		if _, hasExtension := extensions[ext]; !hasExtension {
			inspection.missingExtensions = append(inspection.missingExtensions, ext)
		}
	}
	sort.Strings(inspection.missingExtensions)

	return inspection, nil
}

// SelectPhysicalDevice returns the first device in driver enumeration order
// that has a graphics queue family, a queue family able to present to the
// instance's surface and every required extension. Devices are not ranked.
func SelectPhysicalDevice(ic *InstanceContext, requiredExtensions []string) (PhysicalDeviceCandidate, QueueFamilyAssignment, error) {
	physicalDevices, err := ic.instance.PhysicalDevices()
	if err != nil {
		return PhysicalDeviceCandidate{}, QueueFamilyAssignment{}, stageError(ErrNoSuitablePhysicalDevice, err, "enumerate physical devices")
	}

	for index, device := range physicalDevices {
		inspection, err := inspectDevice(index, device, ic.surface, requiredExtensions, false)
		if err != nil {
			return PhysicalDeviceCandidate{}, QueueFamilyAssignment{}, err
		}

		logger := ic.logger.WithFields(logrus.Fields{
			"device": inspection.candidate.Properties.Name,
			"index":  index,
		})
		if !inspection.suitable() {
			logger.WithField("reason", inspection.rejection()).Debug("physical device rejected")
			continue
		}

		assignment := inspection.assignment()
		logger.WithFields(logrus.Fields{
			"type":     inspection.candidate.Properties.Type.String(),
			"graphics": assignment.Graphics,
			"present":  assignment.Present,
		}).Info("physical device selected")
		return inspection.candidate, assignment, nil
	}

	return PhysicalDeviceCandidate{}, QueueFamilyAssignment{}, stageError(ErrNoSuitablePhysicalDevice, nil,
		"none of %d device(s) has graphics and present queue families and extensions %s",
		len(physicalDevices), strings.Join(requiredExtensions, ", "))
}
