package vkng

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/alovak/alovak/render"
)

type PhysicalDevice struct {
	device core1_0.PhysicalDevice
}

var _ render.PhysicalDevice = (*PhysicalDevice)(nil)

func (p *PhysicalDevice) Properties() (render.DeviceProperties, error) {
	properties, err := p.device.Properties()
	if err != nil {
		return render.DeviceProperties{}, errors.Wrap(err, "vkGetPhysicalDeviceProperties")
	}

	return render.DeviceProperties{
		Name:              properties.DriverName,
		Type:              render.DeviceType(properties.DriverType),
		VendorID:          properties.VendorID,
		DeviceID:          properties.DeviceID,
		APIVersion:        render.Version(properties.APIVersion),
		DriverVersion:     render.Version(properties.DriverVersion),
		PipelineCacheUUID: properties.PipelineCacheUUID,
	}, nil
}

func (p *PhysicalDevice) QueueFamilies() ([]render.QueueFamily, error) {
	queueFamilies := p.device.QueueFamilyProperties()

	families := make([]render.QueueFamily, 0, len(queueFamilies))
	for queueFamilyIdx, queueFamily := range queueFamilies {
		families = append(families, render.QueueFamily{
			Index: queueFamilyIdx,
			Flags: render.QueueFlags(queueFamily.QueueFlags),
			Count: queueFamily.QueueCount,
		})
	}
	return families, nil
}

func (p *PhysicalDevice) Extensions() (map[string]struct{}, error) {
	extensions, res, err := p.device.EnumerateDeviceExtensionProperties()
	if err != nil {
		return nil, driverError("vkEnumerateDeviceExtensionProperties", res, err)
	}
	return names(extensions), nil
}

func (p *PhysicalDevice) CreateDevice(options render.DeviceOptions) (render.Device, error) {
	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	for _, queueFamily := range options.QueueCreateInfos {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily.QueueFamilyIndex,
			QueuePriorities:  queueFamily.QueuePriorities,
		})
	}

	device, res, err := p.device.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: options.ExtensionNames,
	})
	if err != nil {
		return nil, driverError("vkCreateDevice", res, err)
	}

	return newDevice(device), nil
}

func unwrapPhysicalDevice(device render.PhysicalDevice) (core1_0.PhysicalDevice, error) {
	p, ok := device.(*PhysicalDevice)
	if !ok {
		return nil, errors.Newf("physical device %T does not belong to this driver", device)
	}
	return p.device, nil
}
