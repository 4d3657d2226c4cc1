package render

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type QueueFamilyReport struct {
	Index          int    `json:"index"`
	Flags          string `json:"flags"`
	QueueCount     int    `json:"queue_count"`
	Graphics       bool   `json:"graphics"`
	PresentSupport bool   `json:"present_support"`
}

// DeviceReport describes one physical device and whether SelectPhysicalDevice
// would accept it.
type DeviceReport struct {
	Index             int                 `json:"index"`
	Name              string              `json:"name"`
	Type              string              `json:"type"`
	VendorID          uint32              `json:"vendor_id"`
	DeviceID          uint32              `json:"device_id"`
	APIVersion        string              `json:"api_version"`
	DriverVersion     string              `json:"driver_version"`
	PipelineCacheUUID uuid.UUID           `json:"pipeline_cache_uuid"`
	QueueFamilies     []QueueFamilyReport `json:"queue_families"`
	MissingExtensions []string            `json:"missing_extensions,omitempty"`
	Suitable          bool                `json:"suitable"`
	Reason            string              `json:"reason,omitempty"`
}

// DescribeDevices inspects every physical device concurrently. Reports keep
// driver enumeration order.
func DescribeDevices(ctx context.Context, ic *InstanceContext, requiredExtensions []string) ([]DeviceReport, error) {
	physicalDevices, err := ic.instance.PhysicalDevices()
	if err != nil {
		return nil, stageError(ErrNoSuitablePhysicalDevice, err, "enumerate physical devices")
	}

	reports := make([]DeviceReport, len(physicalDevices))
	group, ctx := errgroup.WithContext(ctx)
	for i, device := range physicalDevices {
		idx := i
		dev := device
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			inspection, err := inspectDevice(idx, dev, ic.surface, requiredExtensions, true)
			if err != nil {
				return err
			}
			reports[idx] = newDeviceReport(inspection)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	ic.logger.WithField("devices", len(reports)).Debug("devices described")
	return reports, nil
}

func newDeviceReport(inspection *deviceInspection) DeviceReport {
	candidate := inspection.candidate
	report := DeviceReport{
		Index:             candidate.Index,
		Name:              candidate.Properties.Name,
		Type:              candidate.Properties.Type.String(),
		VendorID:          candidate.Properties.VendorID,
		DeviceID:          candidate.Properties.DeviceID,
		APIVersion:        candidate.Properties.APIVersion.String(),
		DriverVersion:     candidate.Properties.DriverVersion.String(),
		PipelineCacheUUID: candidate.Properties.PipelineCacheUUID,
		MissingExtensions: inspection.missingExtensions,
		Suitable:          inspection.suitable(),
		Reason:            inspection.rejection(),
	}

	for i, queueFamily := range candidate.QueueFamilies {
		report.QueueFamilies = append(report.QueueFamilies, QueueFamilyReport{
			Index:          queueFamily.Index,
			Flags:          queueFamily.Flags.String(),
			QueueCount:     queueFamily.Count,
			Graphics:       queueFamily.SupportsGraphics(),
			PresentSupport: inspection.presentSupport[i],
		})
	}

	return report
}
