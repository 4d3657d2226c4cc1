package render

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// InstanceContext owns the driver instance, the diagnostics messenger and the
// surface created from the window's handle. It outlives every other object
// the pipeline creates.
type InstanceContext struct {
	instance  Instance
	messenger Messenger
	surface   Surface
	gate      *reporterGate
	logger    logrus.FieldLogger

	devices   int
	destroyed bool
}

// CreateInstance creates the instance, the messenger when validation is on,
// and the surface. Nothing is left behind on failure.
func CreateInstance(loader Loader, cfg Config, handle SurfaceHandle, reporter Reporter, logger logrus.FieldLogger) (*InstanceContext, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if handle == nil {
		return nil, stageError(ErrSurfaceCreationFailed, nil, "no surface handle supplied")
	}

	options := InstanceOptions{
		ApplicationName:    cfg.ApplicationName,
		ApplicationVersion: cfg.ApplicationVersion,
		EngineName:         cfg.EngineName,
		EngineVersion:      cfg.EngineVersion,
		APIVersion:         cfg.APIVersion,
	}

	// Add extensions
	extensions, err := loader.AvailableExtensions()
	if err != nil {
		return nil, stageError(ErrInstanceCreationFailed, err, "enumerate instance extensions")
	}

	required := appendUnique(nil, SurfaceExtensionName)
	required = appendUnique(required, cfg.InstanceExtensions...)
	if cfg.EnableValidation {
		required = appendUnique(required, DebugUtilsExtensionName)
	}

	for _, ext := range required {
		if _, hasExt := extensions[ext]; !hasExt {
			return nil, stageError(ErrInstanceCreationFailed, nil, "missing instance extension %s", ext)
		}
		options.ExtensionNames = append(options.ExtensionNames, ext)
	}

	if _, enumerationSupported := extensions[PortabilityEnumerationExtensionName]; enumerationSupported {
		options.ExtensionNames = appendUnique(options.ExtensionNames, PortabilityEnumerationExtensionName)
		options.EnumeratePortability = true
	}

	// Add layers
	var gate *reporterGate
	if cfg.EnableValidation {
		layers, err := loader.AvailableLayers()
		if err != nil {
			return nil, stageError(ErrInstanceCreationFailed, err, "enumerate instance layers")
		}

		for _, layer := range cfg.ValidationLayers {
			if _, hasValidation := layers[layer]; !hasValidation {
				return nil, stageError(ErrInstanceCreationFailed, nil, "validation layer %s not available", layer)
			}
			options.LayerNames = appendUnique(options.LayerNames, layer)
		}

		if reporter == nil {
			reporter = LogReporter{Logger: logger}
		}
		gate = newReporterGate(reporter)
		options.Reporter = gate
	}

	instance, err := loader.CreateInstance(options)
	if err != nil {
		return nil, stageError(ErrInstanceCreationFailed, err, "create instance")
	}

	ic := &InstanceContext{
		instance: instance,
		gate:     gate,
		logger:   logger,
	}

	if gate != nil {
		ic.messenger, err = instance.CreateMessenger(gate)
		if err != nil {
			ic.release()
			return nil, stageError(ErrInstanceCreationFailed, err, "create debug messenger")
		}
	}

	ic.surface, err = instance.CreateSurface(handle)
	if err != nil {
		ic.release()
		return nil, stageError(ErrSurfaceCreationFailed, err, "create %s surface", handle.Platform())
	}

	logger.WithFields(logrus.Fields{
		"extensions": options.ExtensionNames,
		"layers":     options.LayerNames,
	}).Debug("instance created")

	return ic, nil
}

func (ic *InstanceContext) Instance() Instance { return ic.instance }

func (ic *InstanceContext) Surface() Surface { return ic.surface }

// Destroy releases the surface, the messenger and the instance, in that
// order. It fails while logical devices created from this instance are alive
// and is a no-op once it has succeeded.
func (ic *InstanceContext) Destroy() error {
	if ic == nil || ic.destroyed {
		return nil
	}
	if ic.devices > 0 {
		return errors.Wrapf(ErrDependentsAlive, "destroy instance: %d logical device(s) alive", ic.devices)
	}

	ic.release()
	ic.logger.Debug("instance destroyed")
	return nil
}

func (ic *InstanceContext) release() {
	if ic.surface != nil {
		ic.surface.Destroy()
		ic.surface = nil
	}

	if ic.messenger != nil {
		ic.messenger.Destroy()
		ic.messenger = nil
	}

	// The reporter must not see messages from a dying instance.
	if ic.gate != nil {
		ic.gate.close()
	}

	ic.instance.Destroy()
	ic.destroyed = true
}
