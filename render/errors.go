package render

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Failure kinds. Every error returned by a pipeline stage is marked with
// exactly one of them; test with errors.Is.
var (
	ErrInstanceCreationFailed   = errors.New("instance creation failed")
	ErrSurfaceCreationFailed    = errors.New("surface creation failed")
	ErrNoSuitablePhysicalDevice = errors.New("no suitable physical device")
	ErrNoSuitableQueueFamily    = errors.New("no suitable queue family")
	ErrDeviceCreationFailed     = errors.New("device creation failed")
	ErrQueueRetrievalFailed     = errors.New("queue retrieval failed")
	ErrSurfaceIncompatible      = errors.New("surface incompatible")
	ErrSwapchainCreationFailed  = errors.New("swapchain creation failed")
	ErrImageViewCreationFailed  = errors.New("image view creation failed")
)

// ErrDependentsAlive is returned by Destroy on an owner whose dependents have
// not been destroyed yet.
var ErrDependentsAlive = errors.New("dependent objects are still alive")

type Stage int

const (
	StageInstance Stage = iota
	StagePhysicalDevice
	StageDevice
	StageSwapchain
	StageImageViews
)

func (s Stage) String() string {
	switch s {
	case StageInstance:
		return "instance"
	case StagePhysicalDevice:
		return "physical device"
	case StageDevice:
		return "device"
	case StageSwapchain:
		return "swapchain"
	case StageImageViews:
		return "image views"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

var failureKinds = []struct {
	kind  error
	stage Stage
}{
	{ErrInstanceCreationFailed, StageInstance},
	{ErrSurfaceCreationFailed, StageInstance},
	{ErrNoSuitablePhysicalDevice, StagePhysicalDevice},
	{ErrNoSuitableQueueFamily, StagePhysicalDevice},
	{ErrDeviceCreationFailed, StageDevice},
	{ErrQueueRetrievalFailed, StageDevice},
	{ErrSurfaceIncompatible, StageSwapchain},
	{ErrSwapchainCreationFailed, StageSwapchain},
	{ErrImageViewCreationFailed, StageImageViews},
}

// FailureKind returns the failure kind err is marked with, or nil.
func FailureKind(err error) error {
	for _, k := range failureKinds {
		if errors.Is(err, k.kind) {
			return k.kind
		}
	}
	return nil
}

// StageOf reports which pipeline stage produced err.
func StageOf(err error) (Stage, bool) {
	for _, k := range failureKinds {
		if errors.Is(err, k.kind) {
			return k.stage, true
		}
	}
	return 0, false
}

// DriverError is a failed driver call together with the native result code.
type DriverError struct {
	Op     string
	Code   int32
	Result string

	cause error
}

func NewDriverError(op string, code int32, result string, cause error) error {
	return &DriverError{Op: op, Code: code, Result: result, cause: cause}
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Op, e.Result, e.Code)
}

func (e *DriverError) Unwrap() error { return e.cause }

// ResultCode extracts the native driver result code carried by err.
func ResultCode(err error) (int32, bool) {
	var driverErr *DriverError
	if errors.As(err, &driverErr) {
		return driverErr.Code, true
	}
	return 0, false
}

func stageError(kind error, cause error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	var err error
	if cause == nil {
		err = errors.Newf("%s: %s", kind, msg)
	} else {
		err = errors.Wrapf(cause, "%s: %s", kind, msg)
	}
	return errors.Mark(err, kind)
}
