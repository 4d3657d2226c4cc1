package render

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"
)

type State int

const (
	StateUninitialized State = iota
	StateInstanceReady
	StateDeviceReady
	StateSwapchainReady
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInstanceReady:
		return "instance ready"
	case StateDeviceReady:
		return "device ready"
	case StateSwapchainReady:
		return "swapchain ready"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// StageTiming is how long one stage of a run took.
type StageTiming struct {
	Stage   Stage
	Elapsed time.Duration
}

// Pipeline runs the stages from instance creation to image views exactly
// once. A failed pipeline stays failed; build a new one to try again.
type Pipeline struct {
	loader   Loader
	cfg      Config
	reporter Reporter
	logger   logrus.FieldLogger

	id      uuid.UUID
	state   State
	err     error
	timings []StageTiming
}

type Option func(p *Pipeline)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithReporter sets where diagnostics go when validation is enabled. The
// default writes them to the pipeline's logger.
func WithReporter(reporter Reporter) Option {
	return func(p *Pipeline) {
		p.reporter = reporter
	}
}

func NewPipeline(loader Loader, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader: loader,
		cfg:    cfg,
		logger: logrus.StandardLogger(),
		id:     uuid.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) ID() uuid.UUID { return p.id }

func (p *Pipeline) State() State { return p.state }

// Err is the error that moved the pipeline to StateFailed.
func (p *Pipeline) Err() error { return p.err }

func (p *Pipeline) Timings() []StageTiming {
	return append([]StageTiming(nil), p.timings...)
}

// Run drives the pipeline to StateReady. The context is checked before each
// stage; a stage in progress is never interrupted. On any failure everything
// created so far is destroyed in reverse order before Run returns.
func (p *Pipeline) Run(ctx context.Context, handle SurfaceHandle) (*Context, error) {
	if p.state != StateUninitialized {
		return nil, errors.Newf("pipeline %s already ran (state %s)", p.id, p.state)
	}

	logger := p.logger.WithField("run", p.id.String())
	c := &Context{}

	fail := func(stage Stage, err error) (*Context, error) {
		if destroyErr := c.Destroy(); destroyErr != nil {
			logger.WithError(destroyErr).Error("teardown after failure")
		}
		p.state = StateFailed
		p.err = err
		logger.WithError(err).WithField("stage", stage.String()).Error("pipeline failed")
		return nil, err
	}

	var err error
	if err = p.stage(ctx, logger, StageInstance, func() error {
		c.instance, err = CreateInstance(p.loader, p.cfg, handle, p.reporter, logger)
		return err
	}); err != nil {
		return fail(StageInstance, err)
	}
	p.state = StateInstanceReady

	if err = p.stage(ctx, logger, StagePhysicalDevice, func() error {
		c.candidate, c.assignment, err = SelectPhysicalDevice(c.instance, p.cfg.DeviceExtensions)
		return err
	}); err != nil {
		return fail(StagePhysicalDevice, err)
	}

	if err = p.stage(ctx, logger, StageDevice, func() error {
		c.device, err = CreateLogicalDevice(c.instance, c.candidate, c.assignment, p.cfg.DeviceExtensions)
		return err
	}); err != nil {
		return fail(StageDevice, err)
	}
	p.state = StateDeviceReady

	if err = p.stage(ctx, logger, StageSwapchain, func() error {
		c.swapchain, err = NegotiateSwapchain(c.instance, c.candidate, c.device, c.assignment, p.cfg.FallbackExtent)
		return err
	}); err != nil {
		return fail(StageSwapchain, err)
	}
	p.state = StateSwapchainReady

	if err = p.stage(ctx, logger, StageImageViews, func() error {
		c.views, err = CreateImageViews(c.swapchain)
		return err
	}); err != nil {
		return fail(StageImageViews, err)
	}
	p.state = StateReady

	logger.WithField("elapsed", p.elapsed().String()).Info("pipeline ready")
	return c, nil
}

func (p *Pipeline) stage(ctx context.Context, logger logrus.FieldLogger, stage Stage, run func() error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "pipeline interrupted before %s stage", stage)
	}

	start := hrtime.Now()
	err := run()
	elapsed := hrtime.Since(start)
	p.timings = append(p.timings, StageTiming{Stage: stage, Elapsed: elapsed})

	if err == nil {
		logger.WithFields(logrus.Fields{
			"stage":   stage.String(),
			"elapsed": elapsed.String(),
		}).Debug("stage complete")
	}
	return err
}

func (p *Pipeline) elapsed() time.Duration {
	var total time.Duration
	for _, t := range p.timings {
		total += t.Elapsed
	}
	return total
}

// Context is everything a successful run produced.
type Context struct {
	instance   *InstanceContext
	candidate  PhysicalDeviceCandidate
	assignment QueueFamilyAssignment
	device     *LogicalDevice
	swapchain  *SwapchainContext
	views      []*ImageView
}

func (c *Context) Instance() *InstanceContext { return c.instance }

func (c *Context) PhysicalDevice() PhysicalDeviceCandidate { return c.candidate }

func (c *Context) Assignment() QueueFamilyAssignment { return c.assignment }

func (c *Context) Device() *LogicalDevice { return c.device }

func (c *Context) Swapchain() *SwapchainContext { return c.swapchain }

func (c *Context) ImageViews() []*ImageView { return c.views }

// Destroy tears everything down in reverse creation order. It is safe to
// call more than once.
func (c *Context) Destroy() error {
	if c == nil {
		return nil
	}

	DestroyImageViews(c.views)
	c.views = nil

	var err error
	err = errors.CombineErrors(err, c.swapchain.Destroy())
	err = errors.CombineErrors(err, c.device.Destroy())
	err = errors.CombineErrors(err, c.instance.Destroy())
	return err
}
