package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/alovak/alovak/config"
	"github.com/alovak/alovak/render"
	"github.com/alovak/alovak/render/vkng"
	"github.com/alovak/alovak/window"
)

func main() {
	runtime.LockOSThread()

	envFile := flag.String("env", ".env", "optional .env file")
	validate := flag.Bool("validate", false, "enable validation layers regardless of ALOVAK_VALIDATION")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if *validate {
		cfg.Render.EnableValidation = true
	}
	log.SetLevel(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(cfg config.Config) (err error) {
	win, err := window.Open(cfg.Window)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, win.Close())
	}()

	loader, err := vkng.NewSDLLoader()
	if err != nil {
		return err
	}

	cfg.Render.InstanceExtensions = win.InstanceExtensions()
	cfg.Render.FallbackExtent = win.DrawableExtent()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := render.NewPipeline(loader, cfg.Render, render.WithLogger(log.StandardLogger()))
	rc, err := pipeline.Run(ctx, win)
	if err != nil {
		if stage, ok := render.StageOf(err); ok {
			log.WithField("stage", stage.String()).Error("renderer setup failed")
		}
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, rc.Destroy())
	}()

	swapchain := rc.Swapchain()
	log.WithFields(log.Fields{
		"run":     pipeline.ID().String(),
		"device":  rc.PhysicalDevice().Properties.Name,
		"images":  swapchain.ImageCount(),
		"views":   len(rc.ImageViews()),
		"extent":  swapchain.Extent().String(),
		"present": swapchain.Config().PresentMode.String(),
	}).Info("renderer ready")

	for ctx.Err() == nil && win.Poll(16*time.Millisecond) {
	}

	return nil
}
