package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"runtime"

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
	indent := flag.Bool("indent", true, "indent the JSON output")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	log.SetLevel(cfg.LogLevel)

	if err := describe(cfg, *indent); err != nil {
		log.Fatalf("%+v", err)
	}
}

func describe(cfg config.Config, indent bool) (err error) {
	cfg.Window.Hidden = true
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

	ic, err := render.CreateInstance(loader, cfg.Render, win, nil, log.StandardLogger())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ic.Destroy())
	}()

	reports, err := render.DescribeDevices(context.Background(), ic, cfg.Render.DeviceExtensions)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	if indent {
		encoder.SetIndent("", "  ")
	}
	return errors.Wrap(encoder.Encode(reports), "write report")
}
