// Package config reads application settings from the environment and
// optional .env files.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/alovak/alovak/render"
	"github.com/alovak/alovak/window"
)

const (
	AppName          = "ALOVAK_APP_NAME"
	Validation       = "ALOVAK_VALIDATION"
	ValidationLayers = "ALOVAK_VALIDATION_LAYERS"
	DeviceExtensions = "ALOVAK_DEVICE_EXTENSIONS"
	WindowWidth      = "ALOVAK_WINDOW_WIDTH"
	WindowHeight     = "ALOVAK_WINDOW_HEIGHT"
	WindowTitle      = "ALOVAK_WINDOW_TITLE"
	LogLevel         = "ALOVAK_LOG_LEVEL"
)

type Config struct {
	Render   render.Config
	Window   window.Config
	LogLevel logrus.Level
}

// Load applies the given .env files, skipping the ones that do not exist,
// and then reads settings from the environment. Variables already set in
// the environment win over .env values.
func Load(files ...string) (Config, error) {
	var existing []string
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Config{}, errors.Wrapf(err, "load %s", strings.Join(existing, ", "))
		}
	}
	envy.Reload()

	cfg := Config{
		Render:   render.DefaultConfig(),
		Window:   window.DefaultConfig(),
		LogLevel: logrus.InfoLevel,
	}

	cfg.Render.ApplicationName = envy.Get(AppName, cfg.Render.ApplicationName)
	cfg.Window.Title = envy.Get(WindowTitle, cfg.Render.ApplicationName)

	var err error
	if cfg.Render.EnableValidation, err = parseBool(Validation, cfg.Render.EnableValidation); err != nil {
		return Config{}, err
	}
	cfg.Render.ValidationLayers = parseList(ValidationLayers, cfg.Render.ValidationLayers)
	cfg.Render.DeviceExtensions = parseList(DeviceExtensions, cfg.Render.DeviceExtensions)

	if cfg.Window.Width, err = parseSize(WindowWidth, cfg.Window.Width); err != nil {
		return Config{}, err
	}
	if cfg.Window.Height, err = parseSize(WindowHeight, cfg.Window.Height); err != nil {
		return Config{}, err
	}
	cfg.Render.FallbackExtent = render.Extent{Width: cfg.Window.Width, Height: cfg.Window.Height}

	if level := envy.Get(LogLevel, ""); level != "" {
		cfg.LogLevel, err = logrus.ParseLevel(level)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", LogLevel)
		}
	}

	return cfg, nil
}

func parseBool(key string, def bool) (bool, error) {
	value := envy.Get(key, "")
	if value == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return def, errors.Wrapf(err, "parse %s", key)
	}
	return b, nil
}

func parseSize(key string, def int) (int, error) {
	value := envy.Get(key, "")
	if value == "" {
		return def, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return def, errors.Wrapf(err, "parse %s", key)
	}
	if n <= 0 {
		return def, errors.Newf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

// parseList splits a comma separated value. An unset variable keeps def.
func parseList(key string, def []string) []string {
	value := envy.Get(key, "")
	if value == "" {
		return def
	}

	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
