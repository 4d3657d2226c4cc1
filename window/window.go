// Package window opens the SDL2 window the renderer presents to.
package window

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/alovak/alovak/render"
)

type Config struct {
	Title  string
	Width  int
	Height int
	// Hidden windows still get a surface; the device report uses one.
	Hidden bool
}

func DefaultConfig() Config {
	return Config{
		Title:  "Alovak",
		Width:  800,
		Height: 600,
	}
}

// Window is an SDL2 window created with Vulkan support. It must be created
// and used on the main OS thread.
type Window struct {
	window *sdl.Window
}

func Open(cfg Config) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init sdl video")
	}

	var flags uint32 = sdl.WINDOW_VULKAN | sdl.WINDOW_RESIZABLE
	if cfg.Hidden {
		flags |= sdl.WINDOW_HIDDEN
	} else {
		flags |= sdl.WINDOW_SHOWN
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(cfg.Width), int32(cfg.Height), flags)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrapf(err, "create window %q", cfg.Title)
	}

	return &Window{window: window}, nil
}

func (w *Window) Platform() render.Platform { return render.PlatformSDL2 }

// SDLWindow returns nil for a nil or closed window.
func (w *Window) SDLWindow() *sdl.Window {
	if w == nil {
		return nil
	}
	return w.window
}

// InstanceExtensions lists the instance extensions SDL needs to create a
// surface for this window.
func (w *Window) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// DrawableExtent is the size of the window in pixels.
func (w *Window) DrawableExtent() render.Extent {
	width, height := w.window.VulkanGetDrawableSize()
	return render.Extent{Width: int(width), Height: int(height)}
}

// Poll waits up to timeout for an event, drains the queue and reports whether
// the window should stay open.
func (w *Window) Poll(timeout time.Duration) bool {
	open := true
	for event := sdl.WaitEventTimeout(int(timeout.Milliseconds())); event != nil; event = sdl.PollEvent() {
		if _, quit := event.(*sdl.QuitEvent); quit {
			open = false
		}
	}
	return open
}

// Close destroys the window. Everything created from its surface must be
// destroyed first.
func (w *Window) Close() error {
	if w.window == nil {
		return nil
	}

	err := w.window.Destroy()
	w.window = nil
	sdl.Quit()
	return errors.Wrap(err, "destroy window")
}
