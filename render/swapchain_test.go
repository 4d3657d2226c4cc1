package render_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alovak/alovak/render"
)

var (
	preferredFormat = render.SurfaceFormat{Format: render.FormatB8G8R8A8Unorm, ColorSpace: render.ColorSpaceSRGBNonlinear}
	srgbFormat      = render.SurfaceFormat{Format: render.FormatB8G8R8A8SRGB, ColorSpace: render.ColorSpaceSRGBNonlinear}
	rgbaFormat      = render.SurfaceFormat{Format: render.FormatR8G8B8A8Unorm, ColorSpace: render.ColorSpaceSRGBNonlinear}
)

func TestChooseSurfaceFormat(t *testing.T) {
	tests := []struct {
		name      string
		available []render.SurfaceFormat
		want      render.SurfaceFormat
	}{
		{"preferred only", []render.SurfaceFormat{preferredFormat}, preferredFormat},
		{"preferred first", []render.SurfaceFormat{preferredFormat, srgbFormat, rgbaFormat}, preferredFormat},
		{"preferred middle", []render.SurfaceFormat{srgbFormat, preferredFormat, rgbaFormat}, preferredFormat},
		{"preferred last", []render.SurfaceFormat{srgbFormat, rgbaFormat, preferredFormat}, preferredFormat},
		{"fallback to first", []render.SurfaceFormat{rgbaFormat, srgbFormat}, rgbaFormat},
		{
			"preferred format in another color space is not preferred",
			[]render.SurfaceFormat{srgbFormat, {Format: render.FormatB8G8R8A8Unorm, ColorSpace: 1000104001}},
			srgbFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render.ChooseSurfaceFormat(tt.available)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, err := render.ChooseSurfaceFormat(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, render.ErrSurfaceIncompatible))
	})
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		name      string
		available []render.PresentMode
		want      render.PresentMode
	}{
		{"fifo then mailbox", []render.PresentMode{render.PresentModeFIFO, render.PresentModeMailbox}, render.PresentModeMailbox},
		{"mailbox then fifo", []render.PresentMode{render.PresentModeMailbox, render.PresentModeFIFO}, render.PresentModeMailbox},
		{"fifo only", []render.PresentMode{render.PresentModeFIFO}, render.PresentModeFIFO},
		{"immediate and fifo", []render.PresentMode{render.PresentModeImmediate, render.PresentModeFIFO}, render.PresentModeFIFO},
		{"fifo is assumed", []render.PresentMode{render.PresentModeImmediate}, render.PresentModeFIFO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render.ChoosePresentMode(tt.available)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, err := render.ChoosePresentMode(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, render.ErrSurfaceIncompatible))
	})
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		min, max int
		want     int
	}{
		{min: 2, max: 8, want: 3},
		{min: 2, max: 0, want: 3},
		{min: 2, max: 2, want: 2},
		{min: 3, max: 3, want: 3},
		{min: 1, max: 2, want: 2},
	}

	for _, tt := range tests {
		got := render.ChooseImageCount(render.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max})
		assert.Equal(t, tt.want, got, "min %d max %d", tt.min, tt.max)
	}
}

func TestChooseSharingMode(t *testing.T) {
	mode, indices := render.ChooseSharingMode(render.QueueFamilyAssignment{Graphics: 2, Present: 2})
	assert.Equal(t, render.SharingModeExclusive, mode)
	assert.Nil(t, indices)

	mode, indices = render.ChooseSharingMode(render.QueueFamilyAssignment{Graphics: 0, Present: 1})
	assert.Equal(t, render.SharingModeConcurrent, mode)
	assert.Equal(t, []int{0, 1}, indices)
}

func TestChooseExtent(t *testing.T) {
	limits := render.SurfaceCapabilities{
		MinImageExtent: render.Extent{Width: 100, Height: 100},
		MaxImageExtent: render.Extent{Width: 1920, Height: 1080},
	}
	fallback := render.Extent{Width: 800, Height: 600}

	t.Run("current extent", func(t *testing.T) {
		caps := limits
		caps.CurrentExtent = render.Extent{Width: 1024, Height: 768}
		extent, err := render.ChooseExtent(caps, fallback)
		require.NoError(t, err)
		assert.Equal(t, render.Extent{Width: 1024, Height: 768}, extent)
	})

	t.Run("undefined extent uses fallback", func(t *testing.T) {
		caps := limits
		caps.CurrentExtent = render.Extent{Width: render.UndefinedExtentSize, Height: render.UndefinedExtentSize}
		extent, err := render.ChooseExtent(caps, fallback)
		require.NoError(t, err)
		assert.Equal(t, fallback, extent)
	})

	t.Run("fallback is clamped", func(t *testing.T) {
		caps := limits
		caps.CurrentExtent = render.Extent{Width: render.UndefinedExtentSize, Height: render.UndefinedExtentSize}
		extent, err := render.ChooseExtent(caps, render.Extent{Width: 4000, Height: 50})
		require.NoError(t, err)
		assert.Equal(t, render.Extent{Width: 1920, Height: 100}, extent)
	})

	t.Run("zero extent", func(t *testing.T) {
		caps := limits
		caps.CurrentExtent = render.Extent{Width: 0, Height: 0}
		_, err := render.ChooseExtent(caps, fallback)
		require.Error(t, err)
		assert.True(t, errors.Is(err, render.ErrSurfaceIncompatible))
	})
}

func TestNewSwapchainConfig(t *testing.T) {
	gpu := capableDevice("gpu")
	set := render.SurfaceCapabilitySet{
		Capabilities: gpu.capabilities,
		Formats:      gpu.formats,
		PresentModes: gpu.presentModes,
	}

	config, err := render.NewSwapchainConfig(set, render.QueueFamilyAssignment{Graphics: 0, Present: 1}, render.Extent{})
	require.NoError(t, err)
	assert.Equal(t, render.SwapchainConfig{
		ImageFormat:        render.FormatB8G8R8A8Unorm,
		ColorSpace:         render.ColorSpaceSRGBNonlinear,
		PresentMode:        render.PresentModeMailbox,
		ImageCount:         3,
		Extent:             render.Extent{Width: 800, Height: 600},
		ImageUsage:         render.ImageUsageColorAttachment,
		ArrayLayers:        1,
		Transform:          render.SurfaceTransformIdentity,
		CompositeAlpha:     render.CompositeAlphaOpaque,
		Clipped:            true,
		SharingMode:        render.SharingModeConcurrent,
		QueueFamilyIndices: []int{0, 1},
	}, config)
}

func TestNegotiateSwapchain(t *testing.T) {
	t.Run("creates swapchain with negotiated config", func(t *testing.T) {
		d := newFakeDriver(capableDevice("gpu"))
		s := newStack(t, d)

		sc, err := render.NegotiateSwapchain(s.ic, s.candidate, s.device, s.assignment, render.Extent{})
		require.NoError(t, err)
		assert.Equal(t, d.swapchainConfig, sc.Config())
		assert.Equal(t, render.SharingModeExclusive, sc.Config().SharingMode)
		assert.Nil(t, sc.Config().QueueFamilyIndices)
		assert.Equal(t, render.FormatB8G8R8A8Unorm, sc.Format())
		assert.Equal(t, render.Extent{Width: 800, Height: 600}, sc.Extent())
		assert.Equal(t, 3, sc.ImageCount())

		err = s.device.Destroy()
		require.Error(t, err)
		assert.True(t, errors.Is(err, render.ErrDependentsAlive))

		require.NoError(t, sc.Destroy())
		require.NoError(t, sc.Destroy())
		s.destroy(t)
		requireNoLeaks(t, d)
	})

	t.Run("driver may create more images than requested", func(t *testing.T) {
		gpu := capableDevice("gpu")
		gpu.images = 5
		d := newFakeDriver(gpu)
		s := newStack(t, d)

		sc, err := render.NegotiateSwapchain(s.ic, s.candidate, s.device, s.assignment, render.Extent{})
		require.NoError(t, err)
		assert.Equal(t, 3, sc.Config().ImageCount)
		assert.Equal(t, 5, sc.ImageCount())

		require.NoError(t, sc.Destroy())
		s.destroy(t)
	})

	surfaceFailures := []struct {
		name   string
		mutate func(d *fakeDriver, gpu *fakePhysicalDevice)
	}{
		{"no formats", func(_ *fakeDriver, gpu *fakePhysicalDevice) { gpu.formats = nil }},
		{"no present modes", func(_ *fakeDriver, gpu *fakePhysicalDevice) { gpu.presentModes = nil }},
		{"zero extent", func(_ *fakeDriver, gpu *fakePhysicalDevice) { gpu.capabilities.CurrentExtent = render.Extent{} }},
		{"capabilities query fails", func(d *fakeDriver, _ *fakePhysicalDevice) { d.fail["Capabilities"] = errInjected }},
		{"formats query fails", func(d *fakeDriver, _ *fakePhysicalDevice) { d.fail["Formats"] = errInjected }},
		{"present mode query fails", func(d *fakeDriver, _ *fakePhysicalDevice) { d.fail["PresentModes"] = errInjected }},
	}

	for _, tt := range surfaceFailures {
		t.Run(tt.name, func(t *testing.T) {
			gpu := capableDevice("gpu")
			d := newFakeDriver(gpu)
			s := newStack(t, d)
			tt.mutate(d, gpu)

			_, err := render.NegotiateSwapchain(s.ic, s.candidate, s.device, s.assignment, render.Extent{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, render.ErrSurfaceIncompatible))
			assert.Zero(t, d.created["swapchain"])

			s.destroy(t)
			requireNoLeaks(t, d)
		})
	}

	t.Run("creation failure", func(t *testing.T) {
		d := newFakeDriver(capableDevice("gpu"))
		s := newStack(t, d)
		d.fail["CreateSwapchain"] = errInjected

		_, err := render.NegotiateSwapchain(s.ic, s.candidate, s.device, s.assignment, render.Extent{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, render.ErrSwapchainCreationFailed))

		s.destroy(t)
		requireNoLeaks(t, d)
	})

	t.Run("image retrieval failure releases the swapchain", func(t *testing.T) {
		d := newFakeDriver(capableDevice("gpu"))
		s := newStack(t, d)
		d.fail["Images"] = errInjected

		_, err := render.NegotiateSwapchain(s.ic, s.candidate, s.device, s.assignment, render.Extent{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, render.ErrSwapchainCreationFailed))
		assert.Equal(t, 1, d.destroyed["swapchain"])

		s.destroy(t)
		requireNoLeaks(t, d)
	})
}
