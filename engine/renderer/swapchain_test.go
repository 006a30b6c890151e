package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

func newTestSwapchain(t *testing.T, d *fakeDevice, opts SwapchainOptions, width, height uint32) (*SwapchainState, *fakeSurface) {
	t.Helper()
	factory, fs := d.factory(width, height)
	surface, err := NewPresentationSurface(d, factory)
	require.NoError(t, err)
	pass, err := d.CreateRenderPass(opts.Policy.Format)
	require.NoError(t, err)
	sc, err := NewSwapchainState(d, surface, pass, opts, surface.Extent())
	require.NoError(t, err)
	return sc, fs
}

func defaultSwapchainOptions() SwapchainOptions {
	return SwapchainOptions{Policy: metadata.DefaultFormatPolicy()}
}

func TestSwapchainCreate(t *testing.T) {
	d := newFakeDevice()
	sc, _ := newTestSwapchain(t, d, defaultSwapchainOptions(), 800, 600)

	assert.Equal(t, uint64(1), sc.Generation())
	assert.Equal(t, metadata.Extent{Width: 800, Height: 600}, sc.Extent())
	assert.Equal(t, 3, sc.ImageCount())
	assert.Equal(t, sc.ImageCount(), d.liveFramebuffers)

	cfg := d.lastSwapchain().config
	assert.Equal(t, metadata.PresentModeFifo, cfg.PresentMode)
	assert.Equal(t, metadata.CompositeAlphaOpaque, cfg.CompositeAlpha)
	assert.Equal(t, metadata.SurfaceTransformIdentity, cfg.Transform)
	assert.Equal(t, metadata.ImageUsageColorAttachment, cfg.Usage)
	assert.Equal(t, metadata.SurfaceFormat{Format: metadata.FormatB8G8R8A8Unorm, ColorSpace: metadata.ColorSpaceSrgbNonlinear}, cfg.Format)
	assert.Nil(t, d.lastSwapchain().old)
}

func TestSwapchainImageCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
		override uint32
		want     uint32
	}{
		{"min plus one", 2, 3, 0, 3},
		{"clamped to max", 3, 3, 0, 3},
		{"no upper limit", 2, 0, 0, 3},
		{"override", 2, 8, 5, 5},
		{"override above max", 2, 3, 8, 3},
		{"override below min", 2, 3, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDevice()
			d.caps.MinImageCount = tt.min
			d.caps.MaxImageCount = tt.max
			opts := defaultSwapchainOptions()
			opts.ImageCount = tt.override
			newTestSwapchain(t, d, opts, 640, 480)
			assert.Equal(t, tt.want, d.lastSwapchain().config.MinImageCount)
		})
	}
}

func TestSwapchainUnsupportedFormat(t *testing.T) {
	d := newFakeDevice()
	d.caps.SupportedFormats = []metadata.SurfaceFormat{{Format: metadata.FormatR8G8B8A8Unorm}}

	factory, _ := d.factory(640, 480)
	surface, err := NewPresentationSurface(d, factory)
	require.NoError(t, err)
	_, err = NewSwapchainState(d, surface, &fakeRenderPass{device: d}, defaultSwapchainOptions(), surface.Extent())
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	assert.Empty(t, d.swapchains)
}

func TestSwapchainCurrentExtentWins(t *testing.T) {
	d := newFakeDevice()
	d.caps.CurrentExtent = metadata.Extent{Width: 1024, Height: 768}
	sc, _ := newTestSwapchain(t, d, defaultSwapchainOptions(), 640, 480)
	assert.Equal(t, metadata.Extent{Width: 1024, Height: 768}, sc.Extent())
}

func TestSwapchainRebuildReplacesResources(t *testing.T) {
	d := newFakeDevice()
	sc, _ := newTestSwapchain(t, d, defaultSwapchainOptions(), 640, 480)
	first := d.lastSwapchain()
	d.events = nil

	require.NoError(t, sc.Rebuild(metadata.Extent{Width: 320, Height: 200}))

	second := d.lastSwapchain()
	assert.NotSame(t, first, second)
	assert.Same(t, first, second.old)
	assert.True(t, first.destroyed)
	assert.False(t, second.destroyed)
	assert.Equal(t, uint64(2), sc.Generation())
	assert.Equal(t, metadata.Extent{Width: 320, Height: 200}, sc.Extent())
	assert.Equal(t, sc.ImageCount(), d.liveFramebuffers)
	assert.Equal(t, sc.ImageCount(), d.liveViews)
	assert.Equal(t, []string{
		"framebuffer", "framebuffer", "framebuffer",
		"view", "view", "view",
		"swapchain",
	}, d.events)
}

func TestSwapchainRebuildUnsupportedDimensions(t *testing.T) {
	tests := []struct {
		name   string
		extent metadata.Extent
	}{
		{"zero width", metadata.Extent{Width: 0, Height: 480}},
		{"zero height", metadata.Extent{Width: 640, Height: 0}},
		{"above max", metadata.Extent{Width: 8192, Height: 480}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDevice()
			sc, _ := newTestSwapchain(t, d, defaultSwapchainOptions(), 640, 480)
			before := d.lastSwapchain()

			err := sc.Rebuild(tt.extent)
			assert.ErrorIs(t, err, core.ErrRecreateUnsupportedDimensions)
			assert.Equal(t, uint64(1), sc.Generation())
			assert.Same(t, before, d.lastSwapchain())
			assert.False(t, before.destroyed)
		})
	}
}

func TestSwapchainRebuildFailureKeepsOldSwapchain(t *testing.T) {
	d := newFakeDevice()
	sc, _ := newTestSwapchain(t, d, defaultSwapchainOptions(), 640, 480)
	d.swapchainErr = errors.New("out of device memory")

	err := sc.Rebuild(metadata.Extent{Width: 320, Height: 200})
	assert.Error(t, err)
	assert.Equal(t, uint64(1), sc.Generation())
	assert.False(t, d.lastSwapchain().destroyed)
	assert.Equal(t, metadata.Extent{Width: 640, Height: 480}, sc.Extent())
}

func TestSwapchainDestroyOrder(t *testing.T) {
	d := newFakeDevice()
	d.caps.MinImageCount = 1
	d.caps.MaxImageCount = 2
	sc, _ := newTestSwapchain(t, d, defaultSwapchainOptions(), 640, 480)
	d.events = nil

	sc.Destroy()
	assert.Equal(t, []string{"framebuffer", "framebuffer", "view", "view", "swapchain"}, d.events)
	assert.Zero(t, d.liveFramebuffers)
	assert.Zero(t, d.liveViews)

	_, err := sc.Framebuffer(0)
	assert.Error(t, err)
}
