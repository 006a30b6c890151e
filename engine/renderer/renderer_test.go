package renderer

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/math"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

func openWindow(t *testing.T, r *Renderer, d *fakeDevice, name string) (core.WindowHandle, *fakeSurface) {
	t.Helper()
	factory, fs := d.factory(800, 600)
	h, err := r.OpenWindow(factory, name)
	require.NoError(t, err)
	return h, fs
}

func TestNewRendererFailsWithoutShaders(t *testing.T) {
	d := newFakeDevice()
	_, err := New(d, nil, DefaultOptions())
	assert.Error(t, err)
	assert.Contains(t, d.events, "renderpass")
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(core.RendererConfig{ClearColor: [4]float32{1, 0, 0, 1}, ImageCount: 4})
	assert.Equal(t, metadata.Color{1, 0, 0, 1}, opts.ClearColor)
	assert.Equal(t, uint32(4), opts.ImageCount)
	assert.Equal(t, metadata.DefaultFormatPolicy(), opts.Policy)
}

func TestOpenWindowUnsupportedFormatIsFatal(t *testing.T) {
	d := newFakeDevice()
	d.caps.SupportedFormats = []metadata.SurfaceFormat{{Format: metadata.FormatR8G8B8A8Unorm}}
	r := newTestRenderer(d)

	factory, fs := d.factory(800, 600)
	_, err := r.OpenWindow(factory, "main")

	var fe *core.FatalError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, core.StageFormatNegotiation, fe.Stage)
	assert.True(t, fs.destroyed)
	assert.Zero(t, r.Context().Len())
}

func TestOpenWindowSurfaceFailure(t *testing.T) {
	r := newTestRenderer(newFakeDevice())
	_, err := r.OpenWindow(SurfaceFactoryFunc(func() (Surface, error) {
		return nil, errors.New("no display")
	}), "main")
	assert.Error(t, err)
	assert.False(t, core.IsFatal(err))
	assert.Zero(t, r.Context().Len())
}

func TestCloseWindowReportsLast(t *testing.T) {
	d := newFakeDevice()
	r := newTestRenderer(d)
	a, _ := openWindow(t, r, d, "a")
	b, _ := openWindow(t, r, d, "b")
	assert.NotEqual(t, a, b)

	last, err := r.CloseWindow(a)
	require.NoError(t, err)
	assert.False(t, last)

	last, err = r.CloseWindow(b)
	require.NoError(t, err)
	assert.True(t, last)
}

func TestCloseUnknownWindowLeavesStateUntouched(t *testing.T) {
	d := newFakeDevice()
	r := newTestRenderer(d)
	a, _ := openWindow(t, r, d, "a")

	last, err := r.CloseWindow(core.NewWindowHandle())
	assert.ErrorIs(t, err, core.ErrWindowNotFound)
	assert.False(t, last)
	assert.Equal(t, 1, r.Context().Len())

	_, err = r.CloseWindow(a)
	require.NoError(t, err)
	_, err = r.CloseWindow(a)
	assert.ErrorIs(t, err, core.ErrWindowNotFound)
}

func TestClosedWindowIsIgnored(t *testing.T) {
	d := newFakeDevice()
	r := newTestRenderer(d)
	a, fa := openWindow(t, r, d, "a")
	b, _ := openWindow(t, r, d, "b")
	require.NoError(t, r.EndFrame())

	_, err := r.CloseWindow(a)
	require.NoError(t, err)
	assert.True(t, fa.destroyed)

	r.NotifyResized(a, metadata.Extent{Width: 10, Height: 10})
	before := len(d.submitted)
	require.NoError(t, r.EndFrame())
	assert.Equal(t, before+1, len(d.submitted))

	w, ok := r.Context().Window(b)
	require.True(t, ok)
	assert.Equal(t, SyncStateValid, w.Synchronizer().State())
}

func TestCloseWindowTeardownOrder(t *testing.T) {
	d := newFakeDevice()
	d.caps.MinImageCount = 1
	d.caps.MaxImageCount = 2
	r := newTestRenderer(d)
	a, _ := openWindow(t, r, d, "a")
	d.events = nil

	_, err := r.CloseWindow(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"framebuffer", "framebuffer", "view", "view", "swapchain", "surface"}, d.events)
}

func TestCloseWindowWaitsForPendingWork(t *testing.T) {
	d := newFakeDevice()
	d.autoComplete = false
	r := newTestRenderer(d)
	a, _ := openWindow(t, r, d, "a")
	require.NoError(t, r.EndFrame())

	_, err := r.CloseWindow(a)
	require.NoError(t, err)
	assert.Equal(t, 1, d.waitIdleCalls)
	assertNoLeaks(t, d)
}

func TestWindowsAreIndependent(t *testing.T) {
	d := newFakeDevice()
	r := newTestRenderer(d)
	_, err := r.CreateGeometry(math.GenerateBox(1.0))
	require.NoError(t, err)

	a, fa := openWindow(t, r, d, "a")
	b, _ := openWindow(t, r, d, "b")
	scA, scB := d.swapchains[0], d.swapchains[1]

	fa.acquireScript = []scriptedResult{{err: core.ErrOutOfDate}}
	require.NoError(t, r.EndFrame())

	wa, _ := r.Context().Window(a)
	wb, _ := r.Context().Window(b)
	assert.Equal(t, SyncStateNeedsRecreate, wa.Synchronizer().State())
	assert.Equal(t, SyncStateValid, wb.Synchronizer().State())
	assert.Empty(t, scA.presented)
	assert.Len(t, scB.presented, 1)

	stats := r.Stats()
	assert.Equal(t, uint64(1), stats.Presented)
	assert.Equal(t, uint64(1), stats.Skipped)
}

func TestEndFrameVisitsWindowsInOpenOrder(t *testing.T) {
	d := newFakeDevice()
	r := newTestRenderer(d)
	names := []string{"first", "second", "third"}
	for _, n := range names {
		openWindow(t, r, d, n)
	}
	var got []string
	for _, w := range r.Context().Windows() {
		got = append(got, w.Name)
	}
	assert.Equal(t, names, got)

	require.NoError(t, r.EndFrame())
	require.Len(t, d.submitted, 3)
}

func TestStatsSurviveWindowClose(t *testing.T) {
	d := newFakeDevice()
	r := newTestRenderer(d)
	a, _ := openWindow(t, r, d, "a")
	openWindow(t, r, d, "b")
	require.NoError(t, r.EndFrame())

	_, err := r.CloseWindow(a)
	require.NoError(t, err)
	require.NoError(t, r.EndFrame())
	assert.Equal(t, uint64(3), r.Stats().Presented)
}

// Any interleaving of resizes and frames ends in a valid swapchain once the
// resizes stop and the GPU catches up.
func TestResizeInterleavingsConverge(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 20; run++ {
		d := newFakeDevice()
		d.autoComplete = rng.Intn(2) == 0
		r := newTestRenderer(d)
		h, _ := openWindow(t, r, d, "main")

		var want metadata.Extent
		for step := 0; step < 50; step++ {
			switch rng.Intn(4) {
			case 0:
				want = metadata.Extent{Width: uint32(rng.Intn(2000)), Height: uint32(rng.Intn(2000))}
				r.NotifyResized(h, want)
			case 1:
				d.completeAll()
			default:
				require.NoError(t, r.EndFrame())
			}
		}

		if want.IsZero() {
			want = metadata.Extent{Width: 300, Height: 200}
			r.NotifyResized(h, want)
		}
		d.completeAll()
		require.NoError(t, r.EndFrame())
		d.completeAll()
		require.NoError(t, r.EndFrame())

		w, _ := r.Context().Window(h)
		require.Equal(t, SyncStateValid, w.Synchronizer().State(), "run %d", run)
		assert.Equal(t, want, w.Swapchain().Extent(), "run %d", run)
		assert.Equal(t, w.Swapchain().ImageCount(), d.liveFramebuffers)

		require.NoError(t, r.Shutdown())
		assertNoLeaks(t, d)
	}
}

func TestShutdownReleasesEverything(t *testing.T) {
	d := newFakeDevice()
	r := newTestRenderer(d)
	_, err := r.CreateGeometry(math.GenerateBox(1.0))
	require.NoError(t, err)
	openWindow(t, r, d, "a")
	openWindow(t, r, d, "b")
	require.NoError(t, r.EndFrame())
	d.events = nil

	require.NoError(t, r.Shutdown())
	assert.True(t, d.destroyed)
	assert.Zero(t, d.liveBuffers)
	assert.Zero(t, d.liveFramebuffers)
	assert.Zero(t, d.liveViews)
	assert.Zero(t, r.Context().Len())
	for _, s := range d.surfaces {
		assert.True(t, s.destroyed)
	}
	assert.Equal(t, "pipeline", d.events[0])
	assert.Equal(t, "device", d.events[len(d.events)-1])
	assertNoLeaks(t, d)
}
