package renderer

import (
	"fmt"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/math"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

type Options struct {
	Policy metadata.FormatPolicy
	// 0 picks the surface minimum plus one.
	ImageCount uint32
	ClearColor metadata.Color
}

func DefaultOptions() Options {
	return Options{
		Policy:     metadata.DefaultFormatPolicy(),
		ClearColor: metadata.Color{0.0, 0.0, 1.0, 1.0},
	}
}

func OptionsFromConfig(cfg core.RendererConfig) Options {
	opts := DefaultOptions()
	opts.ImageCount = cfg.ImageCount
	opts.ClearColor = metadata.Color(cfg.ClearColor)
	return opts
}

// Renderer is the entry point the host loop talks to. It is not safe for
// concurrent use; every call must come from the goroutine that pumps the
// window events.
type Renderer struct {
	device   Device
	context  *RenderContext
	pipeline Pipeline

	// stats of windows that were already closed
	closed FrameStats
}

func New(device Device, shaders *metadata.ShaderSource, opts Options) (*Renderer, error) {
	ctx, err := NewRenderContext(device, ContextOptions{
		Policy:     opts.Policy,
		ImageCount: opts.ImageCount,
		ClearColor: opts.ClearColor,
	})
	if err != nil {
		return nil, err
	}
	pipeline, err := device.CreateGraphicsPipeline(ctx.RenderPass(), shaders)
	if err != nil {
		ctx.Destroy()
		return nil, fmt.Errorf("failed to create graphics pipeline: %w", err)
	}
	core.LogInfo("renderer initialized")
	return &Renderer{
		device:   device,
		context:  ctx,
		pipeline: pipeline,
	}, nil
}

func (r *Renderer) OpenWindow(factory SurfaceFactory, name string) (core.WindowHandle, error) {
	return r.context.CreateWindow(factory, name)
}

// CloseWindow reports whether the closed window was the last one open.
func (r *Renderer) CloseWindow(handle core.WindowHandle) (bool, error) {
	if w, ok := r.context.Window(handle); ok {
		r.closed.Add(w.sync.Stats())
	}
	if err := r.context.CloseWindow(handle); err != nil {
		return false, err
	}
	return r.context.Len() == 0, nil
}

// NotifyResized schedules a swapchain rebuild for the window. Unknown handles
// are ignored.
func (r *Renderer) NotifyResized(handle core.WindowHandle, extent metadata.Extent) {
	w, ok := r.context.Window(handle)
	if !ok {
		core.LogDebug("resize for unknown window %s ignored", handle)
		return
	}
	w.sync.NotifyResized(extent)
}

func (r *Renderer) CreateGeometry(vertices []math.Vec3) (GeometryID, error) {
	return r.context.Geometry().Upload(vertices)
}

// EndFrame renders and presents one frame in every open window, in the order
// the windows were opened. A window that skips never affects the others. Any
// returned error is a *core.FatalError.
func (r *Renderer) EndFrame() error {
	geometry, _ := r.context.Geometry().First()
	for _, w := range r.context.Windows() {
		img, err := w.sync.Acquire()
		if err != nil {
			return err
		}
		if img == nil {
			continue
		}
		if err := w.sync.SubmitAndPresent(img, r.pipeline, geometry); err != nil {
			return err
		}
	}
	return nil
}

// Stats sums the frame counters of every window opened so far.
func (r *Renderer) Stats() FrameStats {
	stats := r.closed
	for _, w := range r.context.Windows() {
		stats.Add(w.sync.Stats())
	}
	return stats
}

func (r *Renderer) Context() *RenderContext {
	return r.context
}

// Shutdown waits for the device, destroys the pipeline, every window and the
// shared resources, and finally the device.
func (r *Renderer) Shutdown() error {
	err := r.device.WaitIdle()
	if err != nil {
		core.LogError("failed to wait for device idle: %s", err)
	}
	if r.pipeline != nil {
		r.pipeline.Destroy()
		r.pipeline = nil
	}
	r.context.Destroy()
	r.device.Destroy()
	core.LogInfo("renderer shut down")
	return err
}
