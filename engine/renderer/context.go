package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

// WindowContext is everything the renderer keeps for one open window.
type WindowContext struct {
	Handle core.WindowHandle
	Name   string

	surface   *PresentationSurface
	swapchain *SwapchainState
	sync      *FrameSynchronizer
}

func (w *WindowContext) Synchronizer() *FrameSynchronizer {
	return w.sync
}

func (w *WindowContext) Swapchain() *SwapchainState {
	return w.swapchain
}

// destroy tears the window down: signals, framebuffers, image views,
// swapchain, surface.
func (w *WindowContext) destroy() error {
	err := w.sync.Destroy()
	w.swapchain.Destroy()
	w.surface.Destroy()
	return err
}

type ContextOptions struct {
	Policy     metadata.FormatPolicy
	ImageCount uint32
	ClearColor metadata.Color
}

// RenderContext owns the open windows, the shared render pass and the
// geometry store.
type RenderContext struct {
	device   Device
	opts     ContextOptions
	pass     RenderPass
	geometry *GeometryStore

	windows map[core.WindowHandle]*WindowContext
	// open order
	order []core.WindowHandle
}

func NewRenderContext(device Device, opts ContextOptions) (*RenderContext, error) {
	pass, err := device.CreateRenderPass(opts.Policy.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create render pass: %w", err)
	}
	return &RenderContext{
		device:   device,
		opts:     opts,
		pass:     pass,
		geometry: NewGeometryStore(device),
		windows:  make(map[core.WindowHandle]*WindowContext),
	}, nil
}

// CreateWindow builds the surface, swapchain and frame state of a window the
// platform already opened. A surface that cannot present the configured
// format is a fatal error.
func (rc *RenderContext) CreateWindow(factory SurfaceFactory, name string) (core.WindowHandle, error) {
	surface, err := NewPresentationSurface(rc.device, factory)
	if err != nil {
		return core.WindowHandle{}, err
	}

	swapchain, err := NewSwapchainState(rc.device, surface, rc.pass, SwapchainOptions{
		Policy:     rc.opts.Policy,
		ImageCount: rc.opts.ImageCount,
	}, surface.Extent())
	if err != nil {
		surface.Destroy()
		if errors.Is(err, core.ErrUnsupportedFormat) {
			return core.WindowHandle{}, core.NewFatalError(core.StageFormatNegotiation, err)
		}
		return core.WindowHandle{}, fmt.Errorf("failed to create swapchain for window `%s`: %w", name, err)
	}

	handle := core.NewWindowHandle()
	rc.windows[handle] = &WindowContext{
		Handle:    handle,
		Name:      name,
		surface:   surface,
		swapchain: swapchain,
		sync:      NewFrameSynchronizer(rc.device, swapchain, rc.pass, rc.opts.ClearColor),
	}
	rc.order = append(rc.order, handle)

	core.LogInfo("window `%s` opened (%s)", name, handle)
	return handle, nil
}

// CloseWindow destroys the window's resources. Unknown handles return
// core.ErrWindowNotFound and leave the context untouched.
func (rc *RenderContext) CloseWindow(handle core.WindowHandle) error {
	w, ok := rc.windows[handle]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrWindowNotFound, handle)
	}
	delete(rc.windows, handle)
	for i, h := range rc.order {
		if h == handle {
			rc.order = append(rc.order[:i], rc.order[i+1:]...)
			break
		}
	}

	if err := w.destroy(); err != nil {
		core.LogWarn("window `%s` closed while the device was not idle: %s", w.Name, err)
	}
	core.LogInfo("window `%s` closed (%s)", w.Name, handle)
	return nil
}

func (rc *RenderContext) Window(handle core.WindowHandle) (*WindowContext, bool) {
	w, ok := rc.windows[handle]
	return w, ok
}

// Windows returns the open windows in the order they were opened.
func (rc *RenderContext) Windows() []*WindowContext {
	out := make([]*WindowContext, 0, len(rc.order))
	for _, h := range rc.order {
		out = append(out, rc.windows[h])
	}
	return out
}

func (rc *RenderContext) Len() int {
	return len(rc.windows)
}

func (rc *RenderContext) RenderPass() RenderPass {
	return rc.pass
}

func (rc *RenderContext) Geometry() *GeometryStore {
	return rc.geometry
}

// Destroy closes every window, then frees the geometry and the render pass.
func (rc *RenderContext) Destroy() {
	for len(rc.order) > 0 {
		_ = rc.CloseWindow(rc.order[0])
	}
	rc.geometry.Destroy()
	if rc.pass != nil {
		rc.pass.Destroy()
		rc.pass = nil
	}
}
