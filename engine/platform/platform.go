package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/polyengine/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Window is a native window opened through GLFW.
type Window struct {
	ID     core.WindowID
	Name   string
	handle *glfw.Window
}

// Handle returns the GLFW window, used to create the Vulkan surface.
func (w *Window) Handle() *glfw.Window {
	return w.handle
}

// Platform owns GLFW and every window opened through it. Window callbacks are
// turned into events on the queue handed to New.
type Platform struct {
	events  *core.EventQueue
	windows map[core.WindowID]*Window
	nextID  core.WindowID
	started bool
}

func New(events *core.EventQueue) *Platform {
	return &Platform{
		events:  events,
		windows: make(map[core.WindowID]*Window),
		nextID:  1,
	}
}

func (p *Platform) Startup() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	p.started = true
	if !glfw.VulkanSupported() {
		p.Shutdown()
		return fmt.Errorf("glfw did not find a vulkan loader")
	}
	return nil
}

// RequiredInstanceExtensions lists the instance extensions GLFW needs to
// create surfaces. GLFW only answers through a window, so a hidden one is
// opened for the query.
func (p *Platform) RequiredInstanceExtensions() ([]string, error) {
	setWindowHints(false)
	probe, err := glfw.CreateWindow(1, 1, "probe", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe window: %w", err)
	}
	defer probe.Destroy()
	return probe.GetRequiredInstanceExtensions(), nil
}

func setWindowHints(visible bool) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.
	glfw.WindowHint(glfw.Resizable, glfw.True)
	if visible {
		glfw.WindowHint(glfw.Visible, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}
}

// OpenWindow creates and shows a window. A created event is queued for it.
func (p *Platform) OpenWindow(name string, width, height uint32) (*Window, error) {
	setWindowHints(false)
	handle, err := glfw.CreateWindow(int(width), int(height), name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create window `%s`: %w", name, err)
	}

	w := &Window{ID: p.nextID, Name: name, handle: handle}
	p.nextID++
	p.windows[w.ID] = w

	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		p.events.Push(core.WindowEvent{
			Code:   core.EVENT_CODE_WINDOW_RESIZED,
			Window: w.ID,
			Width:  uint32(max(width, 0)),
			Height: uint32(max(height, 0)),
		})
	})
	handle.SetCloseCallback(func(gw *glfw.Window) {
		// The window stays open until the renderer let go of its surface.
		gw.SetShouldClose(false)
		p.events.Push(core.WindowEvent{Code: core.EVENT_CODE_WINDOW_CLOSE_REQUESTED, Window: w.ID})
	})
	handle.SetRefreshCallback(func(_ *glfw.Window) {
		p.events.Push(core.WindowEvent{Code: core.EVENT_CODE_WINDOW_REDRAW, Window: w.ID})
	})
	handle.Show()

	p.events.Push(core.WindowEvent{Code: core.EVENT_CODE_WINDOW_CREATED, Window: w.ID})
	core.LogDebug("window `%s` opened (%dx%d)", name, width, height)
	return w, nil
}

func (p *Platform) Window(id core.WindowID) (*Window, bool) {
	w, ok := p.windows[id]
	return w, ok
}

func (p *Platform) DestroyWindow(id core.WindowID) {
	w, ok := p.windows[id]
	if !ok {
		return
	}
	delete(p.windows, id)
	w.handle.Destroy()
	core.LogDebug("window `%s` destroyed", w.Name)
}

// PumpMessages processes pending native events without blocking.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) Shutdown() {
	if !p.started {
		return
	}
	for id := range p.windows {
		p.DestroyWindow(id)
	}
	glfw.Terminate()
	p.started = false
}
