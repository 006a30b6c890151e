package engine

import (
	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/math"
	"github.com/spaghettifunk/polyengine/engine/platform"
	"github.com/spaghettifunk/polyengine/engine/renderer"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

// Presenter renders frames into the open windows. *renderer.Renderer
// implements it.
type Presenter interface {
	OpenWindow(factory renderer.SurfaceFactory, name string) (core.WindowHandle, error)
	CloseWindow(handle core.WindowHandle) (bool, error)
	NotifyResized(handle core.WindowHandle, extent metadata.Extent)
	CreateGeometry(vertices []math.Vec3) (renderer.GeometryID, error)
	EndFrame() error
	Stats() renderer.FrameStats
	Shutdown() error
}

// WindowSystem opens native windows and reports what happens to them on the
// engine event queue. *platform.Platform implements it.
type WindowSystem interface {
	OpenWindow(name string, width, height uint32) (*platform.Window, error)
	Window(id core.WindowID) (*platform.Window, bool)
	DestroyWindow(id core.WindowID)
	PumpMessages()
	Shutdown()
}

// SurfaceProvider returns the factory creating the presentation surface of a
// native window.
type SurfaceProvider func(w *platform.Window) renderer.SurfaceFactory

var (
	_ Presenter    = (*renderer.Renderer)(nil)
	_ WindowSystem = (*platform.Platform)(nil)
)
