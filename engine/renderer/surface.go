package renderer

import (
	"fmt"

	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

// PresentationSurface binds a window to the device it is presented with.
type PresentationSurface struct {
	device  Device
	surface Surface
}

func NewPresentationSurface(device Device, factory SurfaceFactory) (*PresentationSurface, error) {
	s, err := factory.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("failed to create window surface: %w", err)
	}
	return &PresentationSurface{device: device, surface: s}, nil
}

// Capabilities queries the device for the current surface properties. The
// result is only valid until the window changes.
func (p *PresentationSurface) Capabilities() (*metadata.SurfaceCapabilities, error) {
	return p.device.SurfaceCapabilities(p.surface)
}

// Extent is the window's framebuffer size as reported by the platform.
func (p *PresentationSurface) Extent() metadata.Extent {
	return p.surface.Extent()
}

func (p *PresentationSurface) Handle() Surface {
	return p.surface
}

func (p *PresentationSurface) Destroy() {
	if p.surface != nil {
		p.surface.Destroy()
		p.surface = nil
	}
}
