package vulkan

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/renderer"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

// VulkanSurface is the presentation surface of one GLFW window.
type VulkanSurface struct {
	device *VulkanDevice
	window *glfw.Window
	handle vk.Surface
}

var _ renderer.Surface = (*VulkanSurface)(nil)

// SurfaceFor returns a factory creating the surface of an already opened
// window.
func (d *VulkanDevice) SurfaceFor(window *glfw.Window) renderer.SurfaceFactory {
	return renderer.SurfaceFactoryFunc(func() (renderer.Surface, error) {
		return d.createSurface(window)
	})
}

func (d *VulkanDevice) createSurface(window *glfw.Window) (*VulkanSurface, error) {
	ptr, err := window.CreateWindowSurface(d.context.Instance, nil)
	if err != nil {
		return nil, errors.Wrap(err, "vulkan surface creation failed")
	}
	s := &VulkanSurface{
		device: d,
		window: window,
		handle: vk.SurfaceFromPointer(ptr),
	}

	var supported vk.Bool32
	if res := vk.GetPhysicalDeviceSurfaceSupport(d.PhysicalDevice, d.GraphicsQueueIndex, s.handle, &supported); res != vk.Success {
		s.Destroy()
		return nil, resultError(res, "vkGetPhysicalDeviceSurfaceSupportKHR")
	}
	if supported != vk.True {
		s.Destroy()
		return nil, errors.New("graphics queue cannot present to the window surface")
	}
	core.LogDebug("Vulkan surface created.")
	return s, nil
}

func (s *VulkanSurface) Extent() metadata.Extent {
	w, h := s.window.GetFramebufferSize()
	if w < 0 || h < 0 {
		return metadata.Extent{}
	}
	return metadata.Extent{Width: uint32(w), Height: uint32(h)}
}

func (s *VulkanSurface) Destroy() {
	if s.handle != nil {
		vk.DestroySurface(s.device.context.Instance, s.handle, s.device.context.Allocator)
		s.handle = nil
	}
}
