package renderer

import (
	"github.com/spaghettifunk/polyengine/engine/math"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
)

// Device is the GPU device every window renders with. The renderer only
// talks to the GPU through this interface and the resource interfaces below.
type Device interface {
	Queue() Queue
	SurfaceCapabilities(surface Surface) (*metadata.SurfaceCapabilities, error)
	// CreateSwapchain builds a swapchain for the surface. When old is not nil
	// it is passed to the driver as the retired swapchain; the caller still
	// destroys it.
	CreateSwapchain(surface Surface, config *metadata.SwapchainConfig, old Swapchain) (Swapchain, error)
	CreateRenderPass(format metadata.Format) (RenderPass, error)
	CreateFramebuffer(pass RenderPass, view ImageView, extent metadata.Extent) (Framebuffer, error)
	CreateGraphicsPipeline(pass RenderPass, shaders *metadata.ShaderSource) (Pipeline, error)
	CreateVertexBuffer(vertices []math.Vec3) (VertexBuffer, error)
	AllocateCommandBuffer() (CommandBuffer, error)
	// WaitIdle blocks until all submitted work has completed.
	WaitIdle() error
	Destroy()
}

// Surface is the presentable area of one window.
type Surface interface {
	// Extent is the current framebuffer size of the window.
	Extent() metadata.Extent
	Destroy()
}

type Swapchain interface {
	// Images returns one view per swapchain image. The caller destroys the
	// views before the swapchain.
	Images() []ImageView
	// AcquireNextImage returns the index of the next presentable image and a
	// signal that completes once the image is ready to be rendered to.
	// core.ErrOutOfDate means the swapchain no longer matches its surface.
	AcquireNextImage() (index uint32, suboptimal bool, ready Signal, err error)
	Destroy()
}

type ImageView interface {
	Destroy()
}

type Framebuffer interface {
	Destroy()
}

type RenderPass interface {
	Destroy()
}

type Pipeline interface {
	Destroy()
}

type VertexBuffer interface {
	VertexCount() uint32
	Destroy()
}

// CommandBuffer records the commands of a single frame.
type CommandBuffer interface {
	BeginRenderPass(pass RenderPass, framebuffer Framebuffer, extent metadata.Extent, clear metadata.Color)
	// SetViewport sets both viewport and scissor to cover the extent.
	SetViewport(extent metadata.Extent)
	BindPipeline(pipeline Pipeline)
	BindVertexBuffer(buffer VertexBuffer)
	Draw(vertexCount, instanceCount uint32)
	EndRenderPass()
	End() error
	// Release returns a command buffer that was never submitted.
	Release()
}

type Queue interface {
	// Submit executes the command buffer once wait completes. On success the
	// returned signal owns both the command buffer and wait, and releases them
	// together with itself. On failure ownership stays with the caller.
	Submit(cb CommandBuffer, wait Signal) (Signal, error)
	// Present queues the image for presentation after wait completes. It does
	// not take ownership of wait.
	Present(swapchain Swapchain, index uint32, wait Signal) (suboptimal bool, err error)
}

// SurfaceFactory creates the surface of a window that the platform already
// opened.
type SurfaceFactory interface {
	CreateSurface() (Surface, error)
}

type SurfaceFactoryFunc func() (Surface, error)

func (f SurfaceFactoryFunc) CreateSurface() (Surface, error) {
	return f()
}
