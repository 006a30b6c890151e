package renderer

import (
	"fmt"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/math"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

// SwapchainState owns a window's swapchain, its image views and one
// framebuffer per image.
type SwapchainState struct {
	device     Device
	surface    *PresentationSurface
	pass       RenderPass
	policy     metadata.FormatPolicy
	imageCount uint32

	handle       Swapchain
	images       []ImageView
	framebuffers []Framebuffer
	extent       metadata.Extent
	generation   uint64
}

type SwapchainOptions struct {
	Policy metadata.FormatPolicy
	// Requested image count. 0 picks the surface minimum plus one.
	ImageCount uint32
}

// NewSwapchainState negotiates the surface format and builds the first
// swapchain. core.ErrUnsupportedFormat is returned when the surface cannot
// present the policy's format.
func NewSwapchainState(device Device, surface *PresentationSurface, pass RenderPass, opts SwapchainOptions, extent metadata.Extent) (*SwapchainState, error) {
	s := &SwapchainState{
		device:     device,
		surface:    surface,
		pass:       pass,
		policy:     opts.Policy,
		imageCount: opts.ImageCount,
	}
	if err := s.build(extent); err != nil {
		return nil, err
	}
	return s, nil
}

// Rebuild replaces the swapchain and its framebuffers to match the surface.
// On core.ErrRecreateUnsupportedDimensions the current swapchain is left in
// place and the caller may retry later.
func (s *SwapchainState) Rebuild(extent metadata.Extent) error {
	return s.build(extent)
}

func (s *SwapchainState) build(requested metadata.Extent) error {
	caps, err := s.surface.Capabilities()
	if err != nil {
		return fmt.Errorf("failed to query surface capabilities: %w", err)
	}

	format := s.policy.SurfaceFormat()
	if !caps.SupportsFormat(format) {
		return fmt.Errorf("%w: format %d / color space %d", core.ErrUnsupportedFormat, format.Format, format.ColorSpace)
	}

	extent := requested
	if !caps.CurrentExtent.IsUndefined() {
		extent = caps.CurrentExtent
	}
	if extent.IsZero() || !extent.Contains(caps.MinImageExtent, caps.MaxImageExtent) {
		return fmt.Errorf("%w: %dx%d", core.ErrRecreateUnsupportedDimensions, extent.Width, extent.Height)
	}

	config := &metadata.SwapchainConfig{
		MinImageCount:  s.chooseImageCount(caps),
		Format:         format,
		Extent:         extent,
		Usage:          metadata.ImageUsageColorAttachment,
		Transform:      metadata.SurfaceTransformIdentity,
		CompositeAlpha: metadata.CompositeAlphaOpaque,
		PresentMode:    metadata.PresentModeFifo,
		Clipped:        true,
	}

	handle, err := s.device.CreateSwapchain(s.surface.Handle(), config, s.handle)
	if err != nil {
		return err
	}

	images := handle.Images()
	framebuffers := make([]Framebuffer, 0, len(images))
	for _, view := range images {
		fb, err := s.device.CreateFramebuffer(s.pass, view, extent)
		if err != nil {
			for _, f := range framebuffers {
				f.Destroy()
			}
			destroyViews(images)
			handle.Destroy()
			return fmt.Errorf("failed to create framebuffer: %w", err)
		}
		framebuffers = append(framebuffers, fb)
	}

	// The old resources go only once the replacement exists.
	s.release()

	s.handle = handle
	s.images = images
	s.framebuffers = framebuffers
	s.extent = extent
	s.generation++

	core.LogDebug("swapchain generation %d built: %dx%d, %d images", s.generation, extent.Width, extent.Height, len(images))
	return nil
}

func (s *SwapchainState) chooseImageCount(caps *metadata.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if s.imageCount > 0 {
		count = math.Clamp(s.imageCount, caps.MinImageCount, s.imageCount)
	}
	if caps.MaxImageCount > 0 {
		count = math.Clamp(count, caps.MinImageCount, caps.MaxImageCount)
	}
	return count
}

func (s *SwapchainState) Handle() Swapchain {
	return s.handle
}

func (s *SwapchainState) Extent() metadata.Extent {
	return s.extent
}

// Generation increases by one with every successful build, starting at 1.
func (s *SwapchainState) Generation() uint64 {
	return s.generation
}

func (s *SwapchainState) ImageCount() int {
	return len(s.images)
}

func (s *SwapchainState) Framebuffer(index uint32) (Framebuffer, error) {
	if int(index) >= len(s.framebuffers) {
		return nil, fmt.Errorf("image index %d out of range (%d framebuffers)", index, len(s.framebuffers))
	}
	return s.framebuffers[index], nil
}

func (s *SwapchainState) Destroy() {
	s.release()
	s.handle = nil
	s.images = nil
	s.framebuffers = nil
}

// framebuffers, then views, then the swapchain itself
func (s *SwapchainState) release() {
	for _, fb := range s.framebuffers {
		fb.Destroy()
	}
	destroyViews(s.images)
	if s.handle != nil {
		s.handle.Destroy()
	}
}

func destroyViews(views []ImageView) {
	for _, v := range views {
		v.Destroy()
	}
}
