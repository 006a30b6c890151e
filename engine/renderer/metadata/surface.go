package metadata

// UNDEFINED_EXTENT is the sentinel a surface reports as its current extent
// when the swapchain decides the size.
const UNDEFINED_EXTENT uint32 = 0xFFFFFFFF

/** @brief The size of a presentable image, in pixels. */
type Extent struct {
	Width  uint32
	Height uint32
}

func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

func (e Extent) IsUndefined() bool {
	return e.Width == UNDEFINED_EXTENT && e.Height == UNDEFINED_EXTENT
}

// Contains reports whether e lies within [min, max] on both axes.
func (e Extent) Contains(min, max Extent) bool {
	return e.Width >= min.Width && e.Width <= max.Width &&
		e.Height >= min.Height && e.Height <= max.Height
}

// The enumerations below share their numeric values with Vulkan so the
// backend converts them with a plain cast.

type Format uint32

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8Unorm Format = 37
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8Srgb  Format = 50
)

type ColorSpace uint32

const (
	ColorSpaceSrgbNonlinear ColorSpace = 0
)

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type PresentMode uint32

const (
	PresentModeImmediate PresentMode = 0
	PresentModeMailbox   PresentMode = 1
	PresentModeFifo      PresentMode = 2
)

type CompositeAlpha uint32

const (
	CompositeAlphaOpaque CompositeAlpha = 0x1
)

type SurfaceTransform uint32

const (
	SurfaceTransformIdentity SurfaceTransform = 0x1
)

type ImageUsage uint32

const (
	ImageUsageTransferDst     ImageUsage = 0x2
	ImageUsageColorAttachment ImageUsage = 0x10
)

// SurfaceCapabilities is what the device reports about a surface at a given
// moment. It changes whenever the window is resized.
type SurfaceCapabilities struct {
	MinImageCount uint32
	// 0 means no upper limit.
	MaxImageCount    uint32
	CurrentExtent    Extent
	MinImageExtent   Extent
	MaxImageExtent   Extent
	CurrentTransform SurfaceTransform
	SupportedUsage   ImageUsage
	SupportedFormats []SurfaceFormat
}

func (c *SurfaceCapabilities) SupportsFormat(f SurfaceFormat) bool {
	for _, sf := range c.SupportedFormats {
		if sf == f {
			return true
		}
	}
	return false
}
