package metadata

/** @brief The colour format every window swapchain must support. */
type FormatPolicy struct {
	Format     Format
	ColorSpace ColorSpace
}

func DefaultFormatPolicy() FormatPolicy {
	return FormatPolicy{
		Format:     FormatB8G8R8A8Unorm,
		ColorSpace: ColorSpaceSrgbNonlinear,
	}
}

func (p FormatPolicy) SurfaceFormat() SurfaceFormat {
	return SurfaceFormat{Format: p.Format, ColorSpace: p.ColorSpace}
}

/** @brief Parameters handed to the backend to build a swapchain. */
type SwapchainConfig struct {
	MinImageCount  uint32
	Format         SurfaceFormat
	Extent         Extent
	Usage          ImageUsage
	Transform      SurfaceTransform
	CompositeAlpha CompositeAlpha
	PresentMode    PresentMode
	Clipped        bool
}
