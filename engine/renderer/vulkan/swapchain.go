package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/renderer"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

const acquireTimeout = ^uint64(0)

type VulkanSwapchain struct {
	device *VulkanDevice
	Handle vk.Swapchain
	Format metadata.SurfaceFormat
	Extent metadata.Extent
	views  []renderer.ImageView
}

var _ renderer.Swapchain = (*VulkanSwapchain)(nil)

func (d *VulkanDevice) CreateSwapchain(surface renderer.Surface, config *metadata.SwapchainConfig, old renderer.Swapchain) (renderer.Swapchain, error) {
	s, ok := surface.(*VulkanSurface)
	if !ok {
		return nil, errors.Errorf("unexpected surface type %T", surface)
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          s.handle,
		MinImageCount:    config.MinImageCount,
		ImageFormat:      vk.Format(config.Format.Format),
		ImageColorSpace:  vk.ColorSpace(config.Format.ColorSpace),
		ImageExtent:      toExtent2D(config.Extent),
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(config.Usage),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformFlagBits(config.Transform),
		CompositeAlpha:   vk.CompositeAlphaFlagBits(config.CompositeAlpha),
		PresentMode:      vk.PresentMode(config.PresentMode),
		Clipped:          vk.False,
	}
	if config.Clipped {
		createInfo.Clipped = vk.True
	}
	if prev, ok := old.(*VulkanSwapchain); ok && prev != nil {
		createInfo.OldSwapchain = prev.Handle
	}

	sc := &VulkanSwapchain{
		device: d,
		Format: config.Format,
		Extent: config.Extent,
	}
	if err := lockPool.SafeCall(SwapchainManagement, func() error {
		return resultError(vk.CreateSwapchain(d.LogicalDevice, &createInfo, d.context.Allocator, &sc.Handle), "vkCreateSwapchainKHR")
	}); err != nil {
		return nil, err
	}

	images, err := sc.images()
	if err != nil {
		sc.Destroy()
		return nil, err
	}
	for _, image := range images {
		view, err := d.createImageView(image, vk.Format(config.Format.Format))
		if err != nil {
			for _, v := range sc.views {
				v.Destroy()
			}
			sc.Destroy()
			return nil, err
		}
		sc.views = append(sc.views, view)
	}

	core.LogDebug("Swapchain created with %d images at %dx%d.", len(sc.views), config.Extent.Width, config.Extent.Height)
	return sc, nil
}

func (sc *VulkanSwapchain) images() ([]vk.Image, error) {
	var count uint32
	if res := vk.GetSwapchainImages(sc.device.LogicalDevice, sc.Handle, &count, nil); res != vk.Success {
		return nil, resultError(res, "vkGetSwapchainImagesKHR")
	}
	images := make([]vk.Image, count)
	if res := vk.GetSwapchainImages(sc.device.LogicalDevice, sc.Handle, &count, images); res != vk.Success {
		return nil, resultError(res, "vkGetSwapchainImagesKHR")
	}
	return images[:count], nil
}

func (sc *VulkanSwapchain) Images() []renderer.ImageView {
	return sc.views
}

// AcquireNextImage asks the presentation engine for the next image. The
// returned signal wraps the semaphore the frame waits on before rendering and
// a fence used to poll for completion.
func (sc *VulkanSwapchain) AcquireNextImage() (uint32, bool, renderer.Signal, error) {
	sem, err := sc.device.sync.semaphore()
	if err != nil {
		return 0, false, nil, err
	}
	fence, err := sc.device.sync.fence()
	if err != nil {
		sc.device.sync.putSemaphore(sem)
		return 0, false, nil, err
	}

	var index uint32
	res := vk.AcquireNextImage(sc.device.LogicalDevice, sc.Handle, acquireTimeout, sem, fence.Handle, &index)
	if res != vk.Success && res != vk.Suboptimal {
		sc.device.sync.putSemaphore(sem)
		sc.device.sync.putFence(fence)
		return 0, false, nil, resultError(res, "vkAcquireNextImageKHR")
	}
	return index, res == vk.Suboptimal, &acquireSignal{device: sc.device, semaphore: sem, fence: fence}, nil
}

func (sc *VulkanSwapchain) Destroy() {
	sc.views = nil
	if sc.Handle != nil {
		_ = lockPool.SafeCall(SwapchainManagement, func() error {
			vk.DestroySwapchain(sc.device.LogicalDevice, sc.Handle, sc.device.context.Allocator)
			return nil
		})
		sc.Handle = nil
	}
}
