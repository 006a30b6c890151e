package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/polyengine/engine/renderer"
)

type VulkanImageView struct {
	device *VulkanDevice
	Handle vk.ImageView
}

var _ renderer.ImageView = (*VulkanImageView)(nil)

func (d *VulkanDevice) createImageView(image vk.Image, format vk.Format) (*VulkanImageView, error) {
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	view := &VulkanImageView{device: d}
	if res := vk.CreateImageView(d.LogicalDevice, &viewInfo, d.context.Allocator, &view.Handle); res != vk.Success {
		return nil, resultError(res, "vkCreateImageView")
	}
	return view, nil
}

func (v *VulkanImageView) Destroy() {
	if v.Handle != nil {
		vk.DestroyImageView(v.device.LogicalDevice, v.Handle, v.device.context.Allocator)
		v.Handle = nil
	}
}
