package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/polyengine/engine/renderer"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

type VulkanFramebuffer struct {
	device *VulkanDevice
	Handle vk.Framebuffer
	Extent metadata.Extent
}

var _ renderer.Framebuffer = (*VulkanFramebuffer)(nil)

func (d *VulkanDevice) CreateFramebuffer(pass renderer.RenderPass, view renderer.ImageView, extent metadata.Extent) (renderer.Framebuffer, error) {
	rp, ok := pass.(*VulkanRenderPass)
	if !ok {
		return nil, errors.Errorf("unexpected render pass type %T", pass)
	}
	iv, ok := view.(*VulkanImageView)
	if !ok {
		return nil, errors.Errorf("unexpected image view type %T", view)
	}

	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      rp.Handle,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{iv.Handle},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	fb := &VulkanFramebuffer{device: d, Extent: extent}
	if res := vk.CreateFramebuffer(d.LogicalDevice, &createInfo, d.context.Allocator, &fb.Handle); res != vk.Success {
		return nil, resultError(res, "vkCreateFramebuffer")
	}
	return fb, nil
}

func (fb *VulkanFramebuffer) Destroy() {
	if fb.Handle != nil {
		vk.DestroyFramebuffer(fb.device.LogicalDevice, fb.Handle, fb.device.context.Allocator)
		fb.Handle = nil
	}
}
