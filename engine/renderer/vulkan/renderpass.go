package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/polyengine/engine/renderer"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

// VulkanRenderPass has a single color attachment that is cleared on load and
// left ready for presentation.
type VulkanRenderPass struct {
	device *VulkanDevice
	Handle vk.RenderPass
	Format metadata.Format
}

var _ renderer.RenderPass = (*VulkanRenderPass)(nil)

func (d *VulkanDevice) CreateRenderPass(format metadata.Format) (renderer.RenderPass, error) {
	colorAttachment := vk.AttachmentDescription{
		Format:         vk.Format(format),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}

	// The acquire semaphore is waited on at the color output stage, so the
	// layout transition has to wait there too.
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	rp := &VulkanRenderPass{device: d, Format: format}
	if res := vk.CreateRenderPass(d.LogicalDevice, &createInfo, d.context.Allocator, &rp.Handle); res != vk.Success {
		return nil, resultError(res, "vkCreateRenderPass")
	}
	return rp, nil
}

func (rp *VulkanRenderPass) Destroy() {
	if rp.Handle != nil {
		vk.DestroyRenderPass(rp.device.LogicalDevice, rp.Handle, rp.device.context.Allocator)
		rp.Handle = nil
	}
}
