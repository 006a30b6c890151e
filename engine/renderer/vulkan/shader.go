package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

const spirvMagic = 0x07230203

// VulkanShaderStage is a compiled module plus the stage info the pipeline
// needs.
type VulkanShaderStage struct {
	Handle                vk.ShaderModule
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

func (d *VulkanDevice) createShaderStage(code []byte, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("invalid SPIR-V size %d", len(code))
	}
	words := sliceUint32(code)
	if words[0] != spirvMagic {
		return nil, errors.New("invalid SPIR-V magic number")
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    words,
	}

	out := &VulkanShaderStage{}
	if res := vk.CreateShaderModule(d.LogicalDevice, &createInfo, d.context.Allocator, &out.Handle); res != vk.Success {
		return nil, resultError(res, "vkCreateShaderModule")
	}
	out.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: out.Handle,
		PName:  VulkanSafeString("main"),
	}
	return out, nil
}

func (s *VulkanShaderStage) destroy(d *VulkanDevice) {
	if s.Handle != nil {
		vk.DestroyShaderModule(d.LogicalDevice, s.Handle, d.context.Allocator)
		s.Handle = nil
	}
}

// sliceUint32 reinterprets SPIR-V bytes as words without copying.
func sliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
