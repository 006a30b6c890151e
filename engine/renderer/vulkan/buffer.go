package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/polyengine/engine/math"
	"github.com/spaghettifunk/polyengine/engine/renderer"
)

// VulkanBuffer is a host visible vertex buffer. The geometry is small and
// written once, so it lives in mappable memory without a staging copy.
type VulkanBuffer struct {
	device      *VulkanDevice
	Handle      vk.Buffer
	Memory      vk.DeviceMemory
	TotalSize   vk.DeviceSize
	vertexCount uint32
}

var _ renderer.VertexBuffer = (*VulkanBuffer)(nil)

func newVertexBuffer(d *VulkanDevice, vertices []math.Vec3) (*VulkanBuffer, error) {
	data := vertexBytes(vertices)
	if len(data) == 0 {
		return nil, errors.New("empty vertex data")
	}

	b := &VulkanBuffer{
		device:      d,
		TotalSize:   vk.DeviceSize(len(data)),
		vertexCount: uint32(len(vertices)),
	}
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        b.TotalSize,
		Usage:       vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		SharingMode: vk.SharingModeExclusive,
	}
	if res := vk.CreateBuffer(d.LogicalDevice, &createInfo, d.context.Allocator, &b.Handle); res != vk.Success {
		return nil, resultError(res, "vkCreateBuffer")
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.LogicalDevice, b.Handle, &requirements)
	requirements.Deref()

	flags := uint32(vk.MemoryPropertyHostVisibleBit) | uint32(vk.MemoryPropertyHostCoherentBit)
	index := d.FindMemoryIndex(requirements.MemoryTypeBits, flags)
	if index == -1 {
		b.Destroy()
		return nil, errors.New("no host visible memory type for vertex buffer")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(index),
	}
	if res := vk.AllocateMemory(d.LogicalDevice, &allocateInfo, d.context.Allocator, &b.Memory); res != vk.Success {
		b.Destroy()
		return nil, resultError(res, "vkAllocateMemory")
	}
	if res := vk.BindBufferMemory(d.LogicalDevice, b.Handle, b.Memory, 0); res != vk.Success {
		b.Destroy()
		return nil, resultError(res, "vkBindBufferMemory")
	}

	var mapped unsafe.Pointer
	if res := vk.MapMemory(d.LogicalDevice, b.Memory, 0, b.TotalSize, 0, &mapped); res != vk.Success {
		b.Destroy()
		return nil, resultError(res, "vkMapMemory")
	}
	vk.Memcopy(mapped, data)
	vk.UnmapMemory(d.LogicalDevice, b.Memory)
	return b, nil
}

// vertexBytes lays out positions as tightly packed float32 triples.
func vertexBytes(vertices []math.Vec3) []byte {
	floats := math.Flatten(vertices)
	if len(floats) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&floats[0])), len(floats)*4)
}

func (b *VulkanBuffer) VertexCount() uint32 {
	return b.vertexCount
}

func (b *VulkanBuffer) Destroy() {
	if b.Handle != nil {
		vk.DestroyBuffer(b.device.LogicalDevice, b.Handle, b.device.context.Allocator)
		b.Handle = nil
	}
	if b.Memory != nil {
		vk.FreeMemory(b.device.LogicalDevice, b.Memory, b.device.context.Allocator)
		b.Memory = nil
	}
	b.TotalSize = 0
}
