package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/polyengine/engine/core"
)

type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func newFence(d *VulkanDevice) (*VulkanFence, error) {
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	fence := &VulkanFence{}
	if res := vk.CreateFence(d.LogicalDevice, &fenceCreateInfo, d.context.Allocator, &fence.Handle); res != vk.Success {
		return nil, resultError(res, "vkCreateFence")
	}
	return fence, nil
}

// Status polls the fence without blocking.
func (vf *VulkanFence) Status(d *VulkanDevice) (bool, error) {
	if vf.IsSignaled {
		return true, nil
	}
	switch res := vk.GetFenceStatus(d.LogicalDevice, vf.Handle); res {
	case vk.Success:
		vf.IsSignaled = true
		return true, nil
	case vk.NotReady:
		return false, nil
	default:
		return false, resultError(res, "vkGetFenceStatus")
	}
}

func (vf *VulkanFence) Wait(d *VulkanDevice, timeoutNs uint64) bool {
	if vf.IsSignaled {
		return true
	}
	result := vk.WaitForFences(d.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, timeoutNs)
	switch result {
	case vk.Success:
		vf.IsSignaled = true
		return true
	case vk.Timeout:
		core.LogWarn("vk_fence_wait - Timed out")
	case vk.ErrorDeviceLost:
		core.LogError("vk_fence_wait - VK_ERROR_DEVICE_LOST.")
	case vk.ErrorOutOfHostMemory:
		core.LogError("vk_fence_wait - VK_ERROR_OUT_OF_HOST_MEMORY.")
	case vk.ErrorOutOfDeviceMemory:
		core.LogError("vk_fence_wait - VK_ERROR_OUT_OF_DEVICE_MEMORY.")
	default:
		core.LogError("vk_fence_wait - An unknown error has occurred.")
	}
	return false
}

func (vf *VulkanFence) Reset(d *VulkanDevice) error {
	if res := vk.ResetFences(d.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
		return resultError(res, "vkResetFences")
	}
	vf.IsSignaled = false
	return nil
}

func (vf *VulkanFence) destroy(d *VulkanDevice) {
	if vf.Handle != nil {
		vk.DestroyFence(d.LogicalDevice, vf.Handle, d.context.Allocator)
		vf.Handle = nil
	}
	vf.IsSignaled = false
}

// syncPool recycles fences and semaphores between frames. Only unsignaled
// objects are put back.
type syncPool struct {
	device     *VulkanDevice
	fences     []*VulkanFence
	semaphores []vk.Semaphore
}

func newSyncPool(d *VulkanDevice) *syncPool {
	return &syncPool{device: d}
}

func (p *syncPool) fence() (*VulkanFence, error) {
	var out *VulkanFence
	err := lockPool.SafeCall(SynchronizationManagement, func() error {
		if n := len(p.fences); n > 0 {
			out = p.fences[n-1]
			p.fences = p.fences[:n-1]
			return nil
		}
		f, err := newFence(p.device)
		out = f
		return err
	})
	return out, err
}

func (p *syncPool) putFence(f *VulkanFence) {
	_ = lockPool.SafeCall(SynchronizationManagement, func() error {
		if err := f.Reset(p.device); err != nil {
			core.LogWarn("dropping fence: %s", err)
			f.destroy(p.device)
			return nil
		}
		p.fences = append(p.fences, f)
		return nil
	})
}

func (p *syncPool) semaphore() (vk.Semaphore, error) {
	var out vk.Semaphore
	err := lockPool.SafeCall(SynchronizationManagement, func() error {
		if n := len(p.semaphores); n > 0 {
			out = p.semaphores[n-1]
			p.semaphores = p.semaphores[:n-1]
			return nil
		}
		createInfo := vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}
		return resultError(vk.CreateSemaphore(p.device.LogicalDevice, &createInfo, p.device.context.Allocator, &out), "vkCreateSemaphore")
	})
	return out, err
}

func (p *syncPool) putSemaphore(s vk.Semaphore) {
	_ = lockPool.SafeCall(SynchronizationManagement, func() error {
		p.semaphores = append(p.semaphores, s)
		return nil
	})
}

// dropSemaphore destroys a semaphore that may still be signaled.
func (p *syncPool) dropSemaphore(s vk.Semaphore) {
	vk.DestroySemaphore(p.device.LogicalDevice, s, p.device.context.Allocator)
}

func (p *syncPool) destroy() {
	_ = lockPool.SafeCall(SynchronizationManagement, func() error {
		for _, f := range p.fences {
			f.destroy(p.device)
		}
		for _, s := range p.semaphores {
			vk.DestroySemaphore(p.device.LogicalDevice, s, p.device.context.Allocator)
		}
		p.fences = nil
		p.semaphores = nil
		return nil
	})
}
