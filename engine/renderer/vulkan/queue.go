package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/polyengine/engine/renderer"
)

// VulkanQueue is the graphics queue, also used for presentation.
type VulkanQueue struct {
	device *VulkanDevice
	handle vk.Queue
	family uint32
}

var _ renderer.Queue = (*VulkanQueue)(nil)

func (q *VulkanQueue) Submit(cb renderer.CommandBuffer, wait renderer.Signal) (renderer.Signal, error) {
	vcb, ok := cb.(*VulkanCommandBuffer)
	if !ok {
		return nil, errors.Errorf("unexpected command buffer type %T", cb)
	}

	// Only image acquisitions are waited on. Earlier submissions on the same
	// queue are already ordered before this one.
	var acquires []*acquireSignal
	for _, s := range renderer.Flatten(wait) {
		if a, ok := s.(*acquireSignal); ok && !a.consumed {
			acquires = append(acquires, a)
		}
	}
	waitSemaphores := make([]vk.Semaphore, len(acquires))
	waitStages := make([]vk.PipelineStageFlags, len(acquires))
	for i, a := range acquires {
		waitSemaphores[i] = a.semaphore
		waitStages[i] = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	}

	fence, err := q.device.sync.fence()
	if err != nil {
		return nil, err
	}
	signal, err := q.device.sync.semaphore()
	if err != nil {
		q.device.sync.putFence(fence)
		return nil, err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(waitSemaphores)),
		PWaitSemaphores:      waitSemaphores,
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{vcb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signal},
	}
	if err := lockPool.SafeQueueCall(q.family, func() error {
		return resultError(vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{submitInfo}, fence.Handle), "vkQueueSubmit")
	}); err != nil {
		q.device.sync.putFence(fence)
		q.device.sync.putSemaphore(signal)
		return nil, err
	}

	for _, a := range acquires {
		a.consumed = true
	}
	vcb.UpdateSubmitted()
	return &submitSignal{
		device:    q.device,
		fence:     fence,
		semaphore: signal,
		cb:        vcb,
		wait:      wait,
	}, nil
}

func (q *VulkanQueue) Present(swapchain renderer.Swapchain, index uint32, wait renderer.Signal) (bool, error) {
	sc, ok := swapchain.(*VulkanSwapchain)
	if !ok {
		return false, errors.Errorf("unexpected swapchain type %T", swapchain)
	}

	var waitSemaphores []vk.Semaphore
	var submissions []*submitSignal
	for _, s := range renderer.Flatten(wait) {
		if sub, ok := s.(*submitSignal); ok && !sub.presented {
			waitSemaphores = append(waitSemaphores, sub.semaphore)
			submissions = append(submissions, sub)
		}
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(waitSemaphores)),
		PWaitSemaphores:    waitSemaphores,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.Handle},
		PImageIndices:      []uint32{index},
	}

	var res vk.Result
	_ = lockPool.SafeQueueCall(q.family, func() error {
		res = vk.QueuePresent(q.handle, &presentInfo)
		return nil
	})
	// Out-of-date and suboptimal presents still consume the wait semaphores.
	if res == vk.Success || res == vk.Suboptimal || res == vk.ErrorOutOfDate {
		for _, sub := range submissions {
			sub.presented = true
		}
	}
	return res == vk.Suboptimal, resultError(res, "vkQueuePresentKHR")
}
