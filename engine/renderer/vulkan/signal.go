package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/polyengine/engine/renderer"
)

// acquireSignal completes when the presentation engine hands over an image.
// Its semaphore can be waited on by exactly one submission.
type acquireSignal struct {
	device    *VulkanDevice
	semaphore vk.Semaphore
	fence     *VulkanFence
	consumed  bool
	released  bool
}

var _ renderer.Signal = (*acquireSignal)(nil)

func (s *acquireSignal) Ready() (bool, error) {
	return s.fence.Status(s.device)
}

func (s *acquireSignal) Release() {
	if s.released {
		return
	}
	s.released = true
	s.device.sync.putFence(s.fence)
	// A semaphore nobody waited on stays signaled and cannot be reused.
	if s.consumed {
		s.device.sync.putSemaphore(s.semaphore)
	} else {
		s.device.sync.dropSemaphore(s.semaphore)
	}
}

// submitSignal completes when a queue submission finished executing. It owns
// the command buffer and the signals the submission waited on.
type submitSignal struct {
	device    *VulkanDevice
	fence     *VulkanFence
	semaphore vk.Semaphore
	cb        *VulkanCommandBuffer
	wait      renderer.Signal
	presented bool
	released  bool
}

var _ renderer.Signal = (*submitSignal)(nil)

func (s *submitSignal) Ready() (bool, error) {
	return s.fence.Status(s.device)
}

func (s *submitSignal) Release() {
	if s.released {
		return
	}
	s.released = true
	if s.wait != nil {
		s.wait.Release()
		s.wait = nil
	}
	s.cb.Release()
	s.device.sync.putFence(s.fence)
	if s.presented {
		s.device.sync.putSemaphore(s.semaphore)
	} else {
		s.device.sync.dropSemaphore(s.semaphore)
	}
}
