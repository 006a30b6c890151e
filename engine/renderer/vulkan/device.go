package vulkan

import (
	"runtime"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/math"
	"github.com/spaghettifunk/polyengine/engine/renderer"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

const portabilitySubset = "VK_KHR_portability_subset"

// VulkanDevice implements renderer.Device on top of a single graphics queue
// that is also used for presentation.
type VulkanDevice struct {
	context *VulkanContext

	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	GraphicsQueueIndex uint32

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Memory     vk.PhysicalDeviceMemoryProperties

	queue *VulkanQueue
	sync  *syncPool
}

var _ renderer.Device = (*VulkanDevice)(nil)

// NewDevice picks the first physical device exposing a graphics queue and the
// swapchain extension. The device takes ownership of the context.
func NewDevice(context *VulkanContext) (*VulkanDevice, error) {
	d := &VulkanDevice{context: context}
	if err := d.selectPhysicalDevice(); err != nil {
		return nil, err
	}
	if err := d.createLogicalDevice(); err != nil {
		return nil, err
	}
	d.sync = newSyncPool(d)
	return d, nil
}

func (d *VulkanDevice) selectPhysicalDevice() error {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(d.context.Instance, &count, nil); res != vk.Success {
		return resultError(res, "vkEnumeratePhysicalDevices")
	}
	if count == 0 {
		return errors.New("no devices which support Vulkan were found")
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(d.context.Instance, &count, devices); res != vk.Success {
		return resultError(res, "vkEnumeratePhysicalDevices")
	}

	for _, pd := range devices {
		family, ok := graphicsQueueFamily(pd)
		if !ok || !hasDeviceExtension(pd, vk.KhrSwapchainExtensionName) {
			continue
		}

		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &properties)
		properties.Deref()
		var memory vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(pd, &memory)
		memory.Deref()

		core.LogInfo("Selected device: '%s'.", cString(properties.DeviceName[:]))
		switch properties.DeviceType {
		case vk.PhysicalDeviceTypeIntegratedGpu:
			core.LogInfo("GPU type is Integrated.")
		case vk.PhysicalDeviceTypeDiscreteGpu:
			core.LogInfo("GPU type is Discrete.")
		case vk.PhysicalDeviceTypeVirtualGpu:
			core.LogInfo("GPU type is Virtual.")
		case vk.PhysicalDeviceTypeCpu:
			core.LogInfo("GPU type is CPU.")
		default:
			core.LogInfo("GPU type is Unknown.")
		}
		core.LogInfo(
			"GPU Driver version: %d.%d.%d",
			vk.Version(properties.DriverVersion).Major(),
			vk.Version(properties.DriverVersion).Minor(),
			vk.Version(properties.DriverVersion).Patch(),
		)
		core.LogInfo(
			"Vulkan API version: %d.%d.%d",
			vk.Version(properties.ApiVersion).Major(),
			vk.Version(properties.ApiVersion).Minor(),
			vk.Version(properties.ApiVersion).Patch(),
		)

		d.PhysicalDevice = pd
		d.GraphicsQueueIndex = family
		d.Properties = properties
		d.Memory = memory
		return nil
	}
	return errors.New("no physical devices were found which meet the requirements")
}

func graphicsQueueFamily(pd vk.PhysicalDevice) (uint32, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, families)
	for i := range families {
		families[i].Deref()
		if families[i].QueueCount > 0 && families[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

func hasDeviceExtension(pd vk.PhysicalDevice, name string) bool {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil); res != vk.Success || count == 0 {
		return false
	}
	available := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(pd, "", &count, available); res != vk.Success {
		return false
	}
	for i := range available {
		available[i].Deref()
		if cString(available[i].ExtensionName[:]) == name {
			return true
		}
	}
	return false
}

func (d *VulkanDevice) createLogicalDevice() error {
	queueCreateInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: d.GraphicsQueueIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}

	extensions := []string{vk.KhrSwapchainExtensionName}
	if runtime.GOOS == "darwin" || hasDeviceExtension(d.PhysicalDevice, portabilitySubset) {
		extensions = append(extensions, portabilitySubset)
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       []vk.DeviceQueueCreateInfo{queueCreateInfo},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
	}

	if res := vk.CreateDevice(d.PhysicalDevice, &deviceCreateInfo, d.context.Allocator, &d.LogicalDevice); res != vk.Success {
		return resultError(res, "vkCreateDevice")
	}
	core.LogInfo("Logical device created.")

	var queue vk.Queue
	vk.GetDeviceQueue(d.LogicalDevice, d.GraphicsQueueIndex, 0, &queue)
	lockPool.SetQueueFamily(d.GraphicsQueueIndex)
	d.queue = &VulkanQueue{device: d, handle: queue, family: d.GraphicsQueueIndex}
	core.LogInfo("Queues obtained.")

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	}
	if res := vk.CreateCommandPool(d.LogicalDevice, &poolCreateInfo, d.context.Allocator, &d.GraphicsCommandPool); res != vk.Success {
		vk.DestroyDevice(d.LogicalDevice, d.context.Allocator)
		d.LogicalDevice = nil
		return resultError(res, "vkCreateCommandPool")
	}
	core.LogInfo("Graphics command pool created.")
	return nil
}

func (d *VulkanDevice) Queue() renderer.Queue {
	return d.queue
}

func (d *VulkanDevice) Context() *VulkanContext {
	return d.context
}

func (d *VulkanDevice) SurfaceCapabilities(surface renderer.Surface) (*metadata.SurfaceCapabilities, error) {
	s, ok := surface.(*VulkanSurface)
	if !ok {
		return nil, errors.Errorf("unexpected surface type %T", surface)
	}

	var caps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(d.PhysicalDevice, s.handle, &caps); res != vk.Success {
		return nil, resultError(res, "vkGetPhysicalDeviceSurfaceCapabilitiesKHR")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var count uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(d.PhysicalDevice, s.handle, &count, nil); res != vk.Success {
		return nil, resultError(res, "vkGetPhysicalDeviceSurfaceFormatsKHR")
	}
	formats := make([]vk.SurfaceFormat, count)
	if res := vk.GetPhysicalDeviceSurfaceFormats(d.PhysicalDevice, s.handle, &count, formats); res != vk.Success {
		return nil, resultError(res, "vkGetPhysicalDeviceSurfaceFormatsKHR")
	}

	out := &metadata.SurfaceCapabilities{
		MinImageCount:    caps.MinImageCount,
		MaxImageCount:    caps.MaxImageCount,
		CurrentExtent:    toExtent(caps.CurrentExtent),
		MinImageExtent:   toExtent(caps.MinImageExtent),
		MaxImageExtent:   toExtent(caps.MaxImageExtent),
		CurrentTransform: metadata.SurfaceTransform(caps.CurrentTransform),
		SupportedUsage:   metadata.ImageUsage(caps.SupportedUsageFlags),
		SupportedFormats: make([]metadata.SurfaceFormat, 0, count),
	}
	for i := range formats {
		formats[i].Deref()
		out.SupportedFormats = append(out.SupportedFormats, metadata.SurfaceFormat{
			Format:     metadata.Format(formats[i].Format),
			ColorSpace: metadata.ColorSpace(formats[i].ColorSpace),
		})
	}
	return out, nil
}

func (d *VulkanDevice) CreateVertexBuffer(vertices []math.Vec3) (renderer.VertexBuffer, error) {
	return newVertexBuffer(d, vertices)
}

func (d *VulkanDevice) AllocateCommandBuffer() (renderer.CommandBuffer, error) {
	return allocateCommandBuffer(d)
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that has
// all of propertyFlags, or -1.
func (d *VulkanDevice) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	for i := uint32(0); i < d.Memory.MemoryTypeCount; i++ {
		d.Memory.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(d.Memory.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}

func (d *VulkanDevice) WaitIdle() error {
	return resultError(vk.DeviceWaitIdle(d.LogicalDevice), "vkDeviceWaitIdle")
}

// Destroy releases the device and the context it was created from. All
// resources created from the device must already be destroyed.
func (d *VulkanDevice) Destroy() {
	if d.LogicalDevice != nil {
		d.sync.destroy()

		core.LogInfo("Destroying command pools...")
		vk.DestroyCommandPool(d.LogicalDevice, d.GraphicsCommandPool, d.context.Allocator)
		d.GraphicsCommandPool = nil

		core.LogInfo("Destroying logical device...")
		vk.DestroyDevice(d.LogicalDevice, d.context.Allocator)
		d.LogicalDevice = nil
	}
	d.PhysicalDevice = nil
	d.queue = nil
	d.context.Destroy()
}

func toExtent(e vk.Extent2D) metadata.Extent {
	return metadata.Extent{Width: e.Width, Height: e.Height}
}

func toExtent2D(e metadata.Extent) vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}
