package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/polyengine/engine/math"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

// fakeDevice is an in-memory Device. Every signal it hands out is tracked so
// tests can complete GPU work on demand and check that nothing leaks.

type fakeSignal struct {
	name     string
	ready    bool
	err      error
	releases int

	// what a submission owns
	owned Signal
	cb    *fakeCommandBuffer
}

func (s *fakeSignal) Ready() (bool, error) { return s.ready, s.err }

func (s *fakeSignal) Release() {
	s.releases++
	if s.owned != nil {
		s.owned.Release()
		s.owned = nil
	}
	if s.cb != nil {
		s.cb.released++
		s.cb = nil
	}
}

type scriptedResult struct {
	suboptimal bool
	err        error
}

type fakeSurface struct {
	device    *fakeDevice
	extent    metadata.Extent
	destroyed bool

	acquireScript []scriptedResult
	presentScript []scriptedResult
}

func (s *fakeSurface) Extent() metadata.Extent { return s.extent }

func (s *fakeSurface) Destroy() {
	s.destroyed = true
	s.device.log("surface")
}

func (s *fakeSurface) nextAcquire() scriptedResult {
	if len(s.acquireScript) == 0 {
		return scriptedResult{}
	}
	r := s.acquireScript[0]
	s.acquireScript = s.acquireScript[1:]
	return r
}

func (s *fakeSurface) nextPresent() scriptedResult {
	if len(s.presentScript) == 0 {
		return scriptedResult{}
	}
	r := s.presentScript[0]
	s.presentScript = s.presentScript[1:]
	return r
}

type fakeView struct{ device *fakeDevice }

func (v *fakeView) Destroy() {
	v.device.liveViews--
	v.device.log("view")
}

type fakeSwapchain struct {
	device    *fakeDevice
	surface   *fakeSurface
	config    metadata.SwapchainConfig
	old       Swapchain
	images    []ImageView
	next      uint32
	acquired  []uint32
	presented []uint32
	destroyed bool
}

func (sc *fakeSwapchain) Images() []ImageView { return sc.images }

func (sc *fakeSwapchain) AcquireNextImage() (uint32, bool, Signal, error) {
	r := sc.surface.nextAcquire()
	if r.err != nil {
		return 0, false, nil, r.err
	}
	idx := sc.next % uint32(len(sc.images))
	sc.next++
	sc.acquired = append(sc.acquired, idx)
	return idx, r.suboptimal, sc.device.newSignal("acquire"), nil
}

func (sc *fakeSwapchain) Destroy() {
	sc.destroyed = true
	sc.device.log("swapchain")
}

type fakeFramebuffer struct {
	device *fakeDevice
	pass   RenderPass
	view   ImageView
}

func (f *fakeFramebuffer) Destroy() {
	f.device.liveFramebuffers--
	f.device.log("framebuffer")
}

type fakeRenderPass struct {
	device *fakeDevice
	format metadata.Format
}

func (p *fakeRenderPass) Destroy() { p.device.log("renderpass") }

type fakePipeline struct{ device *fakeDevice }

func (p *fakePipeline) Destroy() { p.device.log("pipeline") }

type fakeVertexBuffer struct {
	device *fakeDevice
	count  uint32
}

func (b *fakeVertexBuffer) VertexCount() uint32 { return b.count }

func (b *fakeVertexBuffer) Destroy() {
	b.device.liveBuffers--
	b.device.log("vertexbuffer")
}

type fakeCommandBuffer struct {
	device   *fakeDevice
	ops      []string
	endErr   error
	released int
}

func (c *fakeCommandBuffer) BeginRenderPass(pass RenderPass, fb Framebuffer, extent metadata.Extent, clear metadata.Color) {
	c.ops = append(c.ops, fmt.Sprintf("begin %dx%d", extent.Width, extent.Height))
}

func (c *fakeCommandBuffer) SetViewport(extent metadata.Extent) {
	c.ops = append(c.ops, "viewport")
}

func (c *fakeCommandBuffer) BindPipeline(pipeline Pipeline) {
	c.ops = append(c.ops, "pipeline")
}

func (c *fakeCommandBuffer) BindVertexBuffer(buffer VertexBuffer) {
	c.ops = append(c.ops, "vertices")
}

func (c *fakeCommandBuffer) Draw(vertexCount, instanceCount uint32) {
	c.ops = append(c.ops, fmt.Sprintf("draw %d", vertexCount))
}

func (c *fakeCommandBuffer) EndRenderPass() {
	c.ops = append(c.ops, "end")
}

func (c *fakeCommandBuffer) End() error { return c.endErr }

func (c *fakeCommandBuffer) Release() { c.released++ }

type fakeQueue struct{ device *fakeDevice }

func (q *fakeQueue) Submit(cb CommandBuffer, wait Signal) (Signal, error) {
	d := q.device
	if len(d.submitScript) > 0 {
		err := d.submitScript[0]
		d.submitScript = d.submitScript[1:]
		if err != nil {
			return nil, err
		}
	}
	fcb := cb.(*fakeCommandBuffer)
	d.submitted = append(d.submitted, fcb)
	s := d.newSignal("submit")
	s.owned = wait
	s.cb = fcb
	return s, nil
}

func (q *fakeQueue) Present(swapchain Swapchain, index uint32, wait Signal) (bool, error) {
	sc := swapchain.(*fakeSwapchain)
	r := sc.surface.nextPresent()
	if r.err != nil {
		return false, r.err
	}
	sc.presented = append(sc.presented, index)
	return r.suboptimal, nil
}

type fakeDevice struct {
	caps         metadata.SurfaceCapabilities
	capsErr      error
	swapchainErr error
	waitIdleErr  error
	// signals complete as soon as they are created
	autoComplete bool
	submitScript []error

	signals    []*fakeSignal
	swapchains []*fakeSwapchain
	surfaces   []*fakeSurface
	submitted  []*fakeCommandBuffer
	allocated  []*fakeCommandBuffer
	events     []string

	liveViews        int
	liveFramebuffers int
	liveBuffers      int
	waitIdleCalls    int
	destroyed        bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		caps: metadata.SurfaceCapabilities{
			MinImageCount:    2,
			MaxImageCount:    3,
			CurrentExtent:    metadata.Extent{Width: metadata.UNDEFINED_EXTENT, Height: metadata.UNDEFINED_EXTENT},
			MinImageExtent:   metadata.Extent{Width: 1, Height: 1},
			MaxImageExtent:   metadata.Extent{Width: 4096, Height: 4096},
			CurrentTransform: metadata.SurfaceTransformIdentity,
			SupportedUsage:   metadata.ImageUsageColorAttachment,
			SupportedFormats: []metadata.SurfaceFormat{
				{Format: metadata.FormatB8G8R8A8Srgb, ColorSpace: metadata.ColorSpaceSrgbNonlinear},
				{Format: metadata.FormatB8G8R8A8Unorm, ColorSpace: metadata.ColorSpaceSrgbNonlinear},
			},
		},
		autoComplete: true,
	}
}

func (d *fakeDevice) log(event string) {
	d.events = append(d.events, event)
}

func (d *fakeDevice) newSignal(name string) *fakeSignal {
	s := &fakeSignal{name: name, ready: d.autoComplete}
	d.signals = append(d.signals, s)
	return s
}

// completeAll marks every outstanding signal as finished.
func (d *fakeDevice) completeAll() {
	for _, s := range d.signals {
		s.ready = true
	}
}

func (d *fakeDevice) factory(width, height uint32) (SurfaceFactory, *fakeSurface) {
	s := &fakeSurface{device: d, extent: metadata.Extent{Width: width, Height: height}}
	d.surfaces = append(d.surfaces, s)
	return SurfaceFactoryFunc(func() (Surface, error) { return s, nil }), s
}

func (d *fakeDevice) lastSwapchain() *fakeSwapchain {
	if len(d.swapchains) == 0 {
		return nil
	}
	return d.swapchains[len(d.swapchains)-1]
}

func (d *fakeDevice) Queue() Queue { return &fakeQueue{device: d} }

func (d *fakeDevice) SurfaceCapabilities(surface Surface) (*metadata.SurfaceCapabilities, error) {
	if d.capsErr != nil {
		return nil, d.capsErr
	}
	caps := d.caps
	return &caps, nil
}

func (d *fakeDevice) CreateSwapchain(surface Surface, config *metadata.SwapchainConfig, old Swapchain) (Swapchain, error) {
	if d.swapchainErr != nil {
		return nil, d.swapchainErr
	}
	sc := &fakeSwapchain{
		device:  d,
		surface: surface.(*fakeSurface),
		config:  *config,
		old:     old,
	}
	for i := uint32(0); i < config.MinImageCount; i++ {
		sc.images = append(sc.images, &fakeView{device: d})
		d.liveViews++
	}
	d.swapchains = append(d.swapchains, sc)
	return sc, nil
}

func (d *fakeDevice) CreateRenderPass(format metadata.Format) (RenderPass, error) {
	return &fakeRenderPass{device: d, format: format}, nil
}

func (d *fakeDevice) CreateFramebuffer(pass RenderPass, view ImageView, extent metadata.Extent) (Framebuffer, error) {
	d.liveFramebuffers++
	return &fakeFramebuffer{device: d, pass: pass, view: view}, nil
}

func (d *fakeDevice) CreateGraphicsPipeline(pass RenderPass, shaders *metadata.ShaderSource) (Pipeline, error) {
	if shaders == nil {
		return nil, errors.New("no shaders")
	}
	return &fakePipeline{device: d}, nil
}

func (d *fakeDevice) CreateVertexBuffer(vertices []math.Vec3) (VertexBuffer, error) {
	d.liveBuffers++
	return &fakeVertexBuffer{device: d, count: uint32(len(vertices))}, nil
}

func (d *fakeDevice) AllocateCommandBuffer() (CommandBuffer, error) {
	cb := &fakeCommandBuffer{device: d}
	d.allocated = append(d.allocated, cb)
	return cb, nil
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdleCalls++
	d.completeAll()
	return d.waitIdleErr
}

func (d *fakeDevice) Destroy() {
	d.destroyed = true
	d.log("device")
}

var testShaders = &metadata.ShaderSource{Vertex: []byte{0x03, 0x02, 0x23, 0x07}, Fragment: []byte{0x03, 0x02, 0x23, 0x07}}

func newTestRenderer(d *fakeDevice) *Renderer {
	r, err := New(d, testShaders, DefaultOptions())
	if err != nil {
		panic(err)
	}
	return r
}
