package renderer

import (
	"errors"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

type SyncState uint8

const (
	// The swapchain matches the surface.
	SyncStateValid SyncState = iota
	// The swapchain must be rebuilt before the next acquire.
	SyncStateNeedsRecreate
	// A rebuild was attempted and postponed; it is retried every frame.
	SyncStateRecreatePendingRetry
)

func (s SyncState) String() string {
	switch s {
	case SyncStateValid:
		return "valid"
	case SyncStateNeedsRecreate:
		return "needs-recreate"
	case SyncStateRecreatePendingRetry:
		return "recreate-pending-retry"
	}
	return "unknown"
}

// FrameStats counts what happened to the frames of one or more windows.
type FrameStats struct {
	// Frames handed to the presentation engine.
	Presented uint64
	// Frames not rendered because the swapchain was out of date or being rebuilt.
	Skipped uint64
	// Frames recorded but lost to a failed submission or presentation.
	Dropped uint64
	// Successful swapchain rebuilds.
	Rebuilds uint64
}

func (f *FrameStats) Add(o FrameStats) {
	f.Presented += o.Presented
	f.Skipped += o.Skipped
	f.Dropped += o.Dropped
	f.Rebuilds += o.Rebuilds
}

// AcquiredImage is a swapchain image ready to be rendered to once its signal
// completes.
type AcquiredImage struct {
	Index      uint32
	Generation uint64
	Suboptimal bool
	ready      Signal
}

// FrameSynchronizer drives one window through acquire, submit and present,
// and decides when its swapchain gets rebuilt.
type FrameSynchronizer struct {
	device    Device
	swapchain *SwapchainState
	pass      RenderPass
	clear     metadata.Color

	state     SyncState
	requested metadata.Extent
	resized   bool

	// Completion of the last submitted frame. Never nil.
	previousFrameEnd Signal
	// Signals left over from failed frames, released once they complete.
	parked []Signal

	stats FrameStats
}

func NewFrameSynchronizer(device Device, swapchain *SwapchainState, pass RenderPass, clear metadata.Color) *FrameSynchronizer {
	return &FrameSynchronizer{
		device:           device,
		swapchain:        swapchain,
		pass:             pass,
		clear:            clear,
		state:            SyncStateValid,
		previousFrameEnd: Now(),
	}
}

func (f *FrameSynchronizer) State() SyncState {
	return f.state
}

func (f *FrameSynchronizer) Stats() FrameStats {
	return f.stats
}

// Pending is the completion signal of the last submitted frame.
func (f *FrameSynchronizer) Pending() Signal {
	return f.previousFrameEnd
}

// NotifyResized records the new window size and schedules a rebuild.
func (f *FrameSynchronizer) NotifyResized(extent metadata.Extent) {
	f.requested = extent
	f.resized = true
	if f.state == SyncStateValid {
		f.state = SyncStateNeedsRecreate
	}
}

// Acquire returns the next image to render to. A nil image with a nil error
// means this window skips the frame. Returned errors are fatal.
func (f *FrameSynchronizer) Acquire() (*AcquiredImage, error) {
	if err := f.reclaim(); err != nil {
		return nil, err
	}

	if f.state != SyncStateValid {
		err := f.rebuild()
		switch {
		case err == nil:
		case errors.Is(err, core.ErrFrameInFlight), errors.Is(err, core.ErrRecreateUnsupportedDimensions):
			core.LogDebug("swapchain rebuild postponed: %s", err)
			f.state = SyncStateRecreatePendingRetry
			f.stats.Skipped++
			return nil, nil
		case errors.Is(err, core.ErrUnsupportedFormat):
			return nil, core.NewFatalError(core.StageFormatNegotiation, err)
		default:
			return nil, core.NewFatalError(core.StageSwapchainRebuild, err)
		}
	}

	index, suboptimal, ready, err := f.swapchain.Handle().AcquireNextImage()
	if err != nil {
		if errors.Is(err, core.ErrOutOfDate) {
			f.state = SyncStateNeedsRecreate
			f.stats.Skipped++
			return nil, nil
		}
		return nil, core.NewFatalError(core.StageAcquire, err)
	}
	if suboptimal {
		f.state = SyncStateNeedsRecreate
	}
	return &AcquiredImage{
		Index:      index,
		Generation: f.swapchain.Generation(),
		Suboptimal: suboptimal,
		ready:      ready,
	}, nil
}

// rebuild refuses to touch the swapchain while work recorded against it may
// still be executing.
func (f *FrameSynchronizer) rebuild() error {
	if f.inFlight() {
		return core.ErrFrameInFlight
	}
	extent := f.surfaceExtent()
	if err := f.swapchain.Rebuild(extent); err != nil {
		return err
	}
	f.state = SyncStateValid
	f.resized = false
	f.stats.Rebuilds++
	return nil
}

func (f *FrameSynchronizer) surfaceExtent() metadata.Extent {
	if f.resized {
		return f.requested
	}
	return f.swapchain.surface.Extent()
}

func (f *FrameSynchronizer) inFlight() bool {
	return !IsNow(f.previousFrameEnd) || len(f.parked) > 0
}

// SubmitAndPresent records the frame for img, submits it and queues the image
// for presentation. Submission and presentation failures drop the frame and
// are never returned; returned errors are fatal.
func (f *FrameSynchronizer) SubmitAndPresent(img *AcquiredImage, pipeline Pipeline, geometry *Geometry) error {
	if err := f.reclaim(); err != nil {
		f.park(img.ready)
		return err
	}

	if img.Generation != f.swapchain.Generation() {
		core.LogWarn("image %d belongs to swapchain generation %d, current is %d", img.Index, img.Generation, f.swapchain.Generation())
		f.park(img.ready)
		f.state = SyncStateNeedsRecreate
		f.stats.Skipped++
		return nil
	}

	cb, err := f.record(img, pipeline, geometry)
	if err != nil {
		core.LogError("failed to record frame: %s", err)
		f.park(img.ready)
		f.stats.Dropped++
		return nil
	}

	wait := Join(f.previousFrameEnd, img.ready)
	queue := f.device.Queue()

	submitted, err := queue.Submit(cb, wait)
	if err != nil {
		cb.Release()
		f.park(wait)
		f.previousFrameEnd = Now()
		f.flushFailed(err)
		return nil
	}

	suboptimal, err := queue.Present(f.swapchain.Handle(), img.Index, submitted)
	if err != nil {
		f.park(submitted)
		f.previousFrameEnd = Now()
		f.flushFailed(err)
		return nil
	}
	if suboptimal {
		f.state = SyncStateNeedsRecreate
	}

	f.previousFrameEnd = submitted
	f.stats.Presented++
	return nil
}

func (f *FrameSynchronizer) record(img *AcquiredImage, pipeline Pipeline, geometry *Geometry) (CommandBuffer, error) {
	fb, err := f.swapchain.Framebuffer(img.Index)
	if err != nil {
		return nil, err
	}
	cb, err := f.device.AllocateCommandBuffer()
	if err != nil {
		return nil, err
	}

	extent := f.swapchain.Extent()
	cb.BeginRenderPass(f.pass, fb, extent, f.clear)
	cb.SetViewport(extent)
	if geometry != nil {
		cb.BindPipeline(pipeline)
		cb.BindVertexBuffer(geometry.Buffer())
		cb.Draw(geometry.VertexCount(), 1)
	}
	cb.EndRenderPass()

	if err := cb.End(); err != nil {
		cb.Release()
		return nil, err
	}
	return cb, nil
}

func (f *FrameSynchronizer) flushFailed(err error) {
	f.stats.Dropped++
	if errors.Is(err, core.ErrOutOfDate) {
		f.state = SyncStateNeedsRecreate
		return
	}
	core.LogError("failed to flush frame: %s", err)
}

// reclaim releases every retired signal that completed. It never blocks.
func (f *FrameSynchronizer) reclaim() error {
	kept := f.parked[:0]
	for _, s := range f.parked {
		ok, err := s.Ready()
		if err != nil {
			return core.NewFatalError(core.StageFrameCompletion, err)
		}
		if ok {
			s.Release()
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(f.parked); i++ {
		f.parked[i] = nil
	}
	f.parked = kept

	ok, err := f.previousFrameEnd.Ready()
	if err != nil {
		return core.NewFatalError(core.StageFrameCompletion, err)
	}
	if ok {
		f.releasePrevious()
	}
	return nil
}

func (f *FrameSynchronizer) releasePrevious() {
	f.previousFrameEnd.Release()
	f.previousFrameEnd = Now()
}

func (f *FrameSynchronizer) park(s Signal) {
	f.parked = append(f.parked, Flatten(s)...)
}

// Destroy waits for outstanding work and releases every signal. The caller
// destroys the swapchain.
func (f *FrameSynchronizer) Destroy() error {
	var err error
	if f.inFlight() {
		err = f.device.WaitIdle()
	}
	for _, s := range f.parked {
		s.Release()
	}
	f.parked = nil
	f.releasePrevious()
	return err
}
