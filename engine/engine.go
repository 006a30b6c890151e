package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/math"
	"github.com/spaghettifunk/polyengine/engine/renderer"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released every resource
	EngineStageStopped
)

// Engine is the host loop. Each step pumps the window system, applies the
// queued window events to the presenter and renders one frame into every
// open window.
type Engine struct {
	currentStage Stage
	config       *core.ApplicationConfig
	game         *Game
	events       *core.EventQueue
	windows      WindowSystem
	presenter    Presenter
	surfaces     SurfaceProvider

	handles map[core.WindowID]core.WindowHandle

	isRunning bool
	clock     *core.Clock
	metrics   *core.Metrics
	lastTime  float64
	fatal     error
}

type Options struct {
	Config    *core.ApplicationConfig
	Game      *Game
	Events    *core.EventQueue
	Windows   WindowSystem
	Presenter Presenter
	Surfaces  SurfaceProvider
}

func New(opts Options) (*Engine, error) {
	if opts.Windows == nil || opts.Presenter == nil || opts.Surfaces == nil || opts.Events == nil {
		return nil, errors.New("engine needs a window system, a presenter, a surface provider and an event queue")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &core.DefaultConfig().Application
	}
	game := opts.Game
	if game == nil {
		game = &Game{}
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		game:         game,
		events:       opts.Events,
		windows:      opts.Windows,
		presenter:    opts.Presenter,
		surfaces:     opts.Surfaces,
		handles:      make(map[core.WindowID]core.WindowHandle),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
	}, nil
}

// Initialize opens the configured windows and lets the game set up its
// scene. The windows become renderable on the first Step.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	for _, name := range e.config.Windows {
		if err := e.OpenWindow(name); err != nil {
			return err
		}
	}
	if e.game.FnInitialize != nil {
		if err := e.game.FnInitialize(e); err != nil {
			return fmt.Errorf("game initialization failed: %w", err)
		}
	}

	e.isRunning = true
	e.currentStage = EngineStageInitialized
	return nil
}

// OpenWindow opens a native window with the configured start size.
func (e *Engine) OpenWindow(name string) error {
	if _, err := e.windows.OpenWindow(name, e.config.StartWidth, e.config.StartHeight); err != nil {
		return err
	}
	return nil
}

func (e *Engine) CreateGeometry(vertices []math.Vec3) (renderer.GeometryID, error) {
	return e.presenter.CreateGeometry(vertices)
}

// Step runs one iteration of the host loop. It only returns fatal errors.
func (e *Engine) Step() error {
	if !e.isRunning {
		return nil
	}

	e.windows.PumpMessages()
	e.events.Drain(e.onWindowEvent)
	if e.fatal != nil {
		e.isRunning = false
		return e.fatal
	}
	if len(e.handles) == 0 {
		core.LogInfo("no window left open, stopping.")
		e.isRunning = false
		return nil
	}

	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime
	e.lastTime = currentTime

	if e.game.FnUpdate != nil {
		if err := e.game.FnUpdate(delta); err != nil {
			core.LogError("game update failed: %s", err)
		}
	}

	if err := e.presenter.EndFrame(); err != nil {
		e.isRunning = false
		return err
	}

	e.clock.Update()
	e.metrics.Update(e.clock.Elapsed() - currentTime)
	return nil
}

// Run steps the engine until the last window closes, ctx is cancelled or a
// fatal error occurs.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.lastTime = 0

	for e.isRunning {
		if ctx.Err() != nil {
			core.LogInfo("shutdown requested, stopping.")
			e.isRunning = false
			break
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	e.clock.Stop()
	return nil
}

func (e *Engine) onWindowEvent(ev core.WindowEvent) {
	if e.fatal != nil {
		return
	}
	switch ev.Code {
	case core.EVENT_CODE_WINDOW_CREATED:
		e.onWindowCreated(ev.Window)
	case core.EVENT_CODE_WINDOW_RESIZED:
		if h, ok := e.handles[ev.Window]; ok {
			core.LogDebug("Window resize: %d, %d", ev.Width, ev.Height)
			e.presenter.NotifyResized(h, metadata.Extent{Width: ev.Width, Height: ev.Height})
		}
	case core.EVENT_CODE_WINDOW_CLOSE_REQUESTED:
		e.onWindowCloseRequested(ev.Window)
	case core.EVENT_CODE_WINDOW_REDRAW:
		// Every open window is redrawn each step.
	}
}

func (e *Engine) onWindowCreated(id core.WindowID) {
	w, ok := e.windows.Window(id)
	if !ok {
		return
	}
	h, err := e.presenter.OpenWindow(e.surfaces(w), w.Name)
	if err != nil {
		if core.IsFatal(err) {
			e.fatal = err
			return
		}
		core.LogError("failed to attach renderer to window `%s`: %s", w.Name, err)
		e.windows.DestroyWindow(id)
		return
	}
	e.handles[id] = h
	core.LogInfo("window `%s` ready", w.Name)
}

func (e *Engine) onWindowCloseRequested(id core.WindowID) {
	h, ok := e.handles[id]
	if !ok {
		e.windows.DestroyWindow(id)
		return
	}
	wasLast, err := e.presenter.CloseWindow(h)
	if err != nil {
		core.LogError("failed to close window: %s", err)
	}
	delete(e.handles, id)
	e.windows.DestroyWindow(id)
	if wasLast {
		core.LogInfo("last window closed, shutting down.")
		e.isRunning = false
	}
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageStopped {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	var errs []error
	if e.game.FnShutdown != nil {
		if err := e.game.FnShutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	stats := e.presenter.Stats()
	core.LogInfo("frames presented: %d, skipped: %d, dropped: %d, swapchain rebuilds: %d",
		stats.Presented, stats.Skipped, stats.Dropped, stats.Rebuilds)

	if err := e.presenter.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	e.handles = make(map[core.WindowID]core.WindowHandle)
	e.windows.Shutdown()

	e.currentStage = EngineStageStopped
	return errors.Join(errs...)
}

func (e *Engine) IsRunning() bool {
	return e.isRunning
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// Windows returns the renderer handle of every window the presenter draws
// into.
func (e *Engine) Windows() map[core.WindowID]core.WindowHandle {
	out := make(map[core.WindowID]core.WindowHandle, len(e.handles))
	for id, h := range e.handles {
		out[id] = h
	}
	return out
}
