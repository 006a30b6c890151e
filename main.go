/*
Host binary: opens the configured windows and presents the testbed scene in
every one of them until the last window is closed.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/polyengine/engine"
	"github.com/spaghettifunk/polyengine/engine/assets"
	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/platform"
	"github.com/spaghettifunk/polyengine/engine/renderer"
	"github.com/spaghettifunk/polyengine/engine/renderer/vulkan"
	"github.com/spaghettifunk/polyengine/testbed"
)

func main() {
	configPath := flag.String("config", "engine.toml", "path to the engine configuration")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}
	applyLogLevel(cfg)

	// capture sigterm and sigint to stop the loop
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := core.WatchConfig(ctx, *configPath, applyLogLevel); err != nil {
			core.LogWarn("configuration watcher stopped: %s", err)
		}
	}()

	events := core.NewEventQueue()
	p := platform.New(events)
	if err := p.Startup(); err != nil {
		core.LogFatal("failed to start the platform layer: %s", err)
	}

	extensions, err := p.RequiredInstanceExtensions()
	if err != nil {
		p.Shutdown()
		core.LogFatal("%s", core.NewFatalError(core.StageDeviceCreation, err))
	}
	vkContext, err := vulkan.NewContext(vulkan.ContextConfig{
		ApplicationName: cfg.Application.Name,
		Extensions:      extensions,
		Validation:      cfg.Renderer.Validation,
	})
	if err != nil {
		p.Shutdown()
		core.LogFatal("%s", core.NewFatalError(core.StageDeviceCreation, err))
	}
	device, err := vulkan.NewDevice(vkContext)
	if err != nil {
		vkContext.Destroy()
		p.Shutdown()
		core.LogFatal("%s", core.NewFatalError(core.StageDeviceCreation, err))
	}

	shaders, err := assets.LoadShaders(cfg.Renderer.ShaderDir)
	if err != nil {
		device.Destroy()
		p.Shutdown()
		core.LogFatal("failed to load shaders: %s", err)
	}
	r, err := renderer.New(device, shaders, renderer.OptionsFromConfig(cfg.Renderer))
	if err != nil {
		device.Destroy()
		p.Shutdown()
		core.LogFatal("%s", core.NewFatalError(core.StageDeviceCreation, err))
	}

	tb := testbed.NewTestGame()
	e, err := engine.New(engine.Options{
		Config:    &cfg.Application,
		Game:      tb.Game,
		Events:    events,
		Windows:   p,
		Presenter: r,
		Surfaces: func(w *platform.Window) renderer.SurfaceFactory {
			return device.SurfaceFor(w.Handle())
		},
	})
	if err != nil {
		_ = r.Shutdown()
		p.Shutdown()
		core.LogFatal("%s", err)
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("failed to initialize the engine: %s", err)
	}

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err)
	}
	if runErr != nil {
		var fatal *core.FatalError
		if errors.As(runErr, &fatal) {
			core.LogFatal("renderer failed during %s: %s", fatal.Stage, fatal.Err)
		}
		core.LogFatal("engine stopped: %s", runErr)
	}
}

func applyLogLevel(cfg *core.Config) {
	level, err := core.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		core.LogWarn("unknown log level `%s`, keeping the current one", cfg.Log.Level)
		return
	}
	core.SetLogLevel(level)
}
