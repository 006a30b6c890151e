package testbed

import (
	"github.com/spaghettifunk/polyengine/engine"
	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/math"
	"github.com/spaghettifunk/polyengine/engine/renderer"
)

// How often, in seconds, the frame metrics are logged.
const metricsInterval = 5.0

type TestGame struct {
	*engine.Game
}

type gameState struct {
	engine   *engine.Engine
	box      renderer.GeometryID
	sinceLog float64
}

func NewTestGame() *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Name:  "PolyEngine testbed",
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnShutdown = tg.Shutdown

	return tg
}

// Initialize uploads the startup scene: a unit box drawn in every window.
func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)
	state.engine = e

	id, err := e.CreateGeometry(math.GenerateBox(1.0))
	if err != nil {
		core.LogError("failed to upload the box geometry")
		return err
	}
	state.box = id
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)

	state.sinceLog += deltaTime
	if state.sinceLog < metricsInterval {
		return nil
	}
	state.sinceLog = 0

	fps, frameTime := state.engine.Metrics().Frame()
	core.LogInfo("FPS: %5.1f(%4.1fms) windows: %d", fps, frameTime, len(state.engine.Windows()))
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down %s", g.Name)
	return nil
}
