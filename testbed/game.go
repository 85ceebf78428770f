package testbed

import (
	"github.com/spaghettifunk/terra/engine"
	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/globe"
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
	"github.com/spaghettifunk/terra/engine/systems"
)

// PlacemarkLayerName is the name of the demo placemark layer.
const PlacemarkLayerName = "cities"

type TestGame struct {
	*engine.Game
}

type gameState struct {
	model      *metadata.Model
	placemarks *PlacemarkLayer
	grid       *GridTessellator

	frames         uint64
	degradedFrames uint64
	lastPicked     *Placemark
}

var cities = []struct {
	name          string
	lat, lon, elv float64
}{
	{"Null Island", 0, 0, 0},
	{"Amsterdam", 52.37, 4.89, 0},
	{"Nairobi", -1.29, 36.82, 1795},
	{"Quito", -0.18, -78.47, 2850},
	{"Reykjavik", 64.15, -21.94, 0},
	{"Singapore", 1.35, 103.82, 0},
	{"Sydney", -33.87, 151.21, 0},
	{"Honolulu", 21.31, -157.86, 0},
}

// NewTestGame returns the demo: a grid covered globe with a few cities.
func NewTestGame(appConfig *engine.ApplicationConfig) *TestGame {
	if appConfig == nil {
		appConfig = &engine.ApplicationConfig{Name: "Terra Testbed"}
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: appConfig,
			State:             &gameState{},
		},
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Boot() error {
	core.LogInfo("booting testbed...")
	return nil
}

func (g *TestGame) Initialize() (*metadata.Model, error) {
	state := g.state()

	var cache *systems.MemoryCache
	if g.SystemManager != nil {
		cache = g.SystemManager.ResourceCache()
	}
	grid, err := NewGridTessellator(10, cache)
	if err != nil {
		return nil, err
	}

	palette := Palette(len(cities))
	layer := NewPlacemarkLayer(PlacemarkLayerName)
	for i, c := range cities {
		layer.Add(&Placemark{
			Name:     c.name,
			Position: globe.PositionFromDegrees(c.lat, c.lon, c.elv),
			Size:     8,
			Color:    palette[i],
		})
	}

	state.grid = grid
	state.placemarks = layer
	state.model = metadata.NewModel(nil, grid, metadata.NewLayerList(layer))
	return state.model, nil
}

func (g *TestGame) Update(deltaTime float64) error {
	return nil
}

func (g *TestGame) Render(result *systems.FrameResult, deltaTime float64) error {
	state := g.state()
	state.frames++
	if result.Degraded() {
		state.degradedFrames++
		for _, f := range result.Failures {
			core.LogWarn("frame %d: %s", state.frames, f)
		}
	}

	var picked *Placemark
	if po := result.ObjectAtPickPoint; po != nil {
		picked, _ = po.Object.(*Placemark)
	}
	if picked != state.lastPicked {
		if picked != nil {
			core.LogInfo("Picked %s at %s.", picked.Name, picked.Position)
		} else if state.lastPicked != nil {
			core.LogInfo("Nothing picked.")
		}
		state.lastPicked = picked
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	core.LogDebug("testbed resized to %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	core.LogInfo("testbed rendered %d frames, %d degraded.", state.frames, state.degradedFrames)
	return nil
}

// LastPicked is the placemark under the pick point in the last frame.
func (g *TestGame) LastPicked() *Placemark { return g.state().lastPicked }

// Frames is the number of frames the game saw.
func (g *TestGame) Frames() uint64 { return g.state().frames }

func (g *TestGame) Placemarks() *PlacemarkLayer { return g.state().placemarks }
