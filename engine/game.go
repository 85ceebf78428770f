package engine

import (
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
	"github.com/spaghettifunk/terra/engine/systems"
)

// Game is what an application plugs into the engine. Every callback is
// optional.
type Game struct {
	ApplicationConfig *ApplicationConfig
	// SystemManager is set by the engine before FnBoot runs.
	SystemManager *systems.SystemManager
	State         interface{}
	FnBoot        Boot
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

type Boot func() error

// Initialize builds the model the engine renders. A nil model renders the
// bare globe.
type Initialize func() (*metadata.Model, error)
type Update func(deltaTime float64) error
type Render func(result *systems.FrameResult, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
