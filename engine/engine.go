package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/spaghettifunk/terra/engine/assets"
	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/renderer/components"
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
	"github.com/spaghettifunk/terra/engine/renderer/raster"
	"github.com/spaghettifunk/terra/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageBooting:
		return "booting"
	case EngineStageBootComplete:
		return "boot complete"
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

var ErrWrongStage = errors.New("engine is not in the expected stage")

// Engine drives frames of one model. Reloaded configurations are applied
// between frames only, so a frame never sees a half-updated scene.
type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	config        *assets.Config
	systemManager *systems.SystemManager
	events        *core.EventBus
	watcher       *assets.ConfigWatcher
	scene         *systems.SceneController
	rasterizer    *raster.Software
	view          *components.BasicView
	model         *metadata.Model
	clock         *core.Clock
	lastTime      float64
	frameCount    uint64
	lastFrame     *systems.FrameResult
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, core.NewPreconditionError("engine.New", core.ErrNilArgument, "game and application config")
	}
	appConfig := g.ApplicationConfig

	cfg := assets.DefaultConfig()
	if appConfig.ConfigPath != "" {
		loaded, err := assets.LoadConfig(appConfig.ConfigPath)
		if err != nil {
			core.LogError("%v", err)
			return nil, err
		}
		cfg = loaded
	}
	level := cfg.Log.Level
	if appConfig.LogLevel != "" {
		level = appConfig.LogLevel
	}
	core.SetLogLevel(level)

	smc, err := cfg.SystemManagerConfig()
	if err != nil {
		core.LogError("%v", err)
		return nil, err
	}
	smc.Registerer = appConfig.Registerer
	smc.TracerProvider = appConfig.TracerProvider

	sm, err := systems.NewSystemManager(&smc)
	if err != nil {
		core.LogError("%v", err)
		return nil, err
	}
	g.SystemManager = sm

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        cfg,
		systemManager: sm,
		events:        core.NewEventBus(),
		clock:         core.NewClock(),
	}, nil
}

// Initialize boots the game, builds the scene and starts watching the
// configuration file when asked to.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("%w: initialize while %s", ErrWrongStage, e.currentStage)
	}

	e.currentStage = EngineStageBooting
	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(); err != nil {
			core.LogError("game failed to boot: %v", err)
			return err
		}
	}
	e.currentStage = EngineStageBootComplete

	e.currentStage = EngineStageInitializing
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)

	scConfig, err := e.config.SceneControllerConfig()
	if err != nil {
		return err
	}
	e.rasterizer = raster.NewSoftware(e.config.Scene.Width, e.config.Scene.Height)
	e.scene, err = systems.NewSceneController(&scConfig, e.rasterizer, e.systemManager.ResourceCache(), e.systemManager.Metrics())
	if err != nil {
		return err
	}

	e.view = e.systemManager.ViewSystem().GetDefault()
	if err := e.config.ApplyView(e.view); err != nil {
		return err
	}

	var model *metadata.Model
	if e.gameInstance.FnInitialize != nil {
		model, err = e.gameInstance.FnInitialize()
		if err != nil {
			core.LogError("game failed to initialize: %v", err)
			return err
		}
	}
	if model == nil {
		model = metadata.NewModel(nil, nil, nil)
	}
	// The model always renders the system's globe.
	model.Globe = e.systemManager.Globe()
	e.model = model

	e.scene.SetModel(e.model)
	e.scene.SetView(e.view)
	e.scene.SetPickPoint(e.config.PickPoint())

	if e.gameInstance.ApplicationConfig.WatchConfig && e.gameInstance.ApplicationConfig.ConfigPath != "" {
		e.watcher, err = assets.NewConfigWatcher(e.gameInstance.ApplicationConfig.ConfigPath, e.systemManager.TaskService())
		if err != nil {
			core.LogError("failed to watch the configuration: %v", err)
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized with a %s viewport.", e.gameInstance.ApplicationConfig.Name, e.scene.Viewport())
	return nil
}

/**
 * @brief Runs frames until ctx is done, the engine is stopped or frames
 * frames have been produced. A frames value of 0 runs until stopped.
 * @return The first precondition error a frame reported.
 */
func (e *Engine) Run(ctx context.Context, frames int) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("%w: run while %s", ErrWrongStage, e.currentStage)
	}
	e.currentStage = EngineStageRunning
	defer func() {
		if e.currentStage == EngineStageRunning {
			e.currentStage = EngineStageInitialized
		}
	}()

	e.isRunning.Store(true)
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed().Seconds()

	for produced := 0; e.isRunning.Load() && (frames <= 0 || produced < frames); produced++ {
		select {
		case <-ctx.Done():
			e.isRunning.Store(false)
			return ctx.Err()
		default:
		}
		if _, err := e.Frame(ctx); err != nil {
			e.isRunning.Store(false)
			return err
		}
	}
	e.isRunning.Store(false)
	return nil
}

// Frame applies any pending configuration, then updates the game and
// repaints the scene once.
func (e *Engine) Frame(ctx context.Context) (*systems.FrameResult, error) {
	if e.scene == nil {
		return nil, fmt.Errorf("%w: frame before initialize", ErrWrongStage)
	}
	e.applyPendingConfig()

	e.clock.Update()
	currentTime := e.clock.Elapsed().Seconds()
	delta := currentTime - e.lastTime
	e.lastTime = currentTime

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("game update failed: %v", err)
			return nil, err
		}
	}

	result, err := e.scene.RepaintContext(ctx)
	if err != nil {
		core.LogError("frame %d not produced: %v", e.frameCount, err)
		return nil, err
	}
	e.frameCount++
	e.lastFrame = result

	if result.Degraded() {
		e.events.Fire(core.EVENT_CODE_FRAME_DEGRADED, e, core.EventContext{Data: result.Failures})
	}
	if result.ObjectAtPickPoint != nil {
		e.events.Fire(core.EVENT_CODE_OBJECT_PICKED, e, core.EventContext{Data: result.ObjectAtPickPoint})
	}

	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(result, delta); err != nil {
			core.LogError("game render failed: %v", err)
			return nil, err
		}
	}
	return result, nil
}

// Stop ends Run after the current frame. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// applyPendingConfig takes the latest reloaded configuration, if any.
func (e *Engine) applyPendingConfig() {
	if e.watcher == nil {
		return
	}
	select {
	case err, ok := <-e.watcher.Errors():
		if ok {
			core.LogWarn("configuration reload rejected, keeping the current one: %v", err)
		}
	default:
	}
	select {
	case cfg, ok := <-e.watcher.Updates():
		if ok {
			if err := e.ApplyConfig(cfg); err != nil {
				core.LogError("failed to apply the reloaded configuration: %v", err)
			}
		}
	default:
	}
}

/**
 * @brief Applies cfg to the running scene. Must be called between frames.
 * A new globe is only built when the [globe] table changed.
 */
func (e *Engine) ApplyConfig(cfg *assets.Config) error {
	if cfg == nil {
		return core.NewPreconditionError("ApplyConfig", core.ErrNilArgument, "config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.Log.Level
	if e.gameInstance.ApplicationConfig.LogLevel != "" {
		level = e.gameInstance.ApplicationConfig.LogLevel
	}
	core.SetLogLevel(level)

	spec, err := cfg.GlobeSpec()
	if err != nil {
		return err
	}
	current, err := e.config.GlobeSpec()
	if err != nil || spec != current {
		g, err := e.systemManager.ReplaceGlobe(spec)
		if err != nil {
			return err
		}
		e.model.Globe = g
	}

	if err := cfg.ApplyView(e.view); err != nil {
		return err
	}

	scConfig, err := cfg.SceneControllerConfig()
	if err != nil {
		return err
	}
	resized := scConfig.Viewport != e.scene.Viewport()
	e.scene.SetViewport(scConfig.Viewport)
	e.scene.SetVerticalExaggeration(scConfig.VerticalExaggeration)
	e.scene.SetDeepPick(scConfig.DeepPick)
	e.scene.SetClearColor(scConfig.ClearColor)
	e.scene.SetPickPoint(cfg.PickPoint())

	e.config = cfg
	if resized {
		size := image.Point{X: scConfig.Viewport.Width, Y: scConfig.Viewport.Height}
		e.events.Fire(core.EVENT_CODE_RESIZED, e, core.EventContext{Data: size})
		if e.gameInstance.FnOnResize != nil {
			if err := e.gameInstance.FnOnResize(uint32(size.X), uint32(size.Y)); err != nil {
				return err
			}
		}
	}
	e.events.Fire(core.EVENT_CODE_CONFIG_RELOADED, e, core.EventContext{Data: cfg})
	core.LogInfo("Configuration applied.")
	return nil
}

// Shutdown stops watching the configuration and releases the systems.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.Stop()
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	errs = append(errs, e.events.Shutdown())
	errs = append(errs, e.systemManager.Shutdown())
	core.LogInfo("%s shut down after %d frames.", e.gameInstance.ApplicationConfig.Name, e.frameCount)
	return errors.Join(errs...)
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, stopping.")
		e.Stop()
		return true
	}
	return false
}

func (e *Engine) Stage() Stage { return e.currentStage }

func (e *Engine) Config() *assets.Config { return e.config }

// Events is the engine's event bus. Games may fire EVENT_CODE_APPLICATION_QUIT
// on it to stop the loop.
func (e *Engine) Events() *core.EventBus { return e.events }

func (e *Engine) SystemManager() *systems.SystemManager { return e.systemManager }

func (e *Engine) Scene() *systems.SceneController { return e.scene }

func (e *Engine) Rasterizer() *raster.Software { return e.rasterizer }

func (e *Engine) View() *components.BasicView { return e.view }

func (e *Engine) Model() *metadata.Model { return e.model }

// LastFrame is the most recent frame produced, nil before the first one.
func (e *Engine) LastFrame() *systems.FrameResult { return e.lastFrame }

func (e *Engine) FrameCount() uint64 { return e.frameCount }
