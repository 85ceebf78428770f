package engine

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spaghettifunk/terra/engine/assets"
	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/systems"
)

func newTestEngine(t *testing.T, g *Game) *Engine {
	t.Helper()
	core.SetLogOutput(io.Discard)
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = &ApplicationConfig{Name: "test"}
	}
	g.ApplicationConfig.Registerer = prometheus.NewRegistry()
	e, err := New(g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestNewRequiresAGame(t *testing.T) {
	if _, err := New(nil); !core.IsPrecondition(err) {
		t.Errorf("expected a precondition error, got %v", err)
	}
	if _, err := New(&Game{}); !core.IsPrecondition(err) {
		t.Errorf("expected a precondition error without an application config, got %v", err)
	}
}

func TestStagesAreEnforced(t *testing.T) {
	e := newTestEngine(t, &Game{})
	if e.Stage() != EngineStageUninitialized {
		t.Fatalf("unexpected stage %s", e.Stage())
	}
	if err := e.Run(context.Background(), 1); !errors.Is(err, ErrWrongStage) {
		t.Errorf("expected ErrWrongStage before Initialize, got %v", err)
	}
	if _, err := e.Frame(context.Background()); !errors.Is(err, ErrWrongStage) {
		t.Errorf("expected ErrWrongStage for a frame before Initialize, got %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := e.Initialize(); !errors.Is(err, ErrWrongStage) {
		t.Errorf("expected ErrWrongStage for a second Initialize, got %v", err)
	}
	if e.Stage() != EngineStageInitialized || e.Model() == nil || e.Model().Globe != e.SystemManager().Globe() {
		t.Errorf("expected an initialized engine rendering the system globe")
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if e.Stage() != EngineStageShuttingDown {
		t.Errorf("unexpected stage %s", e.Stage())
	}
}

func TestQuitEventStopsTheLoop(t *testing.T) {
	var (
		e        *Engine
		updates  int
		rendered int
	)
	g := &Game{
		FnUpdate: func(deltaTime float64) error {
			updates++
			if updates == 2 {
				e.Events().Fire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
			}
			return nil
		},
		FnRender: func(result *systems.FrameResult, deltaTime float64) error {
			rendered++
			return nil
		},
	}
	e = newTestEngine(t, g)
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := e.Run(context.Background(), 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The frame that fired the event still completes.
	if updates != 2 || rendered != 2 || e.FrameCount() != 2 {
		t.Errorf("updates=%d rendered=%d frames=%d", updates, rendered, e.FrameCount())
	}
	if e.LastFrame() == nil || e.Stage() != EngineStageInitialized {
		t.Errorf("expected a last frame and the engine back to initialized")
	}
	_ = e.Shutdown()
}

func TestRunHonoursTheContext(t *testing.T) {
	e := newTestEngine(t, &Game{})
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if e.FrameCount() != 0 {
		t.Errorf("expected no frame, got %d", e.FrameCount())
	}
	_ = e.Shutdown()
}

func TestGameErrorsStopTheLoop(t *testing.T) {
	boom := errors.New("boom")
	e := newTestEngine(t, &Game{FnUpdate: func(float64) error { return boom }})
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := e.Run(context.Background(), 5); !errors.Is(err, boom) {
		t.Errorf("expected the update error, got %v", err)
	}

	failing := newTestEngine(t, &Game{FnBoot: func() error { return boom }})
	if err := failing.Initialize(); !errors.Is(err, boom) {
		t.Errorf("expected the boot error, got %v", err)
	}
	_ = e.Shutdown()
	_ = failing.Shutdown()
}

func TestApplyConfig(t *testing.T) {
	var resizedTo [2]uint32
	e := newTestEngine(t, &Game{FnOnResize: func(w, h uint32) error {
		resizedTo = [2]uint32{w, h}
		return nil
	}})
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	before := e.SystemManager().Globe()

	if err := e.ApplyConfig(nil); !core.IsPrecondition(err) {
		t.Errorf("expected a precondition error, got %v", err)
	}
	bad := assets.DefaultConfig()
	bad.Scene.Width = -1
	if err := e.ApplyConfig(bad); !errors.Is(err, assets.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	var reloaded int
	e.Events().Register(core.EVENT_CODE_CONFIG_RELOADED, nil, func(core.SystemEventCode, interface{}, interface{}, core.EventContext) bool {
		reloaded++
		return false
	})

	// Same globe, other scene settings.
	cfg := assets.DefaultConfig()
	cfg.Scene.Width, cfg.Scene.Height = 40, 30
	cfg.Scene.DeepPick = true
	cfg.Scene.Pick = []int{4, 5}
	cfg.View.Heading = 45
	if err := e.ApplyConfig(cfg); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}
	if e.SystemManager().Globe() != before {
		t.Errorf("expected the globe to be kept")
	}
	if resizedTo != [2]uint32{40, 30} || reloaded != 1 {
		t.Errorf("resized to %v, %d reloads", resizedTo, reloaded)
	}
	sc := e.Scene()
	if !sc.DeepPick() || sc.PickPoint() == nil || sc.PickPoint().X != 4 || e.View().Heading() != 45 {
		t.Errorf("expected the scene and the view to follow the configuration")
	}

	// Same viewport, new globe.
	resizedTo = [2]uint32{}
	next := assets.DefaultConfig()
	next.Scene.Width, next.Scene.Height = 40, 30
	next.Globe.Type = "flat"
	if err := e.ApplyConfig(next); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}
	if e.SystemManager().Globe() == before || e.Model().Globe != e.SystemManager().Globe() || e.View().Globe() != e.Model().Globe {
		t.Errorf("expected model and view on the new globe")
	}
	if resizedTo != [2]uint32{} {
		t.Errorf("unexpected resize to %v", resizedTo)
	}
	if e.Config() != next {
		t.Errorf("expected the applied configuration to be current")
	}
	_ = e.Shutdown()
}
