package assets

import (
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/globe"
	"github.com/spaghettifunk/terra/engine/renderer/components"
	"github.com/spaghettifunk/terra/engine/systems"
)

const sampleConfig = `
[globe]
type = "flat"
projection = "mercator"
elevation = "constant"
elevation_value = 120.0

[view]
field_of_view = 60.0
latitude = 45.5
longitude = -122.5
altitude = 2.5e6
heading = 30.0
tilt = 10.0

[scene]
width = 320
height = 240
vertical_exaggeration = 2.0
deep_pick = true
clear_color = "#102030"
pick = [10, 20]

[systems]
task_workers = 4
cache_capacity = 1048576

[log]
level = "debug"

[telemetry]
tracing = true
exporter = "otlp"
endpoint = "collector:4317"
sample_ratio = 0.5
`

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
	spec, err := cfg.GlobeSpec()
	if err != nil {
		t.Fatalf("GlobeSpec: %v", err)
	}
	if spec != systems.DefaultGlobeSpec() {
		t.Errorf("default globe %+v differs from the systems default %+v", spec, systems.DefaultGlobeSpec())
	}
	if cfg.PickPoint() != nil {
		t.Errorf("expected no pick point by default")
	}
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	spec, err := cfg.GlobeSpec()
	if err != nil {
		t.Fatalf("GlobeSpec: %v", err)
	}
	if spec.Kind != globe.KindFlat || spec.Projection != globe.ProjectionMercator || spec.Elevation != globe.ElevationConstant {
		t.Errorf("unexpected globe spec %+v", spec)
	}
	if spec.EquatorialRadius != globe.WGS84EquatorialRadius {
		t.Errorf("expected the default radius to survive, got %v", spec.EquatorialRadius)
	}

	sc, err := cfg.SceneControllerConfig()
	if err != nil {
		t.Fatalf("SceneControllerConfig: %v", err)
	}
	if sc.Viewport.Width != 320 || sc.Viewport.Height != 240 || !sc.DeepPick || sc.VerticalExaggeration != 2 {
		t.Errorf("unexpected scene config %+v", sc)
	}
	if sc.ClearColor != (color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}) {
		t.Errorf("unexpected clear colour %v", sc.ClearColor)
	}
	if p := cfg.PickPoint(); p == nil || p.X != 10 || p.Y != 20 {
		t.Errorf("unexpected pick point %v", p)
	}

	smc, err := cfg.SystemManagerConfig()
	if err != nil {
		t.Fatalf("SystemManagerConfig: %v", err)
	}
	if smc.Tasks.Workers != 4 || smc.Tasks.QueueSize != 16 || smc.Cache.Capacity != 1<<20 || smc.Views.MaxViewCount != 16 {
		t.Errorf("unexpected systems config %+v", smc)
	}

	tc := cfg.TracingConfig()
	if !tc.Enabled || tc.Exporter != "otlp" || tc.Endpoint != "collector:4317" || tc.SampleRatio != 0.5 {
		t.Errorf("unexpected tracing config %+v", tc)
	}

	view := components.NewBasicView(globe.NewEarth())
	if err := cfg.ApplyView(view); err != nil {
		t.Fatalf("ApplyView: %v", err)
	}
	eye := view.EyePosition()
	if eye.Latitude != 45.5 || eye.Longitude != -122.5 || eye.Elevation != 2.5e6 {
		t.Errorf("unexpected eye position %v", eye)
	}
	if view.Heading() != 30 || view.Tilt() != 10 || view.FieldOfView() != 60 {
		t.Errorf("unexpected orientation heading=%v tilt=%v fov=%v", view.Heading(), view.Tilt(), view.FieldOfView())
	}
}

func TestParseConfigRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "[globe]\nradius = 1.0\n",
		"syntax":         "[globe\n",
		"globe type":     "[globe]\ntype = \"torus\"\n",
		"projection":     "[globe]\nprojection = \"polar\"\n",
		"field of view":  "[view]\nfield_of_view = 180.0\n",
		"tilt":           "[view]\ntilt = 95.0\n",
		"viewport":       "[scene]\nwidth = -1\n",
		"clear colour":   "[scene]\nclear_color = \"red\"\n",
		"pick":           "[scene]\npick = [1]\n",
		"workers":        "[systems]\ntask_workers = 0\n",
		"cache":          "[systems]\ncache_capacity = 0\n",
		"log level":      "[log]\nlevel = \"loud\"\n",
		"exaggeration":   "[scene]\nvertical_exaggeration = 0.0\n",
		"latitude range": "[view]\nlatitude = 91.0\n",
		"exporter":       "[telemetry]\nexporter = \"jaeger\"\n",
		"sample ratio":   "[telemetry]\nsample_ratio = 2.0\n",
	}
	for name, doc := range cases {
		if _, err := ParseConfig([]byte(doc)); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terra.toml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("unexpected log level %q", cfg.Log.Level)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestConfigWatcherReloads(t *testing.T) {
	core.SetLogOutput(io.Discard)
	dir := t.TempDir()
	path := filepath.Join(dir, "terra.toml")
	if err := os.WriteFile(path, []byte("[scene]\nwidth = 100\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	tasks, err := systems.NewTaskService(&systems.TaskServiceConfig{Workers: 1, QueueSize: 4})
	if err != nil {
		t.Fatalf("NewTaskService: %v", err)
	}
	defer tasks.Shutdown()

	cw, err := NewConfigWatcher(path, tasks)
	if err != nil {
		t.Fatalf("NewConfigWatcher: %v", err)
	}

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write other: %v", err)
	}
	if err := os.WriteFile(path, []byte("[scene]\nwidth = 640\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case cfg := <-cw.Updates():
			// A save can be seen as several writes; wait for the final one.
			reloaded = cfg.Scene.Width == 640
		case err := <-cw.Errors():
			t.Logf("transient reload error: %v", err)
		case <-deadline:
			t.Fatalf("timed out waiting for the reload")
		}
	}

	if err := os.WriteFile(path, []byte("[scene]\nwidth = -5\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	select {
	case err := <-cw.Errors():
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the reload error")
	}

	if err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := cw.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("expected ErrWatcherClosed, got %v", err)
	}
	// Ranging only ends once the channel is closed.
	for range cw.Updates() {
	}
}

func TestSampleConfigFileIsValid(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "terra.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if p := cfg.PickPoint(); p == nil || p.X != cfg.Scene.Width/2 || p.Y != cfg.Scene.Height/2 {
		t.Errorf("expected the sample to pick the centre, got %v", p)
	}
}
