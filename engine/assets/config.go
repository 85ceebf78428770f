package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/terra/engine/globe"
	"github.com/spaghettifunk/terra/engine/math"
	"github.com/spaghettifunk/terra/engine/renderer/components"
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
	"github.com/spaghettifunk/terra/engine/systems"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type GlobeConfig struct {
	Type                string  `toml:"type"`
	EquatorialRadius    float64 `toml:"equatorial_radius"`
	PolarRadius         float64 `toml:"polar_radius"`
	EccentricitySquared float64 `toml:"eccentricity_squared"`
	Projection          string  `toml:"projection"`
	Elevation           string  `toml:"elevation"`
	ElevationValue      float64 `toml:"elevation_value"`
}

type ViewConfig struct {
	FieldOfView float64 `toml:"field_of_view"`
	Latitude    float64 `toml:"latitude"`
	Longitude   float64 `toml:"longitude"`
	Altitude    float64 `toml:"altitude"`
	Heading     float64 `toml:"heading"`
	Tilt        float64 `toml:"tilt"`
	Roll        float64 `toml:"roll"`
	NearMinimum float64 `toml:"near_minimum"`
	FarMinimum  float64 `toml:"far_minimum"`
}

type SceneConfig struct {
	Width                int     `toml:"width"`
	Height               int     `toml:"height"`
	VerticalExaggeration float64 `toml:"vertical_exaggeration"`
	DeepPick             bool    `toml:"deep_pick"`
	ClearColor           string  `toml:"clear_color"`
	// Pick is an optional [x, y] top-left device pixel.
	Pick []int `toml:"pick"`
}

type SystemsConfig struct {
	TaskWorkers   int   `toml:"task_workers"`
	TaskQueueSize int   `toml:"task_queue_size"`
	CacheCapacity int64 `toml:"cache_capacity"`
	MaxViews      int   `toml:"max_views"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type TelemetryConfig struct {
	Tracing     bool    `toml:"tracing"`
	Exporter    string  `toml:"exporter"`
	Endpoint    string  `toml:"endpoint"`
	SampleRatio float64 `toml:"sample_ratio"`
	// MetricsAddress serves /metrics when set, e.g. ":9090".
	MetricsAddress string `toml:"metrics_address"`
}

// Config is the engine configuration file.
type Config struct {
	Globe     GlobeConfig     `toml:"globe"`
	View      ViewConfig      `toml:"view"`
	Scene     SceneConfig     `toml:"scene"`
	Systems   SystemsConfig   `toml:"systems"`
	Log       LogConfig       `toml:"log"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// DefaultConfig looks at the WGS84 ellipsoid from 10,000 km above (0°, 0°).
func DefaultConfig() *Config {
	return &Config{
		Globe: GlobeConfig{
			Type:                globe.KindEllipsoid.String(),
			EquatorialRadius:    globe.WGS84EquatorialRadius,
			PolarRadius:         globe.WGS84PolarRadius,
			EccentricitySquared: globe.WGS84EccentricitySquared,
			Projection:          globe.ProjectionEquirectangular.String(),
			Elevation:           globe.ElevationZero.String(),
		},
		View: ViewConfig{
			FieldOfView: float64(components.DefaultFieldOfView),
			Altitude:    components.DefaultEyeElevation,
			NearMinimum: components.MinimumNearDistance,
			FarMinimum:  components.MinimumFarDistance,
		},
		Scene: SceneConfig{
			Width:                800,
			Height:               600,
			VerticalExaggeration: 1,
			ClearColor:           "#000000",
		},
		Systems: SystemsConfig{
			TaskWorkers:   2,
			TaskQueueSize: 16,
			CacheCapacity: 256 << 20,
			MaxViews:      16,
		},
		Log: LogConfig{Level: "info"},
		Telemetry: TelemetryConfig{
			Exporter:    "stdout",
			SampleRatio: 1,
		},
	}
}

// LoadConfig reads path on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a TOML document on top of the defaults. Unknown keys
// are rejected so typos do not go unnoticed.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.TrimSpace(strict.String()))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks ranges and component names.
func (c *Config) Validate() error {
	if _, err := c.GlobeSpec(); err != nil {
		return err
	}
	if c.Globe.EquatorialRadius <= 0 || c.Globe.PolarRadius <= 0 {
		return invalid("globe radii must be positive")
	}

	v := c.View
	if v.FieldOfView <= 0 || v.FieldOfView >= 180 {
		return invalid("view.field_of_view %v outside (0, 180)", v.FieldOfView)
	}
	if v.Latitude < -90 || v.Latitude > 90 {
		return invalid("view.latitude %v outside [-90, 90]", v.Latitude)
	}
	if v.Tilt < 0 || v.Tilt > float64(components.MaximumTilt) {
		return invalid("view.tilt %v outside [0, %v]", v.Tilt, float64(components.MaximumTilt))
	}
	if v.NearMinimum <= 0 || v.FarMinimum <= 0 {
		return invalid("view clip minimums must be positive")
	}

	s := c.Scene
	if s.Width < 0 || s.Height < 0 {
		return invalid("scene size %dx%d is negative", s.Width, s.Height)
	}
	if s.VerticalExaggeration <= 0 {
		return invalid("scene.vertical_exaggeration must be positive")
	}
	if _, err := c.ClearColor(); err != nil {
		return err
	}
	if len(s.Pick) != 0 && len(s.Pick) != 2 {
		return invalid("scene.pick must be [x, y]")
	}

	sys := c.Systems
	if sys.TaskWorkers <= 0 || sys.TaskQueueSize < 0 {
		return invalid("systems.task_workers must be positive and task_queue_size not negative")
	}
	if sys.CacheCapacity <= 0 {
		return invalid("systems.cache_capacity must be positive")
	}
	if sys.MaxViews <= 0 || sys.MaxViews > 0xFFFF {
		return invalid("systems.max_views %d outside [1, 65535]", sys.MaxViews)
	}

	if _, err := log.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return invalid("log.level %q", c.Log.Level)
	}

	tc := c.Telemetry
	switch strings.ToLower(tc.Exporter) {
	case "stdout", "otlp", "otlpgrpc":
	default:
		return invalid("telemetry.exporter %q", tc.Exporter)
	}
	if tc.SampleRatio < 0 || tc.SampleRatio > 1 {
		return invalid("telemetry.sample_ratio %v outside [0, 1]", tc.SampleRatio)
	}
	return nil
}

// TracingConfig builds the tracing setup of the [telemetry] table.
func (c *Config) TracingConfig() systems.TracingConfig {
	return systems.TracingConfig{
		Enabled:     c.Telemetry.Tracing,
		ServiceName: "terra",
		Exporter:    c.Telemetry.Exporter,
		Endpoint:    c.Telemetry.Endpoint,
		SampleRatio: c.Telemetry.SampleRatio,
	}
}

// GlobeSpec resolves the [globe] table to a factory selection.
func (c *Config) GlobeSpec() (systems.GlobeSpec, error) {
	kind, err := globe.ParseKind(c.Globe.Type)
	if err != nil {
		return systems.GlobeSpec{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	projection, err := globe.ParseProjectionKind(c.Globe.Projection)
	if err != nil {
		return systems.GlobeSpec{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	elevation, err := globe.ParseElevationKind(c.Globe.Elevation)
	if err != nil {
		return systems.GlobeSpec{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return systems.GlobeSpec{
		Kind:                kind,
		EquatorialRadius:    c.Globe.EquatorialRadius,
		PolarRadius:         c.Globe.PolarRadius,
		EccentricitySquared: c.Globe.EccentricitySquared,
		Projection:          projection,
		Elevation:           elevation,
		ElevationValue:      c.Globe.ElevationValue,
	}, nil
}

// SystemManagerConfig builds the systems configuration. Metrics go to the
// global registry.
func (c *Config) SystemManagerConfig() (systems.SystemManagerConfig, error) {
	spec, err := c.GlobeSpec()
	if err != nil {
		return systems.SystemManagerConfig{}, err
	}
	return systems.SystemManagerConfig{
		Globe: spec,
		Tasks: systems.TaskServiceConfig{Workers: c.Systems.TaskWorkers, QueueSize: c.Systems.TaskQueueSize},
		Cache: systems.MemoryCacheConfig{Capacity: c.Systems.CacheCapacity},
		Views: systems.ViewSystemConfig{MaxViewCount: uint16(c.Systems.MaxViews)},
	}, nil
}

// ClearColor parses scene.clear_color, a #rrggbb hex string.
func (c *Config) ClearColor() (color.RGBA, error) {
	hex, err := colorful.Hex(strings.TrimSpace(c.Scene.ClearColor))
	if err != nil {
		return color.RGBA{}, invalid("scene.clear_color %q: %v", c.Scene.ClearColor, err)
	}
	r, g, b := hex.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func (c *Config) Viewport() metadata.Viewport {
	return metadata.NewViewport(0, 0, c.Scene.Width, c.Scene.Height)
}

// PickPoint returns scene.pick, nil when unset.
func (c *Config) PickPoint() *image.Point {
	if len(c.Scene.Pick) != 2 {
		return nil
	}
	return &image.Point{X: c.Scene.Pick[0], Y: c.Scene.Pick[1]}
}

func (c *Config) SceneControllerConfig() (systems.SceneControllerConfig, error) {
	clearColor, err := c.ClearColor()
	if err != nil {
		return systems.SceneControllerConfig{}, err
	}
	return systems.SceneControllerConfig{
		Viewport:             c.Viewport(),
		VerticalExaggeration: c.Scene.VerticalExaggeration,
		DeepPick:             c.Scene.DeepPick,
		ClearColor:           clearColor,
	}, nil
}

// ApplyView places v as described by the [view] table.
func (c *Config) ApplyView(v *components.BasicView) error {
	if err := v.SetFieldOfView(math.Angle(c.View.FieldOfView)); err != nil {
		return err
	}
	v.SetClipMinimums(c.View.NearMinimum, c.View.FarMinimum)
	v.SetOrientation(
		globe.PositionFromDegrees(c.View.Latitude, c.View.Longitude, c.View.Altitude),
		math.Angle(c.View.Heading),
		math.Angle(c.View.Tilt),
		math.Angle(c.View.Roll),
	)
	return nil
}
