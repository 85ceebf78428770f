package systems

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/globe"
)

// SystemManagerConfig gathers what the systems are built from.
type SystemManagerConfig struct {
	Globe GlobeSpec
	Tasks TaskServiceConfig
	Cache MemoryCacheConfig
	Views ViewSystemConfig
	// Registerer receives the frame metrics; nil uses the global registry.
	Registerer prometheus.Registerer
	// TracerProvider receives the frame spans; nil uses the global provider.
	TracerProvider trace.TracerProvider
}

// DefaultSystemManagerConfig is a WGS84 globe with a small pool and cache.
func DefaultSystemManagerConfig() SystemManagerConfig {
	return SystemManagerConfig{
		Globe: DefaultGlobeSpec(),
		Tasks: TaskServiceConfig{Workers: 2, QueueSize: 16},
		Cache: MemoryCacheConfig{Capacity: 256 << 20},
		Views: ViewSystemConfig{MaxViewCount: 16},
	}
}

// SystemManager is the single dependency context of a running engine. It is
// built once and handed to whatever needs the globe, the cache, the task
// service or the views; nothing reaches them through globals.
type SystemManager struct {
	globe       globe.Globe
	taskService *TaskService
	cache       *MemoryCache
	viewSystem  *ViewSystem
	metrics     *FrameMetrics
}

func NewSystemManager(config *SystemManagerConfig) (*SystemManager, error) {
	g, err := NewGlobe(config.Globe)
	if err != nil {
		return nil, err
	}
	ts, err := NewTaskService(&config.Tasks)
	if err != nil {
		return nil, err
	}
	mc, err := NewMemoryCache(&config.Cache)
	if err != nil {
		_ = ts.Shutdown()
		return nil, err
	}
	vs, err := NewViewSystem(&config.Views, g)
	if err != nil {
		_ = ts.Shutdown()
		return nil, err
	}
	fm, err := NewFrameMetrics(config.Registerer, config.TracerProvider)
	if err != nil {
		_ = ts.Shutdown()
		return nil, err
	}
	core.LogInfo("Systems initialized.")
	return &SystemManager{
		globe:       g,
		taskService: ts,
		cache:       mc,
		viewSystem:  vs,
		metrics:     fm,
	}, nil
}

func (sm *SystemManager) Globe() globe.Globe { return sm.globe }

func (sm *SystemManager) TaskService() *TaskService { return sm.taskService }

func (sm *SystemManager) ResourceCache() *MemoryCache { return sm.cache }

func (sm *SystemManager) ViewSystem() *ViewSystem { return sm.viewSystem }

func (sm *SystemManager) Metrics() *FrameMetrics { return sm.metrics }

// ReplaceGlobe builds a new globe from spec and rebinds the views to it.
// The cache is emptied since everything in it was built for the old
// surface. Only call it between frames.
func (sm *SystemManager) ReplaceGlobe(spec GlobeSpec) (globe.Globe, error) {
	g, err := NewGlobe(spec)
	if err != nil {
		return nil, err
	}
	sm.globe = g
	sm.viewSystem.SetGlobe(g)
	sm.cache.Clear()
	return g, nil
}

func (sm *SystemManager) Shutdown() error {
	var errs []error
	if err := sm.viewSystem.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := sm.cache.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := sm.taskService.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
