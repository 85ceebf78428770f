package systems

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/spaghettifunk/terra/engine/systems"

// Failure stages reported by terra_collaborator_failures_total.
const (
	StageTerrain = "terrain"
	StageLayer   = "layer"
	StagePick    = "pick"
)

// FrameMetrics exports what the scene controller measures each frame.
type FrameMetrics struct {
	Frames               prometheus.Counter
	FrameDuration        prometheus.Histogram
	CollaboratorFailures *prometheus.CounterVec
	ResourceCacheUsed    prometheus.Gauge
	PickedObjects        prometheus.Gauge

	tracer trace.Tracer
}

// NewFrameMetrics registers the frame collectors against reg, defaulting
// to the global registry when nil. Spans go to tp, or to the global tracer
// provider when tp is nil.
func NewFrameMetrics(reg prometheus.Registerer, tp trace.TracerProvider) (*FrameMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	frames, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "terra_frames_total",
		Help: "Total number of frames produced by the scene controller.",
	}), "terra_frames_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "terra_frame_duration_seconds",
		Help:    "Time spent producing one frame, in seconds.",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.0167, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}), "terra_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "terra_collaborator_failures_total",
		Help: "Isolated tessellator and layer failures, labeled by frame stage.",
	}, []string{"stage"})
	failures, err = registerCounterVec(reg, failures, "terra_collaborator_failures_total")
	if err != nil {
		return nil, err
	}

	cacheUsed, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "terra_resource_cache_used_bytes",
		Help: "Bytes in use in the resource cache at the end of the last frame.",
	}), "terra_resource_cache_used_bytes")
	if err != nil {
		return nil, err
	}

	picked, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "terra_picked_objects",
		Help: "Number of objects picked in the last frame.",
	}), "terra_picked_objects")
	if err != nil {
		return nil, err
	}

	return &FrameMetrics{
		Frames:               frames,
		FrameDuration:        duration,
		CollaboratorFailures: failures,
		ResourceCacheUsed:    cacheUsed,
		PickedObjects:        picked,
		tracer:               tp.Tracer(tracerName),
	}, nil
}

// Tracer returns the tracer frames are recorded with.
func (fm *FrameMetrics) Tracer() trace.Tracer {
	if fm == nil || fm.tracer == nil {
		return otel.GetTracerProvider().Tracer(tracerName)
	}
	return fm.tracer
}

func (fm *FrameMetrics) failure(stage string) {
	if fm == nil {
		return
	}
	fm.CollaboratorFailures.WithLabelValues(stage).Inc()
}

// Observe records a finished frame.
func (fm *FrameMetrics) Observe(result *FrameResult) {
	if fm == nil || result == nil {
		return
	}
	fm.Frames.Inc()
	fm.FrameDuration.Observe(result.Statistics.FrameTime.Seconds())
	fm.ResourceCacheUsed.Set(float64(result.Statistics.ResourceCacheUsed))
	fm.PickedObjects.Set(float64(result.Statistics.PickedObjects))
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, histogram prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return histogram, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
