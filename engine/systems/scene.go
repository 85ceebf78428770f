package systems

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
)

/** @brief The scene controller configuration. */
type SceneControllerConfig struct {
	Viewport             metadata.Viewport
	VerticalExaggeration float64
	DeepPick             bool
	ClearColor           color.RGBA
}

// FrameResult is what one Repaint produced. It is still returned when
// collaborators failed; Failures lists them.
type FrameResult struct {
	PickedObjects *metadata.PickedObjectList
	// ObjectAtPickPoint is the record marked on top, nil when nothing was hit.
	ObjectAtPickPoint *metadata.PickedObject
	Statistics        core.PerformanceStatistics
	Failures          []core.Result
	HasTerrain        bool
	ViewState         *metadata.ViewState
}

// Degraded reports whether any collaborator failed during the frame.
func (fr *FrameResult) Degraded() bool {
	return len(fr.Failures) > 0
}

// Failed reports whether the named collaborator failed during the frame.
func (fr *FrameResult) Failed(name string) bool {
	for _, r := range fr.Failures {
		if r.Name == name {
			return true
		}
	}
	return false
}

// SceneController produces frames: it applies the view, builds the terrain,
// draws the layers and resolves the pick point. Collaborator failures are
// isolated so a frame always completes; precondition violations are
// returned before the frame buffer is touched.
//
// It is not safe for concurrent use. Mutate the model, the view and the
// layer list only between calls to Repaint.
type SceneController struct {
	dc *metadata.DrawContext

	model                *metadata.Model
	view                 metadata.View
	rasterizer           metadata.Rasterizer
	cache                metadata.ResourceCache
	viewport             metadata.Viewport
	verticalExaggeration float64
	pickPoint            *image.Point
	deepPick             bool
	clearColor           color.RGBA

	metrics *FrameMetrics
	timer   *core.FrameTimer
	clock   *core.Clock
}

/**
 * @brief Creates a scene controller drawing into rasterizer.
 *
 * @param config The initial frame settings.
 * @param rasterizer The drawing surface. Required.
 * @param cache The resource cache whose accounting is reported. Optional.
 * @param metrics Where frames are exported. Optional.
 */
func NewSceneController(config *SceneControllerConfig, rasterizer metadata.Rasterizer, cache metadata.ResourceCache, metrics *FrameMetrics) (*SceneController, error) {
	if rasterizer == nil {
		return nil, core.NewPreconditionError("NewSceneController", core.ErrNilArgument, "rasterizer")
	}
	if config == nil {
		config = &SceneControllerConfig{}
	}
	ve := config.VerticalExaggeration
	if ve == 0 {
		ve = 1
	}
	clearColor := config.ClearColor
	if clearColor == (color.RGBA{}) {
		clearColor = color.RGBA{A: 0xff}
	}
	return &SceneController{
		dc:                   metadata.NewDrawContext(),
		rasterizer:           rasterizer,
		cache:                cache,
		viewport:             config.Viewport,
		verticalExaggeration: ve,
		deepPick:             config.DeepPick,
		clearColor:           clearColor,
		metrics:              metrics,
		timer:                core.NewFrameTimer(),
		clock:                core.NewClock(),
	}, nil
}

func (sc *SceneController) Model() *metadata.Model { return sc.model }

func (sc *SceneController) SetModel(model *metadata.Model) { sc.model = model }

func (sc *SceneController) View() metadata.View { return sc.view }

func (sc *SceneController) SetView(view metadata.View) { sc.view = view }

func (sc *SceneController) Viewport() metadata.Viewport { return sc.viewport }

func (sc *SceneController) SetViewport(viewport metadata.Viewport) { sc.viewport = viewport }

func (sc *SceneController) VerticalExaggeration() float64 { return sc.verticalExaggeration }

func (sc *SceneController) SetVerticalExaggeration(ve float64) { sc.verticalExaggeration = ve }

func (sc *SceneController) DeepPick() bool { return sc.deepPick }

func (sc *SceneController) SetDeepPick(deep bool) { sc.deepPick = deep }

func (sc *SceneController) ClearColor() color.RGBA { return sc.clearColor }

func (sc *SceneController) SetClearColor(c color.RGBA) { sc.clearColor = c }

func (sc *SceneController) SetResourceCache(cache metadata.ResourceCache) { sc.cache = cache }

func (sc *SceneController) Rasterizer() metadata.Rasterizer { return sc.rasterizer }

// SetPickPoint sets the top-left device pixel to pick at on the next
// frames; nil stops picking.
func (sc *SceneController) SetPickPoint(point *image.Point) {
	if point == nil {
		sc.pickPoint = nil
		return
	}
	p := *point
	sc.pickPoint = &p
}

func (sc *SceneController) PickPoint() *image.Point { return sc.pickPoint }

// DrawContext returns the context of the last frame.
func (sc *SceneController) DrawContext() *metadata.DrawContext { return sc.dc }

// FrameTimer returns the rolling frame time average.
func (sc *SceneController) FrameTimer() *core.FrameTimer { return sc.timer }

// SetClock replaces the frame clock, mostly useful in tests.
func (sc *SceneController) SetClock(clock *core.Clock) { sc.clock = clock }

// Repaint produces one frame.
func (sc *SceneController) Repaint() (*FrameResult, error) {
	return sc.RepaintContext(context.Background())
}

/**
 * @brief Produces one frame. The frame runs to completion once the view
 * has been applied; ctx only carries the trace.
 *
 * @param ctx The parent of the frame span.
 * @return The frame, or a precondition error when the viewport is invalid
 * or the view cannot be applied.
 */
func (sc *SceneController) RepaintContext(ctx context.Context) (*FrameResult, error) {
	tracer := sc.metrics.Tracer()
	ctx, span := tracer.Start(ctx, "frame")
	defer span.End()

	start := sc.clock.Now()

	// Begin.
	dc := sc.dc
	dc.Reset()
	if err := sc.viewport.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid viewport")
		return nil, err
	}

	// Context init.
	dc.Model = sc.model
	dc.View = sc.view
	dc.VerticalExaggeration = sc.verticalExaggeration
	dc.ResourceCache = sc.cache
	dc.Rasterizer = sc.rasterizer
	dc.Viewport = sc.viewport
	dc.ClearColor = sc.clearColor
	dc.DeepPick = sc.deepPick
	dc.PickPoint = nil
	if sc.pickPoint != nil {
		p := *sc.pickPoint
		dc.PickPoint = &p
	}
	dc.FrameTimestamp = start

	// View.
	if err := sc.applyView(ctx, dc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "view")
		return nil, err
	}

	result := &FrameResult{ViewState: dc.ViewState}
	sc.fitRasterizer()

	func() {
		sc.rasterizer.PushState()
		defer sc.rasterizer.PopState()

		sc.buildTerrain(ctx, dc, result)
		sc.draw(ctx, dc, result)
		if dc.PickPoint != nil {
			sc.pick(ctx, dc, result)
		}
	}()

	// Finalize.
	sc.finalize(dc, start)

	result.PickedObjects = dc.PickedObjects
	result.ObjectAtPickPoint = dc.PickedObjects.TopPickedObject()
	result.Statistics = dc.Statistics
	result.HasTerrain = dc.SurfaceGeometry != nil

	span.SetAttributes(
		attribute.Int("layers.count", dc.Statistics.LayerCount),
		attribute.Int("layers.failed", dc.Statistics.LayerFailures),
		attribute.Int("picked", dc.Statistics.PickedObjects),
		attribute.Bool("terrain", result.HasTerrain),
	)
	if result.Degraded() {
		span.SetStatus(codes.Error, fmt.Sprintf("%d collaborator failures", len(result.Failures)))
	}
	sc.metrics.Observe(result)
	return result, nil
}

func (sc *SceneController) applyView(ctx context.Context, dc *metadata.DrawContext) error {
	if dc.View == nil {
		return nil
	}
	_, span := sc.metrics.Tracer().Start(ctx, "frame.view")
	defer span.End()
	if err := dc.View.Apply(dc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (sc *SceneController) fitRasterizer() {
	b := sc.rasterizer.Bounds()
	if b.Dx() != sc.viewport.Width || b.Dy() != sc.viewport.Height {
		sc.rasterizer.Resize(sc.viewport.Width, sc.viewport.Height)
	}
}

// recordFailure keeps an isolated failure in the frame result.
func (sc *SceneController) recordFailure(span trace.Span, result *FrameResult, stage string, res core.Result) {
	result.Failures = append(result.Failures, res)
	span.RecordError(res.Err, trace.WithAttributes(attribute.String("collaborator", res.Name)))
	sc.metrics.failure(stage)
}

func (sc *SceneController) buildTerrain(ctx context.Context, dc *metadata.DrawContext, result *FrameResult) {
	_, span := sc.metrics.Tracer().Start(ctx, "frame.terrain")
	defer span.End()

	dc.SurfaceGeometry = nil
	if dc.Model == nil || dc.Model.Tessellator == nil {
		return
	}
	tessellator := dc.Model.Tessellator

	var geometry metadata.SurfaceGeometry
	res := core.Isolate("tessellator", func() error {
		g, err := tessellator.Tessellate(dc)
		if err != nil {
			return err
		}
		geometry = g
		return nil
	})
	if !res.Ok() {
		sc.recordFailure(span, result, StageTerrain, res)
		return
	}
	dc.SurfaceGeometry = geometry
	if geometry != nil {
		span.SetAttributes(attribute.Int("tiles", geometry.Len()))
	}
}

func (sc *SceneController) layers(dc *metadata.DrawContext) []metadata.Layer {
	if dc.Model == nil {
		return nil
	}
	return dc.Model.Layers.Layers()
}

func (sc *SceneController) draw(ctx context.Context, dc *metadata.DrawContext, result *FrameResult) {
	_, span := sc.metrics.Tracer().Start(ctx, "frame.layers")
	defer span.End()

	sc.rasterizer.Clear(dc.ClearColor)

	if surface := dc.SurfaceGeometry; surface != nil {
		res := core.Isolate("terrain", func() error { return surface.Render(dc) })
		if !res.Ok() {
			sc.recordFailure(span, result, StageTerrain, res)
		}
	}

	layers := sc.layers(dc)
	dc.Statistics.LayerCount = len(layers)
	for _, layer := range layers {
		if !layer.IsEnabled() {
			continue
		}
		res := core.Isolate("layer:"+layer.Name(), func() error { return layer.Render(dc) })
		if !res.Ok() {
			dc.Statistics.LayerFailures++
			sc.recordFailure(span, result, StageLayer, res)
			continue
		}
		dc.Statistics.LayersRendered++
	}
}

func (sc *SceneController) pick(ctx context.Context, dc *metadata.DrawContext, result *FrameResult) {
	_, span := sc.metrics.Tracer().Start(ctx, "frame.pick")
	defer span.End()

	point := *dc.PickPoint
	sc.pickPass(span, dc, result, point)

	if dc.DeepPick && dc.PickedObjects.HasOnTopNonTerrainObject() {
		primary := dc.PickedObjects
		dc.PickedObjects = metadata.NewPickedObjectList()
		dc.SetDeepPickPass(true)
		sc.pickPass(span, dc, result, point)
		dc.SetDeepPickPass(false)

		deep := dc.PickedObjects
		dc.PickedObjects = primary
		added := primary.Merge(deep)
		span.SetAttributes(attribute.Int("deep.added", added))
	}
	dc.Statistics.PickedObjects = dc.PickedObjects.Len()
	span.SetAttributes(
		attribute.Int("pick.x", point.X),
		attribute.Int("pick.y", point.Y),
		attribute.Int("picked", dc.Statistics.PickedObjects),
	)
}

// pickPass draws every pick candidate into the pick target and marks the
// one under point.
func (sc *SceneController) pickPass(span trace.Span, dc *metadata.DrawContext, result *FrameResult, point image.Point) {
	sc.rasterizer.BeginPicking()
	dc.SetPickingMode(true)
	defer func() {
		dc.SetPickingMode(false)
		sc.rasterizer.EndPicking()
	}()

	// Code 0 is the background.
	sc.rasterizer.Clear(color.RGBA{})

	if surface := dc.SurfaceGeometry; surface != nil {
		res := core.Isolate("terrain:pick", func() error { return surface.Pick(dc, point) })
		if !res.Ok() {
			sc.recordFailure(span, result, StagePick, res)
		}
	}
	for _, layer := range sc.layers(dc) {
		if !layer.IsEnabled() {
			continue
		}
		res := core.Isolate("layer:"+layer.Name()+":pick", func() error { return layer.Pick(dc, point) })
		if !res.Ok() {
			sc.recordFailure(span, result, StagePick, res)
		}
	}

	sc.resolveTopObject(span, dc, result)
}

func (sc *SceneController) resolveTopObject(span trace.Span, dc *metadata.DrawContext, result *FrameResult) {
	candidates := dc.PickedObjects
	switch candidates.Len() {
	case 0:
		return
	case 1:
		candidates.At(0).OnTop = true
		return
	}

	flipped, _ := dc.PickPointFlipped()
	res := core.Isolate("pick:readback", func() error {
		c, ok := sc.rasterizer.ReadPixel(flipped.X, flipped.Y)
		if !ok {
			return fmt.Errorf("pick point %v is outside the pick target", *dc.PickPoint)
		}
		code := metadata.ColorCode(c)
		if code == 0 {
			return nil
		}
		if po := candidates.FindByColorCode(code); po != nil {
			po.OnTop = true
		}
		return nil
	})
	if !res.Ok() {
		sc.recordFailure(span, result, StagePick, res)
	}
}

func (sc *SceneController) finalize(dc *metadata.DrawContext, start time.Time) {
	dc.Statistics.FrameTime = sc.clock.Now().Sub(start)
	if sc.cache != nil {
		dc.Statistics.ResourceCacheUsed = sc.cache.UsedCapacity()
		dc.Statistics.ResourceCacheCapacity = sc.cache.Capacity()
		dc.Statistics.ResourceCacheObjects = sc.cache.NumObjects()
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	dc.Statistics.HeapAlloc = mem.HeapAlloc

	sc.timer.Update(dc.Statistics.FrameTime)
	dc.Statistics.FPS, dc.Statistics.AverageFrameMS = sc.timer.Frame()
}
