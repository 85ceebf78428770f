package metadata

import (
	"image"
	"image/color"
	"time"

	"github.com/google/uuid"
	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/globe"
)

// maxPickColorCode is the first code the unique colour counter never hands
// out; the counter wraps to 1 when it gets there.
const maxPickColorCode uint32 = 0xFFFFFF

// DrawContext is the per-frame state shared by the view, the tessellator
// and the layers. It is created once by the scene controller and reset at
// the start of every frame.
type DrawContext struct {
	Model                *Model
	View                 View
	ViewState            *ViewState
	VerticalExaggeration float64
	ResourceCache        ResourceCache
	Rasterizer           Rasterizer
	Viewport             Viewport
	ClearColor           color.RGBA

	// PickPoint is a top-left device pixel, nil when not picking.
	PickPoint *image.Point
	DeepPick  bool

	SurfaceGeometry SurfaceGeometry
	PickedObjects   *PickedObjectList
	Statistics      core.PerformanceStatistics
	FrameTimestamp  time.Time

	picking            bool
	deepPickPass       bool
	uniqueColorCounter uint32
}

func NewDrawContext() *DrawContext {
	dc := &DrawContext{
		VerticalExaggeration: 1,
		PickedObjects:        NewPickedObjectList(),
		ClearColor:           color.RGBA{A: 0xff},
	}
	dc.Reset()
	return dc
}

// Reset clears everything produced by the previous frame. Bindings such as
// the model and the rasterizer are rebound by the caller.
func (dc *DrawContext) Reset() {
	dc.ViewState = nil
	dc.SurfaceGeometry = nil
	dc.PickedObjects = NewPickedObjectList()
	dc.Statistics.Reset()
	dc.picking = false
	dc.deepPickPass = false
	dc.uniqueColorCounter = 1
}

// Globe returns the model's globe, nil without a model.
func (dc *DrawContext) Globe() globe.Globe {
	if dc.Model == nil {
		return nil
	}
	return dc.Model.Globe
}

// GlobeStateKey identifies the surface shape this frame renders.
func (dc *DrawContext) GlobeStateKey() globe.StateKey {
	if dc.Model == nil {
		return globe.StateKey{VerticalExaggeration: dc.VerticalExaggeration}
	}
	var tessellator uuid.UUID
	if dc.Model.Tessellator != nil {
		tessellator = dc.Model.Tessellator.ID()
	}
	return globe.NewStateKey(dc.Model.Globe, tessellator, dc.VerticalExaggeration)
}

func (dc *DrawContext) IsPickingMode() bool { return dc.picking }

func (dc *DrawContext) SetPickingMode(picking bool) { dc.picking = picking }

func (dc *DrawContext) IsDeepPickPass() bool { return dc.deepPickPass }

func (dc *DrawContext) SetDeepPickPass(deep bool) { dc.deepPickPass = deep }

// UniquePickColor hands out the next 24-bit pick colour. Codes start at 1,
// never reach 0xFFFFFF and skip the clear colour, so none of them can be
// confused with the background.
func (dc *DrawContext) UniquePickColor() color.RGBA {
	clearCode := ColorCode(dc.ClearColor)
	for {
		code := dc.uniqueColorCounter
		dc.uniqueColorCounter++
		if dc.uniqueColorCounter >= maxPickColorCode {
			dc.uniqueColorCounter = 1
		}
		if code == clearCode || code == 0 {
			continue
		}
		return ColorFromCode(code)
	}
}

// AddPickedObject registers a pick candidate drawn during this pass.
func (dc *DrawContext) AddPickedObject(po *PickedObject) {
	dc.PickedObjects.Add(po)
}

// PickPointFlipped returns the pick point in the rasterizer's bottom-left
// convention.
func (dc *DrawContext) PickPointFlipped() (image.Point, bool) {
	if dc.PickPoint == nil {
		return image.Point{}, false
	}
	return image.Point{X: dc.PickPoint.X, Y: dc.Viewport.FlipY(dc.PickPoint.Y)}, true
}
