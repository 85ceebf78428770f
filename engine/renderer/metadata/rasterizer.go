package metadata

import (
	"image"
	"image/color"

	"github.com/spaghettifunk/terra/engine/math"
)

// Rasterizer is the drawing surface of a frame. Polygon vertices are device
// coordinates with a top-left origin; ReadPixel uses a bottom-left origin.
type Rasterizer interface {
	Resize(width, height int)
	Bounds() image.Rectangle
	Clear(c color.RGBA)
	FillPolygon(points []math.Vec2, c color.RGBA)
	// BeginPicking redirects drawing into the off-screen pick target and
	// disables blending so colour codes stay exact.
	BeginPicking()
	EndPicking()
	IsPicking() bool
	PushState()
	PopState()
	ReadPixel(x, y int) (color.RGBA, bool)
	Frame() image.Image
}

// ResourceCache is the shared cache of renderable resources. Only its
// accounting is visible to the frame.
type ResourceCache interface {
	UsedCapacity() int64
	Capacity() int64
	NumObjects() int
}
