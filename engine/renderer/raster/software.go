package raster

import (
	"image"
	"image/color"
	"image/draw"
	m "math"

	"github.com/spaghettifunk/terra/engine/math"
	"golang.org/x/image/vector"
)

type rasterState struct {
	picking bool
	blend   bool
}

/**
 * @brief A CPU rasterizer with a visible frame and an off-screen pick
 * target of the same size. Polygons are filled with x/image/vector using
 * top-left device coordinates.
 */
type Software struct {
	frame *image.RGBA
	pick  *image.RGBA
	// Current state.
	picking bool
	blend   bool
	stack   []rasterState
	z       *vector.Rasterizer
	// Coverage of the polygon being filled.
	mask *image.Alpha
}

func NewSoftware(width, height int) *Software {
	s := &Software{blend: true}
	s.Resize(width, height)
	return s
}

// Resize reallocates both targets when the size changes.
func (s *Software) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if s.frame != nil && s.frame.Bounds().Dx() == width && s.frame.Bounds().Dy() == height {
		return
	}
	s.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	s.pick = image.NewRGBA(image.Rect(0, 0, width, height))
	s.z = vector.NewRasterizer(width, height)
	s.mask = image.NewAlpha(image.Rect(0, 0, width, height))
}

func (s *Software) Bounds() image.Rectangle {
	return s.frame.Bounds()
}

func (s *Software) target() *image.RGBA {
	if s.picking {
		return s.pick
	}
	return s.frame
}

// Clear fills the current target with c.
func (s *Software) Clear(c color.RGBA) {
	t := s.target()
	draw.Draw(t, t.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillPolygon fills a closed polygon. Only pixels the polygon covers are
// touched. In picking mode every covered pixel takes the exact colour code,
// partial coverage included, so the pick target only ever holds assigned
// codes and adjacent polygons of one object leave no seams.
func (s *Software) FillPolygon(points []math.Vec2, c color.RGBA) {
	if len(points) < 3 || s.frame.Bounds().Empty() {
		return
	}
	t := s.target()
	b := t.Bounds()
	s.z.Reset(b.Dx(), b.Dy())
	s.z.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		s.z.LineTo(float32(p.X), float32(p.Y))
	}
	s.z.ClosePath()
	s.z.DrawOp = draw.Src
	s.z.Draw(s.mask, b, image.Opaque, image.Point{})

	if s.picking {
		s.fillCovered(t, polygonBounds(points).Intersect(b), c)
		return
	}
	op := draw.Over
	if !s.blend {
		op = draw.Src
	}
	draw.DrawMask(t, b, image.NewUniform(c), image.Point{}, s.mask, image.Point{}, op)
}

func (s *Software) fillCovered(t *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if s.mask.Pix[s.mask.PixOffset(x, y)] != 0 {
				t.SetRGBA(x, y, c)
			}
		}
	}
}

// polygonBounds is the pixel rectangle enclosing points.
func polygonBounds(points []math.Vec2) image.Rectangle {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX, maxX = m.Min(minX, p.X), m.Max(maxX, p.X)
		minY, maxY = m.Min(minY, p.Y), m.Max(maxY, p.Y)
	}
	return image.Rect(int(m.Floor(minX)), int(m.Floor(minY)), int(m.Ceil(maxX)), int(m.Ceil(maxY)))
}

func (s *Software) BeginPicking() {
	s.picking = true
}

func (s *Software) EndPicking() {
	s.picking = false
}

func (s *Software) IsPicking() bool {
	return s.picking
}

// SetBlending toggles alpha blending for the visible frame.
func (s *Software) SetBlending(enabled bool) {
	s.blend = enabled
}

func (s *Software) PushState() {
	s.stack = append(s.stack, rasterState{picking: s.picking, blend: s.blend})
}

// PopState restores the last pushed state. Popping an empty stack is a no-op.
func (s *Software) PopState() {
	if len(s.stack) == 0 {
		return
	}
	st := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.picking = st.picking
	s.blend = st.blend
}

// ReadPixel reads the current target at (x, y) with a bottom-left origin.
func (s *Software) ReadPixel(x, y int) (color.RGBA, bool) {
	t := s.target()
	b := t.Bounds()
	row := b.Dy() - 1 - y
	if x < 0 || x >= b.Dx() || row < 0 || row >= b.Dy() {
		return color.RGBA{}, false
	}
	return t.RGBAAt(x, row), true
}

// Frame is the visible image.
func (s *Software) Frame() image.Image {
	return s.frame
}

// PickTarget is the off-screen pick image.
func (s *Software) PickTarget() image.Image {
	return s.pick
}
