package testbed

import (
	"errors"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/spaghettifunk/terra/engine/globe"
	"github.com/spaghettifunk/terra/engine/math"
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
)

var errNoViewState = errors.New("no view applied this frame")

// Placemark is a named point drawn as a screen-aligned square.
type Placemark struct {
	Name     string
	Position globe.Position
	// Size is the side of the square in pixels.
	Size  float64
	Color color.RGBA
}

// PlacemarkLayer draws placemarks on top of the terrain.
type PlacemarkLayer struct {
	name       string
	enabled    bool
	placemarks []*Placemark
}

func NewPlacemarkLayer(name string, placemarks ...*Placemark) *PlacemarkLayer {
	return &PlacemarkLayer{name: name, enabled: true, placemarks: placemarks}
}

func (pl *PlacemarkLayer) Name() string { return pl.name }

func (pl *PlacemarkLayer) IsEnabled() bool { return pl.enabled }

func (pl *PlacemarkLayer) SetEnabled(enabled bool) { pl.enabled = enabled }

func (pl *PlacemarkLayer) Add(p *Placemark) { pl.placemarks = append(pl.placemarks, p) }

func (pl *PlacemarkLayer) Placemarks() []*Placemark { return pl.placemarks }

// Palette spreads n hues evenly around the colour wheel.
func Palette(n int) []color.RGBA {
	out := make([]color.RGBA, n)
	for i := range out {
		c := colorful.Hsv(360*float64(i)/float64(n), 0.8, 0.95)
		r, g, b := c.RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return out
}

func (pl *PlacemarkLayer) Render(dc *metadata.DrawContext) error {
	return pl.draw(dc, func(p *Placemark) color.RGBA { return p.Color })
}

// Pick draws each visible placemark in its own pick colour and registers it.
func (pl *PlacemarkLayer) Pick(dc *metadata.DrawContext, point image.Point) error {
	return pl.draw(dc, func(p *Placemark) color.RGBA {
		c := dc.UniquePickColor()
		position := p.Position
		dc.AddPickedObject(&metadata.PickedObject{
			ColorCode: metadata.ColorCode(c),
			Object:    p,
			Position:  &position,
			Layer:     pl.name,
		})
		return c
	})
}

func (pl *PlacemarkLayer) draw(dc *metadata.DrawContext, paint func(p *Placemark) color.RGBA) error {
	vs := dc.ViewState
	g := dc.Globe()
	if vs == nil || g == nil {
		return errNoViewState
	}
	for _, p := range pl.placemarks {
		elevation := p.Position.Elevation * dc.VerticalExaggeration
		point := g.ComputePointFromPosition(p.Position.Latitude, p.Position.Longitude, elevation)
		if !facesEye(g, vs, point) {
			continue
		}
		center, ok := toDevice(vs, point)
		if !ok {
			continue
		}
		half := p.Size / 2
		dc.Rasterizer.FillPolygon([]math.Vec2{
			{X: center.X - half, Y: center.Y - half},
			{X: center.X + half, Y: center.Y - half},
			{X: center.X + half, Y: center.Y + half},
			{X: center.X - half, Y: center.Y + half},
		}, paint(p))
	}
	return nil
}

// facesEye reports whether point is on the hemisphere seen from the eye.
func facesEye(g globe.Globe, vs *metadata.ViewState, point math.Vec3) bool {
	normal := g.ComputeSurfaceNormalAtPoint(point)
	return normal.Dot(vs.EyePoint.Sub(point)) > 0
}

// toDevice projects a model point to top-left device coordinates of the
// viewport, false outside the depth range.
func toDevice(vs *metadata.ViewState, point math.Vec3) (math.Vec2, bool) {
	w, ok := vs.Project(point)
	if !ok || w.Z < 0 || w.Z > 1 {
		return math.Vec2{}, false
	}
	vp := vs.Viewport
	return math.Vec2{
		X: w.X - float64(vp.X),
		Y: float64(vp.Height) - (w.Y - float64(vp.Y)),
	}, true
}
