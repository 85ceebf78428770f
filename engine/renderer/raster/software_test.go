package raster

import (
	"image/color"
	"testing"

	"github.com/spaghettifunk/terra/engine/math"
)

func square(x0, y0, x1, y1 float64) []math.Vec2 {
	return []math.Vec2{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestReadPixelUsesBottomLeftOrigin(t *testing.T) {
	s := NewSoftware(10, 10)
	s.BeginPicking()
	s.Clear(color.RGBA{})
	// Device rows 0..2 are the top of the image.
	code := color.RGBA{R: 0x00, G: 0xFF, B: 0x80, A: 0xFF}
	s.FillPolygon(square(0, 0, 10, 3), code)

	if got, ok := s.ReadPixel(5, 9); !ok || got != code {
		t.Errorf("top row read as %v", got)
	}
	if got, _ := s.ReadPixel(5, 0); got != (color.RGBA{}) {
		t.Errorf("bottom row read as %v", got)
	}
	if _, ok := s.ReadPixel(10, 0); ok {
		t.Errorf("expected out of bounds read to fail")
	}
}

func TestPickingDoesNotTouchTheFrame(t *testing.T) {
	s := NewSoftware(8, 8)
	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	s.Clear(white)

	s.BeginPicking()
	s.Clear(color.RGBA{})
	s.FillPolygon(square(0, 0, 8, 8), color.RGBA{R: 1, A: 0xFF})
	s.EndPicking()

	if got := s.frame.RGBAAt(4, 4); got != white {
		t.Errorf("frame changed during picking: %v", got)
	}
	if got := s.pick.RGBAAt(4, 4); got != (color.RGBA{R: 1, A: 0xFF}) {
		t.Errorf("pick target = %v", got)
	}
}

func TestPickColorsAreNotBlended(t *testing.T) {
	s := NewSoftware(8, 8)
	s.BeginPicking()
	s.Clear(color.RGBA{})
	s.FillPolygon(square(0, 0, 8, 8), color.RGBA{R: 9, A: 0xFF})
	s.FillPolygon(square(2, 2, 6, 6), color.RGBA{G: 7, A: 0xFF})
	if got, _ := s.ReadPixel(4, 4); got != (color.RGBA{G: 7, A: 0xFF}) {
		t.Errorf("expected the last polygon's exact code, got %v", got)
	}
}

func TestPickPolygonsKeepTheirCodes(t *testing.T) {
	first := color.RGBA{B: 1, A: 0xFF}
	second := color.RGBA{B: 2, A: 0xFF}
	third := color.RGBA{B: 3, A: 0xFF}

	s := NewSoftware(32, 32)
	s.BeginPicking()
	s.Clear(color.RGBA{})
	s.FillPolygon(square(0, 0, 16, 16), first)
	s.FillPolygon(square(3, 3, 9, 9), second)
	s.FillPolygon(square(20, 20, 28, 28), third)
	s.FillPolygon(square(12, 12, 24, 24), second)

	tests := []struct {
		name string
		x, y int // device coordinates, top-left origin
		want color.RGBA
	}{
		{"first outside the overlap", 14, 1, first},
		{"second inside the first", 5, 5, second},
		{"second overlapping the first", 13, 13, second},
		{"third outside the overlap", 26, 26, third},
		{"second over the third", 21, 21, second},
		{"background", 30, 2, color.RGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := s.ReadPixel(tt.x, 31-tt.y); got != tt.want {
				t.Errorf("(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPickEdgesOnlyCarryAssignedCodes(t *testing.T) {
	first := color.RGBA{B: 1, A: 0xFF}
	second := color.RGBA{B: 2, A: 0xFF}

	s := NewSoftware(16, 16)
	s.BeginPicking()
	s.Clear(color.RGBA{})
	s.FillPolygon([]math.Vec2{{X: 0, Y: 0}, {X: 10.5, Y: 0}, {X: 10.5, Y: 16}, {X: 0, Y: 16}}, second)
	s.FillPolygon([]math.Vec2{{X: 11.25, Y: 2.75}, {X: 14.8, Y: 3.1}, {X: 13.3, Y: 12.6}}, first)

	if got := s.pick.RGBAAt(9, 8); got != second {
		t.Errorf("interior pixel = %v", got)
	}
	if got := s.pick.RGBAAt(10, 8); got != second {
		t.Errorf("half covered edge pixel = %v, want the exact code", got)
	}
	if got := s.pick.RGBAAt(15, 8); got != (color.RGBA{}) {
		t.Errorf("uncovered pixel = %v", got)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			switch got := s.pick.RGBAAt(x, y); got {
			case first, second, color.RGBA{}:
			default:
				t.Fatalf("pixel (%d,%d) holds an unassigned code %v", x, y, got)
			}
		}
	}
}

func TestPickSeamsAreClosed(t *testing.T) {
	code := color.RGBA{G: 5, A: 0xFF}
	s := NewSoftware(8, 8)
	s.BeginPicking()
	s.Clear(color.RGBA{})
	// Four quads of one object meet inside pixel (4,4).
	for _, q := range [][4]float64{{0, 0, 4.5, 4.5}, {4.5, 0, 8, 4.5}, {0, 4.5, 4.5, 8}, {4.5, 4.5, 8, 8}} {
		s.FillPolygon(square(q[0], q[1], q[2], q[3]), code)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := s.pick.RGBAAt(x, y); got != code {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, code)
			}
		}
	}
}

func TestFrameWithoutBlendingKeepsOtherPixels(t *testing.T) {
	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	red := color.RGBA{R: 0xFF, A: 0xFF}

	s := NewSoftware(8, 8)
	s.Clear(white)
	s.FillPolygon(square(0, 0, 3, 3), red)
	s.SetBlending(false)
	s.FillPolygon(square(4, 4, 8, 8), color.RGBA{})

	if got := s.frame.RGBAAt(1, 1); got != red {
		t.Errorf("earlier polygon lost: %v", got)
	}
	if got := s.frame.RGBAAt(2, 6); got != white {
		t.Errorf("pixel outside both polygons changed: %v", got)
	}
	if got := s.frame.RGBAAt(6, 6); got != (color.RGBA{}) {
		t.Errorf("expected the source to replace the frame without blending, got %v", got)
	}
}

func TestPushPopState(t *testing.T) {
	s := NewSoftware(4, 4)
	s.PushState()
	s.BeginPicking()
	s.SetBlending(false)
	s.PopState()
	if s.IsPicking() || !s.blend {
		t.Errorf("state not restored")
	}
	s.PopState()
}

func TestResize(t *testing.T) {
	s := NewSoftware(4, 4)
	s.Resize(16, 9)
	if b := s.Bounds(); b.Dx() != 16 || b.Dy() != 9 {
		t.Errorf("bounds = %v", b)
	}
	s.FillPolygon(square(0, 0, 1, 1), color.RGBA{A: 0xFF})
	s.Resize(0, 0)
	s.FillPolygon(square(0, 0, 1, 1), color.RGBA{A: 0xFF})
}
