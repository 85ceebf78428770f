package metadata

import (
	"fmt"

	"github.com/spaghettifunk/terra/engine/core"
)

// Viewport is the device rectangle a view renders into. Coordinates are
// device pixels with the origin at the top-left corner.
type Viewport struct {
	X      int
	Y      int
	Width  int
	Height int
}

func NewViewport(x, y, width, height int) Viewport {
	return Viewport{X: x, Y: y, Width: width, Height: height}
}

// Validate rejects negative dimensions.
func (v Viewport) Validate() error {
	if v.Width < 0 || v.Height < 0 {
		return core.NewPreconditionError("Viewport.Validate", core.ErrInvalidViewport,
			"width=%d height=%d", v.Width, v.Height)
	}
	return nil
}

// IsEmpty reports whether nothing can be drawn into the viewport.
func (v Viewport) IsEmpty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Contains reports whether the device pixel lies inside the viewport.
func (v Viewport) Contains(x, y int) bool {
	return x >= v.X && x < v.X+v.Width && y >= v.Y && y < v.Y+v.Height
}

// FlipY converts a top-left device row into the bottom-left row used by
// the rasterizer's read back.
func (v Viewport) FlipY(y int) int {
	return v.Height - y - 1
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", v.Width, v.Height, v.X, v.Y)
}
