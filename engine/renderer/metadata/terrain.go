package metadata

import (
	"image"

	"github.com/google/uuid"
)

// Tessellator builds the renderable surface for the current frame. A nil
// geometry with a nil error means there is nothing to draw.
type Tessellator interface {
	ID() uuid.UUID
	Tessellate(dc *DrawContext) (SurfaceGeometry, error)
}

// SurfaceGeometry is the tessellated terrain of one frame.
type SurfaceGeometry interface {
	// Len returns the number of tiles or patches.
	Len() int
	Render(dc *DrawContext) error
	// Pick registers the terrain as a pick candidate when it lies under point.
	Pick(dc *DrawContext, point image.Point) error
}
