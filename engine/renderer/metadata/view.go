package metadata

import (
	"github.com/spaghettifunk/terra/engine/globe"
	"github.com/spaghettifunk/terra/engine/math"
)

// View places the camera for a frame. Apply recomputes every matrix from the
// current eye state and the draw context's viewport.
type View interface {
	Apply(dc *DrawContext) error
	Globe() globe.Globe
	SetGlobe(g globe.Globe)
	EyePosition() globe.Position
	// ComputeRayFromScreenPoint returns the ray through a top-left device
	// pixel, false when the matrices cannot be inverted.
	ComputeRayFromScreenPoint(x, y float64) (math.Line, bool)
}

// ViewState is the camera as it was applied for one frame. A new value is
// produced by every Apply so later frames never alias it.
type ViewState struct {
	EyePosition globe.Position
	EyePoint    math.Vec3
	Forward     math.Vec3
	Up          math.Vec3
	Heading     math.Angle
	Tilt        math.Angle
	Roll        math.Angle
	FieldOfView math.Angle

	NearClipDistance float64
	FarClipDistance  float64
	HorizonDistance  float64

	Viewport            Viewport
	Modelview           math.Mat4
	ModelviewInverse    math.Mat4
	ModelviewTranspose  math.Mat4
	Projection          math.Mat4
	ModelviewProjection math.Mat4
	Frustum             math.Frustum
	FrustumInModel      math.Frustum
}

// Project maps a model point to window coordinates with a bottom-left
// origin. The returned z is the depth in [0, 1]; false when the point sits
// on the eye plane.
func (vs *ViewState) Project(point math.Vec3) (math.Vec3, bool) {
	clip := vs.ModelviewProjection.MulVec4(point.ToVec4(1))
	if clip.W == 0 {
		return math.Vec3{}, false
	}
	ndc := math.Vec3{X: clip.X / clip.W, Y: clip.Y / clip.W, Z: clip.Z / clip.W}
	return math.Vec3{
		X: float64(vs.Viewport.X) + float64(vs.Viewport.Width)*(ndc.X+1)/2,
		Y: float64(vs.Viewport.Y) + float64(vs.Viewport.Height)*(ndc.Y+1)/2,
		Z: (ndc.Z + 1) / 2,
	}, true
}
