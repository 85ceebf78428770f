package components

import (
	m "math"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/globe"
	"github.com/spaghettifunk/terra/engine/math"
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
)

const (
	/** @brief The name of the default view. */
	DEFAULT_VIEW_NAME string = "default"

	DefaultFieldOfView     math.Angle = 45
	DefaultEyeElevation    float64    = 1e7
	MinimumNearDistance    float64    = 2
	MinimumFarDistance     float64    = 100
	MaximumTilt            math.Angle = 90
	// A lookAt tilt of exactly 90° makes the view ray tangent to the globe
	// and the pivot search unstable, so lookAt tilts stop one degree short.
	MaximumLookAtTilt math.Angle = 89
)

/**
 * @brief A camera placed relative to a globe. The eye is described by a
 * geodetic position and heading, tilt and roll angles; the matrices
 * are rebuilt from them when needed and frozen into a ViewState each
 * time the view is applied.
 *
 * Heading is clockwise from north, tilt is 0 looking straight down and
 * 90 looking at the horizon, roll turns about the view axis.
 */
type BasicView struct {
	globe globe.Globe

	/**
	 * @brief The eye position.
	 * NOTE: Do not set this directly, use SetEyePosition() instead
	 * so the matrices are recalculated when needed.
	 */
	eyePosition globe.Position
	heading     math.Angle
	tilt        math.Angle
	roll        math.Angle
	fieldOfView math.Angle

	nearMinimum float64
	farMinimum  float64

	/** @brief Internal flag used to determine when the matrices need to be rebuilt. */
	isDirty bool
	// cameraTransform maps eye coordinates into model coordinates. It is the
	// inverse of the modelview matrix.
	cameraTransform math.Mat4
	modelview       math.Mat4

	// The last applied frame.
	state *metadata.ViewState
}

// NewBasicView creates a view above (0°, 0°) looking straight down.
func NewBasicView(g globe.Globe) *BasicView {
	v := &BasicView{
		globe:       g,
		fieldOfView: DefaultFieldOfView,
		nearMinimum: MinimumNearDistance,
		farMinimum:  MinimumFarDistance,
	}
	v.Reset()
	return v
}

func (v *BasicView) Reset() {
	v.eyePosition = globe.NewPosition(0, 0, DefaultEyeElevation)
	v.heading = 0
	v.tilt = 0
	v.roll = 0
	v.cameraTransform = math.NewMat4Identity()
	v.modelview = math.NewMat4Identity()
	v.state = nil
	v.isDirty = true
}

func (v *BasicView) Globe() globe.Globe {
	return v.globe
}

func (v *BasicView) SetGlobe(g globe.Globe) {
	v.globe = g
	v.isDirty = true
}

func (v *BasicView) EyePosition() globe.Position {
	return v.eyePosition
}

func (v *BasicView) SetEyePosition(position globe.Position) {
	position.Latitude = math.Clamp(position.Latitude, -90, 90)
	position.Longitude = position.Longitude.NormalizedLongitude()
	v.eyePosition = position
	v.isDirty = true
}

func (v *BasicView) Heading() math.Angle {
	return v.heading
}

func (v *BasicView) SetHeading(heading math.Angle) {
	v.heading = heading.NormalizedLongitude()
	v.isDirty = true
}

func (v *BasicView) Tilt() math.Angle {
	return v.tilt
}

// SetTilt clamps tilt to [0, 90].
func (v *BasicView) SetTilt(tilt math.Angle) {
	v.tilt = math.Clamp(tilt, 0, MaximumTilt)
	v.isDirty = true
}

func (v *BasicView) Roll() math.Angle {
	return v.roll
}

func (v *BasicView) SetRoll(roll math.Angle) {
	v.roll = roll.NormalizedLongitude()
	v.isDirty = true
}

// SetOrientation sets the eye and all three angles at once.
func (v *BasicView) SetOrientation(eye globe.Position, heading, tilt, roll math.Angle) {
	v.SetEyePosition(eye)
	v.SetHeading(heading)
	v.SetTilt(tilt)
	v.SetRoll(roll)
}

func (v *BasicView) FieldOfView() math.Angle {
	return v.fieldOfView
}

// SetFieldOfView sets the horizontal field of view, which must be in (0, 180).
func (v *BasicView) SetFieldOfView(fov math.Angle) error {
	if fov <= 0 || fov >= 180 {
		return core.NewPreconditionError("BasicView.SetFieldOfView", core.ErrInvalidArgument,
			"field of view %v outside (0, 180)", fov)
	}
	v.fieldOfView = fov
	return nil
}

// SetClipMinimums overrides the near and far distance floors.
func (v *BasicView) SetClipMinimums(near, far float64) {
	if near > 0 {
		v.nearMinimum = near
	}
	if far > 0 {
		v.farMinimum = far
	}
}

/**
 * @brief Rebuilds the camera transform from the eye state if it changed:
 * C = O(eye) * Rz(-heading) * Rx(tilt) * Rz(roll), where O is the local
 * east/north/up frame at the eye. The modelview is the inverse of C.
 */
func (v *BasicView) update() {
	if !v.isDirty || v.globe == nil {
		return
	}
	c := v.globe.ComputeSurfaceOrientationAtPosition(v.eyePosition).
		Mul(math.NewMat4EulerZ(-v.heading)).
		Mul(math.NewMat4EulerX(v.tilt)).
		Mul(math.NewMat4EulerZ(v.roll))

	mv, ok := c.Inverse()
	if !ok {
		core.LogError("BasicView: camera transform at %v is singular", v.eyePosition)
		return
	}
	v.cameraTransform = c
	v.modelview = mv
	v.isDirty = false
}

func (v *BasicView) Modelview() math.Mat4 {
	v.update()
	return v.modelview
}

func (v *BasicView) ModelviewInverse() math.Mat4 {
	v.update()
	return v.cameraTransform
}

// EyePoint is the eye in model coordinates.
func (v *BasicView) EyePoint() math.Vec3 {
	v.update()
	return v.cameraTransform.Translation()
}

func (v *BasicView) Forward() math.Vec3 {
	v.update()
	return v.cameraTransform.TransformDirection(math.Vec3{X: 0, Y: 0, Z: -1}).Normalize()
}

func (v *BasicView) Up() math.Vec3 {
	v.update()
	return v.cameraTransform.TransformDirection(math.Vec3{X: 0, Y: 1, Z: 0}).Normalize()
}

// Right completes forward and up into a right-handed screen frame.
func (v *BasicView) Right() math.Vec3 {
	return v.Forward().Cross(v.Up())
}

// State returns the last applied frame, nil before the first Apply.
func (v *BasicView) State() *metadata.ViewState {
	return v.state
}

/**
 * @brief Applies the view for a frame: derives the clip distances, builds the
 * projection and frustums for the draw context's viewport and publishes a
 * fresh ViewState into the context.
 *
 * @param dc The draw context of the frame.
 * @return A precondition error when dc is nil, the view has no globe or the
 * viewport is invalid.
 */
func (v *BasicView) Apply(dc *metadata.DrawContext) error {
	if dc == nil {
		return core.NewPreconditionError("BasicView.Apply", core.ErrNilArgument, "draw context")
	}
	if v.globe == nil {
		return core.NewPreconditionError("BasicView.Apply", core.ErrMissingGlobe, "")
	}
	if err := dc.Viewport.Validate(); err != nil {
		return err
	}

	v.update()
	if v.isDirty {
		return core.NewPreconditionError("BasicView.Apply", core.ErrSingularMatrix,
			"camera transform at %v", v.eyePosition)
	}

	viewport := dc.Viewport
	width, height := float64(viewport.Width), float64(viewport.Height)
	if viewport.IsEmpty() {
		// Keep the matrices finite; nothing is drawn anyway.
		width, height = 1, 1
	}

	elevation := v.eyeElevationAboveSurface(dc.VerticalExaggeration)
	near := ComputeNearDistance(elevation, v.fieldOfView, v.nearMinimum)
	horizon := ComputeHorizonDistance(v.globe, v.eyePosition.Elevation)
	far := ComputeFarDistance(v.globe, v.eyePosition.Elevation, v.farMinimum)

	projection := math.NewMat4Perspective(v.fieldOfView, width, height, near, far)
	frustum := math.NewFrustumFromPerspective(v.fieldOfView, width, height, near, far)
	transpose := v.modelview.Transposed()

	v.state = &metadata.ViewState{
		EyePosition:         v.eyePosition,
		EyePoint:            v.cameraTransform.Translation(),
		Forward:             v.Forward(),
		Up:                  v.Up(),
		Heading:             v.heading,
		Tilt:                v.tilt,
		Roll:                v.roll,
		FieldOfView:         v.fieldOfView,
		NearClipDistance:    near,
		FarClipDistance:     far,
		HorizonDistance:     horizon,
		Viewport:            viewport,
		Modelview:           v.modelview,
		ModelviewInverse:    v.cameraTransform,
		ModelviewTranspose:  transpose,
		Projection:          projection,
		ModelviewProjection: projection.Mul(v.modelview),
		Frustum:             frustum,
		FrustumInModel:      frustum.Transform(transpose),
	}
	dc.ViewState = v.state
	return nil
}

func (v *BasicView) eyeElevationAboveSurface(verticalExaggeration float64) float64 {
	surface := v.globe.Elevation(v.eyePosition.Latitude, v.eyePosition.Longitude) * verticalExaggeration
	return v.eyePosition.Elevation - surface
}

func (v *BasicView) NearClipDistance() float64 {
	if v.state == nil {
		return v.nearMinimum
	}
	return v.state.NearClipDistance
}

func (v *BasicView) FarClipDistance() float64 {
	if v.state == nil {
		return v.farMinimum
	}
	return v.state.FarClipDistance
}

// ComputeHorizonDistance is the horizon distance for the current eye.
func (v *BasicView) ComputeHorizonDistance() float64 {
	return ComputeHorizonDistance(v.globe, v.eyePosition.Elevation)
}

/**
 * @brief Returns the ray through a device pixel. The pixel has a top-left
 * origin; it is flipped into the bottom-left convention of the
 * projection before unprojecting.
 *
 * @return The ray from the eye and true, or false before the first Apply
 * or when the modelview-projection matrix is singular.
 */
func (v *BasicView) ComputeRayFromScreenPoint(x, y float64) (math.Line, bool) {
	if v.state == nil {
		return math.Line{}, false
	}
	inv, ok := v.state.ModelviewProjection.Inverse()
	if !ok {
		core.LogDebug("BasicView: modelview-projection is singular, no ray for (%v, %v)", x, y)
		return math.Line{}, false
	}

	vp := v.state.Viewport
	if vp.IsEmpty() {
		return math.Line{}, false
	}
	yFlipped := float64(vp.Height) - y - 1
	ndcX := 2*(x-float64(vp.X))/float64(vp.Width) - 1
	ndcY := 2*(yFlipped-float64(vp.Y))/float64(vp.Height) - 1

	near, ok := unproject(inv, ndcX, ndcY, -1)
	if !ok {
		return math.Line{}, false
	}
	far, ok := unproject(inv, ndcX, ndcY, 1)
	if !ok {
		return math.Line{}, false
	}
	direction := far.Sub(near).Normalize()
	return math.NewLine(v.state.EyePoint, direction), true
}

func unproject(inv math.Mat4, x, y, z float64) (math.Vec3, bool) {
	p := inv.MulVec4(math.Vec4{X: x, Y: y, Z: z, W: 1})
	if p.W == 0 {
		return math.Vec3{}, false
	}
	return math.Vec3{X: p.X / p.W, Y: p.Y / p.W, Z: p.Z / p.W}, true
}

// ComputePositionFromScreenPoint returns the position under a device pixel.
func (v *BasicView) ComputePositionFromScreenPoint(x, y float64) (globe.Position, bool) {
	ray, ok := v.ComputeRayFromScreenPoint(x, y)
	if !ok || v.globe == nil {
		return globe.Position{}, false
	}
	p, ok := globe.NearestInFront(ray, v.globe.Intersect(ray, 0))
	if !ok {
		return globe.Position{}, false
	}
	return v.globe.ComputePositionFromPoint(p), true
}

// Project maps a model point to window coordinates (bottom-left origin).
func (v *BasicView) Project(point math.Vec3) (math.Vec3, bool) {
	if v.state == nil {
		return math.Vec3{}, false
	}
	return v.state.Project(point)
}

// LookAtPoint is where the view axis meets the globe, false when it misses.
func (v *BasicView) LookAtPoint() (math.Vec3, bool) {
	if v.globe == nil {
		return math.Vec3{}, false
	}
	ray := math.NewLine(v.EyePoint(), v.Forward())
	return globe.NearestInFront(ray, v.globe.Intersect(ray, 0))
}

// LookAtTilt is the angle between the surface normal at the lookAt point
// and the direction back to the eye.
func (v *BasicView) LookAtTilt() (math.Angle, bool) {
	pivot, ok := v.LookAtPoint()
	if !ok {
		return 0, false
	}
	normal := v.globe.ComputeSurfaceNormalAtPoint(pivot)
	return v.Forward().MulScalar(-1).AngleBetween(normal), true
}

/**
 * @brief Tilts the view about the lookAt point, keeping that point on the
 * view axis. Tilt is clamped to [0, 89].
 *
 * @return False, leaving the view untouched, when the view axis misses the
 * globe.
 */
func (v *BasicView) SetLookAtTilt(tilt math.Angle) bool {
	tilt = math.Clamp(tilt, 0, MaximumLookAtTilt)

	pivot, ok := v.LookAtPoint()
	if !ok {
		core.LogDebug("BasicView: no lookAt point, tilt unchanged")
		return false
	}
	current, _ := v.LookAtTilt()
	delta := tilt - current

	// The pivot sits at (0, 0, -d) in eye coordinates.
	d := v.EyePoint().Distance(pivot)
	c := v.cameraTransform.
		Mul(math.NewMat4Translation(math.Vec3{X: 0, Y: 0, Z: -d})).
		Mul(math.NewMat4EulerX(delta)).
		Mul(math.NewMat4Translation(math.Vec3{X: 0, Y: 0, Z: d}))
	v.setCameraTransform(c)
	return true
}

/**
 * @brief Turns the view about the surface normal at the lookAt point.
 * Heading is clockwise, so the rotation is by the negated delta.
 *
 * @return False, leaving the view untouched, when the view axis misses the
 * globe.
 */
func (v *BasicView) SetLookAtHeading(heading math.Angle) bool {
	pivot, ok := v.LookAtPoint()
	if !ok {
		core.LogDebug("BasicView: no lookAt point, heading unchanged")
		return false
	}
	delta := (heading - v.heading).NormalizedLongitude()
	normal := v.globe.ComputeSurfaceNormalAtPoint(pivot)

	c := math.NewMat4Translation(pivot).
		Mul(math.NewMat4AxisAngle(normal, -delta)).
		Mul(math.NewMat4Translation(pivot.MulScalar(-1))).
		Mul(v.cameraTransform)
	v.setCameraTransform(c)
	return true
}

// setCameraTransform adopts c and re-derives the eye position and angles
// from it so later edits compose with the new placement.
func (v *BasicView) setCameraTransform(c math.Mat4) {
	eye := v.globe.ComputePositionFromPoint(c.Translation())
	heading, tilt, roll := decomposeOrientation(
		v.globe.ComputeSurfaceOrientationAtPosition(eye).RotationOnly(), c.RotationOnly())

	v.eyePosition = eye
	v.heading = heading
	v.tilt = math.Clamp(tilt, 0, MaximumTilt)
	v.roll = roll
	v.isDirty = true
	v.update()
}

/**
 * @brief Extracts heading, tilt and roll from a camera rotation relative to
 * a local surface frame. The local rotation is Rz(-heading) * Rx(tilt) * Rz(roll),
 * a Z-X-Z Euler sequence.
 */
func decomposeOrientation(surface, camera math.Mat4) (math.Angle, math.Angle, math.Angle) {
	l := surface.Transposed().Mul(camera)

	sinTilt := m.Hypot(l.At(0, 2), l.At(1, 2))
	tilt := m.Atan2(sinTilt, l.At(2, 2))

	var a, roll float64
	if sinTilt < 1e-12 {
		// Looking straight down: heading and roll turn about the same axis.
		a = m.Atan2(l.At(1, 0), l.At(0, 0))
		roll = 0
	} else {
		a = m.Atan2(l.At(0, 2), -l.At(1, 2))
		roll = m.Atan2(l.At(2, 0), l.At(2, 1))
	}
	return math.AngleFromRadians(-a).NormalizedLongitude(),
		math.AngleFromRadians(tilt),
		math.AngleFromRadians(roll).NormalizedLongitude()
}

// ComputeHorizonDistance returns sqrt(h(2R+h)), 0 at or below the surface.
func ComputeHorizonDistance(g globe.Globe, elevation float64) float64 {
	if g == nil || elevation <= 0 {
		return 0
	}
	return m.Sqrt(elevation * (2*g.Radius() + elevation))
}

// ComputeNearDistance places the near plane so the visible surface in front
// of the eye is not clipped, never closer than minimum.
func ComputeNearDistance(elevation float64, fov math.Angle, minimum float64) float64 {
	tanHalfFov := fov.TanHalfAngle()
	near := elevation / (2 * m.Sqrt(2*tanHalfFov*tanHalfFov+1))
	if near < minimum || m.IsNaN(near) {
		return minimum
	}
	return near
}

// ComputeFarDistance puts the far plane at the horizon, never closer than
// minimum.
func ComputeFarDistance(g globe.Globe, elevation, minimum float64) float64 {
	far := ComputeHorizonDistance(g, elevation)
	if far < minimum {
		return minimum
	}
	return far
}
