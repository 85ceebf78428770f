package math

import m "math"

// ------------------------------------------
// Line
// ------------------------------------------

// NewLine returns a line through origin along direction.
func NewLine(origin, direction Vec3) Line {
	return Line{Origin: origin, Direction: direction}
}

// NewLineFromSegment returns the line through a and b, parameterised so that
// t = 0 is a and t = 1 is b.
func NewLineFromSegment(a, b Vec3) Line {
	return Line{Origin: a, Direction: b.Sub(a)}
}

// PointAt returns origin + t * direction.
func (l Line) PointAt(t float64) Vec3 {
	return l.Origin.Add(l.Direction.MulScalar(t))
}

// NearestPointTo returns the point on the (infinite) line closest to p.
func (l Line) NearestPointTo(p Vec3) Vec3 {
	dd := l.Direction.LengthSquared()
	if dd == 0 {
		return l.Origin
	}
	t := p.Sub(l.Origin).Dot(l.Direction) / dd
	return l.PointAt(t)
}

// DistanceTo returns the distance between p and the line.
func (l Line) DistanceTo(p Vec3) float64 {
	return p.Distance(l.NearestPointTo(p))
}

// ------------------------------------------
// Plane
// ------------------------------------------

/**
 * @brief Creates a plane from its four coefficients.
 */
func NewPlane(a, b, c, d float64) Plane {
	return Plane{Vector: Vec4{a, b, c, d}}
}

// Normal returns the (not necessarily unit) plane normal.
func (p Plane) Normal() Vec3 {
	return p.Vector.ToVec3()
}

// Distance returns the plane's d coefficient.
func (p Plane) Distance() float64 {
	return p.Vector.W
}

// DistanceTo returns the signed distance from point to the plane, scaled by
// the normal length. Positive values are on the inside.
func (p Plane) DistanceTo(point Vec3) float64 {
	return p.Vector.Dot(point.ToVec4(1))
}

// Transform returns the plane transformed by matrix. To move an eye-space
// plane into model space pass the transpose of the modelview matrix.
func (p Plane) Transform(matrix Mat4) Plane {
	return Plane{Vector: matrix.MulVec4(p.Vector)}
}

// IntersectLine returns the parameter t where the line crosses the plane
// and false when the line is parallel to it.
func (p Plane) IntersectLine(l Line) (float64, bool) {
	ldotv := p.Normal().Dot(l.Direction)
	if ldotv == 0 {
		return 0, false
	}
	return -p.DistanceTo(l.Origin) / ldotv, true
}

// ------------------------------------------
// Frustum
// ------------------------------------------

/**
 * @brief Creates an eye-space perspective frustum. The eye sits at the origin looking
 * down -Z. All plane normals point into the frustum.
 *
 * @param horizontalFov The horizontal field of view.
 * @param viewportWidth The viewport width in pixels.
 * @param viewportHeight The viewport height in pixels.
 * @param near The distance to the near plane.
 * @param far The distance to the far plane.
 */
func NewFrustumFromPerspective(horizontalFov Angle, viewportWidth, viewportHeight, near, far float64) Frustum {
	focalLength := 1.0 / horizontalFov.TanHalfAngle()
	aspect := viewportHeight / viewportWidth
	lrLen := m.Sqrt(focalLength*focalLength + 1)
	btLen := m.Sqrt(focalLength*focalLength + aspect*aspect)

	return Frustum{
		Left:   NewPlane(focalLength/lrLen, 0, -1/lrLen, 0),
		Right:  NewPlane(-focalLength/lrLen, 0, -1/lrLen, 0),
		Bottom: NewPlane(0, focalLength/btLen, -aspect/btLen, 0),
		Top:    NewPlane(0, -focalLength/btLen, -aspect/btLen, 0),
		Near:   NewPlane(0, 0, -1, -near),
		Far:    NewPlane(0, 0, 1, far),
	}
}

// Planes returns the six planes in left, right, bottom, top, near, far order.
func (f Frustum) Planes() [6]Plane {
	return [6]Plane{f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far}
}

// Transform returns the frustum with every plane transformed by matrix.
func (f Frustum) Transform(matrix Mat4) Frustum {
	return Frustum{
		Left:   f.Left.Transform(matrix),
		Right:  f.Right.Transform(matrix),
		Bottom: f.Bottom.Transform(matrix),
		Top:    f.Top.Transform(matrix),
		Near:   f.Near.Transform(matrix),
		Far:    f.Far.Transform(matrix),
	}
}

// ContainsPoint reports whether point is inside or on every plane.
func (f Frustum) ContainsPoint(point Vec3) bool {
	for _, p := range f.Planes() {
		if p.DistanceTo(point) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether a sphere overlaps the frustum.
func (f Frustum) IntersectsSphere(center Vec3, radius float64) bool {
	for _, p := range f.Planes() {
		n := p.Normal().Length()
		if n == 0 {
			continue
		}
		if p.DistanceTo(center)/n < -radius {
			return false
		}
	}
	return true
}
