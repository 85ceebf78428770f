package math

// Vec2 represents a 2D vector, usually a screen coordinate.
type Vec2 struct {
	X, Y float64
}

// Vec3 represents a 3D vector in model coordinates (meters).
type Vec3 struct {
	X, Y, Z float64
}

// Vec4 represents a 4D vector. Plane coefficients and homogeneous points
// both use it.
type Vec4 struct {
	X, Y, Z, W float64
}

/**
 * @brief Angle expressed in degrees.
 * Geodetic quantities are almost always entered and displayed in degrees,
 * the trigonometric helpers convert on demand.
 */
type Angle float64

/**
 * @brief a 4x4 matrix, used to represent model, view and projection transforms.
 * Elements are stored row-major, Data[row*4+col], and the matrix multiplies
 * column vectors: p' = M * p. Translation lives in Data[3], Data[7] and Data[11].
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float64
}

/**
 * @brief A line described by an origin and a direction. The direction is
 * not required to be unit length; points are origin + t * direction.
 */
type Line struct {
	Origin    Vec3
	Direction Vec3
}

/**
 * @brief A plane in the form ax + by + cz + d = 0 stored as (a, b, c, d).
 * The normal (a, b, c) points into the half space considered inside.
 */
type Plane struct {
	Vector Vec4
}

/**
 * @brief A frustum made of six planes whose normals point inward.
 */
type Frustum struct {
	Left   Plane
	Right  Plane
	Bottom Plane
	Top    Plane
	Near   Plane
	Far    Plane
}

// Triangle is three model-space vertices.
type Triangle struct {
	A, B, C Vec3
}

// Intersection is a point produced by a line or triangle intersection test.
type Intersection struct {
	Point Vec3
	// Tangent is set when the line only grazes the surface.
	Tangent bool
}
