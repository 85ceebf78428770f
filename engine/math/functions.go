package math

import (
	m "math"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float64 = m.Pi
	/** @brief An approximate representation of PI multiplied by 2. */
	K_PI_2 float64 = 2.0 * K_PI
	/** @brief An approximate representation of PI divided by 2. */
	K_HALF_PI float64 = 0.5 * K_PI
	/** @brief An approximate representation of PI divided by 4. */
	K_QUARTER_PI float64 = 0.25 * K_PI
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float64 = K_PI / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	K_RAD2DEG_MULTIPLIER float64 = 180.0 / K_PI
	/** @brief The multiplier to convert seconds to milliseconds. */
	K_SEC_TO_MS_MULTIPLIER float64 = 1000.0
	/** @brief Smallest positive number where 1.0 + EPSILON != 1.0 */
	K_EPSILON float64 = 2.220446049250313e-16
)

/**
 * @brief Converts the provided degrees to radians.
 */
func DegToRad(degrees float64) float64 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

/**
 * @brief Converts the provided radians to degrees.
 */
func RadToDeg(radians float64) float64 {
	return radians * K_RAD2DEG_MULTIPLIER
}

// ------------------------------------------
// Angle
// ------------------------------------------

// AngleFromRadians builds an Angle from a value in radians.
func AngleFromRadians(radians float64) Angle {
	return Angle(RadToDeg(radians))
}

func (a Angle) Degrees() float64 {
	return float64(a)
}

func (a Angle) Radians() float64 {
	return DegToRad(float64(a))
}

func (a Angle) Sin() float64 {
	return m.Sin(a.Radians())
}

func (a Angle) Cos() float64 {
	return m.Cos(a.Radians())
}

// TanHalfAngle returns tan(a/2), the quantity field-of-view math is built on.
func (a Angle) TanHalfAngle() float64 {
	return m.Tan(0.5 * a.Radians())
}

// NormalizedLatitude folds the angle into [-90, 90].
func (a Angle) NormalizedLatitude() Angle {
	lat := float64(a.NormalizedLongitude())
	if lat > 90 {
		return Angle(180 - lat)
	}
	if lat < -90 {
		return Angle(-180 - lat)
	}
	return Angle(lat)
}

// NormalizedLongitude folds the angle into (-180, 180].
func (a Angle) NormalizedLongitude() Angle {
	lon := m.Mod(float64(a), 360)
	if lon > 180 {
		return Angle(lon - 360)
	}
	if lon <= -180 {
		return Angle(lon + 360)
	}
	return Angle(lon)
}

// ------------------------------------------
// Vector 2
// ------------------------------------------

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// ------------------------------------------
// Vector 3
// ------------------------------------------

/**
 * @brief Creates and returns a new 3-element vector using the supplied values.
 *
 * @param x The x value.
 * @param y The y value.
 * @param z The z value.
 * @return A new 3-element vector.
 */
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

/**
 * @brief Returns a new vec4 using vector as the x, y and z components and w for w.
 */
func (v Vec3) ToVec4(w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

/**
 * @brief Multiplies all elements of the vector by scalar and returns a copy of the result.
 */
func (v Vec3) MulScalar(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3) Length() float64 {
	return m.Sqrt(v.LengthSquared())
}

/**
 * @brief Returns a normalized copy of the supplied vector. The zero vector
 * is returned unchanged.
 */
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return v
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

/**
 * @brief Returns the dot product between the provided vectors. Typically used
 * to calculate the difference in direction.
 */
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

/**
 * @brief Calculates and returns the cross product of the supplied vectors.
 * The cross product is a new vector which is orthoganal to both provided vectors.
 */
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

/**
 * @brief Compares all elements of v and other and ensures the difference
 * is less than tolerance.
 */
func (v Vec3) Compare(other Vec3, tolerance float64) bool {
	return m.Abs(v.X-other.X) <= tolerance &&
		m.Abs(v.Y-other.Y) <= tolerance &&
		m.Abs(v.Z-other.Z) <= tolerance
}

func (v Vec3) Distance(other Vec3) float64 {
	return v.Sub(other).Length()
}

// AngleBetween returns the angle between two non-zero vectors.
func (v Vec3) AngleBetween(other Vec3) Angle {
	a := v.Length() * other.Length()
	if a == 0 {
		return 0
	}
	cosine := Clamp(v.Dot(other)/a, -1.0, 1.0)
	return AngleFromRadians(m.Acos(cosine))
}

// ------------------------------------------
// Vector 4
// ------------------------------------------

func NewVec4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

/**
 * @brief Returns a new vec3 containing the x, y and z components of the
 * supplied vec4, essentially dropping the w component.
 */
func (v Vec4) ToVec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

func (v Vec4) Dot(other Vec4) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z + v.W*other.W
}

// ------------------------------------------
// Matrix 4
// ------------------------------------------

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0, 0},
 *   {0, 1, 0, 0},
 *   {0, 0, 1, 0},
 *   {0, 0, 0, 1}
 * }
 *
 * @return A new identity matrix
 */
func NewMat4Identity() Mat4 {
	out_matrix := Mat4{}
	out_matrix.Data[0] = 1.0
	out_matrix.Data[5] = 1.0
	out_matrix.Data[10] = 1.0
	out_matrix.Data[15] = 1.0
	return out_matrix
}

// NewMat4 builds a matrix from its elements listed row by row.
func NewMat4(
	m00, m01, m02, m03,
	m10, m11, m12, m13,
	m20, m21, m22, m23,
	m30, m31, m32, m33 float64) Mat4 {
	return Mat4{Data: [16]float64{
		m00, m01, m02, m03,
		m10, m11, m12, m13,
		m20, m21, m22, m23,
		m30, m31, m32, m33,
	}}
}

/**
 * @brief Returns the result of multiplying mt and other (mt * other).
 * Applied to a point, other acts first.
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	out_matrix := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := 0.0
			for i := 0; i < 4; i++ {
				sum += mt.Data[row*4+i] * other.Data[i*4+col]
			}
			out_matrix.Data[row*4+col] = sum
		}
	}
	return out_matrix
}

// MulVec4 returns mt * v.
func (mt Mat4) MulVec4(v Vec4) Vec4 {
	d := mt.Data
	return Vec4{
		d[0]*v.X + d[1]*v.Y + d[2]*v.Z + d[3]*v.W,
		d[4]*v.X + d[5]*v.Y + d[6]*v.Z + d[7]*v.W,
		d[8]*v.X + d[9]*v.Y + d[10]*v.Z + d[11]*v.W,
		d[12]*v.X + d[13]*v.Y + d[14]*v.Z + d[15]*v.W,
	}
}

// TransformPoint applies the matrix to p with w = 1 and drops w. Only valid
// for affine matrices.
func (mt Mat4) TransformPoint(p Vec3) Vec3 {
	return mt.MulVec4(p.ToVec4(1)).ToVec3()
}

// TransformDirection applies the matrix to d with w = 0.
func (mt Mat4) TransformDirection(d Vec3) Vec3 {
	return mt.MulVec4(d.ToVec4(0)).ToVec3()
}

/**
 * @brief Returns a transposed copy of the provided matrix (rows->colums)
 */
func (mt Mat4) Transposed() Mat4 {
	out_matrix := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out_matrix.Data[col*4+row] = mt.Data[row*4+col]
		}
	}
	return out_matrix
}

/**
 * @brief Creates and returns an inverse of the provided matrix.
 *
 * @return The inverted matrix and true, or the zero matrix and false
 * when the matrix is singular.
 */
func (mt Mat4) Inverse() (Mat4, bool) {
	d := mt.Data
	var o [16]float64

	o[0] = d[5]*d[10]*d[15] - d[5]*d[11]*d[14] - d[9]*d[6]*d[15] + d[9]*d[7]*d[14] + d[13]*d[6]*d[11] - d[13]*d[7]*d[10]
	o[4] = -d[4]*d[10]*d[15] + d[4]*d[11]*d[14] + d[8]*d[6]*d[15] - d[8]*d[7]*d[14] - d[12]*d[6]*d[11] + d[12]*d[7]*d[10]
	o[8] = d[4]*d[9]*d[15] - d[4]*d[11]*d[13] - d[8]*d[5]*d[15] + d[8]*d[7]*d[13] + d[12]*d[5]*d[11] - d[12]*d[7]*d[9]
	o[12] = -d[4]*d[9]*d[14] + d[4]*d[10]*d[13] + d[8]*d[5]*d[14] - d[8]*d[6]*d[13] - d[12]*d[5]*d[10] + d[12]*d[6]*d[9]
	o[1] = -d[1]*d[10]*d[15] + d[1]*d[11]*d[14] + d[9]*d[2]*d[15] - d[9]*d[3]*d[14] - d[13]*d[2]*d[11] + d[13]*d[3]*d[10]
	o[5] = d[0]*d[10]*d[15] - d[0]*d[11]*d[14] - d[8]*d[2]*d[15] + d[8]*d[3]*d[14] + d[12]*d[2]*d[11] - d[12]*d[3]*d[10]
	o[9] = -d[0]*d[9]*d[15] + d[0]*d[11]*d[13] + d[8]*d[1]*d[15] - d[8]*d[3]*d[13] - d[12]*d[1]*d[11] + d[12]*d[3]*d[9]
	o[13] = d[0]*d[9]*d[14] - d[0]*d[10]*d[13] - d[8]*d[1]*d[14] + d[8]*d[2]*d[13] + d[12]*d[1]*d[10] - d[12]*d[2]*d[9]
	o[2] = d[1]*d[6]*d[15] - d[1]*d[7]*d[14] - d[5]*d[2]*d[15] + d[5]*d[3]*d[14] + d[13]*d[2]*d[7] - d[13]*d[3]*d[6]
	o[6] = -d[0]*d[6]*d[15] + d[0]*d[7]*d[14] + d[4]*d[2]*d[15] - d[4]*d[3]*d[14] - d[12]*d[2]*d[7] + d[12]*d[3]*d[6]
	o[10] = d[0]*d[5]*d[15] - d[0]*d[7]*d[13] - d[4]*d[1]*d[15] + d[4]*d[3]*d[13] + d[12]*d[1]*d[7] - d[12]*d[3]*d[5]
	o[14] = -d[0]*d[5]*d[14] + d[0]*d[6]*d[13] + d[4]*d[1]*d[14] - d[4]*d[2]*d[13] - d[12]*d[1]*d[6] + d[12]*d[2]*d[5]
	o[3] = -d[1]*d[6]*d[11] + d[1]*d[7]*d[10] + d[5]*d[2]*d[11] - d[5]*d[3]*d[10] - d[9]*d[2]*d[7] + d[9]*d[3]*d[6]
	o[7] = d[0]*d[6]*d[11] - d[0]*d[7]*d[10] - d[4]*d[2]*d[11] + d[4]*d[3]*d[10] + d[8]*d[2]*d[7] - d[8]*d[3]*d[6]
	o[11] = -d[0]*d[5]*d[11] + d[0]*d[7]*d[9] + d[4]*d[1]*d[11] - d[4]*d[3]*d[9] - d[8]*d[1]*d[7] + d[8]*d[3]*d[5]
	o[15] = d[0]*d[5]*d[10] - d[0]*d[6]*d[9] - d[4]*d[1]*d[10] + d[4]*d[2]*d[9] + d[8]*d[1]*d[6] - d[8]*d[2]*d[5]

	det := d[0]*o[0] + d[1]*o[4] + d[2]*o[8] + d[3]*o[12]
	if det == 0 || m.IsNaN(det) || m.IsInf(det, 0) {
		return Mat4{}, false
	}

	inv := 1.0 / det
	for i := range o {
		o[i] *= inv
	}
	return Mat4{Data: o}, true
}

/**
 * @brief Compares all elements of mt and other and ensures the difference
 * is less than tolerance.
 */
func (mt Mat4) Compare(other Mat4, tolerance float64) bool {
	for i := range mt.Data {
		if m.Abs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}

/**
 * @brief Creates and returns a translation matrix from the given position.
 */
func NewMat4Translation(position Vec3) Mat4 {
	out_matrix := NewMat4Identity()
	out_matrix.Data[3] = position.X
	out_matrix.Data[7] = position.Y
	out_matrix.Data[11] = position.Z
	return out_matrix
}

/**
 * @brief Returns a scale matrix using the provided scale.
 */
func NewMat4Scale(scale Vec3) Mat4 {
	out_matrix := NewMat4Identity()
	out_matrix.Data[0] = scale.X
	out_matrix.Data[5] = scale.Y
	out_matrix.Data[10] = scale.Z
	return out_matrix
}

/**
 * @brief Creates a counter-clockwise rotation matrix about the x axis.
 */
func NewMat4EulerX(angle Angle) Mat4 {
	out_matrix := NewMat4Identity()
	c := angle.Cos()
	s := angle.Sin()

	out_matrix.Data[5] = c
	out_matrix.Data[6] = -s
	out_matrix.Data[9] = s
	out_matrix.Data[10] = c
	return out_matrix
}

/**
 * @brief Creates a counter-clockwise rotation matrix about the y axis.
 */
func NewMat4EulerY(angle Angle) Mat4 {
	out_matrix := NewMat4Identity()
	c := angle.Cos()
	s := angle.Sin()

	out_matrix.Data[0] = c
	out_matrix.Data[2] = s
	out_matrix.Data[8] = -s
	out_matrix.Data[10] = c
	return out_matrix
}

/**
 * @brief Creates a counter-clockwise rotation matrix about the z axis.
 */
func NewMat4EulerZ(angle Angle) Mat4 {
	out_matrix := NewMat4Identity()
	c := angle.Cos()
	s := angle.Sin()

	out_matrix.Data[0] = c
	out_matrix.Data[1] = -s
	out_matrix.Data[4] = s
	out_matrix.Data[5] = c
	return out_matrix
}

/**
 * @brief Creates a counter-clockwise rotation of angle about an arbitrary axis.
 * The axis does not need to be normalized.
 */
func NewMat4AxisAngle(axis Vec3, angle Angle) Mat4 {
	a := axis.Normalize()
	c := angle.Cos()
	s := angle.Sin()
	t := 1 - c

	return NewMat4(
		c+a.X*a.X*t, a.X*a.Y*t-a.Z*s, a.X*a.Z*t+a.Y*s, 0,
		a.Y*a.X*t+a.Z*s, c+a.Y*a.Y*t, a.Y*a.Z*t-a.X*s, 0,
		a.Z*a.X*t-a.Y*s, a.Z*a.Y*t+a.X*s, c+a.Z*a.Z*t, 0,
		0, 0, 0, 1)
}

/**
 * @brief Creates and returns a perspective matrix built from a horizontal
 * field of view. The vertical scale is derived from the viewport aspect.
 *
 * @param horizontalFov The horizontal field of view.
 * @param viewportWidth The viewport width in pixels.
 * @param viewportHeight The viewport height in pixels.
 * @param near_clip The near clipping plane distance.
 * @param far_clip The far clipping plane distance.
 * @return A new perspective matrix.
 */
func NewMat4Perspective(horizontalFov Angle, viewportWidth, viewportHeight, near_clip, far_clip float64) Mat4 {
	f := 1.0 / horizontalFov.TanHalfAngle()
	return NewMat4(
		f, 0, 0, 0,
		0, f*viewportWidth/viewportHeight, 0, 0,
		0, 0, -(far_clip+near_clip)/(far_clip-near_clip), -(2.0*far_clip*near_clip)/(far_clip-near_clip),
		0, 0, -1, 0)
}

/**
 * @brief Returns the translation component of an affine matrix.
 */
func (mt Mat4) Translation() Vec3 {
	return Vec3{mt.Data[3], mt.Data[7], mt.Data[11]}
}

/**
 * @brief Returns a copy of mt with the translation removed.
 */
func (mt Mat4) RotationOnly() Mat4 {
	out_matrix := mt
	out_matrix.Data[3] = 0
	out_matrix.Data[7] = 0
	out_matrix.Data[11] = 0
	out_matrix.Data[12] = 0
	out_matrix.Data[13] = 0
	out_matrix.Data[14] = 0
	out_matrix.Data[15] = 1
	return out_matrix
}

// At returns the element at row, col.
func (mt Mat4) At(row, col int) float64 {
	return mt.Data[row*4+col]
}
