package globe

import (
	m "math"

	"github.com/spaghettifunk/terra/engine/math"
)

// Projection maps geographic locations onto the plane of a FlatGlobe.
// Projected points keep the elevation on +Z.
type Projection interface {
	Kind() ProjectionKind
	GeographicToCartesian(radius float64, latitude, longitude math.Angle, elevation float64) math.Vec3
	// CartesianToGeographic does not normalize its result so callers can tell
	// points outside the projected domain apart.
	CartesianToGeographic(radius float64, point math.Vec3) Position
}

// mercatorLatitudeLimit keeps the Mercator y coordinate finite.
const mercatorLatitudeLimit math.Angle = 75

/** @brief Plate carrée: longitude and latitude scale linearly. */
type EquirectangularProjection struct{}

func (EquirectangularProjection) Kind() ProjectionKind { return ProjectionEquirectangular }

func (EquirectangularProjection) GeographicToCartesian(radius float64, latitude, longitude math.Angle, elevation float64) math.Vec3 {
	return math.Vec3{
		X: radius * longitude.Radians(),
		Y: radius * latitude.Radians(),
		Z: elevation,
	}
}

func (EquirectangularProjection) CartesianToGeographic(radius float64, point math.Vec3) Position {
	return Position{
		Latitude:  math.AngleFromRadians(point.Y / radius),
		Longitude: math.AngleFromRadians(point.X / radius),
		Elevation: point.Z,
	}
}

/** @brief Spherical Mercator, latitudes clamped to ±75°. */
type MercatorProjection struct{}

func (MercatorProjection) Kind() ProjectionKind { return ProjectionMercator }

func (MercatorProjection) GeographicToCartesian(radius float64, latitude, longitude math.Angle, elevation float64) math.Vec3 {
	lat := math.Clamp(latitude, -mercatorLatitudeLimit, mercatorLatitudeLimit)
	return math.Vec3{
		X: radius * longitude.Radians(),
		Y: radius * m.Log(m.Tan(m.Pi/4+lat.Radians()/2)),
		Z: elevation,
	}
}

func (MercatorProjection) CartesianToGeographic(radius float64, point math.Vec3) Position {
	return Position{
		Latitude:  math.AngleFromRadians(m.Atan(m.Sinh(point.Y / radius))),
		Longitude: math.AngleFromRadians(point.X / radius),
		Elevation: point.Z,
	}
}

/** @brief Equal-area sinusoidal projection. */
type SinusoidalProjection struct{}

func (SinusoidalProjection) Kind() ProjectionKind { return ProjectionSinusoidal }

func (SinusoidalProjection) GeographicToCartesian(radius float64, latitude, longitude math.Angle, elevation float64) math.Vec3 {
	return math.Vec3{
		X: radius * longitude.Radians() * latitude.Cos(),
		Y: radius * latitude.Radians(),
		Z: elevation,
	}
}

func (SinusoidalProjection) CartesianToGeographic(radius float64, point math.Vec3) Position {
	lat := point.Y / radius
	return Position{
		Latitude:  math.AngleFromRadians(lat),
		Longitude: math.AngleFromRadians(divideOrZero(point.X, radius*m.Cos(lat))),
		Elevation: point.Z,
	}
}

/**
 * @brief Sinusoidal variant that compresses longitudes with cos(lat)^0.3,
 * which keeps high latitudes wider than the equal-area form.
 */
type ModifiedSinusoidalProjection struct{}

const modifiedSinusoidalExponent = 0.3

func (ModifiedSinusoidalProjection) Kind() ProjectionKind { return ProjectionModifiedSinusoidal }

func (ModifiedSinusoidalProjection) GeographicToCartesian(radius float64, latitude, longitude math.Angle, elevation float64) math.Vec3 {
	return math.Vec3{
		X: radius * longitude.Radians() * m.Pow(m.Abs(latitude.Cos()), modifiedSinusoidalExponent),
		Y: radius * latitude.Radians(),
		Z: elevation,
	}
}

func (ModifiedSinusoidalProjection) CartesianToGeographic(radius float64, point math.Vec3) Position {
	lat := point.Y / radius
	return Position{
		Latitude:  math.AngleFromRadians(lat),
		Longitude: math.AngleFromRadians(divideOrZero(point.X, radius*m.Pow(m.Abs(m.Cos(lat)), modifiedSinusoidalExponent))),
		Elevation: point.Z,
	}
}

// divideOrZero collapses meridians at the poles, where the projected width is 0.
func divideOrZero(n, d float64) float64 {
	if m.Abs(d) < 1e-12 {
		return 0
	}
	return n / d
}
