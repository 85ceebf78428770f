package globe

import (
	m "math"

	"github.com/google/uuid"
	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/math"
)

const (
	WGS84EquatorialRadius    float64 = 6378137.0
	WGS84PolarRadius         float64 = 6356752.314245
	WGS84EccentricitySquared float64 = 0.00669437999013

	// Largest accepted difference between a supplied eccentricity squared and
	// the one implied by the radii.
	eccentricityTolerance float64 = 1e-9
)

// EllipsoidalGlobe is an oblate ellipsoid of revolution. Model coordinates
// put the polar axis on +Y, the prime meridian on +Z at the equator and
// 90°E on +X.
type EllipsoidalGlobe struct {
	id               uuid.UUID
	equatorialRadius float64
	polarRadius      float64
	es               float64
	elevationModel   ElevationModel
}

// NewEllipsoidalGlobe creates a globe from the three ellipsoid parameters.
// The eccentricity squared must agree with 1 - (polar/equatorial)^2.
func NewEllipsoidalGlobe(equatorialRadius, polarRadius, es float64, model ElevationModel) (*EllipsoidalGlobe, error) {
	if equatorialRadius <= 0 || polarRadius <= 0 {
		return nil, core.NewPreconditionError("NewEllipsoidalGlobe", core.ErrInvalidArgument,
			"radii must be positive, got equatorial=%g polar=%g", equatorialRadius, polarRadius)
	}
	implied := 1 - (polarRadius/equatorialRadius)*(polarRadius/equatorialRadius)
	if m.Abs(implied-es) > eccentricityTolerance {
		return nil, core.NewPreconditionError("NewEllipsoidalGlobe", core.ErrInconsistentEllipsoid,
			"es=%g but radii imply %g", es, implied)
	}
	return &EllipsoidalGlobe{
		id:               uuid.New(),
		equatorialRadius: equatorialRadius,
		polarRadius:      polarRadius,
		es:               es,
		elevationModel:   model,
	}, nil
}

// NewEllipsoidalGlobeFromRadii derives the eccentricity squared from the radii.
func NewEllipsoidalGlobeFromRadii(equatorialRadius, polarRadius float64, model ElevationModel) (*EllipsoidalGlobe, error) {
	if equatorialRadius <= 0 || polarRadius <= 0 {
		return nil, core.NewPreconditionError("NewEllipsoidalGlobeFromRadii", core.ErrInvalidArgument,
			"radii must be positive, got equatorial=%g polar=%g", equatorialRadius, polarRadius)
	}
	es := 1 - (polarRadius/equatorialRadius)*(polarRadius/equatorialRadius)
	return NewEllipsoidalGlobe(equatorialRadius, polarRadius, es, model)
}

// NewEarth returns a WGS84 globe with a flat elevation model.
func NewEarth() *EllipsoidalGlobe {
	return &EllipsoidalGlobe{
		id:               uuid.New(),
		equatorialRadius: WGS84EquatorialRadius,
		polarRadius:      WGS84PolarRadius,
		es:               WGS84EccentricitySquared,
		elevationModel:   NewZeroElevationModel(),
	}
}

func (g *EllipsoidalGlobe) ID() uuid.UUID { return g.id }

func (g *EllipsoidalGlobe) EquatorialRadius() float64 { return g.equatorialRadius }

func (g *EllipsoidalGlobe) PolarRadius() float64 { return g.polarRadius }

func (g *EllipsoidalGlobe) EccentricitySquared() float64 { return g.es }

func (g *EllipsoidalGlobe) Radius() float64 { return g.equatorialRadius }

func (g *EllipsoidalGlobe) MaximumRadius() float64 {
	return m.Max(g.equatorialRadius, g.polarRadius)
}

func (g *EllipsoidalGlobe) RadiusAt(latitude, longitude math.Angle) float64 {
	sinLat := latitude.Sin()
	cosLat := latitude.Cos()
	rpm := g.equatorialRadius / m.Sqrt(1.0-g.es*sinLat*sinLat)
	return rpm * m.Sqrt(cosLat*cosLat+(1.0-g.es)*(1.0-g.es)*sinLat*sinLat)
}

func (g *EllipsoidalGlobe) ElevationModel() ElevationModel { return g.elevationModel }

func (g *EllipsoidalGlobe) SetElevationModel(model ElevationModel) { g.elevationModel = model }

func (g *EllipsoidalGlobe) Elevation(latitude, longitude math.Angle) float64 {
	if g.elevationModel == nil {
		return 0
	}
	return g.elevationModel.Elevation(latitude, longitude)
}

func (g *EllipsoidalGlobe) ExtremeElevations(sector Sector) (float64, float64) {
	if g.elevationModel == nil {
		return 0, 0
	}
	return g.elevationModel.ExtremeElevations(sector)
}

// ComputePointFromPosition projects a geodetic position onto model
// coordinates using the prime-vertical radius of curvature.
func (g *EllipsoidalGlobe) ComputePointFromPosition(latitude, longitude math.Angle, elevation float64) math.Vec3 {
	cosLat := latitude.Cos()
	sinLat := latitude.Sin()
	cosLon := longitude.Cos()
	sinLon := longitude.Sin()

	rpm := g.equatorialRadius / m.Sqrt(1.0-g.es*sinLat*sinLat)

	return math.Vec3{
		X: (rpm + elevation) * cosLat * sinLon,
		Y: (rpm*(1.0-g.es) + elevation) * sinLat,
		Z: (rpm + elevation) * cosLat * cosLon,
	}
}

func (g *EllipsoidalGlobe) ComputePointFromLocation(ll LatLon) math.Vec3 {
	return g.ComputePointFromPosition(ll.Latitude, ll.Longitude, 0)
}

// ComputePositionFromPoint inverts ComputePointFromPosition with a closed
// form solution (H. Vermeille, "An analytical method to transform geocentric
// into geodetic coordinates", J. Geodesy 2011). It never iterates and is
// defined everywhere, including the poles and the center.
func (g *EllipsoidalGlobe) ComputePositionFromPoint(point math.Vec3) Position {
	// Rename axes so the polar axis is Z as in the paper.
	X := point.Z
	Y := point.X
	Z := point.Y
	XXpYY := X*X + Y*Y
	sqrtXXpYY := m.Sqrt(XXpYY)

	a := g.equatorialRadius
	ra2 := 1 / (a * a)
	e2 := g.es
	e4 := e2 * e2

	p := XXpYY * ra2
	q := Z * Z * (1 - e2) * ra2
	r := (p + q - e4) / 6

	var h, phi float64

	evoluteBorderTest := 8*r*r*r + e4*p*q
	if evoluteBorderTest > 0 || q != 0 {
		var u float64

		if evoluteBorderTest > 0 {
			// General case.
			rad1 := m.Sqrt(evoluteBorderTest)
			rad2 := m.Sqrt(e4 * p * q)

			if evoluteBorderTest > 10*e2 {
				rad3 := m.Cbrt((rad1 + rad2) * (rad1 + rad2))
				u = r + 0.5*rad3 + 2*r*r/rad3
			} else {
				// Close to the cusps of the evolute the single cube root loses
				// precision, take both roots instead.
				u = r + 0.5*m.Cbrt((rad1+rad2)*(rad1+rad2)) + 0.5*m.Cbrt((rad1-rad2)*(rad1-rad2))
			}
		} else {
			// Inside the evolute: trigonometric form.
			rad1 := m.Sqrt(-evoluteBorderTest)
			rad2 := m.Sqrt(-8 * r * r * r)
			rad3 := m.Sqrt(e4 * p * q)
			atan := 2 * m.Atan2(rad3, rad1+rad2) / 3

			u = -4 * r * m.Sin(atan) * m.Cos(m.Pi/6+atan)
		}

		v := m.Sqrt(u*u + e4*q)
		w := e2 * (u + v - q) / (2 * v)
		k := (u + v) / (m.Sqrt(w*w+u+v) + w)
		D := k * sqrtXXpYY / (k + e2)
		sqrtDDpZZ := m.Sqrt(D*D + Z*Z)

		h = (k + e2 - 1) * sqrtDDpZZ / k
		phi = 2 * m.Atan2(Z, sqrtDDpZZ+D)
	} else {
		// Singular disk in the equatorial plane.
		rad1 := m.Sqrt(1 - e2)
		rad2 := m.Sqrt(e2 - p)
		e := m.Sqrt(e2)

		h = -a * rad1 * rad2 / e
		phi = m.Atan2(m.Sqrt(m.Max(e4-p, 0)), m.Sqrt(p*(1-e2)))
	}

	// Half-angle form split in three cases keeps atan2 away from its branch cut.
	var lambda float64
	s2 := m.Sqrt2
	if (s2-1)*Y < sqrtXXpYY+X {
		// -135° < lambda < 135°
		lambda = 2 * m.Atan2(Y, sqrtXXpYY+X)
	} else if sqrtXXpYY+Y < (s2+1)*X {
		// -225° < lambda < 45°
		lambda = -m.Pi*0.5 + 2*m.Atan2(X, sqrtXXpYY-Y)
	} else {
		// -45° < lambda < 225°
		lambda = m.Pi*0.5 - 2*m.Atan2(X, sqrtXXpYY+Y)
	}

	return PositionFromRadians(phi, lambda, h)
}

func (g *EllipsoidalGlobe) ComputeSurfaceNormalAtLocation(latitude, longitude math.Angle) math.Vec3 {
	cosLat := latitude.Cos()
	return math.Vec3{
		X: cosLat * longitude.Sin(),
		Y: latitude.Sin(),
		Z: cosLat * longitude.Cos(),
	}.Normalize()
}

func (g *EllipsoidalGlobe) ComputeSurfaceNormalAtPoint(point math.Vec3) math.Vec3 {
	eq2 := g.equatorialRadius * g.equatorialRadius
	pol2 := g.polarRadius * g.polarRadius
	return math.Vec3{
		X: point.X / eq2,
		Y: point.Y / pol2,
		Z: point.Z / eq2,
	}.Normalize()
}

// ComputeNorthPointingTangentAtLocation rotates +Y by longitude about Y and
// by -latitude about X.
func (g *EllipsoidalGlobe) ComputeNorthPointingTangentAtLocation(latitude, longitude math.Angle) math.Vec3 {
	sinLat := latitude.Sin()
	return math.Vec3{
		X: -sinLat * longitude.Sin(),
		Y: latitude.Cos(),
		Z: -sinLat * longitude.Cos(),
	}.Normalize()
}

// ComputeSurfaceOrientationAtPosition returns T(point) * Ry(lon) * Rx(-lat).
// In the local frame +X is east, +Y north and +Z the surface normal.
func (g *EllipsoidalGlobe) ComputeSurfaceOrientationAtPosition(position Position) math.Mat4 {
	point := g.ComputePointFromPosition(position.Latitude, position.Longitude, position.Elevation)
	return math.NewMat4Translation(point).
		Mul(math.NewMat4EulerY(position.Longitude)).
		Mul(math.NewMat4EulerX(-position.Latitude))
}

func (g *EllipsoidalGlobe) Intersect(line math.Line, elevation float64) []math.Intersection {
	return IntersectEllipsoid(line, g.equatorialRadius+elevation, g.polarRadius+elevation)
}

// IntersectEllipsoid intersects a line with the ellipsoid of the given radii
// by substituting the line into the implicit surface scaled to a sphere of
// radius equatorialRadius. A line starting inside the ellipsoid reports only
// its exit point.
func IntersectEllipsoid(line math.Line, equatorialRadius, polarRadius float64) []math.Intersection {
	// Ratio of the x semi-axis to the y semi-axis, and to the z semi-axis.
	mm := equatorialRadius / polarRadius
	n := 1.0
	m2 := mm * mm
	n2 := n * n
	r2 := equatorialRadius * equatorialRadius

	v := line.Direction
	s := line.Origin

	a := v.X*v.X + m2*v.Y*v.Y + n2*v.Z*v.Z
	b := 2 * (s.X*v.X + m2*s.Y*v.Y + n2*s.Z*v.Z)
	c := s.X*s.X + m2*s.Y*s.Y + n2*s.Z*s.Z - r2

	if a == 0 {
		return nil
	}

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return nil
	}

	discriminantRoot := m.Sqrt(discriminant)
	if discriminant == 0 {
		p := line.PointAt((-b - discriminantRoot) / (2 * a))
		return []math.Intersection{{Point: p, Tangent: true}}
	}

	near := line.PointAt((-b - discriminantRoot) / (2 * a))
	far := line.PointAt((-b + discriminantRoot) / (2 * a))
	if c >= 0 {
		return []math.Intersection{{Point: near}, {Point: far}}
	}
	return []math.Intersection{{Point: far}}
}

func (g *EllipsoidalGlobe) IsPointAboveElevation(point math.Vec3, elevation float64) bool {
	eq := g.equatorialRadius + elevation
	pol := g.polarRadius + elevation
	return point.X*point.X/(eq*eq)+point.Y*point.Y/(pol*pol)+point.Z*point.Z/(eq*eq) > 1
}

func (g *EllipsoidalGlobe) IntersectTriangle(t math.Triangle, elevation float64) []math.Intersection {
	return intersectTriangle(g, t, elevation)
}

func (g *EllipsoidalGlobe) IntersectionPosition(line math.Line) (Position, bool) {
	p, ok := NearestInFront(line, g.Intersect(line, 0))
	if !ok {
		return Position{}, false
	}
	return g.ComputePositionFromPoint(p), true
}

// intersectTriangle collects one point per triangle edge whose endpoints
// straddle the elevation surface. Each edge is walked from its lower vertex
// towards its upper one so the line starts inside and reports its single
// exit point.
func intersectTriangle(g Globe, t math.Triangle, elevation float64) []math.Intersection {
	above := [3]bool{
		g.IsPointAboveElevation(t.A, elevation),
		g.IsPointAboveElevation(t.B, elevation),
		g.IsPointAboveElevation(t.C, elevation),
	}
	if above[0] == above[1] && above[1] == above[2] {
		return nil
	}

	vertices := [3]math.Vec3{t.A, t.B, t.C}
	out := make([]math.Intersection, 0, 2)
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if above[i] == above[j] {
			continue
		}
		lower, upper := vertices[i], vertices[j]
		if above[i] {
			lower, upper = upper, lower
		}
		hits := g.Intersect(math.NewLineFromSegment(lower, upper), elevation)
		if len(hits) == 0 {
			continue
		}
		out = append(out, hits[len(hits)-1])
	}
	return out
}
