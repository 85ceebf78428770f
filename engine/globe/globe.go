package globe

import (
	m "math"

	"github.com/google/uuid"
	"github.com/spaghettifunk/terra/engine/math"
)

// Globe is the coordinate engine: it maps geodetic positions onto a
// reference body and answers intersection and orientation queries against
// it. Implementations are pure math and hold no per-frame state.
type Globe interface {
	// ID identifies this globe instance for cache keys.
	ID() uuid.UUID

	EquatorialRadius() float64
	PolarRadius() float64
	EccentricitySquared() float64
	// Radius is the equatorial radius, the nominal radius of the body.
	Radius() float64
	MaximumRadius() float64
	// RadiusAt returns the distance from the center to the surface at a location.
	RadiusAt(latitude, longitude math.Angle) float64

	ComputePointFromPosition(latitude, longitude math.Angle, elevation float64) math.Vec3
	ComputePointFromLocation(ll LatLon) math.Vec3
	ComputePositionFromPoint(point math.Vec3) Position

	ComputeSurfaceNormalAtLocation(latitude, longitude math.Angle) math.Vec3
	ComputeSurfaceNormalAtPoint(point math.Vec3) math.Vec3
	ComputeNorthPointingTangentAtLocation(latitude, longitude math.Angle) math.Vec3
	// ComputeSurfaceOrientationAtPosition returns the transform from the local
	// east/north/up frame at position into model coordinates.
	ComputeSurfaceOrientationAtPosition(position Position) math.Mat4

	// Intersect returns 0, 1 or 2 points where line meets the surface offset
	// by elevation.
	Intersect(line math.Line, elevation float64) []math.Intersection
	// IntersectTriangle returns the points where the triangle edges cross the
	// surface offset by elevation.
	IntersectTriangle(t math.Triangle, elevation float64) []math.Intersection
	// IntersectionPosition returns the nearest position in front of the line
	// origin where line meets the surface, or false.
	IntersectionPosition(line math.Line) (Position, bool)
	IsPointAboveElevation(point math.Vec3, elevation float64) bool

	ElevationModel() ElevationModel
	SetElevationModel(model ElevationModel)
	// Elevation returns the model elevation at a location, 0 without a model.
	Elevation(latitude, longitude math.Angle) float64
	ExtremeElevations(sector Sector) (float64, float64)
}

// StateKey identifies everything that changes the shape of the rendered
// surface. Collaborators compare keys to decide whether cached geometry is
// still valid. The struct is comparable and can be used as a map key.
type StateKey struct {
	Globe                uuid.UUID
	Tessellator          uuid.UUID
	VerticalExaggeration float64
	ElevationModel       uuid.UUID
}

// NewStateKey builds the key for a globe rendered by the given tessellator
// at a vertical exaggeration.
func NewStateKey(g Globe, tessellator uuid.UUID, verticalExaggeration float64) StateKey {
	key := StateKey{
		Tessellator:          tessellator,
		VerticalExaggeration: verticalExaggeration,
	}
	if g != nil {
		key.Globe = g.ID()
		if em := g.ElevationModel(); em != nil {
			key.ElevationModel = em.ID()
		}
	}
	return key
}

// Equal reports whether all four components match.
func (k StateKey) Equal(other StateKey) bool {
	return k == other
}

// NearestInFront picks the intersection closest to the line origin among
// those with a positive line parameter. Hits behind the origin are ignored.
func NearestInFront(line math.Line, intersections []math.Intersection) (math.Vec3, bool) {
	best := m.Inf(1)
	var out math.Vec3
	for _, in := range intersections {
		t := in.Point.Sub(line.Origin).Dot(line.Direction)
		if t > 0 && t < best {
			best, out = t, in.Point
		}
	}
	return out, !m.IsInf(best, 1)
}
