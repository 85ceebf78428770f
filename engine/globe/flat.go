package globe

import (
	m "math"

	"github.com/google/uuid"
	"github.com/spaghettifunk/terra/engine/math"
)

// FlatGlobe lays the body out on the model XY plane with +Z up. It keeps the
// ellipsoid parameters of the body it maps so eye elevations and horizon
// distances stay comparable with the round globe.
type FlatGlobe struct {
	id               uuid.UUID
	equatorialRadius float64
	polarRadius      float64
	es               float64
	projection       Projection
	elevationModel   ElevationModel
}

// NewFlatGlobe creates a flat globe. A nil projection falls back to
// equirectangular.
func NewFlatGlobe(equatorialRadius, polarRadius, es float64, model ElevationModel, projection Projection) (*FlatGlobe, error) {
	// Reuse the ellipsoid validation.
	if _, err := NewEllipsoidalGlobe(equatorialRadius, polarRadius, es, model); err != nil {
		return nil, err
	}
	if projection == nil {
		projection = EquirectangularProjection{}
	}
	return &FlatGlobe{
		id:               uuid.New(),
		equatorialRadius: equatorialRadius,
		polarRadius:      polarRadius,
		es:               es,
		projection:       projection,
		elevationModel:   model,
	}, nil
}

func (g *FlatGlobe) ID() uuid.UUID { return g.id }

func (g *FlatGlobe) Projection() Projection { return g.projection }

// SetProjection swaps the projection and changes the globe identity, since
// every cached point is now stale.
func (g *FlatGlobe) SetProjection(projection Projection) {
	if projection == nil {
		return
	}
	g.projection = projection
	g.id = uuid.New()
}

func (g *FlatGlobe) EquatorialRadius() float64 { return g.equatorialRadius }

func (g *FlatGlobe) PolarRadius() float64 { return g.polarRadius }

func (g *FlatGlobe) EccentricitySquared() float64 { return g.es }

func (g *FlatGlobe) Radius() float64 { return g.equatorialRadius }

func (g *FlatGlobe) MaximumRadius() float64 {
	return m.Max(g.equatorialRadius, g.polarRadius)
}

func (g *FlatGlobe) RadiusAt(latitude, longitude math.Angle) float64 {
	return g.equatorialRadius
}

func (g *FlatGlobe) ElevationModel() ElevationModel { return g.elevationModel }

func (g *FlatGlobe) SetElevationModel(model ElevationModel) { g.elevationModel = model }

func (g *FlatGlobe) Elevation(latitude, longitude math.Angle) float64 {
	if g.elevationModel == nil {
		return 0
	}
	return g.elevationModel.Elevation(latitude, longitude)
}

func (g *FlatGlobe) ExtremeElevations(sector Sector) (float64, float64) {
	if g.elevationModel == nil {
		return 0, 0
	}
	return g.elevationModel.ExtremeElevations(sector)
}

func (g *FlatGlobe) ComputePointFromPosition(latitude, longitude math.Angle, elevation float64) math.Vec3 {
	return g.projection.GeographicToCartesian(g.equatorialRadius, latitude, longitude, elevation)
}

func (g *FlatGlobe) ComputePointFromLocation(ll LatLon) math.Vec3 {
	return g.ComputePointFromPosition(ll.Latitude, ll.Longitude, 0)
}

func (g *FlatGlobe) ComputePositionFromPoint(point math.Vec3) Position {
	p := g.projection.CartesianToGeographic(g.equatorialRadius, point)
	p.Longitude = p.Longitude.NormalizedLongitude()
	return p
}

func (g *FlatGlobe) ComputeSurfaceNormalAtLocation(latitude, longitude math.Angle) math.Vec3 {
	return math.Vec3{X: 0, Y: 0, Z: 1}
}

func (g *FlatGlobe) ComputeSurfaceNormalAtPoint(point math.Vec3) math.Vec3 {
	return math.Vec3{X: 0, Y: 0, Z: 1}
}

func (g *FlatGlobe) ComputeNorthPointingTangentAtLocation(latitude, longitude math.Angle) math.Vec3 {
	return math.Vec3{X: 0, Y: 1, Z: 0}
}

// ComputeSurfaceOrientationAtPosition is a pure translation: the local
// east/north/up frame is the model frame everywhere on the plane.
func (g *FlatGlobe) ComputeSurfaceOrientationAtPosition(position Position) math.Mat4 {
	point := g.ComputePointFromPosition(position.Latitude, position.Longitude, position.Elevation)
	return math.NewMat4Translation(point)
}

// Intersect crosses the line with the plane z = elevation. Hits outside the
// projected ±90°/±180° domain do not count.
func (g *FlatGlobe) Intersect(line math.Line, elevation float64) []math.Intersection {
	plane := math.NewPlane(0, 0, 1, -elevation)
	t, ok := plane.IntersectLine(line)
	if !ok {
		return nil
	}
	point := line.PointAt(t)
	raw := g.projection.CartesianToGeographic(g.equatorialRadius, point)
	if m.Abs(raw.Latitude.Degrees()) > 90 || m.Abs(raw.Longitude.Degrees()) > 180 {
		return nil
	}
	return []math.Intersection{{Point: point}}
}

func (g *FlatGlobe) IntersectTriangle(t math.Triangle, elevation float64) []math.Intersection {
	return intersectTriangle(g, t, elevation)
}

func (g *FlatGlobe) IntersectionPosition(line math.Line) (Position, bool) {
	p, ok := NearestInFront(line, g.Intersect(line, 0))
	if !ok {
		return Position{}, false
	}
	return g.ComputePositionFromPoint(p), true
}

func (g *FlatGlobe) IsPointAboveElevation(point math.Vec3, elevation float64) bool {
	return point.Z > elevation
}
