package globe

import (
	"fmt"

	"github.com/spaghettifunk/terra/engine/math"
)

// LatLon is a geographic location without elevation.
type LatLon struct {
	Latitude  math.Angle
	Longitude math.Angle
}

// Position is an immutable geodetic position: latitude in [-90, 90],
// longitude in (-180, 180] and elevation in meters above the reference
// surface.
type Position struct {
	Latitude  math.Angle
	Longitude math.Angle
	Elevation float64
}

func NewLatLon(latitude, longitude math.Angle) LatLon {
	return LatLon{Latitude: latitude, Longitude: longitude}
}

func NewPosition(latitude, longitude math.Angle, elevation float64) Position {
	return Position{Latitude: latitude, Longitude: longitude, Elevation: elevation}
}

// PositionFromDegrees is a shorthand for NewPosition with plain floats.
func PositionFromDegrees(latitude, longitude, elevation float64) Position {
	return Position{Latitude: math.Angle(latitude), Longitude: math.Angle(longitude), Elevation: elevation}
}

// PositionFromRadians builds a position from radians, normalizing the
// longitude into (-180, 180].
func PositionFromRadians(latitude, longitude, elevation float64) Position {
	return Position{
		Latitude:  math.AngleFromRadians(latitude),
		Longitude: math.AngleFromRadians(longitude).NormalizedLongitude(),
		Elevation: elevation,
	}
}

// LatLon drops the elevation.
func (p Position) LatLon() LatLon {
	return LatLon{Latitude: p.Latitude, Longitude: p.Longitude}
}

// WithElevation returns a copy of p at a different elevation.
func (p Position) WithElevation(elevation float64) Position {
	p.Elevation = elevation
	return p
}

func (p Position) String() string {
	return fmt.Sprintf("(%.6f°, %.6f°, %.3fm)", p.Latitude.Degrees(), p.Longitude.Degrees(), p.Elevation)
}

// Sector is a latitude/longitude rectangle.
type Sector struct {
	MinLatitude  math.Angle
	MaxLatitude  math.Angle
	MinLongitude math.Angle
	MaxLongitude math.Angle
}

// FullSphere covers the whole globe.
var FullSphere = Sector{MinLatitude: -90, MaxLatitude: 90, MinLongitude: -180, MaxLongitude: 180}

func NewSector(minLat, maxLat, minLon, maxLon math.Angle) Sector {
	return Sector{MinLatitude: minLat, MaxLatitude: maxLat, MinLongitude: minLon, MaxLongitude: maxLon}
}

// Contains reports whether the location lies inside or on the sector.
func (s Sector) Contains(ll LatLon) bool {
	return ll.Latitude >= s.MinLatitude && ll.Latitude <= s.MaxLatitude &&
		ll.Longitude >= s.MinLongitude && ll.Longitude <= s.MaxLongitude
}

// Centroid returns the sector center.
func (s Sector) Centroid() LatLon {
	return LatLon{
		Latitude:  0.5 * (s.MinLatitude + s.MaxLatitude),
		Longitude: 0.5 * (s.MinLongitude + s.MaxLongitude),
	}
}

func (s Sector) DeltaLatitude() math.Angle {
	return s.MaxLatitude - s.MinLatitude
}

func (s Sector) DeltaLongitude() math.Angle {
	return s.MaxLongitude - s.MinLongitude
}
