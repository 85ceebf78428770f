package globe

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/terra/engine/core"
)

// Kind selects the coordinate engine implementation.
type Kind int

const (
	/** @brief Oblate ellipsoid of revolution. */
	KindEllipsoid Kind = iota
	/** @brief Flat plane with a map projection. */
	KindFlat
)

// ProjectionKind selects the projection of a flat globe.
type ProjectionKind int

const (
	ProjectionEquirectangular ProjectionKind = iota
	ProjectionMercator
	ProjectionSinusoidal
	ProjectionModifiedSinusoidal
)

// ElevationKind selects the elevation model.
type ElevationKind int

const (
	ElevationZero ElevationKind = iota
	ElevationConstant
)

var kindNames = map[Kind]string{
	KindEllipsoid: "ellipsoid",
	KindFlat:      "flat",
}

var projectionNames = map[ProjectionKind]string{
	ProjectionEquirectangular:    "equirectangular",
	ProjectionMercator:           "mercator",
	ProjectionSinusoidal:         "sinusoidal",
	ProjectionModifiedSinusoidal: "modified-sinusoidal",
}

var elevationNames = map[ElevationKind]string{
	ElevationZero:     "zero",
	ElevationConstant: "constant",
}

func (k Kind) String() string { return nameOf(kindNames, k) }

func (k ProjectionKind) String() string { return nameOf(projectionNames, k) }

func (k ElevationKind) String() string { return nameOf(elevationNames, k) }

func ParseKind(s string) (Kind, error) { return parseName(kindNames, "globe type", s) }

func ParseProjectionKind(s string) (ProjectionKind, error) {
	return parseName(projectionNames, "projection", s)
}

func ParseElevationKind(s string) (ElevationKind, error) {
	return parseName(elevationNames, "elevation model", s)
}

func nameOf[K comparable](names map[K]string, k K) string {
	if n, ok := names[k]; ok {
		return n
	}
	return "unknown"
}

func parseName[K comparable](names map[K]string, what, s string) (K, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range names {
		if n == s {
			return k, nil
		}
	}
	var zero K
	return zero, fmt.Errorf("%w: %s %q", core.ErrUnknownComponent, what, s)
}
