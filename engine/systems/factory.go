package systems

import (
	"fmt"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/globe"
)

// GlobeSpec selects and parameterises a globe. A zero EccentricitySquared
// is derived from the radii.
type GlobeSpec struct {
	Kind                globe.Kind
	EquatorialRadius    float64
	PolarRadius         float64
	EccentricitySquared float64
	Projection          globe.ProjectionKind
	Elevation           globe.ElevationKind
	// ElevationValue is the height of a constant elevation model.
	ElevationValue float64
}

// DefaultGlobeSpec describes the WGS84 ellipsoid without terrain.
func DefaultGlobeSpec() GlobeSpec {
	return GlobeSpec{
		Kind:                globe.KindEllipsoid,
		EquatorialRadius:    globe.WGS84EquatorialRadius,
		PolarRadius:         globe.WGS84PolarRadius,
		EccentricitySquared: globe.WGS84EccentricitySquared,
		Projection:          globe.ProjectionEquirectangular,
		Elevation:           globe.ElevationZero,
	}
}

func NewElevationModel(kind globe.ElevationKind, value float64) (globe.ElevationModel, error) {
	switch kind {
	case globe.ElevationZero:
		return globe.NewZeroElevationModel(), nil
	case globe.ElevationConstant:
		return globe.NewConstantElevationModel(value), nil
	}
	return nil, fmt.Errorf("%w: elevation model %d", core.ErrUnknownComponent, int(kind))
}

func NewProjection(kind globe.ProjectionKind) (globe.Projection, error) {
	switch kind {
	case globe.ProjectionEquirectangular:
		return globe.EquirectangularProjection{}, nil
	case globe.ProjectionMercator:
		return globe.MercatorProjection{}, nil
	case globe.ProjectionSinusoidal:
		return globe.SinusoidalProjection{}, nil
	case globe.ProjectionModifiedSinusoidal:
		return globe.ModifiedSinusoidalProjection{}, nil
	}
	return nil, fmt.Errorf("%w: projection %d", core.ErrUnknownComponent, int(kind))
}

/**
 * @brief Builds the globe described by spec.
 *
 * @param spec The globe selection.
 * @return The globe, or an error for unknown kinds and inconsistent ellipsoids.
 */
func NewGlobe(spec GlobeSpec) (globe.Globe, error) {
	model, err := NewElevationModel(spec.Elevation, spec.ElevationValue)
	if err != nil {
		core.LogError("%v", err)
		return nil, err
	}

	es := spec.EccentricitySquared
	if es == 0 && spec.EquatorialRadius > 0 {
		ratio := spec.PolarRadius / spec.EquatorialRadius
		es = 1 - ratio*ratio
	}

	switch spec.Kind {
	case globe.KindEllipsoid:
		g, err := globe.NewEllipsoidalGlobe(spec.EquatorialRadius, spec.PolarRadius, es, model)
		if err != nil {
			core.LogError("%v", err)
			return nil, err
		}
		core.LogInfo("Created ellipsoidal globe (a=%.3f, b=%.3f).", spec.EquatorialRadius, spec.PolarRadius)
		return g, nil
	case globe.KindFlat:
		projection, err := NewProjection(spec.Projection)
		if err != nil {
			core.LogError("%v", err)
			return nil, err
		}
		g, err := globe.NewFlatGlobe(spec.EquatorialRadius, spec.PolarRadius, es, model, projection)
		if err != nil {
			core.LogError("%v", err)
			return nil, err
		}
		core.LogInfo("Created flat globe with %s projection.", spec.Projection)
		return g, nil
	}

	err = fmt.Errorf("%w: globe %d", core.ErrUnknownComponent, int(spec.Kind))
	core.LogError("%v", err)
	return nil, err
}
