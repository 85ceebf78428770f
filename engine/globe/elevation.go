package globe

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/terra/engine/math"
)

// ElevationModel supplies terrain heights. Storage and interpolation are the
// model's own business; the core only queries it.
type ElevationModel interface {
	ID() uuid.UUID
	// Elevation returns meters above the ellipsoid at a location.
	Elevation(latitude, longitude math.Angle) float64
	// ExtremeElevations returns the minimum and maximum elevations in sector.
	ExtremeElevations(sector Sector) (float64, float64)
	MinElevation() float64
	MaxElevation() float64
}

// ZeroElevationModel is a flat model that reports 0 everywhere.
type ZeroElevationModel struct {
	id uuid.UUID
}

func NewZeroElevationModel() *ZeroElevationModel {
	return &ZeroElevationModel{id: uuid.New()}
}

func (z *ZeroElevationModel) ID() uuid.UUID { return z.id }

func (z *ZeroElevationModel) Elevation(latitude, longitude math.Angle) float64 { return 0 }

func (z *ZeroElevationModel) ExtremeElevations(sector Sector) (float64, float64) { return 0, 0 }

func (z *ZeroElevationModel) MinElevation() float64 { return 0 }

func (z *ZeroElevationModel) MaxElevation() float64 { return 0 }

// ConstantElevationModel reports the same elevation everywhere, which is
// handy for plateaus and tests.
type ConstantElevationModel struct {
	id        uuid.UUID
	elevation float64
}

func NewConstantElevationModel(elevation float64) *ConstantElevationModel {
	return &ConstantElevationModel{id: uuid.New(), elevation: elevation}
}

func (c *ConstantElevationModel) ID() uuid.UUID { return c.id }

func (c *ConstantElevationModel) Elevation(latitude, longitude math.Angle) float64 {
	return c.elevation
}

func (c *ConstantElevationModel) ExtremeElevations(sector Sector) (float64, float64) {
	return c.elevation, c.elevation
}

func (c *ConstantElevationModel) MinElevation() float64 { return c.elevation }

func (c *ConstantElevationModel) MaxElevation() float64 { return c.elevation }
