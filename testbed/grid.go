package testbed

import (
	"fmt"
	"image"
	"image/color"

	"github.com/google/uuid"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/globe"
	"github.com/spaghettifunk/terra/engine/math"
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
	"github.com/spaghettifunk/terra/engine/systems"
)

// vec3Size is the cache accounting of one corner point.
const vec3Size = 24

var (
	gridLand  = color.RGBA{R: 0x3a, G: 0x7d, B: 0x44, A: 0xff}
	gridWater = color.RGBA{R: 0x2b, G: 0x59, B: 0x8c, A: 0xff}
)

type gridCell struct {
	sector  globe.Sector
	corners [4]math.Vec3
}

// GridTessellator covers the globe with a coarse latitude/longitude grid.
// Corner points are rebuilt only when the globe state key changes and are
// accounted for in the resource cache when one is given.
type GridTessellator struct {
	id    uuid.UUID
	step  math.Angle
	cache *systems.MemoryCache

	key     globe.StateKey
	surface *GridSurface
}

/**
 * @brief Creates a grid tessellator.
 * @param step The cell size in degrees. Must divide 180.
 * @param cache Optional cache the tessellated corners are accounted in.
 */
func NewGridTessellator(step math.Angle, cache *systems.MemoryCache) (*GridTessellator, error) {
	if step <= 0 || step > 90 {
		return nil, core.NewPreconditionError("NewGridTessellator", core.ErrInvalidArgument, "step %v outside (0, 90]", step)
	}
	return &GridTessellator{id: uuid.New(), step: step, cache: cache}, nil
}

func (gt *GridTessellator) ID() uuid.UUID { return gt.id }

func (gt *GridTessellator) cacheKey() string {
	return fmt.Sprintf("grid:%s", gt.id)
}

func (gt *GridTessellator) Tessellate(dc *metadata.DrawContext) (metadata.SurfaceGeometry, error) {
	g := dc.Globe()
	if g == nil {
		return nil, nil
	}
	key := dc.GlobeStateKey()
	if gt.surface != nil && key == gt.key {
		return gt.surface, nil
	}

	var cells []gridCell
	for lat := math.Angle(-90); lat < 90; lat += gt.step {
		for lon := math.Angle(-180); lon < 180; lon += gt.step {
			s := globe.NewSector(lat, math.Clamp(lat+gt.step, -90, 90), lon, math.Clamp(lon+gt.step, -180, 180))
			corner := func(la, lo math.Angle) math.Vec3 {
				return g.ComputePointFromPosition(la, lo, g.Elevation(la, lo)*dc.VerticalExaggeration)
			}
			cells = append(cells, gridCell{
				sector: s,
				corners: [4]math.Vec3{
					corner(s.MaxLatitude, s.MinLongitude),
					corner(s.MaxLatitude, s.MaxLongitude),
					corner(s.MinLatitude, s.MaxLongitude),
					corner(s.MinLatitude, s.MinLongitude),
				},
			})
		}
	}

	if gt.cache != nil {
		if err := gt.cache.Put(gt.cacheKey(), cells, int64(len(cells)*4*vec3Size)); err != nil {
			core.LogWarn("grid corners not cached: %v", err)
		}
	}
	core.LogDebug("grid tessellated into %d cells", len(cells))
	gt.key = key
	gt.surface = &GridSurface{cells: cells}
	return gt.surface, nil
}

// GridSurface is one tessellation of the grid.
type GridSurface struct {
	cells []gridCell
}

func (gs *GridSurface) Len() int { return len(gs.cells) }

func (gs *GridSurface) Render(dc *metadata.DrawContext) error {
	return gs.draw(dc, func(i int) color.RGBA {
		if i%2 == 0 {
			return gridLand
		}
		return gridWater
	})
}

// Pick draws the visible surface in a single colour and registers the
// terrain when the pick ray meets the globe.
func (gs *GridSurface) Pick(dc *metadata.DrawContext, point image.Point) error {
	if dc.View == nil || dc.Globe() == nil {
		return errNoViewState
	}
	ray, ok := dc.View.ComputeRayFromScreenPoint(float64(point.X), float64(point.Y))
	if !ok {
		return nil
	}
	position, hit := dc.Globe().IntersectionPosition(ray)
	if !hit {
		return nil
	}
	c := dc.UniquePickColor()
	dc.AddPickedObject(&metadata.PickedObject{
		ColorCode: metadata.ColorCode(c),
		Object:    gs,
		IsTerrain: true,
		Position:  &position,
	})
	return gs.draw(dc, func(int) color.RGBA { return c })
}

func (gs *GridSurface) draw(dc *metadata.DrawContext, paint func(i int) color.RGBA) error {
	vs := dc.ViewState
	g := dc.Globe()
	if vs == nil || g == nil {
		return errNoViewState
	}
	polygon := make([]math.Vec2, 4)
	for i, cell := range gs.cells {
		visible := true
		for j, corner := range cell.corners {
			if !facesEye(g, vs, corner) {
				visible = false
				break
			}
			p, ok := toDevice(vs, corner)
			if !ok {
				visible = false
				break
			}
			polygon[j] = p
		}
		if !visible {
			continue
		}
		// Alternate colours in a checkerboard.
		row := int((cell.sector.MinLatitude + 90) / (cell.sector.MaxLatitude - cell.sector.MinLatitude))
		dc.Rasterizer.FillPolygon(polygon, paint(i+row))
	}
	return nil
}
