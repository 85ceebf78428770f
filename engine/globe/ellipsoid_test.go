package globe

import (
	"errors"
	m "math"
	"testing"

	"github.com/google/uuid"
	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/math"
)

func angleDelta(a, b math.Angle) float64 {
	return m.Abs(float64((a - b).NormalizedLongitude()))
}

func TestRoundTripGrid(t *testing.T) {
	g := NewEarth()

	for lat := -90.0; lat <= 90.0; lat += 15 {
		for lon := -180.0; lon <= 180.0; lon += 30 {
			for _, elev := range []float64{-1000, 0, 8848, 1e7} {
				point := g.ComputePointFromPosition(math.Angle(lat), math.Angle(lon), elev)
				got := g.ComputePositionFromPoint(point)

				if d := m.Abs(got.Latitude.Degrees() - lat); d > 1e-7 {
					t.Errorf("(%v, %v, %v): latitude off by %g", lat, lon, elev, d)
				}
				if m.Abs(lat) < 90 {
					if d := angleDelta(got.Longitude, math.Angle(lon)); d > 1e-7 {
						t.Errorf("(%v, %v, %v): longitude off by %g", lat, lon, elev, d)
					}
				}
				if d := m.Abs(got.Elevation - elev); d > 1e-6*(g.Radius()+m.Abs(elev)) {
					t.Errorf("(%v, %v, %v): elevation off by %g", lat, lon, elev, d)
				}
				if got.Longitude <= -180 || got.Longitude > 180 {
					t.Errorf("(%v, %v, %v): longitude %v outside (-180, 180]", lat, lon, elev, got.Longitude)
				}
			}
		}
	}
}

func TestAntimeridianNormalizesTo180(t *testing.T) {
	g := NewEarth()
	got := g.ComputePositionFromPoint(g.ComputePointFromPosition(10, -180, 0))
	if m.Abs(got.Longitude.Degrees()-180) > 1e-9 {
		t.Errorf("expected longitude 180, got %v", got.Longitude)
	}
}

func TestCenterIsCoherent(t *testing.T) {
	g := NewEarth()
	got := g.ComputePositionFromPoint(math.Vec3{})
	if m.IsNaN(got.Latitude.Degrees()) || m.IsNaN(got.Longitude.Degrees()) || m.IsNaN(got.Elevation) {
		t.Fatalf("center produced NaN: %v", got)
	}
	if m.Abs(got.Elevation+g.PolarRadius()) > 1e-6 {
		t.Errorf("expected center elevation -%v, got %v", g.PolarRadius(), got.Elevation)
	}
}

func TestEquatorAndPolePoints(t *testing.T) {
	g := NewEarth()
	p := g.ComputePointFromPosition(0, 0, 0)
	if !p.Compare(math.Vec3{X: 0, Y: 0, Z: WGS84EquatorialRadius}, 1e-6) {
		t.Errorf("(0,0) mapped to %v", p)
	}
	p = g.ComputePointFromPosition(0, 90, 0)
	if !p.Compare(math.Vec3{X: WGS84EquatorialRadius, Y: 0, Z: 0}, 1e-6) {
		t.Errorf("(0,90) mapped to %v", p)
	}
	p = g.ComputePointFromPosition(90, 0, 0)
	if m.Abs(p.Y-WGS84PolarRadius) > 1e-6 {
		t.Errorf("north pole mapped to %v", p)
	}
}

func TestInconsistentEllipsoidIsRejected(t *testing.T) {
	_, err := NewEllipsoidalGlobe(WGS84EquatorialRadius, WGS84PolarRadius, 0.01, nil)
	if !errors.Is(err, core.ErrInconsistentEllipsoid) {
		t.Fatalf("expected ErrInconsistentEllipsoid, got %v", err)
	}
	if !core.IsPrecondition(err) {
		t.Errorf("expected a precondition error")
	}

	if _, err := NewEllipsoidalGlobe(WGS84EquatorialRadius, WGS84PolarRadius, WGS84EccentricitySquared, nil); err != nil {
		t.Errorf("WGS84 triple rejected: %v", err)
	}
	if _, err := NewEllipsoidalGlobe(-1, 1, 0, nil); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative radius, got %v", err)
	}

	g, err := NewEllipsoidalGlobeFromRadii(10, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Abs(g.EccentricitySquared()-0.75) > 1e-15 {
		t.Errorf("expected es 0.75, got %v", g.EccentricitySquared())
	}
}

func TestIntersectionCountMatchesDiscriminant(t *testing.T) {
	g, err := NewEllipsoidalGlobeFromRadii(10, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	down := math.Vec3{X: 0, Y: 0, Z: -1}

	cases := []struct {
		name   string
		line   math.Line
		points []math.Vec3
	}{
		{"miss", math.NewLine(math.Vec3{X: 11, Z: 20}, down), nil},
		{"tangent", math.NewLine(math.Vec3{X: 10, Z: 20}, down), []math.Vec3{{X: 10}}},
		{"through", math.NewLine(math.Vec3{Z: 20}, down), []math.Vec3{{Z: 10}, {Z: -10}}},
		{"inside", math.NewLine(math.Vec3{}, down), []math.Vec3{{Z: -10}}},
		{"polar", math.NewLine(math.Vec3{Y: 20}, math.Vec3{Y: -1}), []math.Vec3{{Y: 5}, {Y: -5}}},
	}

	for _, c := range cases {
		got := g.Intersect(c.line, 0)
		if len(got) != len(c.points) {
			t.Errorf("%s: got %d intersections, want %d", c.name, len(got), len(c.points))
			continue
		}
		for i, want := range c.points {
			if !got[i].Point.Compare(want, 1e-9) {
				t.Errorf("%s: intersection %d = %v, want %v", c.name, i, got[i].Point, want)
			}
		}
		if c.name == "tangent" && !got[0].Tangent {
			t.Errorf("tangent: expected the tangent flag")
		}
	}
}

func TestIntersectWithElevation(t *testing.T) {
	g, _ := NewEllipsoidalGlobeFromRadii(10, 10, nil)
	got := g.Intersect(math.NewLine(math.Vec3{Z: 20}, math.Vec3{Z: -1}), 2)
	if len(got) != 2 || !got[0].Point.Compare(math.Vec3{Z: 12}, 1e-9) {
		t.Errorf("expected near hit at z=12, got %v", got)
	}
}

func TestIntersectTriangle(t *testing.T) {
	g, _ := NewEllipsoidalGlobeFromRadii(10, 10, nil)

	straddling := math.Triangle{A: math.Vec3{Z: 5}, B: math.Vec3{Z: 20}, C: math.Vec3{Y: 20}}
	got := g.IntersectTriangle(straddling, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 edge intersections, got %d", len(got))
	}
	for _, in := range got {
		if m.Abs(in.Point.Length()-10) > 1e-9 {
			t.Errorf("intersection %v is not on the surface", in.Point)
		}
	}
	if !got[0].Point.Compare(math.Vec3{Z: 10}, 1e-9) {
		t.Errorf("expected first edge to exit at z=10, got %v", got[0].Point)
	}

	outside := math.Triangle{A: math.Vec3{Z: 15}, B: math.Vec3{Z: 20}, C: math.Vec3{Y: 20}}
	if got := g.IntersectTriangle(outside, 0); len(got) != 0 {
		t.Errorf("expected no intersections, got %v", got)
	}
}

func TestIsPointAboveElevation(t *testing.T) {
	g, _ := NewEllipsoidalGlobeFromRadii(10, 10, nil)
	p := math.Vec3{Z: 10.5}
	if !g.IsPointAboveElevation(p, 0) {
		t.Errorf("expected point above the surface")
	}
	if g.IsPointAboveElevation(p, 1) {
		t.Errorf("expected point below elevation 1")
	}
}

func TestSurfaceFrame(t *testing.T) {
	g := NewEarth()

	for _, ll := range []LatLon{{0, 0}, {45, 0}, {-30, 120}, {60, -75}} {
		point := g.ComputePointFromLocation(ll)
		nl := g.ComputeSurfaceNormalAtLocation(ll.Latitude, ll.Longitude)
		np := g.ComputeSurfaceNormalAtPoint(point)
		if !nl.Compare(np, 1e-9) {
			t.Errorf("%v: normal at location %v differs from normal at point %v", ll, nl, np)
		}

		north := g.ComputeNorthPointingTangentAtLocation(ll.Latitude, ll.Longitude)
		if d := north.Dot(nl); m.Abs(d) > 1e-12 {
			t.Errorf("%v: north tangent not perpendicular to normal (%g)", ll, d)
		}

		o := g.ComputeSurfaceOrientationAtPosition(NewPosition(ll.Latitude, ll.Longitude, 0))
		if !o.Translation().Compare(point, 1e-6) {
			t.Errorf("%v: orientation origin %v, want %v", ll, o.Translation(), point)
		}
		if up := o.TransformDirection(math.Vec3{Z: 1}); !up.Compare(nl, 1e-9) {
			t.Errorf("%v: local up %v, want %v", ll, up, nl)
		}
		if n := o.TransformDirection(math.Vec3{Y: 1}); !n.Compare(north, 1e-9) {
			t.Errorf("%v: local north %v, want %v", ll, n, north)
		}
	}
}

func TestRadiusAt(t *testing.T) {
	g := NewEarth()
	if d := m.Abs(g.RadiusAt(0, 0) - WGS84EquatorialRadius); d > 1e-6 {
		t.Errorf("equatorial radius off by %g", d)
	}
	if d := m.Abs(g.RadiusAt(90, 0) - WGS84PolarRadius); d > 1e-3 {
		t.Errorf("polar radius off by %g", d)
	}
}

func TestIntersectionPosition(t *testing.T) {
	g := NewEarth()
	eye := g.ComputePointFromPosition(20, 30, 1e6)
	line := math.NewLine(eye, eye.MulScalar(-1))
	pos, ok := g.IntersectionPosition(line)
	if !ok {
		t.Fatalf("expected the line to hit the globe")
	}
	// The line through the center is not the geodetic normal, so only the
	// longitude is preserved exactly.
	if d := angleDelta(pos.Longitude, 30); d > 1e-9 {
		t.Errorf("longitude off by %g", d)
	}
	if m.Abs(pos.Elevation) > 1e-4 {
		t.Errorf("expected a surface hit, got elevation %v", pos.Elevation)
	}

	// Hits behind the origin do not count.
	if pos, ok := g.IntersectionPosition(math.NewLine(eye, eye)); ok {
		t.Errorf("expected a ray pointing away to miss, got %v", pos)
	}
	inside := math.NewLine(math.Vec3{}, math.Vec3{Y: 1})
	if pos, ok := g.IntersectionPosition(inside); !ok || m.Abs(pos.Latitude.Degrees()-90) > 1e-7 {
		t.Errorf("expected a ray from the center to exit at the north pole, got %v", pos)
	}
	if _, ok := g.IntersectionPosition(math.NewLine(eye, math.Vec3{X: -eye.Z, Z: eye.X})); ok {
		t.Errorf("expected a line perpendicular to the radius at 1000 km to miss")
	}
}

func TestStateKeyEquality(t *testing.T) {
	g := NewEarth()
	tess := uuid.New()

	a := NewStateKey(g, tess, 1)
	b := NewStateKey(g, tess, 1)
	if !a.Equal(b) {
		t.Errorf("expected equal keys")
	}
	if a.Equal(NewStateKey(g, tess, 2)) {
		t.Errorf("vertical exaggeration must change the key")
	}
	g.SetElevationModel(NewConstantElevationModel(10))
	if a.Equal(NewStateKey(g, tess, 1)) {
		t.Errorf("elevation model must change the key")
	}
	seen := map[StateKey]bool{a: true}
	if !seen[b] {
		t.Errorf("expected keys to work as map keys")
	}
}
