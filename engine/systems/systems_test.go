package systems

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/globe"
	"github.com/spaghettifunk/terra/engine/renderer/components"
)

func TestMemoryCacheAccounting(t *testing.T) {
	mc, err := NewMemoryCache(&MemoryCacheConfig{Capacity: 100})
	if err != nil {
		t.Fatalf("NewMemoryCache: %v", err)
	}
	if err := mc.Put("a", 1, 60); err != nil {
		t.Fatalf("Put a: %v", err)
	}
	if err := mc.Put("b", 2, 50); !errors.Is(err, ErrCacheCapacityExceeded) {
		t.Errorf("expected ErrCacheCapacityExceeded, got %v", err)
	}
	if mc.NumObjects() != 1 || mc.UsedCapacity() != 60 {
		t.Errorf("rejected put changed the cache: %d objects, %d used", mc.NumObjects(), mc.UsedCapacity())
	}

	// Replacing an entry only accounts for the difference.
	if err := mc.Put("a", 3, 90); err != nil {
		t.Fatalf("replace a: %v", err)
	}
	if v, ok := mc.Get("a"); !ok || v != 3 || mc.UsedCapacity() != 90 {
		t.Errorf("got %v %v, used %d", v, ok, mc.UsedCapacity())
	}

	if !mc.Remove("a") || mc.Remove("a") {
		t.Errorf("unexpected Remove results")
	}
	if mc.UsedCapacity() != 0 {
		t.Errorf("expected an empty cache, %d used", mc.UsedCapacity())
	}

	_ = mc.Put("x", nil, 10)
	mc.Clear()
	if mc.NumObjects() != 0 || mc.UsedCapacity() != 0 || mc.Capacity() != 100 {
		t.Errorf("Clear left %d objects, %d used", mc.NumObjects(), mc.UsedCapacity())
	}
	if err := mc.Put("neg", nil, -1); !core.IsPrecondition(err) {
		t.Errorf("expected a precondition error for a negative size, got %v", err)
	}
	if _, err := NewMemoryCache(&MemoryCacheConfig{}); err == nil {
		t.Errorf("expected a zero capacity to be rejected")
	}
}

func TestViewSystemReferenceCounts(t *testing.T) {
	core.SetLogOutput(io.Discard)
	vs, err := NewViewSystem(&ViewSystemConfig{MaxViewCount: 1}, globe.NewEarth())
	if err != nil {
		t.Fatalf("NewViewSystem: %v", err)
	}

	def, _ := vs.Acquire(components.DEFAULT_VIEW_NAME)
	if def != vs.GetDefault() {
		t.Errorf("expected the default view")
	}

	a, err := vs.Acquire("inset")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	again, _ := vs.Acquire("inset")
	if a != again || vs.ReferenceCount("inset") != 2 {
		t.Errorf("expected the same view with 2 references, got %d", vs.ReferenceCount("inset"))
	}
	if _, err := vs.Acquire("second"); err == nil {
		t.Errorf("expected the view limit to be enforced")
	}

	a.SetHeading(30)
	vs.Release("inset")
	if a.Heading() != 30 {
		t.Errorf("view reset while still referenced")
	}
	vs.Release("inset")
	if vs.ReferenceCount("inset") != 0 || a.Heading() != 0 {
		t.Errorf("expected the view to be reset once released")
	}
	vs.Release("unknown")
	vs.Release(components.DEFAULT_VIEW_NAME)

	flat, err := NewGlobe(GlobeSpec{Kind: globe.KindFlat, EquatorialRadius: 10, PolarRadius: 10})
	if err != nil {
		t.Fatalf("NewGlobe: %v", err)
	}
	b, _ := vs.Acquire("second")
	vs.SetGlobe(flat)
	if b.Globe() != flat || vs.GetDefault().Globe() != flat {
		t.Errorf("expected views to be rebound")
	}

	if _, err := NewViewSystem(&ViewSystemConfig{MaxViewCount: 1}, nil); !errors.Is(err, core.ErrMissingGlobe) {
		t.Errorf("expected ErrMissingGlobe, got %v", err)
	}
}

func TestFactory(t *testing.T) {
	core.SetLogOutput(io.Discard)
	g, err := NewGlobe(DefaultGlobeSpec())
	if err != nil {
		t.Fatalf("NewGlobe: %v", err)
	}
	if _, ok := g.(*globe.EllipsoidalGlobe); !ok {
		t.Errorf("expected an ellipsoidal globe, got %T", g)
	}

	spec := DefaultGlobeSpec()
	spec.Kind = globe.KindFlat
	spec.Projection = globe.ProjectionMercator
	spec.Elevation = globe.ElevationConstant
	spec.ElevationValue = 42
	g, err = NewGlobe(spec)
	if err != nil {
		t.Fatalf("NewGlobe flat: %v", err)
	}
	flat, ok := g.(*globe.FlatGlobe)
	if !ok || flat.Projection().Kind() != globe.ProjectionMercator {
		t.Fatalf("expected a Mercator flat globe, got %T", g)
	}
	if flat.Elevation(10, 10) != 42 {
		t.Errorf("expected the constant elevation model")
	}

	spec = DefaultGlobeSpec()
	spec.EccentricitySquared = 0
	if _, err := NewGlobe(spec); err != nil {
		t.Errorf("expected es to be derived from the radii: %v", err)
	}
	spec.EccentricitySquared = 0.5
	if _, err := NewGlobe(spec); !errors.Is(err, core.ErrInconsistentEllipsoid) {
		t.Errorf("expected ErrInconsistentEllipsoid, got %v", err)
	}

	if _, err := NewGlobe(GlobeSpec{Kind: globe.Kind(9), EquatorialRadius: 1, PolarRadius: 1}); !errors.Is(err, core.ErrUnknownComponent) {
		t.Errorf("expected ErrUnknownComponent for the globe kind, got %v", err)
	}
	if _, err := NewProjection(globe.ProjectionKind(9)); !errors.Is(err, core.ErrUnknownComponent) {
		t.Errorf("expected ErrUnknownComponent for the projection, got %v", err)
	}
	if _, err := NewElevationModel(globe.ElevationKind(9), 0); !errors.Is(err, core.ErrUnknownComponent) {
		t.Errorf("expected ErrUnknownComponent for the elevation model, got %v", err)
	}
}

func TestSystemManager(t *testing.T) {
	core.SetLogOutput(io.Discard)
	config := DefaultSystemManagerConfig()
	config.Registerer = prometheus.NewRegistry()

	sm, err := NewSystemManager(&config)
	if err != nil {
		t.Fatalf("NewSystemManager: %v", err)
	}
	if sm.Globe() == nil || sm.TaskService() == nil || sm.ResourceCache() == nil || sm.ViewSystem() == nil || sm.Metrics() == nil {
		t.Fatalf("expected every system to be built")
	}
	if sm.ViewSystem().GetDefault().Globe() != sm.Globe() {
		t.Errorf("expected the default view on the manager's globe")
	}

	_ = sm.ResourceCache().Put("tile", nil, 10)
	spec := DefaultGlobeSpec()
	spec.Kind = globe.KindFlat
	g, err := sm.ReplaceGlobe(spec)
	if err != nil {
		t.Fatalf("ReplaceGlobe: %v", err)
	}
	if sm.Globe() != g || sm.ViewSystem().GetDefault().Globe() != g {
		t.Errorf("expected the new globe to be bound")
	}
	if sm.ResourceCache().NumObjects() != 0 {
		t.Errorf("expected the cache to be emptied")
	}

	if err := sm.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	bad := DefaultSystemManagerConfig()
	bad.Tasks.Workers = 0
	if _, err := NewSystemManager(&bad); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("expected ErrNoWorkers, got %v", err)
	}
}

func TestFactoryErrorsAreLoggedVerbatim(t *testing.T) {
	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	defer core.SetLogOutput(io.Discard)

	spec := DefaultGlobeSpec()
	spec.Kind = globe.Kind(42)
	_, err := NewGlobe(spec)
	if !errors.Is(err, core.ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got %v", err)
	}
	if out := buf.String(); !strings.Contains(out, err.Error()) || strings.Contains(out, "%!") {
		t.Errorf("expected the error text in the log, got %q", out)
	}
}
