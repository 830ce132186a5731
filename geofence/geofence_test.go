package geofence

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/paulmach/orb"
)

func TestDefaultPolygon(t *testing.T) {
	raw := DefaultPolygon()
	if len(raw) != 6 {
		t.Fatalf("expected 6 raw vertices, got %d", len(raw))
	}

	poly := GetGeofencePolygon()
	if len(poly) != 5 {
		t.Fatalf("expected 5 prepared vertices, got %d", len(poly))
	}
	if !equal(poly, append(Polygon{raw[0]}, raw[2:]...)) {
		t.Errorf("unexpected prepared polygon %s", poly)
	}
	if !IsGeofencingEnabled() {
		t.Error("default geofence should be enabled")
	}

	// Any answer is fine here, as long as there is one and it is stable.
	first := raw[0]
	is := IsWithinGeofence(first.Latitude, first.Longitude)
	if is != IsWithinGeofence(first.Latitude, first.Longitude) {
		t.Error("first vertex changed classification")
	}
}

func TestDefaultGeofenceCheck(t *testing.T) {
	testCases := []testCase{
		{true, Point{14.572619, 121.13257}},
		{true, Point{14.57262, 121.13257}},
		{false, Point{14.5727, 121.13257}},
		{false, Point{14.5726, 121.13257}},
		{false, Point{0, 0}},
		{false, Point{14.5726, 121.2}},
	}

	for _, testCase := range testCases {
		res := IsWithinGeofence(testCase.p.Latitude, testCase.p.Longitude)
		if res.IsWithin != testCase.expected {
			t.Error("expected:", testCase.p, "=", testCase.expected, "got:", res.IsWithin)
		}
	}
}

func TestDefaultPolygonIsACopy(t *testing.T) {
	raw := DefaultPolygon()
	raw[0] = Point{0, 0}
	if DefaultPolygon()[0] == (Point{0, 0}) {
		t.Error("DefaultPolygon handed out its backing array")
	}

	poly := GetGeofencePolygon()
	poly[0] = Point{0, 0}
	if len(GetGeofencePolygon()) != 5 || GetGeofencePolygon()[0] == (Point{0, 0}) {
		t.Error("GetGeofencePolygon handed out its backing array")
	}
}

func TestGeofenceUnderSpecified(t *testing.T) {
	raws := []Polygon{
		nil,
		{{1, 1}},
		{{1, 1}, {2, 2}},
		{{1, 1}, {1, 1}, {2, 2}}, // two after preparation
	}

	for _, raw := range raws {
		g := New(raw)
		if g.Enabled() {
			t.Errorf("%s should not be enabled", g.Polygon())
		}
		if res := g.Check(1.5, 1.5); res.IsWithin {
			t.Errorf("%s should contain nothing", g.Polygon())
		}
	}

	var g *Geofence
	if g.Enabled() || g.Check(0, 0).IsWithin || g.Len() != 0 || len(g.Polygon()) != 0 {
		t.Error("nil geofence should behave like an empty one")
	}
}

func TestGeofenceInjectedPolygon(t *testing.T) {
	g := New(_testSquare)
	if !g.Enabled() {
		t.Fatal("square should be enabled")
	}
	if !g.Check(5, 5).IsWithin {
		t.Error("square should contain (5, 5)")
	}
	if g.Check(15, 15).IsWithin {
		t.Error("square should not contain (15, 15)")
	}
}

func TestGeofenceConcurrentUse(t *testing.T) {
	g := New(_testU)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 1000; k++ {
				if !g.Check(1, 1).IsWithin || g.Check(6, 4.5).IsWithin {
					t.Error("unexpected result under concurrent use")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestResultJSON(t *testing.T) {
	b, err := json.Marshal(Result{IsWithin: true})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"isWithin":true}` {
		t.Errorf("unexpected encoding %s", b)
	}
}

func TestFeature(t *testing.T) {
	f := Default().Feature()

	poly, ok := f.Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("expected polygon geometry, got %T", f.Geometry)
	}
	if len(poly) != 1 || len(poly[0]) != 6 {
		t.Fatalf("expected one closed ring of 6 points, got %v", poly)
	}
	if f.Properties["enabled"] != true {
		t.Error("expected enabled property")
	}
	if f.Properties["vertices"] != 5 {
		t.Errorf("expected 5 vertices, got %v", f.Properties["vertices"])
	}

	if _, err := f.MarshalJSON(); err != nil {
		t.Fatal("unexpected error", err)
	}
}
