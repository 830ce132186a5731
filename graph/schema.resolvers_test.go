package graph

import (
	"context"
	"testing"

	"github.com/cccac/attendance-geofence/geofence"
)

var _testSquare = geofence.Polygon{{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 10}, {Latitude: 10, Longitude: 10}, {Latitude: 10, Longitude: 0}}

func TestIsWithinGeofence(t *testing.T) {
	var seen []geofence.Result
	r := &Resolver{
		Fence:   geofence.New(_testSquare),
		Checked: func(res geofence.Result) { seen = append(seen, res) },
	}
	q := r.Query()

	testCases := []struct {
		expected bool
		p        geofence.Point
	}{
		{true, geofence.Point{Latitude: 5, Longitude: 5}},
		{false, geofence.Point{Latitude: 15, Longitude: 15}},
	}

	for _, tc := range testCases {
		res, err := q.IsWithinGeofence(context.Background(), tc.p.Latitude, tc.p.Longitude)
		if err != nil {
			t.Fatal("unexpected error", err)
		}
		if res.IsWithin != tc.expected {
			t.Error("expected:", tc.p, "=", tc.expected, "got:", res.IsWithin)
		}
	}

	if len(seen) != 2 || !seen[0].IsWithin || seen[1].IsWithin {
		t.Errorf("unexpected observed results %v", seen)
	}
}

func TestGeofencePolygon(t *testing.T) {
	q := (&Resolver{Fence: geofence.New(geofence.DefaultPolygon())}).Query()

	poly, err := q.GeofencePolygon(context.Background())
	if err != nil {
		t.Fatal("unexpected error", err)
	}
	if len(poly) != 5 {
		t.Errorf("expected 5 vertices, got %d", len(poly))
	}

	enabled, err := q.GeofencingEnabled(context.Background())
	if err != nil {
		t.Fatal("unexpected error", err)
	}
	if !enabled {
		t.Error("default geofence should be enabled")
	}
}

func TestUnderSpecifiedGeofence(t *testing.T) {
	q := (&Resolver{Fence: geofence.New(geofence.Polygon{{Latitude: 1, Longitude: 1}, {Latitude: 2, Longitude: 2}})}).Query()

	enabled, _ := q.GeofencingEnabled(context.Background())
	if enabled {
		t.Error("a two vertex geofence should not be enabled")
	}
	res, _ := q.IsWithinGeofence(context.Background(), 1.5, 1.5)
	if res.IsWithin {
		t.Error("a two vertex geofence should contain nothing")
	}
}
