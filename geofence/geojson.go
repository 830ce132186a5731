package geofence

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Ring converts poly to an orb ring in lon/lat order, closed explicitly as GeoJSON requires.
func (poly Polygon) Ring() orb.Ring {
	if len(poly) == 0 {
		return orb.Ring{}
	}

	ring := make(orb.Ring, 0, len(poly)+1)
	for _, p := range poly {
		ring = append(ring, orb.Point{p.Longitude, p.Latitude})
	}
	// A single vertex is trivially "closed"; it still needs a second position to be a valid ring.
	if len(poly) == 1 || !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// Bound returns the bounding box of poly.
func (poly Polygon) Bound() orb.Bound {
	return poly.Ring().Bound()
}

// Pairs returns the vertices as [lat, lon] pairs.
func (poly Polygon) Pairs() [][2]float64 {
	pairs := make([][2]float64, len(poly))
	for i, p := range poly {
		pairs[i] = [2]float64{p.Latitude, p.Longitude}
	}
	return pairs
}

// Feature returns the fence as a GeoJSON polygon feature for display.
func (g *Geofence) Feature() *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{g.Polygon().Ring()})
	f.Properties["enabled"] = g.Enabled()
	f.Properties["vertices"] = g.Len()
	return f
}
