package geofence

import (
	"fmt"
	"strconv"
	"strings"
)

// This file contains the code for handling lat/lon polygons.

type InvalidCoordinateError struct {
	s string
	v []string
}

func (e InvalidCoordinateError) Error() string {
	return fmt.Sprintf("Invalid coordinate string '%s', splits into %#v", e.s, e.v)
}

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ParsePoint returns a Point extracted from s. s has the following layout:
//
//	s := "14.5724949,121.1324738" // Latitude, Longitude
func ParsePoint(s string) (Point, error) {
	var p Point
	v := strings.Split(strings.TrimSpace(s), ",")
	if len(v) != 2 {
		return p, InvalidCoordinateError{s, v}
	}

	var err error
	p.Latitude, err = strconv.ParseFloat(strings.TrimSpace(v[0]), 64)
	if err != nil {
		return p, fmt.Errorf("parsing latitude: %w", err)
	}
	p.Longitude, err = strconv.ParseFloat(strings.TrimSpace(v[1]), 64)
	if err != nil {
		return p, fmt.Errorf("parsing longitude: %w", err)
	}

	return p, nil
}

func (p Point) String() string {
	return fmt.Sprintf("[Lat:% 3.7f, Lon:% 3.7f]", p.Latitude, p.Longitude)
}

// Polygon is an ordered vertex loop. The edge from the last vertex back to the first is implicit.
type Polygon []Point

// ParsePolygon loads space separated "lat,lon" pairs. An empty string yields an empty polygon. The loop is not closed
// explicitly and no vertex is dropped; run the result through Prepare before use.
func ParsePolygon(s string) (Polygon, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		// No coordinates
		return nil, nil
	}

	chunks := strings.Fields(s)
	poly := make(Polygon, 0, len(chunks))
	for i, chunk := range chunks {
		p, err := ParsePoint(chunk)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		poly = append(poly, p)
	}

	return poly, nil
}

// Prepare drops every vertex that exactly repeats the vertex kept right before it. Repeats further apart are kept, so a
// loop may legitimately revisit a coordinate. The returned polygon never shares memory with raw.
func Prepare(raw Polygon) Polygon {
	if len(raw) == 0 {
		return Polygon{}
	}

	prepared := make(Polygon, 0, len(raw))
	prepared = append(prepared, raw[0])
	for _, p := range raw[1:] {
		last := prepared[len(prepared)-1]
		if p.Latitude == last.Latitude && p.Longitude == last.Longitude {
			continue
		}
		prepared = append(prepared, p)
	}

	return prepared
}

// Contains returns true if p is inside poly, using the even-odd rule with longitude as x and latitude as y. Polygons
// with fewer than three vertices contain nothing. Points on an edge or vertex have no guaranteed classification.
func Contains(p Point, poly Polygon) bool {
	// Walk every edge (i, j), j trailing i, so the closing edge from the last vertex to the first is included. Count
	// edges that straddle p's longitude and cross it north of p.
	inside := false

	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]

		// The straddle check must stay ahead of the division: it guarantees a.Longitude != b.Longitude.
		if (a.Longitude > p.Longitude) == (b.Longitude > p.Longitude) {
			continue
		}

		latAtCrossing := (b.Latitude-a.Latitude)*(p.Longitude-a.Longitude)/(b.Longitude-a.Longitude) + a.Latitude
		if p.Latitude < latAtCrossing {
			inside = !inside
		}
	}

	return inside
}

// Contains returns true if p is inside poly.
func (poly Polygon) Contains(p Point) bool {
	return Contains(p, poly)
}

// IsDegenerate reports whether poly has too few vertices to enclose any area.
func (poly Polygon) IsDegenerate() bool {
	return len(poly) < 3
}

func (poly Polygon) String() string {
	parts := make([]string, len(poly))
	for i, p := range poly {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
