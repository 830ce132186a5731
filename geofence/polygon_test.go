package geofence

import (
	"errors"
	"strconv"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var (
	_testSquare = Polygon{{0, 0}, {0, 10}, {10, 10}, {10, 0}}
	// The hypotenuse is the closing edge from the last vertex back to the first.
	_testTriangle = Polygon{{10, 0}, {0, 0}, {0, 10}}
	// Concave "U", opening to the north.
	_testU = Polygon{{0, 0}, {0, 9}, {9, 9}, {9, 6}, {3, 6}, {3, 3}, {9, 3}, {9, 0}}
)

type testCase struct {
	expected bool
	p        Point
}

func TestContainsSquare(t *testing.T) {
	testCases := []testCase{
		{true, Point{5, 5}},
		{false, Point{15, 15}},
		{false, Point{-1, 5}},
		{false, Point{5, -1}},
		{false, Point{11, 5}},
		{true, Point{0.3, 9.7}},
	}

	for _, testCase := range testCases {
		is := Contains(testCase.p, _testSquare)
		if is != testCase.expected {
			t.Error("expected:", testCase.p, "=", testCase.expected, "got:", is)
		}
	}
}

func TestContainsUsesClosingEdge(t *testing.T) {
	if !Contains(Point{2, 2}, _testTriangle) {
		t.Error("triangle should contain (2, 2) but it does not")
	}
	if Contains(Point{8, 8}, _testTriangle) {
		t.Error("triangle should not contain (8, 8) but it does")
	}

	// Without the closing edge only the two legs remain, and neither sits north of the point.
	if Contains(Point{2, 2}, _testTriangle[:2]) {
		t.Error("a two vertex polygon should contain nothing")
	}
}

func TestContainsConcave(t *testing.T) {
	testCases := []testCase{
		{true, Point{1, 1}},
		{true, Point{1, 5}},
		{true, Point{6, 1}},
		{true, Point{6, 8}},
		{false, Point{6, 4.5}}, // inside the notch
		{false, Point{10, 4.5}},
	}

	for _, testCase := range testCases {
		is := _testU.Contains(testCase.p)
		if is != testCase.expected {
			t.Error("expected:", testCase.p, "=", testCase.expected, "got:", is)
		}
	}
}

func TestContainsAgreesWithPlanar(t *testing.T) {
	polys := []Polygon{_testSquare, _testTriangle, _testU}

	// Grid coordinates end in .2 or .7, so no probe point lies on an edge of these integer polygons, including the
	// lat+lon=10 hypotenuse. Boundary points are left to TestContainsBoundaryIsStable.
	for _, poly := range polys {
		ring := poly.Ring()
		for i := 0; i < 25; i++ {
			for k := 0; k < 25; k++ {
				lat, lon := -1.3+0.5*float64(i), -1.3+0.5*float64(k)
				p := Point{lat, lon}
				want := planar.RingContains(ring, orb.Point{lon, lat})
				if got := Contains(p, poly); got != want {
					t.Errorf("polygon %s, point %s: have %v, planar says %v", poly, p, got, want)
				}
			}
		}
	}
}

func TestContainsDegenerate(t *testing.T) {
	polys := []Polygon{
		nil,
		{},
		{{1, 1}},
		{{1, 1}, {5, 5}},
	}
	points := []Point{{0, 0}, {1, 1}, {3, 3}, {2, 4}}

	for _, poly := range polys {
		for _, p := range points {
			if Contains(p, poly) {
				t.Errorf("polygon with %d vertices should contain nothing, but contains %s", len(poly), p)
			}
		}
	}
}

func TestContainsIsDeterministic(t *testing.T) {
	probes := []Point{{5, 5}, {0, 0}, {10, 5}, {5, 10}, {15, 15}}
	for _, p := range probes {
		first := Contains(p, _testSquare)
		for i := 0; i < 100; i++ {
			if Contains(p, _testSquare) != first {
				t.Fatalf("result for %s changed on call %d", p, i)
			}
		}
	}
}

// Points on an edge or vertex have no contractual classification. This only pins down that such queries answer
// without panicking and stay stable within a run.
func TestContainsBoundaryIsStable(t *testing.T) {
	boundary := []Point{{0, 0}, {0, 5}, {5, 0}, {10, 10}, {10, 5}, {5, 10}}
	for _, p := range boundary {
		is := Contains(p, _testSquare)
		if is != Contains(p, _testSquare) {
			t.Errorf("boundary point %s changed classification", p)
		}
		t.Logf("boundary point %s classified as inside=%v", p, is)
	}
}

func TestPrepare(t *testing.T) {
	testCases := []struct {
		name string
		raw  Polygon
		want Polygon
	}{
		{"nil", nil, Polygon{}},
		{"single", Polygon{{1, 1}}, Polygon{{1, 1}}},
		{"consecutive", Polygon{{1, 1}, {1, 1}, {2, 2}}, Polygon{{1, 1}, {2, 2}}},
		{"non-consecutive", Polygon{{1, 1}, {2, 2}, {1, 1}}, Polygon{{1, 1}, {2, 2}, {1, 1}}},
		{"run", Polygon{{1, 1}, {1, 1}, {1, 1}, {2, 2}, {2, 2}}, Polygon{{1, 1}, {2, 2}}},
		{"same latitude only", Polygon{{1, 1}, {1, 2}, {1, 2}}, Polygon{{1, 1}, {1, 2}}},
		{"same longitude only", Polygon{{1, 1}, {2, 1}}, Polygon{{1, 1}, {2, 1}}},
		{"no tolerance", Polygon{{1, 1}, {1.0000000001, 1}}, Polygon{{1, 1}, {1.0000000001, 1}}},
		{"collinear kept", Polygon{{0, 0}, {1, 1}, {2, 2}}, Polygon{{0, 0}, {1, 1}, {2, 2}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			have := Prepare(tc.raw)
			if !equal(have, tc.want) {
				t.Errorf("want %s, have %s", tc.want, have)
			}
		})
	}
}

func TestPrepareIsIdempotent(t *testing.T) {
	raws := []Polygon{
		DefaultPolygon(),
		{{1, 1}, {1, 1}, {2, 2}, {2, 2}, {1, 1}},
		_testU,
	}
	for _, raw := range raws {
		once := Prepare(raw)
		twice := Prepare(once)
		if !equal(once, twice) {
			t.Errorf("preparing twice changed %s into %s", once, twice)
		}
	}
}

func TestPreparePreservesOrder(t *testing.T) {
	raw := Polygon{{3, 3}, {1, 1}, {1, 1}, {2, 2}, {0, 0}, {0, 0}}
	want := Polygon{{3, 3}, {1, 1}, {2, 2}, {0, 0}}
	if have := Prepare(raw); !equal(have, want) {
		t.Errorf("want %s, have %s", want, have)
	}
}

func TestPrepareDoesNotAlias(t *testing.T) {
	raw := Polygon{{1, 1}, {2, 2}, {3, 3}}
	prepared := Prepare(raw)
	prepared[0] = Point{9, 9}
	if raw[0] != (Point{1, 1}) {
		t.Error("mutating the prepared polygon changed its input")
	}
}

func TestParsePolygon(t *testing.T) {
	poly, err := ParsePolygon("")
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}
	if len(poly) != 0 {
		t.Error("Unexpected vertices:", poly)
	}

	poly, err = ParsePolygon("  0,0 0,10\n10,10   10,0 ")
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}
	if !equal(poly, _testSquare) {
		t.Errorf("want %s, have %s", _testSquare, poly)
	}

	// Explicit closure is kept: the repeat is not adjacent to the first vertex.
	poly, err = ParsePolygon("1,2 3,4 1.5,3 1,2")
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}
	if len(Prepare(poly)) != 4 {
		t.Errorf("Unexpected number of vertices: want 4, have %d", len(Prepare(poly)))
	}
}

func TestParsePolygonErrors(t *testing.T) {
	_, err := ParsePolygon("1,2 3;4")
	var coordErr InvalidCoordinateError
	if !errors.As(err, &coordErr) {
		t.Errorf("expected InvalidCoordinateError, got %v", err)
	}

	_, err = ParsePolygon("1,2 x,4")
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Errorf("expected strconv.ErrSyntax, got %v", err)
	}

	_, err = ParsePoint("1,2,3")
	if !errors.As(err, &coordErr) {
		t.Errorf("expected InvalidCoordinateError, got %v", err)
	}
}

func TestRing(t *testing.T) {
	ring := _testSquare.Ring()
	if len(ring) != 5 {
		t.Fatalf("expected a closed ring of 5 points, got %d", len(ring))
	}
	if ring[1] != (orb.Point{10, 0}) {
		t.Errorf("expected lon/lat order, got %v", ring[1])
	}

	b := _testTriangle.Bound()
	if b.Min != (orb.Point{0, 0}) || b.Max != (orb.Point{10, 10}) {
		t.Errorf("unexpected bound %v", b)
	}

	if len(Polygon(nil).Ring()) != 0 {
		t.Error("empty polygon should give an empty ring")
	}
}

func TestRingSingleVertex(t *testing.T) {
	ring := Polygon{{1, 2}}.Ring()
	if len(ring) != 2 {
		t.Fatalf("expected the single vertex to be closed explicitly, got %v", ring)
	}
	if ring[0] != (orb.Point{2, 1}) || ring[1] != ring[0] {
		t.Errorf("unexpected ring %v", ring)
	}

	// Already closed loops are not closed twice.
	closed := Polygon{{0, 0}, {0, 1}, {1, 1}, {0, 0}}.Ring()
	if len(closed) != 4 {
		t.Errorf("expected 4 points, got %v", closed)
	}
}

func equal(a, b Polygon) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
