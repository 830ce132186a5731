package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cccac/attendance-geofence/geofence"
)

const _testSquare = "0,0 0,10 10,10 10,0"

func setupRouter(t *testing.T, polygon string) (*server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fence, err := loadGeofence(polygon)
	if err != nil {
		t.Fatal("unexpected error", err)
	}
	s := newServer(fence)
	return s, s.router("/check/stream")
}

func do(r *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestLoadGeofence(t *testing.T) {
	fence, err := loadGeofence("")
	if err != nil {
		t.Fatal("unexpected error", err)
	}
	if fence != geofence.Default() {
		t.Error("empty polygon string should select the built-in geofence")
	}

	fence, err = loadGeofence(_testSquare)
	if err != nil {
		t.Fatal("unexpected error", err)
	}
	if fence.Len() != 4 || !fence.Enabled() {
		t.Errorf("unexpected geofence %s", fence.Polygon())
	}

	if _, err := loadGeofence("0,0 nope"); err == nil {
		t.Error("expected error for malformed polygon")
	}
}

func TestCheckQuery(t *testing.T) {
	s, r := setupRouter(t, _testSquare)

	testCases := []struct {
		query    string
		expected bool
	}{
		{"lat=5&lon=5", true},
		{"lat=15&lon=15", false},
		{"lat=95&lon=500", false}, // no range validation
	}

	for _, tc := range testCases {
		w := do(r, "GET", "/geofence/check?"+tc.query, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.query, w.Code)
		}

		var res geofence.Result
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if res.IsWithin != tc.expected {
			t.Errorf("%s: expected isWithin=%v, got %v", tc.query, tc.expected, res.IsWithin)
		}
	}

	if v := testutil.ToFloat64(s.metrics.checks.WithLabelValues(transportHTTP, "inside")); v != 1 {
		t.Errorf("expected 1 inside check, got %v", v)
	}
	if v := testutil.ToFloat64(s.metrics.checks.WithLabelValues(transportHTTP, "outside")); v != 2 {
		t.Errorf("expected 2 outside checks, got %v", v)
	}
}

func TestCheckQuery_InvalidParams(t *testing.T) {
	_, r := setupRouter(t, _testSquare)

	for _, query := range []string{"", "lat=5", "lon=5", "lat=abc&lon=5", "lat=5&lon=abc"} {
		w := do(r, "GET", "/geofence/check?"+query, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", query, w.Code)
		}
	}
}

func TestCheckBody(t *testing.T) {
	_, r := setupRouter(t, _testSquare)

	w := do(r, "POST", "/geofence/check", []byte(`{"latitude":5,"longitude":5}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"isWithin":true}` {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	w = do(r, "POST", "/geofence/check", []byte(`{"latitude":15,"longitude":15}`))
	if strings.TrimSpace(w.Body.String()) != `{"isWithin":false}` {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestCheckBody_Invalid(t *testing.T) {
	_, r := setupRouter(t, _testSquare)

	for _, body := range []string{`not json`, `{"latitude":5}`, `{"longitude":5}`, `{"latitude":"5","longitude":5}`, `{"lat":5,"lon":5}`, `{}`} {
		w := do(r, "POST", "/geofence/check", []byte(body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestGetPolygon(t *testing.T) {
	_, r := setupRouter(t, "")

	w := do(r, "GET", "/geofence", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp polygonResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Enabled || resp.Vertices != 5 || len(resp.Polygon) != 5 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Polygon[0] != [2]float64{14.5724949, 121.1324738} {
		t.Errorf("expected [lat, lon] pairs, got %v", resp.Polygon[0])
	}
	if resp.Bound.MinLatitude != 14.5724949 || resp.Bound.MaxLongitude != 121.1326569 {
		t.Errorf("unexpected bound %+v", resp.Bound)
	}
}

func TestGetGeoJSON(t *testing.T) {
	_, r := setupRouter(t, _testSquare)

	w := do(r, "GET", "/geofence/geojson", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Type     string `json:"type"`
		Geometry struct {
			Type        string         `json:"type"`
			Coordinates [][][2]float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Type != "Feature" || resp.Geometry.Type != "Polygon" {
		t.Fatalf("unexpected feature %s", w.Body.String())
	}
	if len(resp.Geometry.Coordinates) != 1 || len(resp.Geometry.Coordinates[0]) != 5 {
		t.Fatalf("expected one closed ring of 5 points, got %v", resp.Geometry.Coordinates)
	}
	// GeoJSON positions are [lon, lat]
	if resp.Geometry.Coordinates[0][1] != [2]float64{10, 0} {
		t.Errorf("unexpected position %v", resp.Geometry.Coordinates[0][1])
	}
}

func TestHealth(t *testing.T) {
	_, r := setupRouter(t, _testSquare)
	if w := do(r, "GET", "/healthz", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	_, r = setupRouter(t, "1,1 2,2")
	if w := do(r, "GET", "/healthz", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestUnderSpecifiedFenceRejects(t *testing.T) {
	_, r := setupRouter(t, "1,1 1,1 2,2")

	w := do(r, "GET", "/geofence/check?lat=1.5&lon=1.5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"isWithin":false}` {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	w = do(r, "GET", "/geofence", nil)
	var resp polygonResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Enabled || resp.Vertices != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, r := setupRouter(t, _testSquare)
	do(r, "GET", "/geofence/check?lat=5&lon=5", nil)

	w := do(r, "GET", "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`geofence_checks_total{result="inside",transport="http"} 1`,
		`geofence_polygon_vertices 4`,
		`geofence_enabled 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output misses %q", want)
		}
	}
}

func TestCheckRequestPoint(t *testing.T) {
	lat, lon := 1.5, 2.5

	p, err := checkRequest{Latitude: &lat, Longitude: &lon}.point()
	if err != nil {
		t.Fatal("unexpected error", err)
	}
	if p != (geofence.Point{Latitude: 1.5, Longitude: 2.5}) {
		t.Errorf("unexpected point %s", p)
	}

	for _, req := range []checkRequest{{}, {Latitude: &lat}, {Longitude: &lon}} {
		if _, err := req.point(); !errors.Is(err, errMissingCoordinate) {
			t.Errorf("expected errMissingCoordinate, got %v", err)
		}
	}
}

func TestGraphQLQuery(t *testing.T) {
	s, r := setupRouter(t, _testSquare)

	query := `{"query":"{ isWithinGeofence(lat: 5, lon: 5) { isWithin } geofencePolygon { latitude longitude } geofencingEnabled }"}`
	w := do(r, "POST", "/query", []byte(query))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			IsWithinGeofence  geofence.Result  `json:"isWithinGeofence"`
			GeofencePolygon   []geofence.Point `json:"geofencePolygon"`
			GeofencingEnabled bool             `json:"geofencingEnabled"`
		} `json:"data"`
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors %s", resp.Errors)
	}
	if !resp.Data.IsWithinGeofence.IsWithin {
		t.Error("expected (5, 5) to be within the square")
	}
	if len(resp.Data.GeofencePolygon) != 4 || resp.Data.GeofencePolygon[1] != (geofence.Point{Latitude: 0, Longitude: 10}) {
		t.Errorf("unexpected polygon %v", resp.Data.GeofencePolygon)
	}
	if !resp.Data.GeofencingEnabled {
		t.Error("expected the square to be enabled")
	}

	if v := testutil.ToFloat64(s.metrics.checks.WithLabelValues(transportGraphQL, "inside")); v != 1 {
		t.Errorf("expected 1 inside check, got %v", v)
	}
}

func TestGraphQLMissingArgument(t *testing.T) {
	_, r := setupRouter(t, _testSquare)

	w := do(r, "POST", "/query", []byte(`{"query":"{ isWithinGeofence(lat: 5) { isWithin } }"}`))
	if !strings.Contains(w.Body.String(), `"errors"`) {
		t.Errorf("expected a validation error, got %s", w.Body.String())
	}
}
