package geofence

// defaultPolygon holds the corners of the allowed attendance area. The first vertex is entered twice; Prepare removes
// the repeat.
var defaultPolygon = Polygon{
	{14.5724949, 121.1324738},
	{14.5724949, 121.1324738},
	{14.5726001, 121.1325499},
	{14.5726487, 121.1325891},
	{14.5726886, 121.1326217},
	{14.5727191, 121.1326569},
}

// DefaultPolygon returns a copy of the raw, unprepared polygon compiled into the package.
func DefaultPolygon() Polygon {
	return append(Polygon(nil), defaultPolygon...)
}

// Result is the outcome of a geofence check.
type Result struct {
	IsWithin bool `json:"isWithin"`
}

// Geofence is an allowed area. It is immutable once built and safe for concurrent use.
// A nil *Geofence behaves like an empty polygon.
type Geofence struct {
	polygon Polygon
}

// New prepares raw and returns a Geofence around it.
func New(raw Polygon) *Geofence {
	return &Geofence{polygon: Prepare(raw)}
}

// Check tests the coordinate against the fence. It does not consult Enabled; an under-specified fence is never
// within.
func (g *Geofence) Check(lat, lon float64) Result {
	if g == nil {
		return Result{}
	}
	return Result{IsWithin: Contains(Point{Latitude: lat, Longitude: lon}, g.polygon)}
}

// Polygon returns a copy of the prepared polygon.
func (g *Geofence) Polygon() Polygon {
	if g == nil {
		return Polygon{}
	}
	return append(Polygon{}, g.polygon...)
}

// Enabled reports whether the prepared polygon has at least three vertices.
func (g *Geofence) Enabled() bool {
	return g != nil && !g.polygon.IsDegenerate()
}

// Len returns the number of prepared vertices.
func (g *Geofence) Len() int {
	if g == nil {
		return 0
	}
	return len(g.polygon)
}

var defaultGeofence = New(defaultPolygon)

// Default returns the Geofence built from DefaultPolygon at package load.
func Default() *Geofence {
	return defaultGeofence
}

// IsWithinGeofence checks lat/lon against the default fence.
func IsWithinGeofence(lat, lon float64) Result {
	return defaultGeofence.Check(lat, lon)
}

// GetGeofencePolygon returns the default fence's prepared polygon.
func GetGeofencePolygon() Polygon {
	return defaultGeofence.Polygon()
}

// IsGeofencingEnabled reports whether the default fence has enough vertices to enclose an area.
func IsGeofencingEnabled() bool {
	return defaultGeofence.Enabled()
}
