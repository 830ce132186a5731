package graph

import "github.com/cccac/attendance-geofence/geofence"

// This file will not be regenerated automatically.
//
// It serves as dependency injection for your app, add any dependencies you require here.

type Resolver struct {
	Fence *geofence.Geofence
	// Checked, if set, sees every isWithinGeofence answer.
	Checked func(geofence.Result)
}
