package graph

// This file will be automatically regenerated based on the schema, any resolver implementations
// will be copied through when generating and any unknown code will be moved to the end.
// Code generated by github.com/99designs/gqlgen version v0.17.49

import (
	"context"

	"github.com/cccac/attendance-geofence/geofence"
	"github.com/cccac/attendance-geofence/graph/generated"
)

// IsWithinGeofence is the resolver for the isWithinGeofence field.
func (r *queryResolver) IsWithinGeofence(ctx context.Context, lat float64, lon float64) (*geofence.Result, error) {
	res := r.Fence.Check(lat, lon)
	if r.Checked != nil {
		r.Checked(res)
	}
	return &res, nil
}

// GeofencePolygon is the resolver for the geofencePolygon field.
func (r *queryResolver) GeofencePolygon(ctx context.Context) ([]geofence.Point, error) {
	return r.Fence.Polygon(), nil
}

// GeofencingEnabled is the resolver for the geofencingEnabled field.
func (r *queryResolver) GeofencingEnabled(ctx context.Context) (bool, error) {
	return r.Fence.Enabled(), nil
}

// Query returns generated.QueryResolver implementation.
func (r *Resolver) Query() generated.QueryResolver { return &queryResolver{r} }

type queryResolver struct{ *Resolver }
