package ports

import (
	"context"
	"trip-scheduler-service/internal/domain"
)

// DistanceCache stores origin->destination results keyed by Coordinates.Key().
type DistanceCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]DistanceResult, error)
	PutMany(ctx context.Context, origin string, results map[string]DistanceResult) error
}

// GeocodeCache maps normalized place names to coordinates.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
