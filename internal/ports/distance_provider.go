package ports

import (
	"context"
	"trip-scheduler-service/internal/domain"
)

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for retrieving road travel distance and duration between coordinates.
type DistanceProvider interface {
	// Return travel distance and estimated duration between two points.
	GetDistance(ctx context.Context, origin domain.Coordinates, destination domain.Coordinates) (DistanceResult, error)
}
