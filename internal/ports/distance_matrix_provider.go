package ports

import (
	"context"
	"trip-scheduler-service/internal/domain"
)

// Optional extension of DistanceProvider that supports batched lookups.
type DistanceMatrixProvider interface {
	DistanceProvider
	// Return distances from one origin to many destinations, aligned with destinations.
	GetDistances(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]DistanceResult, error)
}
