package ports

import (
	"context"
	"trip-scheduler-service/internal/domain"
)

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (domain.Coordinates, error)
}
