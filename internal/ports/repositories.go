package ports

import (
	"context"
	"time"
	"trip-scheduler-service/internal/domain"
)

// Port: the location catalog that supplies waypoints.
type WaypointRepository interface {
	// Return the waypoints with the given ids, or the whole catalog when ids is empty.
	ListWaypoints(ctx context.Context, ids []string) ([]domain.Waypoint, error)
}

// Port: the source of trip parameters.
type TripRepository interface {
	GetTrip(ctx context.Context, id string) (domain.Trip, error)
	SaveTrip(ctx context.Context, trip domain.Trip) error
}

// Port: persistence for generated schedules. Visited flags are stored
// independently of the schedule payload and survive reloads.
type ScheduleStore interface {
	SaveSchedule(ctx context.Context, tripID string, schedule *domain.Schedule) error
	GetSchedule(ctx context.Context, tripID string) (*domain.Schedule, error)
	MarkVisited(ctx context.Context, tripID string, waypointID string, visited bool, at time.Time) error
	DeleteSchedule(ctx context.Context, tripID string) error
}
