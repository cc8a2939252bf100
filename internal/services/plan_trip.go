package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"trip-scheduler-service/internal/domain"
	"trip-scheduler-service/internal/platform/obs"
	"trip-scheduler-service/internal/ports"

	"github.com/google/uuid"
)

type PlanTripRequest struct {
	TripID      string
	WaypointIDs []string
	// Overrides the trip's stored start date when set.
	StartDate string
}

// TripProgress counts visited locations of a saved schedule.
type TripProgress struct {
	Visited int     `json:"visited"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// TripPlanner is the application service behind the HTTP API. It loads trips
// and catalog entries, runs the ScheduleBuilder and persists the result.
type TripPlanner struct {
	Trips     ports.TripRepository
	Waypoints ports.WaypointRepository
	Schedules ports.ScheduleStore
	Builder   *ScheduleBuilder
	// Optional. Resolves start locations that only carry a name.
	Geocoder ports.Geocoder

	now func() time.Time
}

func NewTripPlanner(
	trips ports.TripRepository,
	waypoints ports.WaypointRepository,
	schedules ports.ScheduleStore,
	builder *ScheduleBuilder,
	geocoder ports.Geocoder,
) *TripPlanner {
	return &TripPlanner{
		Trips:     trips,
		Waypoints: waypoints,
		Schedules: schedules,
		Builder:   builder,
		Geocoder:  geocoder,
		now:       time.Now,
	}
}

// CreateTrip validates and stores a trip, assigning an id when missing.
func (p *TripPlanner) CreateTrip(ctx context.Context, trip domain.Trip) (_ domain.Trip, err error) {
	defer obs.Time(ctx, "planner.CreateTrip")(&err)

	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("create trip: %w", err)
	}
	if s := strings.TrimSpace(trip.StartDate); s != "" {
		if _, err := time.Parse(domain.DateLayout, s); err != nil {
			return domain.Trip{}, fmt.Errorf("create trip: %w: start_date %q is not YYYY-MM-DD", domain.ErrInvalidConfiguration, s)
		}
	}
	if strings.TrimSpace(trip.StartLocation.Name) == "" {
		return domain.Trip{}, fmt.Errorf("create trip: %w: start location needs a name", domain.ErrInvalidConfiguration)
	}

	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}

	if err := p.Trips.SaveTrip(ctx, trip); err != nil {
		return domain.Trip{}, fmt.Errorf("create trip: %w", err)
	}

	return trip, nil
}

func (p *TripPlanner) GetTrip(ctx context.Context, tripID string) (domain.Trip, error) {
	return p.Trips.GetTrip(ctx, tripID)
}

// PlanTrip generates and saves a schedule for a stored trip. Selection
// warnings (unknown or unusable ids) are appended to the summary warnings.
// Saving replaces any previous schedule of the trip and clears its visits.
func (p *TripPlanner) PlanTrip(ctx context.Context, req PlanTripRequest) (_ *domain.Schedule, err error) {
	defer obs.Time(ctx, "planner.PlanTrip")(&err)

	trip, err := p.Trips.GetTrip(ctx, req.TripID)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	trip, err = p.resolveStart(ctx, trip, true)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	if req.StartDate != "" {
		trip.StartDate = req.StartDate
	}

	var selected []domain.Waypoint
	var selectionWarnings []string
	if len(req.WaypointIDs) > 0 {
		catalog, err := p.Waypoints.ListWaypoints(ctx, req.WaypointIDs)
		if err != nil {
			return nil, fmt.Errorf("plan trip: list waypoints: %w", err)
		}
		selected, selectionWarnings = SelectWaypoints(catalog, req.WaypointIDs)
	}

	schedule, err := p.Builder.Generate(ctx, trip, selected)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	schedule.Summary.Warnings = append(schedule.Summary.Warnings, selectionWarnings...)

	if err := p.Schedules.SaveSchedule(ctx, trip.ID, schedule); err != nil {
		return nil, fmt.Errorf("plan trip: save schedule: %w", err)
	}

	return schedule, nil
}

// Preview generates a schedule without persisting anything.
func (p *TripPlanner) Preview(ctx context.Context, trip domain.Trip, waypoints []domain.Waypoint) (_ *domain.Schedule, err error) {
	defer obs.Time(ctx, "planner.Preview")(&err)

	trip, err = p.resolveStart(ctx, trip, false)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}

	schedule, err := p.Builder.Generate(ctx, trip, waypoints)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	return schedule, nil
}

func (p *TripPlanner) GetSchedule(ctx context.Context, tripID string) (*domain.Schedule, error) {
	return p.Schedules.GetSchedule(ctx, tripID)
}

func (p *TripPlanner) DeleteSchedule(ctx context.Context, tripID string) error {
	return p.Schedules.DeleteSchedule(ctx, tripID)
}

// MarkVisited stores the flag and returns the updated schedule.
func (p *TripPlanner) MarkVisited(ctx context.Context, tripID, waypointID string, visited bool) (_ *domain.Schedule, err error) {
	defer obs.Time(ctx, "planner.MarkVisited")(&err)

	if err := p.Schedules.MarkVisited(ctx, tripID, waypointID, visited, p.now().UTC()); err != nil {
		return nil, fmt.Errorf("mark visited: %w", err)
	}

	schedule, err := p.Schedules.GetSchedule(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("mark visited: reload: %w", err)
	}
	return schedule, nil
}

// Progress counts visited against scheduled locations.
func Progress(schedule *domain.Schedule) TripProgress {
	var pr TripProgress
	if schedule == nil {
		return pr
	}

	for _, d := range schedule.Days {
		for _, it := range d.Items {
			if it.Kind != domain.ItemVisit {
				continue
			}
			pr.Total++
			if it.Visited {
				pr.Visited++
			}
		}
	}

	if pr.Total > 0 {
		pr.Percent = float64(pr.Visited) * 100 / float64(pr.Total)
	}
	return pr
}

// resolveStart geocodes a start location that has a name but no coordinates.
// With persist set the resolved trip is saved so later runs skip the lookup.
func (p *TripPlanner) resolveStart(ctx context.Context, trip domain.Trip, persist bool) (domain.Trip, error) {
	loc := trip.StartLocation.Location
	if !loc.IsZero() && loc.Valid() {
		return trip, nil
	}

	name := strings.TrimSpace(trip.StartLocation.Name)
	if p.Geocoder == nil || name == "" {
		return trip, fmt.Errorf("%w: start location %q has no coordinates", domain.ErrInvalidConfiguration, name)
	}

	c, err := p.Geocoder.Geocode(ctx, name)
	if err != nil {
		return trip, fmt.Errorf("%w: start location %q could not be resolved: %v", domain.ErrInvalidConfiguration, name, err)
	}
	trip.StartLocation.Location = c

	if persist {
		if err := p.Trips.SaveTrip(ctx, trip); err != nil {
			log.Printf("planner: saving resolved start location failed trip=%s err=%v", trip.ID, err)
		}
	}

	return trip, nil
}
