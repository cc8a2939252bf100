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

type BuilderOptions struct {
	SpeedKmh          float64
	Pack              PackOptions
	LookupTimeout     time.Duration
	LookupConcurrency int
}

func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		SpeedKmh:          DefaultAverageSpeedKmh,
		Pack:              DefaultPackOptions(),
		LookupTimeout:     DefaultLookupTimeout,
		LookupConcurrency: DefaultLookupConcurrency,
	}
}

// ScheduleBuilder turns a trip and a waypoint selection into a day-by-day schedule.
//
// The whole selection is sequenced once, so each day resumes where the previous
// one stopped. Days are packed greedily without look-ahead or backtracking.
type ScheduleBuilder struct {
	sequencer RouteSequencer
	packer    DayPacker
	refiner   *LegRefiner
	now       func() time.Time
	newID     func() string
}

// NewScheduleBuilder creates a builder. provider may be nil, in which case all
// legs use straight-line estimates and Generate performs no I/O.
func NewScheduleBuilder(opts BuilderOptions, provider ports.DistanceProvider) *ScheduleBuilder {
	b := &ScheduleBuilder{
		sequencer: NewRouteSequencer(NewDistanceEstimator(opts.SpeedKmh)),
		packer:    NewDayPacker(opts.Pack),
		now:       time.Now,
		newID:     uuid.NewString,
	}

	if provider != nil {
		b.refiner = &LegRefiner{
			Provider:    provider,
			Timeout:     opts.LookupTimeout,
			Concurrency: opts.LookupConcurrency,
		}
	}

	return b
}

// WithClock overrides the time source used for date stamping.
func (b *ScheduleBuilder) WithClock(now func() time.Time) *ScheduleBuilder {
	b.now = now
	return b
}

// Generate builds a fresh schedule. Invalid trip parameters fail with
// ErrInvalidConfiguration and an empty selection with ErrNoWaypointsSelected.
// A selection that does not fully fit is not an error: the schedule comes back
// with IsFeasible=false and the uncovered locations listed.
func (b *ScheduleBuilder) Generate(
	ctx context.Context,
	trip domain.Trip,
	waypoints []domain.Waypoint,
) (_ *domain.Schedule, err error) {
	defer obs.Time(ctx, "schedule.Generate")(&err)

	if e := validateTrip(trip); e != nil {
		return nil, fmt.Errorf("generate schedule: %w", e)
	}

	currentDate, err := b.startDate(trip)
	if err != nil {
		return nil, fmt.Errorf("generate schedule: %w", err)
	}

	if len(waypoints) == 0 {
		return nil, fmt.Errorf("generate schedule: %w", domain.ErrNoWaypointsSelected)
	}

	order, legs := b.sequencer.Sequence(trip.StartLocation, waypoints)

	legWarnings := []string{}
	for _, leg := range legs {
		if leg.Warning != "" {
			legWarnings = append(legWarnings, leg.Warning)
		}
	}

	if b.refiner != nil {
		var fallbacks []string
		legs, fallbacks = b.refiner.Refine(ctx, legs)
		legWarnings = append(legWarnings, fallbacks...)
	}

	candidates := make([]Candidate, len(order))
	for i := range order {
		candidates[i] = Candidate{Waypoint: order[i], Leg: legs[i]}
	}

	schedule := &domain.Schedule{
		ID:          b.newID(),
		TripID:      trip.ID,
		Origin:      trip.StartLocation,
		GeneratedAt: b.now().UTC(),
		Days:        make([]domain.Day, 0, trip.NumDays),
	}

	dayWarnings := []string{}
	globalIndex := 0
	totalDistance := 0.0

	for dayNum := 1; dayNum <= trip.NumDays && globalIndex < len(candidates); dayNum++ {
		plan := b.packer.PackDay(trip.DayStart, trip.DayEnd, candidates, globalIndex)

		for _, c := range candidates[globalIndex : globalIndex+plan.Consumed] {
			totalDistance += c.Leg.DistanceKm
		}

		schedule.Days = append(schedule.Days, domain.Day{
			DayNumber: dayNum,
			Date:      currentDate.Format(domain.DateLayout),
			Items:     plan.Items,
			Summary:   plan.Summary,
			Warnings:  plan.Warnings,
		})
		for _, w := range plan.Warnings {
			dayWarnings = append(dayWarnings, fmt.Sprintf("Day %d: %s", dayNum, w))
		}

		schedule.Summary.TotalTravelMinutes += plan.Summary.TravelMinutes
		schedule.Summary.TotalVisitMinutes += plan.Summary.VisitMinutes

		globalIndex += plan.Consumed
		currentDate = currentDate.AddDate(0, 0, 1)
	}

	uncovered := make([]string, 0, len(order)-globalIndex)
	for _, w := range order[globalIndex:] {
		uncovered = append(uncovered, w.Name)
	}

	summary := &schedule.Summary
	summary.TotalLocations = len(order)
	summary.CoveredLocations = globalIndex
	summary.UncoveredLocations = uncovered
	summary.IsFeasible = globalIndex == len(order)
	summary.TotalDistanceKm = totalDistance

	var top string
	if summary.IsFeasible {
		top = fmt.Sprintf("All %d locations successfully scheduled", len(order))
	} else {
		top = fmt.Sprintf(
			"%d of %d locations could not be scheduled: %s",
			len(uncovered), len(order), strings.Join(uncovered, ", "),
		)
	}
	summary.Warnings = append([]string{top}, legWarnings...)
	summary.Warnings = append(summary.Warnings, dayWarnings...)

	log.Printf(
		"[SCHEDULE] generated trip=%s days=%d covered=%d/%d feasible=%v",
		trip.ID, len(schedule.Days), summary.CoveredLocations, summary.TotalLocations, summary.IsFeasible,
	)

	return schedule, nil
}

func validateTrip(trip domain.Trip) error {
	if trip.NumDays < 1 {
		return fmt.Errorf("%w: num_days must be at least 1, got %d", domain.ErrInvalidConfiguration, trip.NumDays)
	}
	if trip.DayEnd <= trip.DayStart {
		return fmt.Errorf(
			"%w: end time %s must be after start time %s",
			domain.ErrInvalidConfiguration, trip.DayEnd, trip.DayStart,
		)
	}
	if trip.DayStart < 0 || trip.DayEnd > domain.MinutesPerDay {
		return fmt.Errorf("%w: daily window must lie within one day", domain.ErrInvalidConfiguration)
	}
	return nil
}

// startDate returns the first calendar day: the trip's explicit start date or tomorrow.
func (b *ScheduleBuilder) startDate(trip domain.Trip) (time.Time, error) {
	if s := strings.TrimSpace(trip.StartDate); s != "" {
		d, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: start_date %q is not YYYY-MM-DD", domain.ErrInvalidConfiguration, s)
		}
		return d, nil
	}

	now := b.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, 1), nil
}
