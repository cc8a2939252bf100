package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"
	"trip-scheduler-service/internal/adapters/distance"
	"trip-scheduler-service/internal/domain"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func newTestBuilder(opts BuilderOptions) *ScheduleBuilder {
	return NewScheduleBuilder(opts, nil).WithClock(func() time.Time { return fixedNow })
}

func karnatakaTrip(days int, start, end string) domain.Trip {
	return domain.Trip{
		ID:            "trip-1",
		Title:         "Karnataka",
		NumDays:       days,
		StartLocation: domain.PlaceRef{Name: "Bangalore", Location: bangalore},
		DayStart:      domain.MustParseClock(start),
		DayEnd:        domain.MustParseClock(end),
	}
}

func karnatakaWaypoints() []domain.Waypoint {
	return []domain.Waypoint{
		{ID: "w2", Name: "W2", Location: hubli, VisitMinutes: 90},
		{ID: "w1", Name: "W1", Location: mysore, VisitMinutes: 120},
	}
}

func TestGenerateSingleDayPartial(t *testing.T) {
	b := newTestBuilder(DefaultBuilderOptions())

	s, err := b.Generate(context.Background(), karnatakaTrip(1, "09:00", "18:00"), karnatakaWaypoints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.Days) != 1 {
		t.Fatalf("days = %d, want 1", len(s.Days))
	}
	day := s.Days[0]
	if day.DayNumber != 1 || day.Date != "2026-03-11" {
		t.Fatalf("day header = %d %s", day.DayNumber, day.Date)
	}
	if len(day.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(day.Items))
	}

	travel, visit := day.Items[0], day.Items[1]
	if travel.Kind != domain.ItemTravel || travel.From != "Bangalore" || travel.To != "W1" {
		t.Fatalf("travel = %+v", travel)
	}
	if travel.Start != domain.MustParseClock("09:00") || travel.DurationMinutes != 193 || travel.End != domain.MustParseClock("12:13") {
		t.Fatalf("travel timing = %v-%v (%d)", travel.Start, travel.End, travel.DurationMinutes)
	}
	if visit.Kind != domain.ItemVisit || visit.Waypoint.ID != "w1" || visit.End != domain.MustParseClock("14:13") || visit.Visited {
		t.Fatalf("visit = %+v", visit)
	}

	sum := s.Summary
	if sum.IsFeasible || sum.CoveredLocations != 1 || sum.TotalLocations != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(sum.UncoveredLocations) != 1 || sum.UncoveredLocations[0] != "W2" {
		t.Fatalf("uncovered = %v", sum.UncoveredLocations)
	}
	if sum.TotalTravelMinutes != 193 || sum.TotalVisitMinutes != 120 {
		t.Fatalf("totals = travel %d visit %d", sum.TotalTravelMinutes, sum.TotalVisitMinutes)
	}
	if sum.TotalDistanceKm < 127.5 || sum.TotalDistanceKm > 128.5 {
		t.Fatalf("distance = %v", sum.TotalDistanceKm)
	}
	if !strings.HasPrefix(sum.Warnings[0], "1 of 2 locations could not be scheduled: W2") {
		t.Fatalf("top warning = %q", sum.Warnings[0])
	}
	if !containsPrefix(sum.Warnings, "Day 1: W2 does not fit") {
		t.Fatalf("missing day warning in %v", sum.Warnings)
	}
}

func TestGenerateWindowTooShort(t *testing.T) {
	b := newTestBuilder(DefaultBuilderOptions())

	s, err := b.Generate(context.Background(), karnatakaTrip(2, "09:00", "10:30"), karnatakaWaypoints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(s.Days))
	}
	for _, d := range s.Days {
		if len(d.Items) != 0 {
			t.Fatalf("day %d has %d items, want 0", d.DayNumber, len(d.Items))
		}
		if len(d.Warnings) != 1 {
			t.Fatalf("day %d warnings = %v", d.DayNumber, d.Warnings)
		}
	}
	if s.Days[1].Date != "2026-03-12" {
		t.Fatalf("day 2 date = %s", s.Days[1].Date)
	}

	sum := s.Summary
	if sum.IsFeasible || sum.CoveredLocations != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if strings.Join(sum.UncoveredLocations, ",") != "W1,W2" {
		t.Fatalf("uncovered = %v", sum.UncoveredLocations)
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	b := newTestBuilder(DefaultBuilderOptions())
	ctx := context.Background()

	_, err := b.Generate(ctx, karnatakaTrip(1, "09:00", "18:00"), nil)
	if !errors.Is(err, domain.ErrNoWaypointsSelected) {
		t.Fatalf("err = %v, want ErrNoWaypointsSelected", err)
	}

	bad := []domain.Trip{
		karnatakaTrip(0, "09:00", "18:00"),
		karnatakaTrip(1, "18:00", "09:00"),
		karnatakaTrip(1, "09:00", "09:00"),
	}
	withDate := karnatakaTrip(1, "09:00", "18:00")
	withDate.StartDate = "11/03/2026"
	bad = append(bad, withDate)

	for i, trip := range bad {
		s, err := b.Generate(ctx, trip, karnatakaWaypoints())
		if !errors.Is(err, domain.ErrInvalidConfiguration) {
			t.Fatalf("case %d: err = %v, want ErrInvalidConfiguration", i, err)
		}
		if s != nil {
			t.Fatalf("case %d: expected no schedule", i)
		}
	}
}

func TestGenerateResumesAcrossDays(t *testing.T) {
	b := newTestBuilder(DefaultBuilderOptions())

	trip := domain.Trip{
		ID:            "trip-2",
		NumDays:       4,
		StartLocation: domain.PlaceRef{Name: "Hotel", Location: domain.Coordinates{Lat: 0, Lon: 0}},
		DayStart:      domain.MustParseClock("09:00"),
		DayEnd:        domain.MustParseClock("13:00"),
		StartDate:     "2026-05-30",
	}
	waypoints := []domain.Waypoint{
		wp("c", 0, 0.03, 120),
		wp("a", 0, 0.01, 120),
		wp("b", 0, 0.02, 120),
	}

	s, err := b.Generate(context.Background(), trip, waypoints)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !s.Summary.IsFeasible || len(s.Summary.UncoveredLocations) != 0 {
		t.Fatalf("summary = %+v", s.Summary)
	}
	if s.Summary.Warnings[0] != "All 3 locations successfully scheduled" {
		t.Fatalf("top warning = %q", s.Summary.Warnings[0])
	}
	if len(s.Days) != 3 {
		t.Fatalf("days = %d, want 3 (loop stops once everything is placed)", len(s.Days))
	}

	wantDates := []string{"2026-05-30", "2026-05-31", "2026-06-01"}
	wantVisits := []string{"a", "b", "c"}
	for i, d := range s.Days {
		if d.Date != wantDates[i] {
			t.Fatalf("day %d date = %s, want %s", d.DayNumber, d.Date, wantDates[i])
		}
		if len(d.Items) != 2 || d.Items[1].Waypoint.ID != wantVisits[i] {
			t.Fatalf("day %d items = %+v", d.DayNumber, d.Items)
		}
		if d.Items[0].DurationMinutes != DefaultMinTravelMinutes {
			t.Fatalf("day %d travel = %d, want clamp %d", d.DayNumber, d.Items[0].DurationMinutes, DefaultMinTravelMinutes)
		}
	}
	if s.Days[1].Items[0].From != "a" {
		t.Fatalf("day 2 should resume from a, got %q", s.Days[1].Items[0].From)
	}
}

func TestGenerateInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := newTestBuilder(DefaultBuilderOptions())

	for run := 0; run < 50; run++ {
		n := 1 + rng.Intn(15)
		waypoints := make([]domain.Waypoint, 0, n)
		for i := 0; i < n; i++ {
			waypoints = append(waypoints, domain.Waypoint{
				ID:           string(rune('a' + i)),
				Name:         "Place " + string(rune('A'+i)),
				Location:     domain.Coordinates{Lat: 12 + rng.Float64(), Lon: 77 + rng.Float64()},
				VisitMinutes: rng.Intn(200),
			})
		}
		trip := karnatakaTrip(1+rng.Intn(4), "08:00", "19:00")

		s, err := b.Generate(context.Background(), trip, waypoints)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}

		if len(s.Days) > trip.NumDays {
			t.Fatalf("run %d: %d days exceeds %d", run, len(s.Days), trip.NumDays)
		}

		placed := 0
		for _, d := range s.Days {
			assertContiguous(t, trip.DayStart, d.Items)
			if d.Summary.TotalMinutes != d.Summary.TravelMinutes+d.Summary.VisitMinutes {
				t.Fatalf("run %d day %d: conservation broken %+v", run, d.DayNumber, d.Summary)
			}
			if len(d.Items) > 0 && d.Items[len(d.Items)-1].End > trip.DayEnd {
				t.Fatalf("run %d day %d: overruns window", run, d.DayNumber)
			}
			placed += d.Summary.LocationsVisited
		}

		sum := s.Summary
		if placed != sum.CoveredLocations {
			t.Fatalf("run %d: placed %d != covered %d", run, placed, sum.CoveredLocations)
		}
		feasibleByCount := sum.CoveredLocations == n
		feasibleByList := len(sum.UncoveredLocations) == 0
		if sum.IsFeasible != feasibleByCount || sum.IsFeasible != feasibleByList {
			t.Fatalf("run %d: feasibility mismatch %+v", run, sum)
		}
		if sum.CoveredLocations+len(sum.UncoveredLocations) != n {
			t.Fatalf("run %d: covered+uncovered != %d", run, n)
		}
	}
}

func TestGenerateDefaultsToTomorrow(t *testing.T) {
	b := newTestBuilder(DefaultBuilderOptions())
	s, err := b.Generate(context.Background(), karnatakaTrip(1, "09:00", "18:00"), karnatakaWaypoints()[1:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Days[0].Date != "2026-03-11" {
		t.Fatalf("date = %s, want 2026-03-11", s.Days[0].Date)
	}
	if s.ID == "" || s.TripID != "trip-1" || !s.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("schedule header = %q %q %v", s.ID, s.TripID, s.GeneratedAt)
	}
}

func TestGenerateUsesRoadDurations(t *testing.T) {
	provider := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: bangalore, To: mysore, Meters: 145000, Seconds: 3 * 3600},
		{From: mysore, To: hubli, Meters: 420000, Seconds: 7 * 3600},
	})
	b := NewScheduleBuilder(DefaultBuilderOptions(), provider).WithClock(func() time.Time { return fixedNow })

	s, err := b.Generate(context.Background(), karnatakaTrip(2, "07:00", "21:00"), karnatakaWaypoints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.Calls() != 2 {
		t.Fatalf("provider calls = %d, want 2", provider.Calls())
	}
	if !s.Summary.IsFeasible {
		t.Fatalf("expected feasible schedule, got %+v", s.Summary)
	}

	first := s.Days[0].Items[0]
	if first.DurationMinutes != 180 || first.DistanceKm != 145 {
		t.Fatalf("first travel = %+v", first)
	}
	if s.Summary.TotalDistanceKm != 565 {
		t.Fatalf("total distance = %v, want 565", s.Summary.TotalDistanceKm)
	}
	if len(s.Summary.Warnings) != 1 {
		t.Fatalf("unexpected warnings: %v", s.Summary.Warnings)
	}
}

func TestGenerateFallsBackOnLookupFailure(t *testing.T) {
	provider := distance.NewMockDistanceProvider(nil)
	provider.Err = errors.New("service unavailable")

	b := NewScheduleBuilder(DefaultBuilderOptions(), provider).WithClock(func() time.Time { return fixedNow })
	s, err := b.Generate(context.Background(), karnatakaTrip(1, "09:00", "18:00"), karnatakaWaypoints())
	if err != nil {
		t.Fatalf("lookup failures must not surface as errors: %v", err)
	}

	if s.Days[0].Items[0].DurationMinutes != 193 {
		t.Fatalf("expected haversine estimate, got %d", s.Days[0].Items[0].DurationMinutes)
	}
	if !containsPrefix(s.Summary.Warnings, "road travel time unavailable for Bangalore -> W1") {
		t.Fatalf("missing fallback warning in %v", s.Summary.Warnings)
	}
}

func TestGenerateFallsBackOnLookupTimeout(t *testing.T) {
	provider := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: bangalore, To: mysore, Meters: 145000, Seconds: 3 * 3600},
	})
	provider.Delay = time.Second

	opts := DefaultBuilderOptions()
	opts.LookupTimeout = 20 * time.Millisecond
	b := NewScheduleBuilder(opts, provider).WithClock(func() time.Time { return fixedNow })

	start := time.Now()
	s, err := b.Generate(context.Background(), karnatakaTrip(1, "09:00", "18:00"), karnatakaWaypoints()[1:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("lookup timeout not honored")
	}
	if s.Days[0].Items[0].DurationMinutes != 193 {
		t.Fatalf("expected estimate after timeout, got %d", s.Days[0].Items[0].DurationMinutes)
	}
	if len(s.Summary.Warnings) != 2 {
		t.Fatalf("warnings = %v", s.Summary.Warnings)
	}
}

func containsPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
