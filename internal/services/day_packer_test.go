package services

import (
	"strings"
	"testing"
	"trip-scheduler-service/internal/domain"
)

func candidates(specs ...[2]int) []Candidate {
	out := make([]Candidate, 0, len(specs))
	prev := domain.PlaceRef{Name: "Hotel"}
	for i, s := range specs {
		w := domain.Waypoint{ID: string(rune('a' + i)), Name: "Stop " + string(rune('A'+i)), VisitMinutes: s[1]}
		out = append(out, Candidate{
			Waypoint: w,
			Leg:      domain.TravelLeg{From: prev, To: w.Ref(), DurationMinutes: s[0], DistanceKm: float64(s[0]) / 2},
		})
		prev = w.Ref()
	}
	return out
}

func assertContiguous(t *testing.T, start domain.Clock, items []domain.ScheduleItem) {
	t.Helper()
	if len(items) == 0 {
		return
	}
	if items[0].Start != start {
		t.Fatalf("first item starts at %v, want %v", items[0].Start, start)
	}
	for i := range items {
		if items[i].End.Sub(items[i].Start) != items[i].DurationMinutes {
			t.Fatalf("item %d duration %d does not match span %v-%v", i, items[i].DurationMinutes, items[i].Start, items[i].End)
		}
		if i > 0 && items[i-1].End != items[i].Start {
			t.Fatalf("gap between item %d (end %v) and %d (start %v)", i-1, items[i-1].End, i, items[i].Start)
		}
	}
}

func TestPackDayFillsWindow(t *testing.T) {
	p := NewDayPacker(DefaultPackOptions())
	start, end := domain.MustParseClock("09:00"), domain.MustParseClock("18:00")

	// 30+120, 10(->15)+90, 45+60, then 20+200 does not fit in the remaining 180.
	cs := candidates([2]int{30, 120}, [2]int{10, 90}, [2]int{45, 60}, [2]int{20, 200})
	plan := p.PackDay(start, end, cs, 0)

	if plan.Consumed != 3 {
		t.Fatalf("consumed = %d, want 3", plan.Consumed)
	}
	if len(plan.Items) != 6 {
		t.Fatalf("items = %d, want 6", len(plan.Items))
	}
	assertContiguous(t, start, plan.Items)

	if plan.Items[2].DurationMinutes != DefaultMinTravelMinutes {
		t.Fatalf("short travel not clamped: %d", plan.Items[2].DurationMinutes)
	}
	if plan.Items[0].From != "Hotel" || plan.Items[0].To != "Stop A" {
		t.Fatalf("travel labels = %q -> %q", plan.Items[0].From, plan.Items[0].To)
	}
	if plan.Items[1].Kind != domain.ItemVisit || plan.Items[1].Waypoint.ID != "a" {
		t.Fatalf("second item = %+v", plan.Items[1])
	}

	s := plan.Summary
	if s.TravelMinutes != 90 || s.VisitMinutes != 270 || s.LocationsVisited != 3 {
		t.Fatalf("summary = %+v", s)
	}
	if s.TotalMinutes != s.TravelMinutes+s.VisitMinutes {
		t.Fatalf("total %d != travel %d + visit %d", s.TotalMinutes, s.TravelMinutes, s.VisitMinutes)
	}

	if len(plan.Warnings) != 1 || !strings.Contains(plan.Warnings[0], "Stop D") || !strings.Contains(plan.Warnings[0], "only 180 min") {
		t.Fatalf("warnings = %v", plan.Warnings)
	}
}

func TestPackDayResumesFromIndex(t *testing.T) {
	p := NewDayPacker(DefaultPackOptions())
	start, end := domain.MustParseClock("08:00"), domain.MustParseClock("12:00")

	cs := candidates([2]int{30, 120}, [2]int{20, 60}, [2]int{20, 60})
	plan := p.PackDay(start, end, cs, 1)

	if plan.Consumed != 2 {
		t.Fatalf("consumed = %d, want 2", plan.Consumed)
	}
	if plan.Items[1].Waypoint.ID != "b" || plan.Items[3].Waypoint.ID != "c" {
		t.Fatalf("unexpected visits: %+v", plan.Items)
	}
	if len(plan.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", plan.Warnings)
	}
}

func TestPackDayStopsAtMinimumSlack(t *testing.T) {
	p := NewDayPacker(DefaultPackOptions())
	start, end := domain.MustParseClock("09:00"), domain.MustParseClock("12:00")

	// After the first pair 60 minutes remain; the guard stops before the tiny visit.
	cs := candidates([2]int{15, 105}, [2]int{15, 10})
	plan := p.PackDay(start, end, cs, 0)

	if plan.Consumed != 1 {
		t.Fatalf("consumed = %d, want 1", plan.Consumed)
	}
	if len(plan.Warnings) != 0 {
		t.Fatalf("slack stop should not warn, got %v", plan.Warnings)
	}
}

func TestPackDayNothingFits(t *testing.T) {
	p := NewDayPacker(DefaultPackOptions())
	start, end := domain.MustParseClock("09:00"), domain.MustParseClock("10:30")

	cs := candidates([2]int{30, 120})
	plan := p.PackDay(start, end, cs, 0)

	if plan.Consumed != 0 || len(plan.Items) != 0 {
		t.Fatalf("expected empty day, got consumed=%d items=%d", plan.Consumed, len(plan.Items))
	}
	if len(plan.Warnings) != 1 || !strings.Contains(plan.Warnings[0], "needs 150 min") || !strings.Contains(plan.Warnings[0], "90 min available") {
		t.Fatalf("warnings = %v", plan.Warnings)
	}
	if plan.Summary != (domain.DaySummary{}) {
		t.Fatalf("summary should be zero, got %+v", plan.Summary)
	}
}

func TestPackDayWindowWithinSlack(t *testing.T) {
	p := NewDayPacker(DefaultPackOptions())
	start, end := domain.MustParseClock("09:00"), domain.MustParseClock("09:45")

	plan := p.PackDay(start, end, candidates([2]int{5, 10}), 0)
	if plan.Consumed != 0 || len(plan.Warnings) != 1 {
		t.Fatalf("consumed=%d warnings=%v", plan.Consumed, plan.Warnings)
	}

	plan = p.PackDay(start, end, candidates([2]int{5, 10}), 1)
	if len(plan.Warnings) != 0 {
		t.Fatalf("no candidates left should not warn, got %v", plan.Warnings)
	}
}

func TestPackDayLunchBreak(t *testing.T) {
	opts := DefaultPackOptions()
	opts.LunchStart = domain.MustParseClock("12:00")
	opts.LunchMinutes = 45
	p := NewDayPacker(opts)

	start, end := domain.MustParseClock("09:00"), domain.MustParseClock("18:00")
	cs := candidates([2]int{30, 150}, [2]int{30, 120}, [2]int{30, 60})
	plan := p.PackDay(start, end, cs, 0)

	assertContiguous(t, start, plan.Items)

	breaks := 0
	for i, it := range plan.Items {
		if it.Kind != domain.ItemBreak {
			continue
		}
		breaks++
		if it.Start != domain.MustParseClock("12:00") || it.DurationMinutes != 45 {
			t.Fatalf("break %d = %+v", i, it)
		}
		if plan.Items[i+1].Kind != domain.ItemTravel {
			t.Fatalf("break should precede travel, got %q", plan.Items[i+1].Kind)
		}
	}
	if breaks != 1 {
		t.Fatalf("breaks = %d, want 1", breaks)
	}

	s := plan.Summary
	if s.BreakMinutes != 45 || s.TotalMinutes != s.TravelMinutes+s.VisitMinutes {
		t.Fatalf("summary = %+v", s)
	}
	if plan.Consumed != 3 {
		t.Fatalf("consumed = %d, want 3", plan.Consumed)
	}
}
