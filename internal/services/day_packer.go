package services

import (
	"fmt"
	"trip-scheduler-service/internal/domain"
)

const (
	DefaultMinTravelMinutes = 15
	DefaultMinSlackMinutes  = 60
	DefaultLunchMinutes     = 60
)

// PackOptions tunes how a day is filled.
type PackOptions struct {
	// Floor applied to every travel block.
	MinTravelMinutes int
	// Packing stops once the remaining time is at or below this threshold.
	MinSlackMinutes int
	// A lunch break of LunchMinutes is inserted before the first travel block
	// starting at or after LunchStart. Zero minutes disables it.
	LunchStart   domain.Clock
	LunchMinutes int
}

func DefaultPackOptions() PackOptions {
	return PackOptions{
		MinTravelMinutes: DefaultMinTravelMinutes,
		MinSlackMinutes:  DefaultMinSlackMinutes,
	}
}

// Candidate is a waypoint in global visiting order with the leg that reaches it.
type Candidate struct {
	Waypoint domain.Waypoint
	Leg      domain.TravelLeg
}

// DayPlan is the outcome of packing a single day.
type DayPlan struct {
	Items    []domain.ScheduleItem
	Consumed int
	Summary  domain.DaySummary
	Warnings []string
}

// DayPacker fills one day's time window with whole travel+visit pairs.
// A waypoint is either placed completely or deferred; visits are never shortened.
type DayPacker struct {
	Options PackOptions
}

func NewDayPacker(opts PackOptions) DayPacker {
	if opts.MinTravelMinutes < 0 {
		opts.MinTravelMinutes = 0
	}
	if opts.MinSlackMinutes < 0 {
		opts.MinSlackMinutes = 0
	}
	if opts.LunchMinutes < 0 {
		opts.LunchMinutes = 0
	}
	return DayPacker{Options: opts}
}

// PackDay places candidates[startIndex:] into the window [start, end) until
// one does not fit or the remaining time drops to the slack threshold.
// Consumed counts the candidates placed; the caller advances its index by it.
func (p DayPacker) PackDay(start, end domain.Clock, candidates []Candidate, startIndex int) DayPlan {
	plan := DayPlan{Items: []domain.ScheduleItem{}}

	remaining := end.Sub(start)
	clock := start
	lunchTaken := p.Options.LunchMinutes == 0

	if startIndex < 0 {
		startIndex = 0
	}

	if startIndex < len(candidates) && remaining <= p.Options.MinSlackMinutes {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf(
			"day window of %d min is too short to schedule any location", remaining,
		))
		return plan
	}

	for i := startIndex; i < len(candidates); i++ {
		if remaining <= p.Options.MinSlackMinutes {
			break
		}

		c := candidates[i]
		travel := max(c.Leg.DurationMinutes, p.Options.MinTravelMinutes)
		visit := c.Waypoint.VisitDuration()

		lunch := 0
		if !lunchTaken && clock >= p.Options.LunchStart {
			lunch = p.Options.LunchMinutes
		}

		needed := lunch + travel + visit
		if needed > remaining {
			msg := fmt.Sprintf(
				"%s does not fit: needs %d min (travel %d + visit %d), only %d min available",
				c.Waypoint.Name, needed, travel, visit, remaining,
			)
			if lunch > 0 {
				msg = fmt.Sprintf(
					"%s does not fit: needs %d min (break %d + travel %d + visit %d), only %d min available",
					c.Waypoint.Name, needed, lunch, travel, visit, remaining,
				)
			}
			plan.Warnings = append(plan.Warnings, msg)
			break
		}

		if lunch > 0 {
			plan.Items = append(plan.Items, domain.NewBreakItem("Lunch break", clock, lunch))
			clock = clock.Add(lunch)
			remaining -= lunch
			plan.Summary.BreakMinutes += lunch
			lunchTaken = true
		}

		plan.Items = append(plan.Items, domain.NewTravelItem(c.Leg.From.Name, c.Waypoint.Name, clock, travel, c.Leg.DistanceKm))
		clock = clock.Add(travel)

		plan.Items = append(plan.Items, domain.NewVisitItem(c.Waypoint.Ref(), clock, visit))
		clock = clock.Add(visit)

		remaining -= travel + visit
		plan.Consumed++
		plan.Summary.TravelMinutes += travel
		plan.Summary.VisitMinutes += visit
		plan.Summary.LocationsVisited++
	}

	plan.Summary.TotalMinutes = plan.Summary.TravelMinutes + plan.Summary.VisitMinutes
	return plan
}
