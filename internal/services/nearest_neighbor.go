package services

import (
	"fmt"
	"slices"
	"trip-scheduler-service/internal/domain"
)

// RouteSequencer orders waypoints with a greedy nearest-neighbor heuristic.
//
// The path starts at the origin and never returns to it. Each step moves to the
// closest unvisited waypoint by straight-line distance; ties go to the waypoint
// that appears first in the input. The result is deterministic but not globally
// optimal.
type RouteSequencer struct {
	Estimator DistanceEstimator
}

func NewRouteSequencer(estimator DistanceEstimator) RouteSequencer {
	return RouteSequencer{Estimator: estimator}
}

// Sequence returns the visiting order and one incoming leg per waypoint.
// Waypoints with invalid coordinates are treated as zero distance, carry a
// warning on their leg, and do not move the current position.
func (s RouteSequencer) Sequence(origin domain.PlaceRef, waypoints []domain.Waypoint) ([]domain.Waypoint, []domain.TravelLeg) {
	order := make([]domain.Waypoint, 0, len(waypoints))
	legs := make([]domain.TravelLeg, 0, len(waypoints))
	if len(waypoints) == 0 {
		return order, legs
	}

	remaining := make([]int, len(waypoints))
	for i := range waypoints {
		remaining[i] = i
	}

	current := origin
	for len(remaining) > 0 {
		bestPos := -1
		bestDistance := 0.0

		// Select next stop by minimum distance (greedy step). Strict comparison
		// keeps the first-encountered waypoint on ties.
		for pos, idx := range remaining {
			d := s.distance(current.Location, waypoints[idx].Location)
			if bestPos == -1 || d < bestDistance {
				bestPos = pos
				bestDistance = d
			}
		}

		next := waypoints[remaining[bestPos]]
		leg := domain.TravelLeg{
			From:            current,
			To:              next.Ref(),
			DistanceKm:      bestDistance,
			DurationMinutes: s.Estimator.EstimateDurationMinutes(bestDistance),
			Source:          domain.LegSourceEstimate,
		}
		if !next.Location.Valid() {
			leg.Warning = fmt.Sprintf("%s has invalid coordinates; travel treated as zero distance", next.Name)
		} else if !current.Location.Valid() {
			leg.Warning = fmt.Sprintf("%s has invalid coordinates; travel treated as zero distance", current.Name)
		}

		order = append(order, next)
		legs = append(legs, leg)
		remaining = slices.Delete(remaining, bestPos, bestPos+1)

		if next.Location.Valid() {
			current = next.Ref()
		} else {
			current = domain.PlaceRef{ID: next.ID, Name: next.Name, Location: current.Location}
		}
	}

	return order, legs
}

func (s RouteSequencer) distance(a, b domain.Coordinates) float64 {
	if !a.Valid() || !b.Valid() {
		return 0
	}
	return s.Estimator.DistanceKm(a, b)
}
