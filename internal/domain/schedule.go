package domain

import "time"

type ItemKind string

const (
	ItemTravel ItemKind = "travel"
	ItemVisit  ItemKind = "visit"
	ItemBreak  ItemKind = "break"
)

// ScheduleItem is one block of a day's timeline. Kind selects which of the
// optional fields are meaningful:
//   - travel: From, To, DistanceKm
//   - visit: Waypoint, Visited, VisitedAt
//   - break: Description
type ScheduleItem struct {
	Kind            ItemKind `json:"type"`
	Start           Clock    `json:"start_time"`
	End             Clock    `json:"end_time"`
	DurationMinutes int      `json:"duration_minutes"`

	From       string  `json:"from,omitempty"`
	To         string  `json:"to,omitempty"`
	DistanceKm float64 `json:"distance_km,omitempty"`

	Waypoint  *PlaceRef  `json:"waypoint,omitempty"`
	Visited   bool       `json:"visited,omitempty"`
	VisitedAt *time.Time `json:"visited_at,omitempty"`

	Description string `json:"description,omitempty"`
}

func NewTravelItem(from, to string, start Clock, minutes int, distanceKm float64) ScheduleItem {
	return ScheduleItem{
		Kind:            ItemTravel,
		Start:           start,
		End:             start.Add(minutes),
		DurationMinutes: minutes,
		From:            from,
		To:              to,
		DistanceKm:      distanceKm,
	}
}

func NewVisitItem(wp PlaceRef, start Clock, minutes int) ScheduleItem {
	return ScheduleItem{
		Kind:            ItemVisit,
		Start:           start,
		End:             start.Add(minutes),
		DurationMinutes: minutes,
		Waypoint:        &wp,
	}
}

func NewBreakItem(description string, start Clock, minutes int) ScheduleItem {
	return ScheduleItem{
		Kind:            ItemBreak,
		Start:           start,
		End:             start.Add(minutes),
		DurationMinutes: minutes,
		Description:     description,
	}
}

// DaySummary aggregates one day. TotalMinutes is travel plus visit time;
// breaks are reported separately.
type DaySummary struct {
	TotalMinutes     int `json:"total_minutes"`
	TravelMinutes    int `json:"travel_minutes"`
	VisitMinutes     int `json:"visit_minutes"`
	BreakMinutes     int `json:"break_minutes"`
	LocationsVisited int `json:"locations_visited"`
}

type Day struct {
	DayNumber int            `json:"day_number"`
	Date      string         `json:"date"`
	Items     []ScheduleItem `json:"items"`
	Summary   DaySummary     `json:"summary"`
	Warnings  []string       `json:"warnings,omitempty"`
}

type ScheduleSummary struct {
	TotalLocations     int      `json:"total_locations"`
	CoveredLocations   int      `json:"covered_locations"`
	UncoveredLocations []string `json:"uncovered_locations"`
	TotalTravelMinutes int      `json:"total_travel_minutes"`
	TotalVisitMinutes  int      `json:"total_visit_minutes"`
	TotalDistanceKm    float64  `json:"total_distance_km"`
	IsFeasible         bool     `json:"is_feasible"`
	Warnings           []string `json:"warnings"`
}

// Schedule is the multi-day itinerary produced for a trip.
// It is plain data: after generation the only mutation is the visited
// flag on visit items.
type Schedule struct {
	ID          string          `json:"id"`
	TripID      string          `json:"trip_id"`
	Origin      PlaceRef        `json:"origin"`
	GeneratedAt time.Time       `json:"generated_at"`
	Days        []Day           `json:"days"`
	Summary     ScheduleSummary `json:"summary"`
}

// MarkVisited sets the visited flag on every visit item for waypointID.
// It reports whether the waypoint was found in the schedule.
func (s *Schedule) MarkVisited(waypointID string, visited bool, at time.Time) bool {
	found := false
	for di := range s.Days {
		items := s.Days[di].Items
		for ii := range items {
			it := &items[ii]
			if it.Kind != ItemVisit || it.Waypoint == nil || it.Waypoint.ID != waypointID {
				continue
			}
			found = true
			it.Visited = visited
			if visited {
				ts := at
				it.VisitedAt = &ts
			} else {
				it.VisitedAt = nil
			}
		}
	}
	return found
}

// ScheduledWaypointIDs lists the waypoints placed into some day, in visiting order.
func (s *Schedule) ScheduledWaypointIDs() []string {
	ids := []string{}
	for _, d := range s.Days {
		for _, it := range d.Items {
			if it.Kind == ItemVisit && it.Waypoint != nil {
				ids = append(ids, it.Waypoint.ID)
			}
		}
	}
	return ids
}
