package domain

type LegSource string

const (
	// Straight-line distance converted at the configured average speed.
	LegSourceEstimate LegSource = "estimate"
	// Distance and duration reported by a routing service.
	LegSourceRoad LegSource = "road"
)

// TravelLeg is a directed travel segment between two places.
// Legs are computed for every scheduling run and never persisted on their own.
type TravelLeg struct {
	From            PlaceRef  `json:"from"`
	To              PlaceRef  `json:"to"`
	DistanceKm      float64   `json:"distance_km"`
	DurationMinutes int       `json:"duration_minutes"`
	Source          LegSource `json:"source"`
	Warning         string    `json:"warning,omitempty"`
}
