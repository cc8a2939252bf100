package domain

// DefaultVisitMinutes is used when a waypoint carries no typical visit duration.
const DefaultVisitMinutes = 120

// Waypoint is a point of interest selected for a trip.
// Waypoints are loaded from the location catalog and are not modified
// during a scheduling run.
type Waypoint struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Location     Coordinates `json:"location"`
	VisitMinutes int         `json:"typical_visit_minutes,omitempty"`
	District     string      `json:"district,omitempty"`
}

// VisitDuration returns the expected visit length in minutes.
func (w Waypoint) VisitDuration() int {
	if w.VisitMinutes < 1 {
		return DefaultVisitMinutes
	}
	return w.VisitMinutes
}

// Ref returns a lightweight reference to the waypoint.
func (w Waypoint) Ref() PlaceRef {
	return PlaceRef{ID: w.ID, Name: w.Name, Location: w.Location}
}

// PlaceRef identifies a place (a waypoint or a trip's start location)
// without carrying catalog details.
type PlaceRef struct {
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name"`
	Location Coordinates `json:"location"`
}
