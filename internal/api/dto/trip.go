package dto

import (
	"trip-scheduler-service/internal/domain"
)

type LocationRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Place converts the request; missing coordinates become zero and are
// resolved by geocoding the name.
func (l LocationRequest) Place() domain.PlaceRef {
	p := domain.PlaceRef{Name: l.Name}
	if l.Latitude != nil && l.Longitude != nil {
		p.Location = domain.Coordinates{Lat: *l.Latitude, Lon: *l.Longitude}
	}
	return p
}

type TripRequest struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	NumDays            int             `json:"num_days"`
	StartLocation      LocationRequest `json:"start_location"`
	PreferredStartTime string          `json:"preferred_start_time"`
	PreferredEndTime   string          `json:"preferred_end_time"`
	StartDate          string          `json:"start_date"`
}

// Trip parses the request's wall-clock times.
func (t TripRequest) Trip() (domain.Trip, error) {
	start, err := domain.ParseClock(t.PreferredStartTime)
	if err != nil {
		return domain.Trip{}, err
	}
	end, err := domain.ParseClock(t.PreferredEndTime)
	if err != nil {
		return domain.Trip{}, err
	}

	return domain.Trip{
		ID:            t.ID,
		Title:         t.Title,
		NumDays:       t.NumDays,
		StartLocation: t.StartLocation.Place(),
		DayStart:      start,
		DayEnd:        end,
		StartDate:     t.StartDate,
	}, nil
}

type TripResponse struct {
	Trip domain.Trip `json:"trip"`
}

type ListWaypointsResponse struct {
	Waypoints []domain.Waypoint `json:"waypoints"`
}
