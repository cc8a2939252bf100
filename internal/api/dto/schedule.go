package dto

import (
	"trip-scheduler-service/internal/domain"
)

type PlanScheduleRequest struct {
	WaypointIDs []string `json:"waypoint_ids"`
	StartDate   string   `json:"start_date"`
}

type WaypointRequest struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	TypicalVisitMinutes int     `json:"typical_visit_minutes"`
}

func (w WaypointRequest) Waypoint() domain.Waypoint {
	return domain.Waypoint{
		ID:           w.ID,
		Name:         w.Name,
		Location:     domain.Coordinates{Lat: w.Latitude, Lon: w.Longitude},
		VisitMinutes: w.TypicalVisitMinutes,
	}
}

type PreviewRequest struct {
	Trip      TripRequest       `json:"trip"`
	Waypoints []WaypointRequest `json:"waypoints"`
}

type MarkVisitedRequest struct {
	Visited *bool `json:"visited"`
}

type ProgressResponse struct {
	Visited int     `json:"visited"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

type ScheduleResponse struct {
	Schedule *domain.Schedule `json:"schedule"`
	Progress ProgressResponse `json:"progress"`
}
