package handlers

import (
	"net/http"
	"trip-scheduler-service/internal/api/dto"
	"trip-scheduler-service/internal/domain"
	"trip-scheduler-service/internal/services"

	"github.com/go-chi/chi/v5"
)

// ScheduleHandler generates, reads and updates trip schedules.
// A schedule that does not cover every location is still a success: the
// body reports is_feasible=false with the uncovered locations.
type ScheduleHandler struct {
	Planner *services.TripPlanner
}

func scheduleResponse(s *domain.Schedule) dto.ScheduleResponse {
	p := services.Progress(s)
	return dto.ScheduleResponse{
		Schedule: s,
		Progress: dto.ProgressResponse{Visited: p.Visited, Total: p.Total, Percent: p.Percent},
	}
}

func (h *ScheduleHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanScheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s, err := h.Planner.PlanTrip(r.Context(), services.PlanTripRequest{
		TripID:      chi.URLParam(r, "tripID"),
		WaypointIDs: req.WaypointIDs,
		StartDate:   req.StartDate,
	})
	if err != nil {
		writeServiceError(w, r, "plan trip", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, scheduleResponse(s))
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Planner.GetSchedule(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		writeServiceError(w, r, "get schedule", err)
		return
	}

	writeJSON(w, r, http.StatusOK, scheduleResponse(s))
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.DeleteSchedule(r.Context(), chi.URLParam(r, "tripID")); err != nil {
		writeServiceError(w, r, "delete schedule", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) MarkVisited(w http.ResponseWriter, r *http.Request) {
	var req dto.MarkVisitedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Visited == nil {
		writeError(w, r, http.StatusBadRequest, "visited is required")
		return
	}

	s, err := h.Planner.MarkVisited(
		r.Context(),
		chi.URLParam(r, "tripID"),
		chi.URLParam(r, "waypointID"),
		*req.Visited,
	)
	if err != nil {
		writeServiceError(w, r, "mark visited", err)
		return
	}

	writeJSON(w, r, http.StatusOK, scheduleResponse(s))
}

// Preview schedules an ad-hoc trip and selection without storing either.
func (h *ScheduleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := req.Trip.Trip()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	waypoints := make([]domain.Waypoint, 0, len(req.Waypoints))
	for _, wr := range req.Waypoints {
		waypoints = append(waypoints, wr.Waypoint())
	}

	s, err := h.Planner.Preview(r.Context(), trip, waypoints)
	if err != nil {
		writeServiceError(w, r, "preview schedule", err)
		return
	}

	writeJSON(w, r, http.StatusOK, scheduleResponse(s))
}
