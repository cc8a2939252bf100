package handlers

import (
	"net/http"
	"trip-scheduler-service/internal/api/dto"
	"trip-scheduler-service/internal/services"

	"github.com/go-chi/chi/v5"
)

type TripHandler struct {
	Planner *services.TripPlanner
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := req.Trip()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.Planner.CreateTrip(r.Context(), trip)
	if err != nil {
		writeServiceError(w, r, "create trip", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.TripResponse{Trip: created})
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	trip, err := h.Planner.GetTrip(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		writeServiceError(w, r, "get trip", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.TripResponse{Trip: trip})
}
