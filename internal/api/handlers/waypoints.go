package handlers

import (
	"log"
	"net/http"
	"strings"
	"trip-scheduler-service/internal/api/dto"
	"trip-scheduler-service/internal/domain"
	"trip-scheduler-service/internal/ports"
)

// WaypointHandler exposes the read-only location catalog.
type WaypointHandler struct {
	Repo ports.WaypointRepository
}

// List returns the catalog, optionally filtered with ?district=.
func (h *WaypointHandler) List(w http.ResponseWriter, r *http.Request) {
	waypoints, err := h.Repo.ListWaypoints(r.Context(), nil)
	if err != nil {
		log.Printf("list waypoints failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	district := strings.TrimSpace(r.URL.Query().Get("district"))

	res := dto.ListWaypointsResponse{Waypoints: make([]domain.Waypoint, 0, len(waypoints))}
	for _, wp := range waypoints {
		if district != "" && !strings.EqualFold(wp.District, district) {
			continue
		}
		res.Waypoints = append(res.Waypoints, wp)
	}

	writeJSON(w, r, http.StatusOK, res)
}
