package api

import (
	"net/http"
	"trip-scheduler-service/internal/api/handlers"
	"trip-scheduler-service/internal/ports"
	"trip-scheduler-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(planner *services.TripPlanner, catalog ports.WaypointRepository, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	waypointHandler := &handlers.WaypointHandler{Repo: catalog}
	tripHandler := &handlers.TripHandler{Planner: planner}
	scheduleHandler := &handlers.ScheduleHandler{Planner: planner}

	r.Get("/health", handlers.Health)
	r.Get("/waypoints", waypointHandler.List)

	r.Post("/trips", tripHandler.Create)
	r.Route("/trips/{tripID}", func(r chi.Router) {
		r.Get("/", tripHandler.Get)
		r.Post("/schedule", scheduleHandler.Plan)
		r.Get("/schedule", scheduleHandler.Get)
		r.Delete("/schedule", scheduleHandler.Delete)
		r.Put("/schedule/visits/{waypointID}", scheduleHandler.MarkVisited)
	})

	r.Post("/schedules/preview", scheduleHandler.Preview)

	return r
}
