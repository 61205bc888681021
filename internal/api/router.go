package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wayfare/backend/internal/logger"
	"github.com/wayfare/backend/internal/middleware"
	"github.com/wayfare/backend/internal/models"
	"github.com/wayfare/backend/internal/rideshare"
	"github.com/wayfare/backend/internal/store"
)

// Deps is everything the router serves. Audit and Snapshots are optional.
type Deps struct {
	Services    *rideshare.Services
	Audit       AuditLister
	Snapshots   SnapshotService
	Log         logger.Logger
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.Discard()
	}
	s := d.Services

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			ExposedHeaders:   []string{"Location"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", health)

	passengers := &passengersHandler{svc: s.Passengers, log: log.With("entity", "Passenger")}

	r.Route("/users", newCollection[models.User, models.UserPatch](s.Users, "/users", store.UserSchema.ID, log).routes)
	r.Route("/locations", newCollection[models.Location, models.LocationPatch](s.Locations, "/locations", store.LocationSchema.ID, log).routes)
	r.Route("/time_ranges", newCollection[models.TimeRange, models.TimeRangePatch](s.TimeRanges, "/time_ranges", store.TimeRangeSchema.ID, log).routes)
	r.Route("/statuses", newCollection[models.Status, models.StatusPatch](s.Statuses, "/statuses", store.StatusSchema.ID, log).routes)
	r.Route("/rides", func(r chi.Router) {
		newCollection[models.Ride, models.RidePatch](s.Rides, "/rides", store.RideSchema.ID, log).routes(r)
		r.Route("/{id}/users", passengers.rideRoutes)
	})
	r.Route("/passengers", passengers.tableRoutes)

	if d.Audit != nil {
		audit := &auditHandler{events: d.Audit, log: log}
		r.Get("/audit", audit.list)
	}
	if d.Snapshots != nil {
		r.Route("/snapshots", (&snapshotsHandler{svc: d.Snapshots, log: log}).routes)
	}
	return r
}
