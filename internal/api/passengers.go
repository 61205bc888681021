package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wayfare/backend/internal/logger"
	"github.com/wayfare/backend/internal/models"
)

type PassengerService interface {
	List(ctx context.Context, rideID int64) ([]models.Passenger, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Passenger, error)
	ListByStatus(ctx context.Context, statusID int64) ([]models.Passenger, error)
	All(ctx context.Context) ([]models.Passenger, error)
	Get(ctx context.Context, rideID, userID int64) (*models.Passenger, error)
	Add(ctx context.Context, rideID int64, patch models.PassengerPatch) (*models.Passenger, error)
	Put(ctx context.Context, rideID, userID int64, patch models.PassengerPatch) (*models.Passenger, bool, error)
	Delete(ctx context.Context, rideID, userID int64) error
	DeleteByRide(ctx context.Context, rideID int64) error
	DeleteAll(ctx context.Context) error
}

// passengersHandler serves /rides/{id}/users and /passengers.
type passengersHandler struct {
	svc PassengerService
	log logger.Logger
}

func passengerLocation(p *models.Passenger) string {
	return fmt.Sprintf("/rides/%d/users/%d", p.RideID, p.UserID)
}

// rideRoutes is mounted under /rides/{id}/users.
func (h *passengersHandler) rideRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Delete("/", h.deleteByRide)
	r.Get("/{user_id}", h.get)
	r.Put("/{user_id}", h.put)
	r.Delete("/{user_id}", h.delete)
}

func (h *passengersHandler) tableRoutes(r chi.Router) {
	r.Get("/", h.all)
	r.Delete("/", h.deleteAll)
}

func (h *passengersHandler) ids(r *http.Request) (rideID, userID int64, err error) {
	if rideID, err = pathID(r, "id", "Ride"); err != nil {
		return 0, 0, err
	}
	if userID, err = pathID(r, "user_id", "User"); err != nil {
		return 0, 0, err
	}
	return rideID, userID, nil
}

func (h *passengersHandler) list(w http.ResponseWriter, r *http.Request) {
	rideID, err := pathID(r, "id", "Ride")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	ps, err := h.svc.List(r.Context(), rideID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *passengersHandler) add(w http.ResponseWriter, r *http.Request) {
	rideID, err := pathID(r, "id", "Ride")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var patch models.PassengerPatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.svc.Add(r.Context(), rideID, patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	w.Header().Set("Location", passengerLocation(p))
	writeJSON(w, http.StatusCreated, p)
}

func (h *passengersHandler) deleteByRide(w http.ResponseWriter, r *http.Request) {
	rideID, err := pathID(r, "id", "Ride")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.svc.DeleteByRide(r.Context(), rideID); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeDeleted(w)
}

func (h *passengersHandler) get(w http.ResponseWriter, r *http.Request) {
	rideID, userID, err := h.ids(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.svc.Get(r.Context(), rideID, userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *passengersHandler) put(w http.ResponseWriter, r *http.Request) {
	rideID, userID, err := h.ids(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var patch models.PassengerPatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, created, err := h.svc.Put(r.Context(), rideID, userID, patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if created {
		w.Header().Set("Location", passengerLocation(p))
		writeJSON(w, http.StatusCreated, p)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *passengersHandler) delete(w http.ResponseWriter, r *http.Request) {
	rideID, userID, err := h.ids(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.svc.Delete(r.Context(), rideID, userID); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeDeleted(w)
}

// all lists the whole table, optionally filtered by ?user_id= or ?status_id=.
func (h *passengersHandler) all(w http.ResponseWriter, r *http.Request) {
	var (
		ps  []models.Passenger
		err error
	)
	q := r.URL.Query()
	switch {
	case q.Get("user_id") != "":
		var id int64
		if id, err = queryID(q.Get("user_id"), "user_id"); err == nil {
			ps, err = h.svc.ListByUser(r.Context(), id)
		}
	case q.Get("status_id") != "":
		var id int64
		if id, err = queryID(q.Get("status_id"), "status_id"); err == nil {
			ps, err = h.svc.ListByStatus(r.Context(), id)
		}
	default:
		ps, err = h.svc.All(r.Context())
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *passengersHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAll(r.Context()); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeDeleted(w)
}

func queryID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &models.FieldError{Kind: models.ErrInvalidFormat, Field: field, Value: raw}
	}
	return id, nil
}
