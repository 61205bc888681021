package rideshare

import (
	"context"
	"errors"
	"fmt"

	"github.com/wayfare/backend/internal/audit"
	"github.com/wayfare/backend/internal/models"
	"github.com/wayfare/backend/internal/store"
	"github.com/wayfare/backend/internal/validation"
)

const passengerEntity = "Passenger"

// Passengers manages the users riding along on a ride.
type Passengers struct {
	repo  store.PassengerRepository
	rides store.Repository[models.Ride]
	rec   audit.Recorder
}

func NewPassengers(t store.Tables, rec audit.Recorder) *Passengers {
	if rec == nil {
		rec = audit.Discard()
	}
	return &Passengers{repo: t.Passengers, rides: t.Rides, rec: rec}
}

func (s *Passengers) rideExists(ctx context.Context, rideID int64) error {
	_, err := s.rides.FindByID(ctx, rideID)
	return err
}

// List returns the passengers of one ride.
func (s *Passengers) List(ctx context.Context, rideID int64) ([]models.Passenger, error) {
	if err := s.rideExists(ctx, rideID); err != nil {
		return nil, err
	}
	return s.repo.ListByRide(ctx, rideID)
}

func (s *Passengers) ListByUser(ctx context.Context, userID int64) ([]models.Passenger, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Passengers) ListByStatus(ctx context.Context, statusID int64) ([]models.Passenger, error) {
	return s.repo.ListByStatus(ctx, statusID)
}

func (s *Passengers) All(ctx context.Context) ([]models.Passenger, error) {
	return s.repo.GetAll(ctx)
}

func (s *Passengers) Get(ctx context.Context, rideID, userID int64) (*models.Passenger, error) {
	if err := s.rideExists(ctx, rideID); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, rideID, userID)
}

// Add puts the user named in patch on the ride, subject to its capacity.
func (s *Passengers) Add(ctx context.Context, rideID int64, patch models.PassengerPatch) (*models.Passenger, error) {
	if patch.UserID == nil {
		return nil, &models.FieldError{Kind: models.ErrMissingField, Field: "user_id"}
	}
	return s.add(ctx, rideID, *patch.UserID, patch)
}

// Put changes the passenger's status, or adds the passenger when the user is
// not on the ride yet.
func (s *Passengers) Put(ctx context.Context, rideID, userID int64, patch models.PassengerPatch) (*models.Passenger, bool, error) {
	p, err := s.Get(ctx, rideID, userID)
	if errors.Is(err, models.ErrNotFound) && s.rideExists(ctx, rideID) == nil {
		p, err = s.add(ctx, rideID, userID, patch)
		return p, err == nil, err
	}
	if err != nil {
		return nil, false, err
	}
	if patch.StatusID == nil {
		return p, false, nil
	}
	p.StatusID = *patch.StatusID
	if err := s.repo.UpdateStatus(ctx, p); err != nil {
		return nil, false, err
	}
	s.record(ctx, p, models.ActionUpdate)
	return p, false, nil
}

func (s *Passengers) Delete(ctx context.Context, rideID, userID int64) error {
	if err := s.rideExists(ctx, rideID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, rideID, userID); err != nil {
		return err
	}
	s.record(ctx, &models.Passenger{RideID: rideID, UserID: userID}, models.ActionDelete)
	return nil
}

// DeleteByRide empties one ride.
func (s *Passengers) DeleteByRide(ctx context.Context, rideID int64) error {
	if err := s.rideExists(ctx, rideID); err != nil {
		return err
	}
	if err := s.repo.DeleteByRide(ctx, rideID); err != nil {
		return err
	}
	_ = s.rec.Record(ctx, audit.NewEvent(passengerEntity, fmt.Sprintf("ride %d", rideID), models.ActionDeleteAll, nil))
	return nil
}

func (s *Passengers) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	_ = s.rec.Record(ctx, audit.NewEvent(passengerEntity, nil, models.ActionDeleteAll, nil))
	return nil
}

func (s *Passengers) add(ctx context.Context, rideID, userID int64, patch models.PassengerPatch) (*models.Passenger, error) {
	if err := validation.Required(patch); err != nil {
		return nil, err
	}
	p := &models.Passenger{RideID: rideID, UserID: userID, StatusID: *patch.StatusID}
	if err := s.repo.Add(ctx, p); err != nil {
		return nil, err
	}
	s.record(ctx, p, models.ActionCreate)
	return p, nil
}

func (s *Passengers) record(ctx context.Context, p *models.Passenger, action string) {
	id := fmt.Sprintf("%d:%d", p.RideID, p.UserID)
	var payload any
	if action != models.ActionDelete {
		payload = p
	}
	_ = s.rec.Record(ctx, audit.NewEvent(passengerEntity, id, action, payload))
}
