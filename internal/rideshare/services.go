package rideshare

import (
	"context"
	"fmt"
	"time"

	"github.com/wayfare/backend/internal/audit"
	"github.com/wayfare/backend/internal/models"
	"github.com/wayfare/backend/internal/store"
)

// Services is every entity service over one set of tables.
type Services struct {
	Users      *Users
	Locations  *Locations
	TimeRanges *TimeRanges
	Statuses   *Statuses
	Rides      *Rides
	Passengers *Passengers
}

func New(t store.Tables, rec audit.Recorder) *Services {
	return &Services{
		Users:      NewUsers(t.Users, rec),
		Locations:  NewLocations(t.Locations, rec),
		TimeRanges: NewTimeRanges(t.TimeRanges, rec),
		Statuses:   NewStatuses(t.Statuses, rec),
		Rides:      NewRides(t, rec),
		Passengers: NewPassengers(t, rec),
	}
}

// Dump reads every table into one snapshot body.
func (s *Services) Dump(ctx context.Context) (*models.SnapshotData, error) {
	var (
		d   = &models.SnapshotData{TakenAt: time.Now().UTC()}
		err error
	)
	if d.Users, err = s.Users.List(ctx); err != nil {
		return nil, fmt.Errorf("dump users: %w", err)
	}
	if d.Locations, err = s.Locations.List(ctx); err != nil {
		return nil, fmt.Errorf("dump locations: %w", err)
	}
	if d.TimeRanges, err = s.TimeRanges.List(ctx); err != nil {
		return nil, fmt.Errorf("dump time ranges: %w", err)
	}
	if d.Statuses, err = s.Statuses.List(ctx); err != nil {
		return nil, fmt.Errorf("dump statuses: %w", err)
	}
	if d.Rides, err = s.Rides.List(ctx); err != nil {
		return nil, fmt.Errorf("dump rides: %w", err)
	}
	if d.Passengers, err = s.Passengers.All(ctx); err != nil {
		return nil, fmt.Errorf("dump passengers: %w", err)
	}
	return d, nil
}
