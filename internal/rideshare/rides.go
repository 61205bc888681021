package rideshare

import (
	"context"
	"errors"
	"fmt"

	"github.com/wayfare/backend/internal/audit"
	"github.com/wayfare/backend/internal/models"
	"github.com/wayfare/backend/internal/store"
)

type Rides = Collection[models.Ride, models.RidePatch]

// NewRides checks that every ride points at an existing time range, driver and
// pair of locations before it is written, and that an existing ride never
// shrinks below its current passenger count.
func NewRides(t store.Tables, rec audit.Recorder) *Rides {
	c := NewCollection[models.Ride, models.RidePatch](t.Rides, store.RideSchema, rec)
	c.check = func(ctx context.Context, r *models.Ride) error {
		if err := exists(ctx, t.TimeRanges, "time_range_id", r.TimeRangeID); err != nil {
			return err
		}
		if err := exists(ctx, t.Users, "driver_id", r.DriverID); err != nil {
			return err
		}
		if err := exists(ctx, t.Locations, "start_location_id", r.StartLocationID); err != nil {
			return err
		}
		if err := exists(ctx, t.Locations, "destination_id", r.DestinationID); err != nil {
			return err
		}
		return fitsPassengers(ctx, t.Passengers, r)
	}
	return c
}

func fitsPassengers(ctx context.Context, passengers store.PassengerRepository, r *models.Ride) error {
	if r.ID == 0 {
		return nil
	}
	aboard, err := passengers.ListByRide(ctx, r.ID)
	if err != nil {
		return err
	}
	if len(aboard) > r.Capacity {
		return &models.FieldError{
			Kind:  models.ErrInvalidCapacity,
			Field: "capacity",
			Value: r.Capacity,
			Msg:   fmt.Sprintf("Ride %d has %d passengers (capacity %d)", r.ID, len(aboard), r.Capacity),
		}
	}
	return nil
}

func exists[T any](ctx context.Context, repo store.Repository[T], field string, id int64) error {
	_, err := repo.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return &models.FieldError{Kind: models.ErrInvalidReference, Field: field, Value: id}
	}
	return err
}
