package store

import (
	"context"
	"fmt"

	"github.com/wayfare/backend/internal/models"
)

// Repository is the access contract shared by every entity table.
type Repository[T any] interface {
	// Create persists v and assigns its id. A preset non-zero id is kept.
	Create(ctx context.Context, v *T) error
	FindByID(ctx context.Context, id int64) (*T, error)
	// FindBy returns the first row (lowest id) whose lookup field equals value.
	FindBy(ctx context.Context, field string, value any) (*T, error)
	GetAll(ctx context.Context) ([]T, error)
	// DeleteAll purges the table and restarts ids at 1.
	DeleteAll(ctx context.Context) error
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, id int64) error
}

// Schema maps an entity onto its table. Column names double as JSON field names.
type Schema[T any] struct {
	Entity  string
	Table   string
	Columns []string // without id
	ID      func(*T) *int64
	Values  func(*T) []any // in Columns order
	Fields  func(*T) []any // scan targets in Columns order
	Lookups []string
	Unique  []string
	// Kinds maps a column to the error kind reported when its unique or check
	// constraint is violated.
	Kinds map[string]error
}

func (s Schema[T]) columnValue(v *T, column string) any {
	vals := s.Values(v)
	for i, c := range s.Columns {
		if c == column {
			return vals[i]
		}
	}
	return nil
}

func (s Schema[T]) checkLookup(field string) error {
	for _, f := range s.Lookups {
		if f == field {
			return nil
		}
	}
	return fmt.Errorf("%s cannot be looked up by %q", s.Entity, field)
}

func (s Schema[T]) kind(column string) error {
	if k, ok := s.Kinds[column]; ok {
		return k
	}
	return models.ErrInvalidFormat
}

var UserSchema = Schema[models.User]{
	Entity:  "User",
	Table:   "users",
	Columns: []string{"first_name", "last_name", "email", "password"},
	ID:      func(u *models.User) *int64 { return &u.ID },
	Values: func(u *models.User) []any {
		return []any{u.FirstName, u.LastName, u.Email, u.Password}
	},
	Fields: func(u *models.User) []any {
		return []any{&u.FirstName, &u.LastName, &u.Email, &u.Password}
	},
	Lookups: []string{"email", "first_name", "last_name"},
	Unique:  []string{"email"},
	Kinds:   map[string]error{"email": models.ErrDuplicateEmail},
}

var LocationSchema = Schema[models.Location]{
	Entity:  "Location",
	Table:   "locations",
	Columns: []string{"name"},
	ID:      func(l *models.Location) *int64 { return &l.ID },
	Values:  func(l *models.Location) []any { return []any{l.Name} },
	Fields:  func(l *models.Location) []any { return []any{&l.Name} },
	Lookups: []string{"name"},
}

var TimeRangeSchema = Schema[models.TimeRange]{
	Entity:  "TimeRange",
	Table:   "time_ranges",
	Columns: []string{"description", "start_time", "end_time"},
	ID:      func(t *models.TimeRange) *int64 { return &t.ID },
	Values: func(t *models.TimeRange) []any {
		return []any{t.Description, t.StartTime, t.EndTime}
	},
	Fields: func(t *models.TimeRange) []any {
		return []any{&t.Description, &t.StartTime, &t.EndTime}
	},
	Lookups: []string{"description", "start_time", "end_time"},
}

var StatusSchema = Schema[models.Status]{
	Entity:  "Status",
	Table:   "statuses",
	Columns: []string{"description"},
	ID:      func(s *models.Status) *int64 { return &s.ID },
	Values:  func(s *models.Status) []any { return []any{s.Description} },
	Fields:  func(s *models.Status) []any { return []any{&s.Description} },
	Lookups: []string{"description"},
}

var RideSchema = Schema[models.Ride]{
	Entity: "Ride",
	Table:  "rides",
	Columns: []string{
		"actual_departure_time", "departure_date", "capacity",
		"time_range_id", "driver_id", "start_location_id", "destination_id",
	},
	ID: func(r *models.Ride) *int64 { return &r.ID },
	Values: func(r *models.Ride) []any {
		return []any{
			r.ActualDepartureTime, r.DepartureDate, r.Capacity,
			r.TimeRangeID, r.DriverID, r.StartLocationID, r.DestinationID,
		}
	},
	Fields: func(r *models.Ride) []any {
		return []any{
			&r.ActualDepartureTime, &r.DepartureDate, &r.Capacity,
			&r.TimeRangeID, &r.DriverID, &r.StartLocationID, &r.DestinationID,
		}
	},
	Lookups: []string{"driver_id", "time_range_id", "start_location_id", "destination_id"},
	Kinds:   map[string]error{"capacity": models.ErrInvalidCapacity},
}
