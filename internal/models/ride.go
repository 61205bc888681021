package models

import (
	"math"
	"time"
)

const (
	MinCapacity = 1
	MaxCapacity = 8
)

// Ride is a driver's offer of seats from one location to another on a given day.
type Ride struct {
	ID                  int64      `json:"id"`
	ActualDepartureTime *time.Time `json:"actual_departure_time"`
	DepartureDate       Date       `json:"departure_date"`
	Capacity            int        `json:"capacity"          validate:"capacity"`
	TimeRangeID         int64      `json:"time_range_id"`
	DriverID            int64      `json:"driver_id"`
	StartLocationID     int64      `json:"start_location_id"`
	DestinationID       int64      `json:"destination_id"`
}

// RidePatch is the JSON body for POST /rides and PUT /rides/{id}.
// Capacity is decoded loosely so that non-integers surface as InvalidCapacity
// instead of a JSON type error.
type RidePatch struct {
	ActualDepartureTime *string `json:"actual_departure_time"`
	DepartureDate       *string `json:"departure_date"    validate:"required"`
	Capacity            any     `json:"capacity"          validate:"required"`
	TimeRangeID         *int64  `json:"time_range_id"     validate:"required"`
	DriverID            *int64  `json:"driver_id"         validate:"required"`
	StartLocationID     *int64  `json:"start_location_id" validate:"required"`
	DestinationID       *int64  `json:"destination_id"    validate:"required"`
}

func (p RidePatch) Apply(r *Ride) error {
	if p.ActualDepartureTime != nil {
		if *p.ActualDepartureTime == "" {
			r.ActualDepartureTime = nil
		} else {
			t, err := time.Parse(time.RFC3339, *p.ActualDepartureTime)
			if err != nil {
				return &FieldError{Kind: ErrInvalidFormat, Field: "actual_departure_time", Value: *p.ActualDepartureTime}
			}
			r.ActualDepartureTime = &t
		}
	}
	if p.DepartureDate != nil {
		d, err := ParseDate(*p.DepartureDate)
		if err != nil {
			return &FieldError{Kind: ErrInvalidFormat, Field: "departure_date", Value: *p.DepartureDate}
		}
		r.DepartureDate = d
	}
	if p.Capacity != nil {
		n, ok := wholeNumber(p.Capacity)
		if !ok {
			return &FieldError{Kind: ErrInvalidCapacity, Field: "capacity", Value: p.Capacity}
		}
		r.Capacity = n
	}
	if p.TimeRangeID != nil {
		r.TimeRangeID = *p.TimeRangeID
	}
	if p.DriverID != nil {
		r.DriverID = *p.DriverID
	}
	if p.StartLocationID != nil {
		r.StartLocationID = *p.StartLocationID
	}
	if p.DestinationID != nil {
		r.DestinationID = *p.DestinationID
	}
	return nil
}

// wholeNumber accepts JSON numbers without a fractional part.
func wholeNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
