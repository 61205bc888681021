package models

// Location is a named place a ride starts from or goes to.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=128"`
}

type LocationPatch struct {
	Name *string `json:"name" validate:"required"`
}

func (p LocationPatch) Apply(l *Location) error {
	if p.Name != nil {
		l.Name = *p.Name
	}
	return nil
}

// TimeRange is a named time-of-day bracket, e.g. "Early Morning" from 5 to 9.
type TimeRange struct {
	ID          int64  `json:"id"`
	Description string `json:"description" validate:"required,max=255"`
	StartTime   int    `json:"start_time"`
	EndTime     int    `json:"end_time"`
}

type TimeRangePatch struct {
	Description *string `json:"description" validate:"required"`
	StartTime   *int    `json:"start_time"  validate:"required"`
	EndTime     *int    `json:"end_time"    validate:"required"`
}

func (p TimeRangePatch) Apply(t *TimeRange) error {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		t.EndTime = *p.EndTime
	}
	return nil
}

// Status describes where a passenger stands on a ride ("Pending", "Confirmed").
type Status struct {
	ID          int64  `json:"id"`
	Description string `json:"description" validate:"required,max=64"`
}

type StatusPatch struct {
	Description *string `json:"description" validate:"required"`
}

func (p StatusPatch) Apply(s *Status) error {
	if p.Description != nil {
		s.Description = *p.Description
	}
	return nil
}
