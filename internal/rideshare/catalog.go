package rideshare

import (
	"github.com/wayfare/backend/internal/audit"
	"github.com/wayfare/backend/internal/models"
	"github.com/wayfare/backend/internal/store"
)

type (
	Locations  = Collection[models.Location, models.LocationPatch]
	TimeRanges = Collection[models.TimeRange, models.TimeRangePatch]
	Statuses   = Collection[models.Status, models.StatusPatch]
)

func NewLocations(repo store.Repository[models.Location], rec audit.Recorder) *Locations {
	return NewCollection[models.Location, models.LocationPatch](repo, store.LocationSchema, rec)
}

func NewTimeRanges(repo store.Repository[models.TimeRange], rec audit.Recorder) *TimeRanges {
	return NewCollection[models.TimeRange, models.TimeRangePatch](repo, store.TimeRangeSchema, rec)
}

func NewStatuses(repo store.Repository[models.Status], rec audit.Recorder) *Statuses {
	return NewCollection[models.Status, models.StatusPatch](repo, store.StatusSchema, rec)
}
