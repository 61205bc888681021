package store

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wayfare/backend/internal/models"
)

// Tables bundles one repository per entity, whatever the backend.
type Tables struct {
	Users      Repository[models.User]
	Locations  Repository[models.Location]
	TimeRanges Repository[models.TimeRange]
	Statuses   Repository[models.Status]
	Rides      Repository[models.Ride]
	Passengers PassengerRepository
}

func (s *PostgresStore) Tables() Tables {
	return Tables{
		Users:      s.Users(),
		Locations:  s.Locations(),
		TimeRanges: s.TimeRanges(),
		Statuses:   s.Statuses(),
		Rides:      s.Rides(),
		Passengers: s.Passengers(),
	}
}

func (s *MemoryStore) Tables() Tables {
	return Tables{
		Users:      s.Users(),
		Locations:  s.Locations(),
		TimeRanges: s.TimeRanges(),
		Statuses:   s.Statuses(),
		Rides:      s.Rides(),
		Passengers: s.Passengers(),
	}
}

// WithCache puts the lookup tables (locations, time ranges, statuses) behind Redis.
func (t Tables) WithCache(rdb *redis.Client, ttl time.Duration) Tables {
	t.Locations = NewCachedTable(t.Locations, rdb, LocationSchema.Table, ttl)
	t.TimeRanges = NewCachedTable(t.TimeRanges, rdb, TimeRangeSchema.Table, ttl)
	t.Statuses = NewCachedTable(t.Statuses, rdb, StatusSchema.Table, ttl)
	return t
}
