package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wayfare/backend/internal/models"
)

// MemoryStore keeps every table in process memory under one lock. It enforces
// the same uniqueness, reference, cascade and restrict rules as the SQL schema.
type MemoryStore struct {
	mu         sync.RWMutex
	users      *MemTable[models.User]
	locations  *MemTable[models.Location]
	timeRanges *MemTable[models.TimeRange]
	statuses   *MemTable[models.Status]
	rides      *MemTable[models.Ride]
	passengers *MemPassengers
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.users = newMemTable(&s.mu, UserSchema)
	s.locations = newMemTable(&s.mu, LocationSchema)
	s.timeRanges = newMemTable(&s.mu, TimeRangeSchema)
	s.statuses = newMemTable(&s.mu, StatusSchema)
	s.rides = newMemTable(&s.mu, RideSchema)
	s.passengers = &MemPassengers{mu: &s.mu, store: s, rows: map[passengerKey]models.Passenger{}}

	s.rides.refs = func(r *models.Ride) error {
		switch {
		case !s.timeRanges.has(r.TimeRangeID):
			return invalidRef("time_range_id", r.TimeRangeID)
		case !s.users.has(r.DriverID):
			return invalidRef("driver_id", r.DriverID)
		case !s.locations.has(r.StartLocationID):
			return invalidRef("start_location_id", r.StartLocationID)
		case !s.locations.has(r.DestinationID):
			return invalidRef("destination_id", r.DestinationID)
		}
		return nil
	}

	s.users.cascade = func(id int64) {
		for rid, r := range s.rides.rows {
			if r.DriverID == id {
				s.rides.remove(rid)
			}
		}
		s.passengers.removeWhere(func(p models.Passenger) bool { return p.UserID == id })
	}
	s.rides.cascade = func(id int64) {
		s.passengers.removeWhere(func(p models.Passenger) bool { return p.RideID == id })
	}

	s.locations.guard = func(id int64) error {
		for _, r := range s.rides.rows {
			if r.StartLocationID == id || r.DestinationID == id {
				return models.InUseError("Location", id)
			}
		}
		return nil
	}
	s.timeRanges.guard = func(id int64) error {
		for _, r := range s.rides.rows {
			if r.TimeRangeID == id {
				return models.InUseError("TimeRange", id)
			}
		}
		return nil
	}
	s.statuses.guard = func(id int64) error {
		for _, p := range s.passengers.rows {
			if p.StatusID == id {
				return models.InUseError("Status", id)
			}
		}
		return nil
	}
	return s
}

func (s *MemoryStore) Users() *MemTable[models.User]           { return s.users }
func (s *MemoryStore) Locations() *MemTable[models.Location]   { return s.locations }
func (s *MemoryStore) TimeRanges() *MemTable[models.TimeRange] { return s.timeRanges }
func (s *MemoryStore) Statuses() *MemTable[models.Status]      { return s.statuses }
func (s *MemoryStore) Rides() *MemTable[models.Ride]           { return s.rides }
func (s *MemoryStore) Passengers() *MemPassengers              { return s.passengers }

func invalidRef(field string, id int64) error {
	return &models.FieldError{Kind: models.ErrInvalidReference, Field: field, Value: id}
}

// MemTable is the in-memory Repository for one entity, keyed by id.
type MemTable[T any] struct {
	mu     *sync.RWMutex
	schema Schema[T]
	rows   map[int64]T
	nextID int64

	// Hooks run with mu held.
	refs    func(*T) error    // reference checks on write
	guard   func(int64) error // refuses a delete
	cascade func(int64)       // removes dependent rows
}

var _ Repository[models.User] = (*MemTable[models.User])(nil)

func newMemTable[T any](mu *sync.RWMutex, schema Schema[T]) *MemTable[T] {
	return &MemTable[T]{mu: mu, schema: schema, rows: map[int64]T{}, nextID: 1}
}

func (t *MemTable[T]) has(id int64) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *MemTable[T]) sortedIDs() []int64 {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (t *MemTable[T]) checkWrite(v *T) error {
	id := *t.schema.ID(v)
	for _, col := range t.schema.Unique {
		want := t.schema.columnValue(v, col)
		for otherID, other := range t.rows {
			if otherID == id {
				continue
			}
			if sameValue(t.schema.columnValue(&other, col), want) {
				return &models.FieldError{Kind: t.schema.kind(col), Field: col, Value: want}
			}
		}
	}
	if t.refs != nil {
		return t.refs(v)
	}
	return nil
}

func (t *MemTable[T]) Create(_ context.Context, v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.schema.ID(v)
	if *id != 0 && t.has(*id) {
		return &models.FieldError{Kind: models.ErrAlreadyExists, Field: t.schema.Entity, Value: *id}
	}
	if err := t.checkWrite(v); err != nil {
		return err
	}
	if *id == 0 {
		*id = t.nextID
	}
	if *id >= t.nextID {
		t.nextID = *id + 1
	}
	t.rows[*id] = *v
	return nil
}

func (t *MemTable[T]) FindByID(_ context.Context, id int64) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.rows[id]
	if !ok {
		return nil, models.NotFoundError(t.schema.Entity, id)
	}
	return &v, nil
}

func (t *MemTable[T]) FindBy(_ context.Context, field string, value any) (*T, error) {
	if err := t.schema.checkLookup(field); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, id := range t.sortedIDs() {
		v := t.rows[id]
		if sameValue(t.schema.columnValue(&v, field), value) {
			return &v, nil
		}
	}
	return nil, models.NotFoundError(t.schema.Entity, value)
}

func (t *MemTable[T]) GetAll(_ context.Context) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.rows))
	for _, id := range t.sortedIDs() {
		out = append(out, t.rows[id])
	}
	return out, nil
}

func (t *MemTable[T]) DeleteAll(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.guard != nil {
		for _, id := range t.sortedIDs() {
			if err := t.guard(id); err != nil {
				return err
			}
		}
	}
	for _, id := range t.sortedIDs() {
		t.remove(id)
	}
	t.nextID = 1
	return nil
}

func (t *MemTable[T]) Update(_ context.Context, v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := *t.schema.ID(v)
	if !t.has(id) {
		return models.NotFoundError(t.schema.Entity, id)
	}
	if err := t.checkWrite(v); err != nil {
		return err
	}
	t.rows[id] = *v
	return nil
}

func (t *MemTable[T]) Delete(_ context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.has(id) {
		return models.NotFoundError(t.schema.Entity, id)
	}
	if t.guard != nil {
		if err := t.guard(id); err != nil {
			return err
		}
	}
	t.remove(id)
	return nil
}

// remove deletes id and its dependents. mu must be held.
func (t *MemTable[T]) remove(id int64) {
	delete(t.rows, id)
	if t.cascade != nil {
		t.cascade(id)
	}
}

func sameValue(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

type passengerKey struct {
	rideID, userID int64
}

// MemPassengers is the in-memory PassengerRepository.
type MemPassengers struct {
	mu    *sync.RWMutex
	store *MemoryStore
	rows  map[passengerKey]models.Passenger
}

var _ PassengerRepository = (*MemPassengers)(nil)

func (m *MemPassengers) Add(_ context.Context, p *models.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ride, ok := m.store.rides.rows[p.RideID]
	if !ok {
		return models.NotFoundError("Ride", p.RideID)
	}
	key := passengerKey{p.RideID, p.UserID}
	if _, dup := m.rows[key]; dup {
		return passengerExists(p.RideID, p.UserID)
	}
	taken := 0
	for k := range m.rows {
		if k.rideID == p.RideID {
			taken++
		}
	}
	if taken >= ride.Capacity {
		return FullRideError(p.RideID, ride.Capacity)
	}
	if err := m.checkRefs(p); err != nil {
		return err
	}
	m.rows[key] = *p
	return nil
}

func (m *MemPassengers) checkRefs(p *models.Passenger) error {
	if !m.store.users.has(p.UserID) {
		return invalidRef("user_id", p.UserID)
	}
	if !m.store.statuses.has(p.StatusID) {
		return invalidRef("status_id", p.StatusID)
	}
	return nil
}

func (m *MemPassengers) Find(_ context.Context, rideID, userID int64) (*models.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.rows[passengerKey{rideID, userID}]
	if !ok {
		return nil, passengerNotFound(rideID, userID)
	}
	return &p, nil
}

func (m *MemPassengers) ListByRide(_ context.Context, rideID int64) ([]models.Passenger, error) {
	return m.list(func(p models.Passenger) bool { return p.RideID == rideID }), nil
}

func (m *MemPassengers) ListByUser(_ context.Context, userID int64) ([]models.Passenger, error) {
	return m.list(func(p models.Passenger) bool { return p.UserID == userID }), nil
}

func (m *MemPassengers) ListByStatus(_ context.Context, statusID int64) ([]models.Passenger, error) {
	return m.list(func(p models.Passenger) bool { return p.StatusID == statusID }), nil
}

func (m *MemPassengers) GetAll(_ context.Context) ([]models.Passenger, error) {
	return m.list(func(models.Passenger) bool { return true }), nil
}

func (m *MemPassengers) list(match func(models.Passenger) bool) []models.Passenger {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Passenger{}
	for _, p := range m.rows {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RideID != out[j].RideID {
			return out[i].RideID < out[j].RideID
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func (m *MemPassengers) UpdateStatus(_ context.Context, p *models.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := passengerKey{p.RideID, p.UserID}
	if _, ok := m.rows[key]; !ok {
		return passengerNotFound(p.RideID, p.UserID)
	}
	if !m.store.statuses.has(p.StatusID) {
		return invalidRef("status_id", p.StatusID)
	}
	m.rows[key] = *p
	return nil
}

func (m *MemPassengers) Delete(_ context.Context, rideID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := passengerKey{rideID, userID}
	if _, ok := m.rows[key]; !ok {
		return passengerNotFound(rideID, userID)
	}
	delete(m.rows, key)
	return nil
}

func (m *MemPassengers) DeleteByRide(_ context.Context, rideID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeWhere(func(p models.Passenger) bool { return p.RideID == rideID })
	return nil
}

func (m *MemPassengers) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = map[passengerKey]models.Passenger{}
	return nil
}

// removeWhere drops matching rows. mu must be held.
func (m *MemPassengers) removeWhere(match func(models.Passenger) bool) {
	for k, p := range m.rows {
		if match(p) {
			delete(m.rows, k)
		}
	}
}
