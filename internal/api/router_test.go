package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wayfare/backend/internal/audit"
	"github.com/wayfare/backend/internal/models"
	"github.com/wayfare/backend/internal/rideshare"
	"github.com/wayfare/backend/internal/store"
)

func init() {
	rideshare.PasswordCost = bcrypt.MinCost
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := rideshare.New(store.NewMemoryStore().Tables(), audit.Discard())
	return NewRouter(Deps{Services: svc})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func user(first, last, email string) map[string]any {
	return map[string]any{"first_name": first, "last_name": last, "email": email, "password": "pw"}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateUsersAndDuplicateEmail(t *testing.T) {
	h := newTestRouter(t)
	people := []map[string]any{
		user("Oliver", "Wang", "owang02@calpoly.edu"),
		user("Karissa", "Bennett", "kbennett@calpoly.edu"),
		user("Barack", "Obama", "bobama@calpoly.edu"),
		user("Minh-Quan", "Do", "mdo@calpoly.edu"),
	}
	for i, p := range people {
		rec := do(t, h, http.MethodPost, "/users", p)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		u := decodeBody[map[string]any](t, rec)
		assert.Equal(t, float64(i+1), u["id"])
		assert.NotContains(t, u, "password")
		assert.Equal(t, fmt.Sprintf("/users/%d", i+1), rec.Header().Get("Location"))
	}

	rec := do(t, h, http.MethodPost, "/users", user("Olive", "Wong", "owang02@calpoly.edu"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "Duplicate email: 'owang02@calpoly.edu'", body.Message)
	assert.Equal(t, "duplicate_email", body.Reason)
	assert.Equal(t, "email", body.Field)

	rec = do(t, h, http.MethodGet, "/users", nil)
	assert.Len(t, decodeBody[[]models.User](t, rec), 4)
}

func TestCreateUserValidation(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/users", map[string]any{"first_name": "Oliver"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `Required field: "last_name".`, decodeBody[errorBody](t, rec).Message)

	rec = do(t, h, http.MethodPost, "/users", user("Ol!ver", "Wang", "owang02@calpoly.edu"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid first_name: 'Ol!ver'", decodeBody[errorBody](t, rec).Message)

	rec = do(t, h, http.MethodPost, "/users", user("Oliver", `Back\slash`, "owang02@calpoly.edu"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_format", decodeBody[errorBody](t, rec).Reason)

	rec = do(t, h, http.MethodPost, "/users", user("Oliver", "Wang", "owang02.calpoly.edu"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_format", decodeBody[errorBody](t, rec).Reason)

	rec = do(t, h, http.MethodPost, "/users", `{"first_name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/users", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `Required field: "first_name".`, decodeBody[errorBody](t, rec).Message)
}

func TestPutUser(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/users", user("Oliver", "Wang", "owang02@calpoly.edu")).Code)

	rec := do(t, h, http.MethodPut, "/users/1", map[string]any{"last_name": "Wong"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	u := decodeBody[models.User](t, rec)
	assert.Equal(t, "Oliver", u.FirstName)
	assert.Equal(t, "Wong", u.LastName)

	rec = do(t, h, http.MethodPut, "/users/10", user("Barack", "Obama", "bobama@calpoly.edu"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/users/10", rec.Header().Get("Location"))

	rec = do(t, h, http.MethodPost, "/users", user("Minh", "Do", "mdo@calpoly.edu"))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(11), decodeBody[models.User](t, rec).ID)
}

func TestGetAndDeleteMissing(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/statuses", map[string]any{"description": "Pending"}).Code)

	rec := do(t, h, http.MethodGet, "/users/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User 99 doesn't exist", decodeBody[errorBody](t, rec).Message)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/users/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/statuses/5", nil).Code)

	rec = do(t, h, http.MethodGet, "/statuses", nil)
	assert.Len(t, decodeBody[[]models.Status](t, rec), 1)

	rec = do(t, h, http.MethodDelete, "/statuses/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"deleted"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/statuses", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestNonPositivePathIDs(t *testing.T) {
	h := newTestRouter(t)
	for _, id := range []string{"0", "-1"} {
		path := "/users/" + id
		rec := do(t, h, http.MethodPut, path, user("Barack", "Obama", "bobama@calpoly.edu"))
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "User "+id+" doesn't exist", decodeBody[errorBody](t, rec).Message)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, path, nil).Code, path)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, path, nil).Code, path)
	}

	rec := do(t, h, http.MethodGet, "/users", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

// seed creates a driver, a rider, two locations, a time range and a status.
func seed(t *testing.T, h http.Handler) {
	t.Helper()
	steps := []struct {
		path string
		body any
	}{
		{"/users", user("Oliver", "Wang", "owang02@calpoly.edu")},
		{"/users", user("Karissa", "Bennett", "kbennett@calpoly.edu")},
		{"/locations", map[string]any{"name": "San Luis Obispo"}},
		{"/locations", map[string]any{"name": "Los Angeles"}},
		{"/time_ranges", map[string]any{"description": "Morning", "start_time": 6, "end_time": 10}},
		{"/statuses", map[string]any{"description": "Pending"}},
	}
	for _, s := range steps {
		rec := do(t, h, http.MethodPost, s.path, s.body)
		require.Equal(t, http.StatusCreated, rec.Code, "%s: %s", s.path, rec.Body.String())
	}
}

func ride(capacity any) map[string]any {
	return map[string]any{
		"departure_date":    "2026-10-19",
		"capacity":          capacity,
		"time_range_id":     1,
		"driver_id":         1,
		"start_location_id": 1,
		"destination_id":    2,
	}
}

func TestRideCapacity(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)

	for _, c := range []any{0, 9, 2.5, "four"} {
		rec := do(t, h, http.MethodPost, "/rides", ride(c))
		require.Equal(t, http.StatusBadRequest, rec.Code, "capacity %v", c)
		body := decodeBody[errorBody](t, rec)
		assert.Equal(t, "invalid_capacity", body.Reason)
		assert.Equal(t, "capacity", body.Field)
	}

	rec := do(t, h, http.MethodPost, "/rides", ride(9))
	assert.Equal(t, "Invalid capacity: '9'", decodeBody[errorBody](t, rec).Message)

	for _, c := range []any{1, 8} {
		rec := do(t, h, http.MethodPost, "/rides", ride(c))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		r := decodeBody[map[string]any](t, rec)
		assert.Equal(t, float64(c.(int)), r["capacity"])
		assert.Equal(t, "2026-10-19", r["departure_date"])
		assert.Nil(t, r["actual_departure_time"])
	}
}

func TestRideInvalidReference(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)

	body := ride(2)
	body["driver_id"] = 42
	rec := do(t, h, http.MethodPost, "/rides", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	eb := decodeBody[errorBody](t, rec)
	assert.Equal(t, "invalid_reference", eb.Reason)
	assert.Equal(t, "driver_id", eb.Field)
}

func TestPassengersLifecycle(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/rides", ride(1)).Code)

	rec := do(t, h, http.MethodPost, "/rides/1/users", map[string]any{"user_id": 2, "status_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/rides/1/users/2", rec.Header().Get("Location"))

	rec = do(t, h, http.MethodPost, "/rides/1/users", map[string]any{"user_id": 1, "status_id": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Ride 1 is full (capacity 1)", decodeBody[errorBody](t, rec).Message)

	rec = do(t, h, http.MethodGet, "/rides/1/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Passenger{{UserID: 2, RideID: 1, StatusID: 1}}, decodeBody[[]models.Passenger](t, rec))

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/rides/9/users", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/rides/1/users/1", nil).Code)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/statuses", map[string]any{"description": "Confirmed"}).Code)
	rec = do(t, h, http.MethodPut, "/rides/1/users/2", map[string]any{"status_id": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(2), decodeBody[models.Passenger](t, rec).StatusID)

	rec = do(t, h, http.MethodGet, "/passengers?status_id=2", nil)
	assert.Len(t, decodeBody[[]models.Passenger](t, rec), 1)

	rec = do(t, h, http.MethodDelete, "/statuses/2", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "in_use", decodeBody[errorBody](t, rec).Reason)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/rides/1", nil).Code)

	rec = do(t, h, http.MethodGet, "/passengers", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
	rec = do(t, h, http.MethodGet, "/statuses", nil)
	assert.Len(t, decodeBody[[]models.Status](t, rec), 2)
}

func TestDeleteUserRemovesPassengerRows(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/rides", ride(3)).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPut, "/rides/1/users/2", map[string]any{"status_id": 1}).Code)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/users/2", nil).Code)
	rec := do(t, h, http.MethodGet, "/rides/1/users", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestDeleteCollections(t *testing.T) {
	h := newTestRouter(t)
	seed(t, h)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/rides", ride(3)).Code)

	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodDelete, "/locations", nil).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/rides", nil).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/locations", nil).Code)

	rec := do(t, h, http.MethodPost, "/locations", map[string]any{"name": "Fresno"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/locations/1", rec.Header().Get("Location"))
}

type fakeAudit struct{ entity string }

func (f *fakeAudit) List(_ context.Context, entity string, _ int64) ([]models.AuditEvent, error) {
	f.entity = entity
	return []models.AuditEvent{{ID: "e1", Entity: entity, Action: models.ActionCreate}}, nil
}

type fakeSnapshots struct{ data map[string][]byte }

func (f *fakeSnapshots) Create(context.Context) (*models.Snapshot, error) {
	f.data["snap.json"] = []byte(`{"users":[]}`)
	return &models.Snapshot{Key: "snap.json", Size: 12}, nil
}

func (f *fakeSnapshots) Get(_ context.Context, key string) ([]byte, string, error) {
	b, ok := f.data[key]
	if !ok {
		return nil, "", models.NotFoundError("Snapshot", key)
	}
	return b, "application/json", nil
}

func (f *fakeSnapshots) List(context.Context) ([]models.Snapshot, error) {
	return []models.Snapshot{{Key: "snap.json"}}, nil
}

func (f *fakeSnapshots) Delete(_ context.Context, key string) error {
	if _, ok := f.data[key]; !ok {
		return models.NotFoundError("Snapshot", key)
	}
	delete(f.data, key)
	return nil
}

func TestOperationalRoutes(t *testing.T) {
	svc := rideshare.New(store.NewMemoryStore().Tables(), nil)
	events := &fakeAudit{}
	h := NewRouter(Deps{Services: svc, Audit: events, Snapshots: &fakeSnapshots{data: map[string][]byte{}}})

	rec := do(t, h, http.MethodGet, "/audit?entity=Ride&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ride", events.entity)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/audit?limit=x", nil).Code)

	rec = do(t, h, http.MethodPost, "/snapshots", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/snapshots/snap.json", rec.Header().Get("Location"))

	rec = do(t, h, http.MethodGet, "/snapshots/snap.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":[]}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/snapshots/other.json", nil).Code)

	rec = do(t, h, http.MethodDelete, "/snapshots/snap.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"deleted"}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/snapshots/snap.json", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/snapshots/snap.json", nil).Code)

	// Without the optional components the routes are absent.
	bare := newTestRouter(t)
	assert.Equal(t, http.StatusNotFound, do(t, bare, http.MethodGet, "/audit", nil).Code)
}
