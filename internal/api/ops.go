package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wayfare/backend/internal/logger"
	"github.com/wayfare/backend/internal/models"
)

// AuditLister reads the recorded change events.
type AuditLister interface {
	List(ctx context.Context, entity string, limit int64) ([]models.AuditEvent, error)
}

// SnapshotService creates and serves table snapshots.
type SnapshotService interface {
	Create(ctx context.Context) (*models.Snapshot, error)
	Get(ctx context.Context, key string) ([]byte, string, error)
	List(ctx context.Context) ([]models.Snapshot, error)
	Delete(ctx context.Context, key string) error
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type auditHandler struct {
	events AuditLister
	log    logger.Logger
}

// list serves GET /audit?entity=Ride&limit=20.
func (h *auditHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var limit int64
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(w, h.log, &models.FieldError{Kind: models.ErrInvalidFormat, Field: "limit", Value: raw})
			return
		}
		limit = n
	}
	events, err := h.events.List(r.Context(), q.Get("entity"), limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type snapshotsHandler struct {
	svc SnapshotService
	log logger.Logger
}

func (h *snapshotsHandler) routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{key}", h.get)
	r.Delete("/{key}", h.delete)
}

func (h *snapshotsHandler) create(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Create(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	w.Header().Set("Location", "/snapshots/"+snap.Key)
	writeJSON(w, http.StatusCreated, snap)
}

func (h *snapshotsHandler) list(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *snapshotsHandler) get(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.svc.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func (h *snapshotsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeDeleted(w)
}
