package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wayfare/backend/internal/logger"
)

// service is what a rideshare.Collection offers to the HTTP layer.
type service[T any, P any] interface {
	Entity() string
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, patch P) (*T, error)
	Put(ctx context.Context, id int64, patch P) (*T, bool, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// collection serves the standard routes of one entity under base.
type collection[T any, P any] struct {
	svc  service[T, P]
	base string
	id   func(*T) *int64
	log  logger.Logger
}

func newCollection[T any, P any](svc service[T, P], base string, id func(*T) *int64, log logger.Logger) *collection[T, P] {
	return &collection[T, P]{svc: svc, base: base, id: id, log: log.With("entity", svc.Entity())}
}

func (c *collection[T, P]) routes(r chi.Router) {
	r.Get("/", c.list)
	r.Post("/", c.create)
	r.Delete("/", c.deleteAll)
	r.Get("/{id}", c.get)
	r.Put("/{id}", c.put)
	r.Delete("/{id}", c.delete)
}

func (c *collection[T, P]) location(v *T) string {
	return fmt.Sprintf("%s/%d", c.base, *c.id(v))
}

func (c *collection[T, P]) list(w http.ResponseWriter, r *http.Request) {
	items, err := c.svc.List(r.Context())
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (c *collection[T, P]) create(w http.ResponseWriter, r *http.Request) {
	var patch P
	if err := decode(w, r, &patch); err != nil {
		writeError(w, c.log, err)
		return
	}
	v, err := c.svc.Create(r.Context(), patch)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	w.Header().Set("Location", c.location(v))
	writeJSON(w, http.StatusCreated, v)
}

func (c *collection[T, P]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", c.svc.Entity())
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	v, err := c.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (c *collection[T, P]) put(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", c.svc.Entity())
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	var patch P
	if err := decode(w, r, &patch); err != nil {
		writeError(w, c.log, err)
		return
	}
	v, created, err := c.svc.Put(r.Context(), id, patch)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	if created {
		w.Header().Set("Location", c.location(v))
		writeJSON(w, http.StatusCreated, v)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (c *collection[T, P]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", c.svc.Entity())
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	if err := c.svc.Delete(r.Context(), id); err != nil {
		writeError(w, c.log, err)
		return
	}
	writeDeleted(w)
}

func (c *collection[T, P]) deleteAll(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.DeleteAll(r.Context()); err != nil {
		writeError(w, c.log, err)
		return
	}
	writeDeleted(w)
}
