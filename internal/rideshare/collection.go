// Package rideshare holds the write rules for every entity: required fields,
// field validation, reference checks and the audit trail.
package rideshare

import (
	"context"
	"errors"

	"github.com/wayfare/backend/internal/audit"
	"github.com/wayfare/backend/internal/models"
	"github.com/wayfare/backend/internal/store"
	"github.com/wayfare/backend/internal/validation"
)

// Patch is a partial JSON body that can be merged into an entity.
type Patch[T any] interface {
	Apply(*T) error
}

// Collection is the create/read/update/delete service for one entity type.
type Collection[T any, P Patch[T]] struct {
	repo   store.Repository[T]
	schema store.Schema[T]
	rec    audit.Recorder

	// check runs after field validation and before any write.
	check func(ctx context.Context, v *T) error
	// prepare rewrites the row just before it is stored (password hashing).
	prepare func(v *T, patch P) error
}

func NewCollection[T any, P Patch[T]](repo store.Repository[T], schema store.Schema[T], rec audit.Recorder) *Collection[T, P] {
	if rec == nil {
		rec = audit.Discard()
	}
	return &Collection[T, P]{repo: repo, schema: schema, rec: rec}
}

func (c *Collection[T, P]) Entity() string { return c.schema.Entity }

func (c *Collection[T, P]) List(ctx context.Context) ([]T, error) {
	return c.repo.GetAll(ctx)
}

func (c *Collection[T, P]) Get(ctx context.Context, id int64) (*T, error) {
	return c.repo.FindByID(ctx, id)
}

// Create builds a new row from patch. Every required field must be present.
func (c *Collection[T, P]) Create(ctx context.Context, patch P) (*T, error) {
	return c.create(ctx, 0, patch)
}

// Put merges patch into row id, or creates the row with that id when it does
// not exist yet. created reports which of the two happened.
func (c *Collection[T, P]) Put(ctx context.Context, id int64, patch P) (v *T, created bool, err error) {
	existing, err := c.repo.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		v, err = c.create(ctx, id, patch)
		return v, err == nil, err
	}
	if err != nil {
		return nil, false, err
	}

	if err := patch.Apply(existing); err != nil {
		return nil, false, err
	}
	if err := c.validate(ctx, existing, patch); err != nil {
		return nil, false, err
	}
	if err := c.repo.Update(ctx, existing); err != nil {
		return nil, false, err
	}
	c.record(ctx, id, models.ActionUpdate, existing)
	return existing, false, nil
}

func (c *Collection[T, P]) Delete(ctx context.Context, id int64) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.record(ctx, id, models.ActionDelete, nil)
	return nil
}

func (c *Collection[T, P]) DeleteAll(ctx context.Context) error {
	if err := c.repo.DeleteAll(ctx); err != nil {
		return err
	}
	c.record(ctx, nil, models.ActionDeleteAll, nil)
	return nil
}

func (c *Collection[T, P]) create(ctx context.Context, id int64, patch P) (*T, error) {
	if err := validation.Required(patch); err != nil {
		return nil, err
	}
	var v T
	*c.schema.ID(&v) = id
	if err := patch.Apply(&v); err != nil {
		return nil, err
	}
	if err := c.validate(ctx, &v, patch); err != nil {
		return nil, err
	}
	if err := c.repo.Create(ctx, &v); err != nil {
		return nil, err
	}
	c.record(ctx, *c.schema.ID(&v), models.ActionCreate, &v)
	return &v, nil
}

func (c *Collection[T, P]) validate(ctx context.Context, v *T, patch P) error {
	if err := validation.Struct(v); err != nil {
		return err
	}
	if c.check != nil {
		if err := c.check(ctx, v); err != nil {
			return err
		}
	}
	if c.prepare != nil {
		return c.prepare(v, patch)
	}
	return nil
}

func (c *Collection[T, P]) record(ctx context.Context, id any, action string, payload any) {
	_ = c.rec.Record(ctx, audit.NewEvent(c.schema.Entity, id, action, payload))
}
