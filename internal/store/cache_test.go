package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfare/backend/internal/models"
)

// countingStatuses records how often reads reach the wrapped table.
type countingStatuses struct {
	Repository[models.Status]
	finds, lists int
}

func (c *countingStatuses) FindByID(ctx context.Context, id int64) (*models.Status, error) {
	c.finds++
	return c.Repository.FindByID(ctx, id)
}

func (c *countingStatuses) GetAll(ctx context.Context) ([]models.Status, error) {
	c.lists++
	return c.Repository.GetAll(ctx)
}

func newCachedStatuses(t *testing.T) (*CachedTable[models.Status], *countingStatuses, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &countingStatuses{Repository: NewMemoryStore().Statuses()}
	return NewCachedTable[models.Status](inner, rdb, StatusSchema.Table, time.Minute), inner, mr
}

func TestCachedTableReadsThrough(t *testing.T) {
	ctx := context.Background()
	c, inner, mr := newCachedStatuses(t)

	pending := models.Status{Description: "Pending"}
	require.NoError(t, c.Create(ctx, &pending))

	for range 3 {
		got, err := c.FindByID(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pending", got.Description)
	}
	assert.Equal(t, 1, inner.finds)
	assert.True(t, mr.Exists("cache:statuses:1"))

	for range 2 {
		all, err := c.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	}
	assert.Equal(t, 1, inner.lists)
	assert.True(t, mr.Exists("cache:statuses:all"))
	assert.Equal(t, time.Minute, mr.TTL("cache:statuses:all"))
}

func TestCachedTableWritesInvalidate(t *testing.T) {
	ctx := context.Background()
	c, inner, mr := newCachedStatuses(t)

	pending := models.Status{Description: "Pending"}
	require.NoError(t, c.Create(ctx, &pending))
	_, err := c.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	_, err = c.GetAll(ctx)
	require.NoError(t, err)

	pending.Description = "Confirmed"
	require.NoError(t, c.Update(ctx, &pending))
	assert.False(t, mr.Exists("cache:statuses:1"))
	assert.False(t, mr.Exists("cache:statuses:all"))

	got, err := c.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, "Confirmed", got.Description)
	assert.Equal(t, 2, inner.finds)

	require.NoError(t, c.Delete(ctx, pending.ID))
	_, err = c.FindByID(ctx, pending.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := c.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCachedTableFallsBackWithoutRedis(t *testing.T) {
	ctx := context.Background()
	c, inner, mr := newCachedStatuses(t)

	pending := models.Status{Description: "Pending"}
	require.NoError(t, c.Create(ctx, &pending))
	mr.Close()

	got, err := c.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pending", got.Description)
	assert.Equal(t, 1, inner.finds)
}
