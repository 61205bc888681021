package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedTable is a Redis read-through decorator for a Repository. Reads are
// served from Redis when present; every write drops the cached entries.
// Redis failures fall back to the wrapped repository.
type CachedTable[T any] struct {
	Repository[T]
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCachedTable[T any](inner Repository[T], rdb *redis.Client, prefix string, ttl time.Duration) *CachedTable[T] {
	return &CachedTable[T]{Repository: inner, rdb: rdb, prefix: "cache:" + prefix, ttl: ttl}
}

func (c *CachedTable[T]) key(id int64) string { return c.prefix + ":" + strconv.FormatInt(id, 10) }
func (c *CachedTable[T]) allKey() string      { return c.prefix + ":all" }

func (c *CachedTable[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var v T
	if c.get(ctx, c.key(id), &v) {
		return &v, nil
	}
	found, err := c.Repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, c.key(id), found)
	return found, nil
}

func (c *CachedTable[T]) GetAll(ctx context.Context) ([]T, error) {
	var all []T
	if c.get(ctx, c.allKey(), &all) {
		return all, nil
	}
	all, err := c.Repository.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, c.allKey(), all)
	return all, nil
}

func (c *CachedTable[T]) Create(ctx context.Context, v *T) error {
	err := c.Repository.Create(ctx, v)
	c.invalidate(ctx)
	return err
}

func (c *CachedTable[T]) Update(ctx context.Context, v *T) error {
	err := c.Repository.Update(ctx, v)
	c.invalidate(ctx)
	return err
}

func (c *CachedTable[T]) Delete(ctx context.Context, id int64) error {
	err := c.Repository.Delete(ctx, id)
	c.invalidate(ctx)
	return err
}

func (c *CachedTable[T]) DeleteAll(ctx context.Context) error {
	err := c.Repository.DeleteAll(ctx)
	c.invalidate(ctx)
	return err
}

func (c *CachedTable[T]) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *CachedTable[T]) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// invalidate drops every key under the table prefix.
func (c *CachedTable[T]) invalidate(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return
	}
	if len(keys) > 0 {
		_ = c.rdb.Del(ctx, keys...).Err()
	}
}
