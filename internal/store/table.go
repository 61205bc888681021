package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayfare/backend/internal/models"
)

// Table is the PostgreSQL Repository for one entity. Every write runs in its
// own transaction and commits before returning.
type Table[T any] struct {
	pool   *pgxpool.Pool
	schema Schema[T]
}

func NewTable[T any](pool *pgxpool.Pool, schema Schema[T]) *Table[T] {
	return &Table[T]{pool: pool, schema: schema}
}

var _ Repository[models.User] = (*Table[models.User])(nil)

func (t *Table[T]) selectList() string {
	return "id, " + strings.Join(t.schema.Columns, ", ")
}

func (t *Table[T]) scanTargets(v *T) []any {
	return append([]any{t.schema.ID(v)}, t.schema.Fields(v)...)
}

func (t *Table[T]) Create(ctx context.Context, v *T) (err error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert %s: %w", t.schema.Table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	id := t.schema.ID(v)
	cols := t.schema.Columns
	args := t.schema.Values(v)
	explicit := *id != 0
	if explicit {
		cols = append([]string{"id"}, cols...)
		args = append([]any{*id}, args...)
	}

	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
		t.schema.Table, strings.Join(cols, ", "), placeholders(1, len(cols)))
	if err = tx.QueryRow(ctx, q, args...).Scan(id); err != nil {
		return translate(t.schema, err, v, false)
	}

	// Keep the sequence ahead of explicitly chosen ids.
	if explicit {
		q = fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))`,
			t.schema.Table, t.schema.Table)
		if _, err = tx.Exec(ctx, q); err != nil {
			return fmt.Errorf("advance %s sequence: %w", t.schema.Table, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert %s: %w", t.schema.Table, err)
	}
	return nil
}

func (t *Table[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var v T
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, t.selectList(), t.schema.Table)
	if err := t.pool.QueryRow(ctx, q, id).Scan(t.scanTargets(&v)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFoundError(t.schema.Entity, id)
		}
		return nil, fmt.Errorf("find %s by id: %w", t.schema.Table, err)
	}
	return &v, nil
}

func (t *Table[T]) FindBy(ctx context.Context, field string, value any) (*T, error) {
	if err := t.schema.checkLookup(field); err != nil {
		return nil, err
	}
	var v T
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY id LIMIT 1`,
		t.selectList(), t.schema.Table, field)
	if err := t.pool.QueryRow(ctx, q, value).Scan(t.scanTargets(&v)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFoundError(t.schema.Entity, value)
		}
		return nil, fmt.Errorf("find %s by %s: %w", t.schema.Table, field, err)
	}
	return &v, nil
}

func (t *Table[T]) GetAll(ctx context.Context) ([]T, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, t.selectList(), t.schema.Table)
	rows, err := t.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.schema.Table, err)
	}
	all, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		var v T
		err := row.Scan(t.scanTargets(&v)...)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", t.schema.Table, err)
	}
	return all, nil
}

func (t *Table[T]) DeleteAll(ctx context.Context) (err error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin purge %s: %w", t.schema.Table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM `+t.schema.Table); err != nil {
		return translate(t.schema, err, nil, true)
	}
	q := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), 1, false)`, t.schema.Table)
	if _, err = tx.Exec(ctx, q); err != nil {
		return fmt.Errorf("reset %s sequence: %w", t.schema.Table, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit purge %s: %w", t.schema.Table, err)
	}
	return nil
}

func (t *Table[T]) Update(ctx context.Context, v *T) error {
	sets := make([]string, len(t.schema.Columns))
	for i, c := range t.schema.Columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	id := *t.schema.ID(v)
	args := append(t.schema.Values(v), id)
	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`,
		t.schema.Table, strings.Join(sets, ", "), len(args))

	tag, err := t.pool.Exec(ctx, q, args...)
	if err != nil {
		return translate(t.schema, err, v, false)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundError(t.schema.Entity, id)
	}
	return nil
}

func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	tag, err := t.pool.Exec(ctx, `DELETE FROM `+t.schema.Table+` WHERE id = $1`, id)
	if err != nil {
		var v T
		*t.schema.ID(&v) = id
		return translate(t.schema, err, &v, true)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundError(t.schema.Entity, id)
	}
	return nil
}

// placeholders renders "$from, ..., $from+n-1".
func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}
