package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wayfare/backend/internal/models"
)

// PostgreSQL SQLSTATE codes the store reacts to.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translate maps a driver error onto the models error kinds. v is the row being
// written (or deleted) and may be nil.
func translate[T any](s Schema[T], err error, v *T, deleting bool) error {
	if errors.Is(err, pgx.ErrNoRows) {
		var id any
		if v != nil {
			id = *s.ID(v)
		}
		return models.NotFoundError(s.Entity, id)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", s.Table, err)
	}

	column := constraintColumn(pgErr.TableName, pgErr.ConstraintName)
	var value any
	if v != nil && column != "" {
		value = s.columnValue(v, column)
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		if column == "pkey" || column == "id" {
			var id any
			if v != nil {
				id = *s.ID(v)
			}
			return &models.FieldError{Kind: models.ErrAlreadyExists, Field: s.Entity, Value: id}
		}
		return &models.FieldError{Kind: s.kind(column), Field: column, Value: value}
	case pgCheckViolation:
		return &models.FieldError{Kind: s.kind(column), Field: column, Value: value}
	case pgForeignKeyViolation:
		if deleting {
			var id any
			if v != nil {
				id = *s.ID(v)
			}
			return models.InUseError(s.Entity, id)
		}
		return &models.FieldError{Kind: models.ErrInvalidReference, Field: column, Value: value}
	}
	return fmt.Errorf("%s: %w", s.Table, err)
}

// constraintColumn recovers the column from a conventional constraint name:
// rides_driver_id_fkey -> driver_id, users_email_key -> email.
func constraintColumn(table, constraint string) string {
	name := strings.TrimPrefix(constraint, table+"_")
	for _, suffix := range []string{"_fkey", "_key", "_check"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
