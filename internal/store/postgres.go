package store

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayfare/backend/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore owns the connection pool and hands out one table per entity.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NewPool parses dsn, opens a pool and pings it.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate applies every embedded migration in lexical order, each in its own transaction.
// Statements are idempotent so reruns are safe.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *PostgresStore) Users() *Table[models.User] {
	return NewTable(s.pool, UserSchema)
}

func (s *PostgresStore) Locations() *Table[models.Location] {
	return NewTable(s.pool, LocationSchema)
}

func (s *PostgresStore) TimeRanges() *Table[models.TimeRange] {
	return NewTable(s.pool, TimeRangeSchema)
}

func (s *PostgresStore) Statuses() *Table[models.Status] {
	return NewTable(s.pool, StatusSchema)
}

func (s *PostgresStore) Rides() *Table[models.Ride] {
	return NewTable(s.pool, RideSchema)
}

func (s *PostgresStore) Passengers() *PassengerTable {
	return &PassengerTable{pool: s.pool}
}
