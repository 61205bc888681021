package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayfare/backend/internal/models"
)

// PassengerRepository is the composite-key access contract for ride passengers.
type PassengerRepository interface {
	// Add inserts p unless the ride is already at capacity.
	Add(ctx context.Context, p *models.Passenger) error
	Find(ctx context.Context, rideID, userID int64) (*models.Passenger, error)
	ListByRide(ctx context.Context, rideID int64) ([]models.Passenger, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Passenger, error)
	ListByStatus(ctx context.Context, statusID int64) ([]models.Passenger, error)
	GetAll(ctx context.Context) ([]models.Passenger, error)
	UpdateStatus(ctx context.Context, p *models.Passenger) error
	Delete(ctx context.Context, rideID, userID int64) error
	DeleteByRide(ctx context.Context, rideID int64) error
	DeleteAll(ctx context.Context) error
}

// FullRideError reports a ride that has no seat left.
func FullRideError(rideID int64, capacity int) error {
	return &models.FieldError{
		Kind:  models.ErrInvalidCapacity,
		Field: "capacity",
		Value: capacity,
		Msg:   fmt.Sprintf("Ride %d is full (capacity %d)", rideID, capacity),
	}
}

func passengerNotFound(rideID, userID int64) error {
	return models.NotFoundError("Passenger", fmt.Sprintf("(ride %d, user %d)", rideID, userID))
}

func passengerExists(rideID, userID int64) error {
	return &models.FieldError{
		Kind:  models.ErrAlreadyExists,
		Field: "Passenger",
		Value: fmt.Sprintf("(ride %d, user %d)", rideID, userID),
	}
}

// PassengerTable is the PostgreSQL PassengerRepository.
type PassengerTable struct {
	pool *pgxpool.Pool
}

var _ PassengerRepository = (*PassengerTable)(nil)

const passengerColumns = `ride_id, user_id, status_id`

func (t *PassengerTable) Add(ctx context.Context, p *models.Passenger) (err error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin add passenger: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// The row lock serialises concurrent adds to the same ride.
	var capacity int
	err = tx.QueryRow(ctx, `SELECT capacity FROM rides WHERE id = $1 FOR UPDATE`, p.RideID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.NotFoundError("Ride", p.RideID)
		}
		return fmt.Errorf("lock ride: %w", err)
	}

	var aboard bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM passengers WHERE ride_id = $1 AND user_id = $2)`,
		p.RideID, p.UserID).Scan(&aboard)
	if err != nil {
		return fmt.Errorf("check passenger: %w", err)
	}
	if aboard {
		return passengerExists(p.RideID, p.UserID)
	}

	var taken int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM passengers WHERE ride_id = $1`, p.RideID).Scan(&taken); err != nil {
		return fmt.Errorf("count passengers: %w", err)
	}
	if taken >= capacity {
		return FullRideError(p.RideID, capacity)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO passengers (`+passengerColumns+`) VALUES ($1, $2, $3)`,
		p.RideID, p.UserID, p.StatusID)
	if err != nil {
		return translatePassenger(err, p)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit add passenger: %w", err)
	}
	return nil
}

func (t *PassengerTable) Find(ctx context.Context, rideID, userID int64) (*models.Passenger, error) {
	var p models.Passenger
	err := t.pool.QueryRow(ctx,
		`SELECT `+passengerColumns+` FROM passengers WHERE ride_id = $1 AND user_id = $2`,
		rideID, userID).Scan(&p.RideID, &p.UserID, &p.StatusID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, passengerNotFound(rideID, userID)
		}
		return nil, fmt.Errorf("find passenger: %w", err)
	}
	return &p, nil
}

func (t *PassengerTable) ListByRide(ctx context.Context, rideID int64) ([]models.Passenger, error) {
	return t.list(ctx, `WHERE ride_id = $1`, rideID)
}

func (t *PassengerTable) ListByUser(ctx context.Context, userID int64) ([]models.Passenger, error) {
	return t.list(ctx, `WHERE user_id = $1`, userID)
}

func (t *PassengerTable) ListByStatus(ctx context.Context, statusID int64) ([]models.Passenger, error) {
	return t.list(ctx, `WHERE status_id = $1`, statusID)
}

func (t *PassengerTable) GetAll(ctx context.Context) ([]models.Passenger, error) {
	return t.list(ctx, ``)
}

func (t *PassengerTable) list(ctx context.Context, where string, args ...any) ([]models.Passenger, error) {
	rows, err := t.pool.Query(ctx,
		`SELECT `+passengerColumns+` FROM passengers `+where+` ORDER BY ride_id, user_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list passengers: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Passenger, error) {
		var p models.Passenger
		err := row.Scan(&p.RideID, &p.UserID, &p.StatusID)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan passengers: %w", err)
	}
	return out, nil
}

func (t *PassengerTable) UpdateStatus(ctx context.Context, p *models.Passenger) error {
	tag, err := t.pool.Exec(ctx,
		`UPDATE passengers SET status_id = $3 WHERE ride_id = $1 AND user_id = $2`,
		p.RideID, p.UserID, p.StatusID)
	if err != nil {
		return translatePassenger(err, p)
	}
	if tag.RowsAffected() == 0 {
		return passengerNotFound(p.RideID, p.UserID)
	}
	return nil
}

func (t *PassengerTable) Delete(ctx context.Context, rideID, userID int64) error {
	tag, err := t.pool.Exec(ctx,
		`DELETE FROM passengers WHERE ride_id = $1 AND user_id = $2`, rideID, userID)
	if err != nil {
		return fmt.Errorf("delete passenger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return passengerNotFound(rideID, userID)
	}
	return nil
}

func (t *PassengerTable) DeleteByRide(ctx context.Context, rideID int64) error {
	if _, err := t.pool.Exec(ctx, `DELETE FROM passengers WHERE ride_id = $1`, rideID); err != nil {
		return fmt.Errorf("delete ride passengers: %w", err)
	}
	return nil
}

func (t *PassengerTable) DeleteAll(ctx context.Context) error {
	if _, err := t.pool.Exec(ctx, `DELETE FROM passengers`); err != nil {
		return fmt.Errorf("delete passengers: %w", err)
	}
	return nil
}

func translatePassenger(err error, p *models.Passenger) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("write passenger: %w", err)
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return passengerExists(p.RideID, p.UserID)
	case pgForeignKeyViolation:
		column := constraintColumn(pgErr.TableName, pgErr.ConstraintName)
		var value any
		switch column {
		case "ride_id":
			value = p.RideID
		case "user_id":
			value = p.UserID
		case "status_id":
			value = p.StatusID
		}
		return &models.FieldError{Kind: models.ErrInvalidReference, Field: column, Value: value}
	}
	return fmt.Errorf("write passenger: %w", err)
}
