package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swiftlogistics/driver-service/internal/config"
	"github.com/swiftlogistics/driver-service/internal/domain"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	maxTxAttempts = 3
)

const driverColumns = `driver_id, first_name, last_name, email, phone, commercial_license_number,
        password_hash, status, created_at, updated_at`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type driverQueries struct {
	db querier
}

type driverRepository struct {
	driverQueries
	pool      *pgxpool.Pool
	isolation pgx.TxIsoLevel
}

// NewDriverRepository returns a Postgres-backed implementation.
func NewDriverRepository(pool *pgxpool.Pool, isolation string) DriverRepository {
	level := pgx.ReadCommitted
	if isolation == config.TxIsolationSerializable {
		level = pgx.Serializable
	}
	return &driverRepository{
		driverQueries: driverQueries{db: pool},
		pool:          pool,
		isolation:     level,
	}
}

func (r *driverRepository) RunAtomic(ctx context.Context, fn func(ctx context.Context, q DriverQueries) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.runTx(ctx, fn)
		if !isRetryableTxError(err) {
			return err
		}
	}
	return err
}

func (r *driverRepository) runTx(ctx context.Context, fn func(ctx context.Context, q DriverQueries) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: r.isolation})
	if err != nil {
		return fmt.Errorf("begin driver tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op
	}()

	if err := fn(ctx, &driverQueries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit driver tx: %w", translatePgError(err))
	}
	return nil
}

func (r *driverRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (q *driverQueries) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM drivers WHERE email=$1)`

	var exists bool
	if err := q.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}
	return exists, nil
}

func (q *driverQueries) ExistsByLicense(ctx context.Context, license string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM drivers WHERE commercial_license_number=$1)`

	var exists bool
	if err := q.db.QueryRow(ctx, query, license).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists by license: %w", err)
	}
	return exists, nil
}

func (q *driverQueries) Insert(ctx context.Context, driver *domain.Driver) error {
	const query = `
        INSERT INTO drivers (driver_id, first_name, last_name, email, phone, commercial_license_number, password_hash, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`

	err := q.db.QueryRow(ctx, query,
		driver.ID,
		driver.FirstName,
		driver.LastName,
		driver.Email,
		driver.Phone,
		driver.CommercialLicenseNumber,
		driver.PasswordHash,
		driver.Status,
	).Scan(&driver.CreatedAt, &driver.UpdatedAt)
	if err != nil {
		return translatePgError(err)
	}
	return nil
}

func (q *driverQueries) FindByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	return q.findOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE email=$1`, email)
}

func (q *driverQueries) FindByID(ctx context.Context, id string) (*domain.Driver, error) {
	return q.findOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE driver_id=$1`, id)
}

func (q *driverQueries) FindByLicense(ctx context.Context, license string) (*domain.Driver, error) {
	return q.findOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE commercial_license_number=$1`, license)
}

func (q *driverQueries) findOne(ctx context.Context, query string, arg string) (*domain.Driver, error) {
	var driver domain.Driver
	if err := q.db.QueryRow(ctx, query, arg).Scan(
		&driver.ID,
		&driver.FirstName,
		&driver.LastName,
		&driver.Email,
		&driver.Phone,
		&driver.CommercialLicenseNumber,
		&driver.PasswordHash,
		&driver.Status,
		&driver.CreatedAt,
		&driver.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find driver: %w", err)
	}
	return &driver, nil
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &ConstraintViolation{Constraint: Constraint(pgErr.ConstraintName), Err: err}
	}
	return err
}

func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}
