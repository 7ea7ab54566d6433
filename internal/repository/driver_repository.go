package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/swiftlogistics/driver-service/internal/domain"
)

// ErrNotFound is returned when no driver matches a lookup.
var ErrNotFound = errors.New("driver not found")

// Constraint names a storage-level uniqueness guarantee on drivers.
type Constraint string

const (
	ConstraintDriverID Constraint = "pk_drivers"
	ConstraintEmail    Constraint = "uq_drivers_email"
	ConstraintLicense  Constraint = "uq_drivers_license"
)

// ConstraintViolation reports that an insert was rejected by a unique constraint.
type ConstraintViolation struct {
	Constraint Constraint
	Err        error
}

func (e *ConstraintViolation) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unique constraint %s violated: %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("unique constraint %s violated", e.Constraint)
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// DriverQueries are the driver operations available both inside and outside a unit of work.
type DriverQueries interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByLicense(ctx context.Context, license string) (bool, error)
	// Insert persists driver and fills in CreatedAt/UpdatedAt from the store.
	// Unique violations are returned as *ConstraintViolation.
	Insert(ctx context.Context, driver *domain.Driver) error
	FindByEmail(ctx context.Context, email string) (*domain.Driver, error)
	FindByID(ctx context.Context, id string) (*domain.Driver, error)
	FindByLicense(ctx context.Context, license string) (*domain.Driver, error)
}

// DriverRepository defines persistence access for drivers.
type DriverRepository interface {
	DriverQueries
	// RunAtomic executes fn as one all-or-nothing unit of work. Writes made
	// through q become visible to other callers only if fn returns nil.
	RunAtomic(ctx context.Context, fn func(ctx context.Context, q DriverQueries) error) error
	Ping(ctx context.Context) error
}
