//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/swiftlogistics/driver-service/internal/config"
	"github.com/swiftlogistics/driver-service/internal/domain"
	"github.com/swiftlogistics/driver-service/internal/repository"
	"github.com/swiftlogistics/driver-service/pkg/testutil/containers"
)

type PostgresDriverRepositorySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	repo     repository.DriverRepository
}

func TestPostgresDriverRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresDriverRepositorySuite))
}

func (s *PostgresDriverRepositorySuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
}

func (s *PostgresDriverRepositorySuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "drivers"))
	s.repo = repository.NewDriverRepository(s.postgres.Pool, config.TxIsolationReadCommitted)
}

func testDriver(id, email, license string) *domain.Driver {
	return &domain.Driver{
		ID:                      id,
		FirstName:               "Jane",
		LastName:                "Doe",
		Email:                   email,
		Phone:                   "555-0100",
		CommercialLicenseNumber: license,
		PasswordHash:            "$2a$10$hash",
		Status:                  domain.DriverStatusPending,
	}
}

func (s *PostgresDriverRepositorySuite) TestInsertSetsTimestamps() {
	ctx := context.Background()
	driver := testDriver("DRV0000000A", "jane@x.com", "CDL123")

	s.Require().NoError(s.repo.Insert(ctx, driver))
	s.False(driver.CreatedAt.IsZero())
	s.False(driver.UpdatedAt.IsZero())

	found, err := s.repo.FindByID(ctx, driver.ID)
	s.Require().NoError(err)
	s.Equal(driver.Email, found.Email)
	s.Equal(domain.DriverStatusPending, found.Status)
	s.WithinDuration(driver.CreatedAt, found.CreatedAt, 0)

	byLicense, err := s.repo.FindByLicense(ctx, "CDL123")
	s.Require().NoError(err)
	s.Equal(driver.ID, byLicense.ID)
}

func (s *PostgresDriverRepositorySuite) TestFindMissing() {
	_, err := s.repo.FindByID(context.Background(), "DRVNOTREAL")
	s.ErrorIs(err, repository.ErrNotFound)

	_, err = s.repo.FindByEmail(context.Background(), "nobody@x.com")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresDriverRepositorySuite) TestConstraintViolationsAreNamed() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Insert(ctx, testDriver("DRV0000000A", "jane@x.com", "CDL123")))

	tests := []struct {
		name   string
		driver *domain.Driver
		want   repository.Constraint
	}{
		{name: "primary key", driver: testDriver("DRV0000000A", "a@x.com", "A1"), want: repository.ConstraintDriverID},
		{name: "email", driver: testDriver("DRV0000000B", "jane@x.com", "B1"), want: repository.ConstraintEmail},
		{name: "license", driver: testDriver("DRV0000000C", "c@x.com", "CDL123"), want: repository.ConstraintLicense},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.repo.Insert(ctx, tt.driver)
			var violation *repository.ConstraintViolation
			s.Require().True(errors.As(err, &violation), "got %v", err)
			s.Equal(tt.want, violation.Constraint)
		})
	}
}

func (s *PostgresDriverRepositorySuite) TestRunAtomicRollsBack() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.repo.RunAtomic(ctx, func(ctx context.Context, q repository.DriverQueries) error {
		s.Require().NoError(q.Insert(ctx, testDriver("DRV0000000A", "jane@x.com", "CDL123")))
		return boom
	})
	s.ErrorIs(err, boom)

	exists, err := s.repo.ExistsByEmail(ctx, "jane@x.com")
	s.Require().NoError(err)
	s.False(exists)
}

var errEmailTaken = errors.New("email taken")

func (s *PostgresDriverRepositorySuite) TestConcurrentCheckThenInsert() {
	for _, isolation := range []string{config.TxIsolationReadCommitted, config.TxIsolationSerializable} {
		s.Run(isolation, func() {
			ctx := context.Background()
			s.Require().NoError(s.postgres.TruncateTables(ctx, "drivers"))
			repo := repository.NewDriverRepository(s.postgres.Pool, isolation)

			var inserted, rejected atomic.Int32
			var g errgroup.Group
			for i := 0; i < 8; i++ {
				i := i
				g.Go(func() error {
					err := repo.RunAtomic(ctx, func(ctx context.Context, q repository.DriverQueries) error {
						exists, err := q.ExistsByEmail(ctx, "race@x.com")
						if err != nil {
							return err
						}
						if exists {
							return errEmailTaken
						}
						return q.Insert(ctx, testDriver(fmt.Sprintf("DRV%08X", i), "race@x.com", fmt.Sprintf("LIC%d", i)))
					})
					var violation *repository.ConstraintViolation
					switch {
					case err == nil:
						inserted.Add(1)
					case errors.Is(err, errEmailTaken), errors.As(err, &violation):
						rejected.Add(1)
					default:
						return err
					}
					return nil
				})
			}
			s.Require().NoError(g.Wait())
			s.Equal(int32(1), inserted.Load())
			s.Equal(int32(7), rejected.Load())
		})
	}
}
