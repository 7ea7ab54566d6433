package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/swiftlogistics/driver-service/internal/auth"
	"github.com/swiftlogistics/driver-service/internal/config"
	"github.com/swiftlogistics/driver-service/internal/domain"
	"github.com/swiftlogistics/driver-service/internal/events"
	"github.com/swiftlogistics/driver-service/internal/observability"
	"github.com/swiftlogistics/driver-service/internal/repository"
	apperrors "github.com/swiftlogistics/driver-service/pkg/util/errorutil"
)

const defaultMaxAttempts = 3

// RegistrationService registers drivers and looks them up.
type RegistrationService struct {
	repo        repository.DriverRepository
	hasher      auth.PasswordHasher
	cache       repository.DriverCache
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	newID       func() string
	maxAttempts int
}

// RegistrationDependencies encapsulates collaborators for the registration service.
// Cache, Dispatcher, Metrics, Logger and IDGenerator are optional.
type RegistrationDependencies struct {
	Repo        repository.DriverRepository
	Hasher      auth.PasswordHasher
	Cache       repository.DriverCache
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	IDGenerator func() string
}

// NewRegistrationService builds the service.
func NewRegistrationService(cfg config.RegistrationConfig, deps RegistrationDependencies) *RegistrationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = domain.NewDriverID
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &RegistrationService{
		repo:        deps.Repo,
		hasher:      deps.Hasher,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		newID:       newID,
		maxAttempts: maxAttempts,
	}
}

// Register validates, normalizes and persists a new driver with status PENDING.
func (s *RegistrationService) Register(ctx context.Context, in RegistrationInput) (*domain.Driver, error) {
	input := in.normalize()
	if err := validateRegistration(input); err != nil {
		return nil, s.reject(err)
	}

	s.logger.Info("driver registration started", zap.String("email", input.Email))

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, s.reject(apperrors.NewInternalError(fmt.Errorf("hash password: %w", err)))
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		driver, err := s.registerOnce(ctx, input, hash)
		if err == nil {
			s.afterRegister(ctx, driver)
			return driver, nil
		}
		if !apperrors.HasCode(err, apperrors.CodeIdentifierCollision) {
			return nil, s.reject(err)
		}
		s.logger.Warn("driver id collision", zap.Int("attempt", attempt))
		lastErr = err
	}

	return nil, s.reject(apperrors.NewRegistrationFailed(s.maxAttempts, lastErr))
}

func (s *RegistrationService) registerOnce(ctx context.Context, input RegistrationInput, hash string) (*domain.Driver, error) {
	var candidate *domain.Driver
	err := s.repo.RunAtomic(ctx, func(ctx context.Context, q repository.DriverQueries) error {
		exists, err := q.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewDuplicateEmail(input.Email)
		}

		exists, err = q.ExistsByLicense(ctx, input.CommercialLicenseNumber)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewDuplicateLicense(input.CommercialLicenseNumber)
		}

		candidate = &domain.Driver{
			ID:                      s.newID(),
			FirstName:               input.FirstName,
			LastName:                input.LastName,
			Email:                   input.Email,
			Phone:                   input.Phone,
			CommercialLicenseNumber: input.CommercialLicenseNumber,
			PasswordHash:            hash,
			Status:                  domain.DriverStatusPending,
		}
		return q.Insert(ctx, candidate)
	})
	if err != nil {
		return nil, translateRegisterError(err, input, candidate)
	}
	return candidate, nil
}

// translateRegisterError maps store facts onto domain errors. Errors already
// raised by the unit of work pass through untouched.
func translateRegisterError(err error, input RegistrationInput, candidate *domain.Driver) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var violation *repository.ConstraintViolation
	if errors.As(err, &violation) {
		switch violation.Constraint {
		case repository.ConstraintEmail:
			return apperrors.NewDuplicateEmail(input.Email)
		case repository.ConstraintLicense:
			return apperrors.NewDuplicateLicense(input.CommercialLicenseNumber)
		case repository.ConstraintDriverID:
			id := ""
			if candidate != nil {
				id = candidate.ID
			}
			return apperrors.NewIdentifierCollision(id)
		}
	}
	return apperrors.NewStoreUnavailable(err)
}

func (s *RegistrationService) afterRegister(ctx context.Context, driver *domain.Driver) {
	s.logger.Info("driver registered", zap.String("driver_id", driver.ID))

	s.cacheDriverID(ctx, driver)

	if s.dispatcher != nil {
		event := events.NewEvent(events.EventDriverRegistered, driver.ID, events.DriverRegisteredPayload{
			DriverID: driver.ID,
			Status:   driver.Status,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish driver_registered", zap.String("driver_id", driver.ID), zap.Error(err))
		}
	}
}

func (s *RegistrationService) reject(err error) error {
	domainErr := apperrors.ToDomainError(err)
	s.metrics.RecordRegistration(domainErr.Code)

	fields := []zap.Field{zap.String("code", domainErr.Code)}
	if domainErr.HTTPStatus >= 500 {
		s.logger.Error("driver registration failed", append(fields, zap.Error(domainErr.Unwrap()))...)
	} else {
		s.logger.Info("driver registration rejected", fields...)
	}
	return domainErr
}

// GetByEmail finds a driver by email, case-insensitively. A cached email to
// id mapping turns the lookup into a primary-key read; the record always
// comes from the store.
func (s *RegistrationService) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	email = domain.NormalizeEmail(email)
	details := map[string]any{"email": email}

	if driverID, ok := s.cachedDriverID(ctx, email); ok {
		driver, err := s.repo.FindByID(ctx, driverID)
		if err == nil {
			return driver, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, translateLookupError(err, details)
		}
	}

	driver, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, translateLookupError(err, details)
	}
	s.cacheDriverID(ctx, driver)
	return driver, nil
}

// GetByID finds a driver by its exact identifier.
func (s *RegistrationService) GetByID(ctx context.Context, driverID string) (*domain.Driver, error) {
	driver, err := s.repo.FindByID(ctx, driverID)
	if err != nil {
		return nil, translateLookupError(err, map[string]any{"driverId": driverID})
	}
	return driver, nil
}

// GetByLicense finds a driver by commercial license number, case-insensitively.
func (s *RegistrationService) GetByLicense(ctx context.Context, license string) (*domain.Driver, error) {
	license = domain.NormalizeLicense(license)

	driver, err := s.repo.FindByLicense(ctx, license)
	if err != nil {
		return nil, translateLookupError(err, map[string]any{"commercialLicenseNumber": license})
	}
	return driver, nil
}

func (s *RegistrationService) cachedDriverID(ctx context.Context, email string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	driverID, err := s.cache.GetDriverID(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("read driver cache", zap.Error(err))
		}
		return "", false
	}
	return driverID, true
}

func (s *RegistrationService) cacheDriverID(ctx context.Context, driver *domain.Driver) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetDriverID(ctx, driver.Email, driver.ID); err != nil {
		s.logger.Warn("cache driver id", zap.String("driver_id", driver.ID), zap.Error(err))
	}
}

func translateLookupError(err error, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("driver", details)
	}
	return apperrors.NewStoreUnavailable(err)
}
