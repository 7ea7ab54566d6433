package repository

import (
	"context"
	"sync"
	"time"

	"github.com/swiftlogistics/driver-service/internal/domain"
)

// MemoryDriverRepository keeps drivers in process memory. It enforces the
// same unique constraints as the drivers table and serializes units of work.
type MemoryDriverRepository struct {
	mu    sync.Mutex
	state memoryState
	now   func() time.Time
}

type memoryState struct {
	byID      map[string]domain.Driver
	byEmail   map[string]string
	byLicense map[string]string
}

// NewMemoryDriverRepository returns an empty in-memory repository.
func NewMemoryDriverRepository() *MemoryDriverRepository {
	return &MemoryDriverRepository{
		state: memoryState{
			byID:      make(map[string]domain.Driver),
			byEmail:   make(map[string]string),
			byLicense: make(map[string]string),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryDriverRepository) RunAtomic(ctx context.Context, fn func(ctx context.Context, q DriverQueries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memoryTx{repo: r}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, driver := range tx.staged {
		r.state.put(driver)
	}
	return nil
}

func (r *MemoryDriverRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryDriverRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.state.byEmail[email]
	return ok, nil
}

func (r *MemoryDriverRepository) ExistsByLicense(_ context.Context, license string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.state.byLicense[license]
	return ok, nil
}

func (r *MemoryDriverRepository) Insert(ctx context.Context, driver *domain.Driver) error {
	return r.RunAtomic(ctx, func(ctx context.Context, q DriverQueries) error {
		return q.Insert(ctx, driver)
	})
}

func (r *MemoryDriverRepository) FindByEmail(_ context.Context, email string) (*domain.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.lookup(r.state.byEmail, email)
}

func (r *MemoryDriverRepository) FindByID(_ context.Context, id string) (*domain.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.find(id)
}

func (r *MemoryDriverRepository) FindByLicense(_ context.Context, license string) (*domain.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.lookup(r.state.byLicense, license)
}

// Count returns the number of committed drivers.
func (r *MemoryDriverRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.byID)
}

func (s *memoryState) put(driver domain.Driver) {
	s.byID[driver.ID] = driver
	s.byEmail[driver.Email] = driver.ID
	s.byLicense[driver.CommercialLicenseNumber] = driver.ID
}

func (s *memoryState) find(id string) (*domain.Driver, error) {
	driver, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &driver, nil
}

func (s *memoryState) lookup(index map[string]string, key string) (*domain.Driver, error) {
	id, ok := index[key]
	if !ok {
		return nil, ErrNotFound
	}
	return s.find(id)
}

// memoryTx sees committed state plus its own staged inserts. The repository
// mutex is held by RunAtomic for the lifetime of the transaction.
type memoryTx struct {
	repo   *MemoryDriverRepository
	staged []domain.Driver
}

func (t *memoryTx) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if _, ok := t.repo.state.byEmail[email]; ok {
		return true, nil
	}
	for _, d := range t.staged {
		if d.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) ExistsByLicense(_ context.Context, license string) (bool, error) {
	if _, ok := t.repo.state.byLicense[license]; ok {
		return true, nil
	}
	for _, d := range t.staged {
		if d.CommercialLicenseNumber == license {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) Insert(ctx context.Context, driver *domain.Driver) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.FindByID(ctx, driver.ID); err == nil {
		return &ConstraintViolation{Constraint: ConstraintDriverID}
	}
	if exists, _ := t.ExistsByEmail(ctx, driver.Email); exists {
		return &ConstraintViolation{Constraint: ConstraintEmail}
	}
	if exists, _ := t.ExistsByLicense(ctx, driver.CommercialLicenseNumber); exists {
		return &ConstraintViolation{Constraint: ConstraintLicense}
	}

	now := t.repo.now()
	driver.CreatedAt = now
	driver.UpdatedAt = now
	t.staged = append(t.staged, *driver)
	return nil
}

func (t *memoryTx) FindByEmail(_ context.Context, email string) (*domain.Driver, error) {
	return t.findStaged(func(d domain.Driver) bool { return d.Email == email },
		func() (*domain.Driver, error) { return t.repo.state.lookup(t.repo.state.byEmail, email) })
}

func (t *memoryTx) FindByID(_ context.Context, id string) (*domain.Driver, error) {
	return t.findStaged(func(d domain.Driver) bool { return d.ID == id },
		func() (*domain.Driver, error) { return t.repo.state.find(id) })
}

func (t *memoryTx) FindByLicense(_ context.Context, license string) (*domain.Driver, error) {
	return t.findStaged(func(d domain.Driver) bool { return d.CommercialLicenseNumber == license },
		func() (*domain.Driver, error) { return t.repo.state.lookup(t.repo.state.byLicense, license) })
}

func (t *memoryTx) findStaged(match func(domain.Driver) bool, committed func() (*domain.Driver, error)) (*domain.Driver, error) {
	for _, d := range t.staged {
		if match(d) {
			found := d
			return &found, nil
		}
	}
	return committed()
}
