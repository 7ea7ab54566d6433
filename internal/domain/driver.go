package domain

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DriverStatus is the approval state of a registered driver. The registration
// core only ever assigns DriverStatusPending; the rest are set by the approval
// process and are carried as opaque tags.
type DriverStatus string

const (
	DriverStatusPending   DriverStatus = "PENDING"
	DriverStatusApproved  DriverStatus = "APPROVED"
	DriverStatusSuspended DriverStatus = "SUSPENDED"
	DriverStatusInactive  DriverStatus = "INACTIVE"
)

// DriverIDPrefix starts every driver identifier.
const DriverIDPrefix = "DRV"

// Driver is the persisted identity of a commercial driver.
type Driver struct {
	ID                      string
	FirstName               string
	LastName                string
	Email                   string
	Phone                   string
	CommercialLicenseNumber string
	PasswordHash            string
	Status                  DriverStatus
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// NewDriverID returns DRV followed by the first 8 hex characters of a random
// UUID, uppercased. Uniqueness is enforced by the store's primary key.
func NewDriverID() string {
	u := uuid.New()
	return DriverIDPrefix + strings.ToUpper(hex.EncodeToString(u[:4]))
}

// NormalizeEmail trims and lowercases an email for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeLicense trims and uppercases a commercial license number.
func NormalizeLicense(license string) string {
	return strings.ToUpper(strings.TrimSpace(license))
}
