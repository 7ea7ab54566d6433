package dto

import (
	"time"

	"github.com/swiftlogistics/driver-service/internal/domain"
)

// RegisterDriverRequest payload for new driver registrations.
type RegisterDriverRequest struct {
	FirstName               string `json:"firstName"`
	LastName                string `json:"lastName"`
	Email                   string `json:"email"`
	Phone                   string `json:"phone"`
	CommercialLicenseNumber string `json:"commercialLicenseNumber"`
	Password                string `json:"password"`
}

// DriverResponse is the public view of a driver. It never carries the
// credential or its hash.
type DriverResponse struct {
	DriverID                string    `json:"driverId"`
	FirstName               string    `json:"firstName"`
	LastName                string    `json:"lastName"`
	Email                   string    `json:"email"`
	Phone                   string    `json:"phone"`
	CommercialLicenseNumber string    `json:"commercialLicenseNumber"`
	Status                  string    `json:"status"`
	CreatedAt               time.Time `json:"createdAt"`
	Message                 string    `json:"message,omitempty"`
}

// NewDriverResponse maps a domain driver to its response payload.
func NewDriverResponse(driver *domain.Driver) DriverResponse {
	return DriverResponse{
		DriverID:                driver.ID,
		FirstName:               driver.FirstName,
		LastName:                driver.LastName,
		Email:                   driver.Email,
		Phone:                   driver.Phone,
		CommercialLicenseNumber: driver.CommercialLicenseNumber,
		Status:                  string(driver.Status),
		CreatedAt:               driver.CreatedAt,
	}
}
