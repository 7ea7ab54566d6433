package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftlogistics/driver-service/internal/api/dto"
	"github.com/swiftlogistics/driver-service/internal/domain"
	"github.com/swiftlogistics/driver-service/internal/service"
	apperrors "github.com/swiftlogistics/driver-service/pkg/util/errorutil"
)

const (
	submittedMessage  = "Driver registration submitted successfully"
	registeredMessage = submittedMessage + ". Please wait for approval."
	foundMessage      = "Driver found"
	serviceRunning    = "User service is running"
)

// DriversHandler exposes driver registration and lookup endpoints.
type DriversHandler struct {
	drivers *service.RegistrationService
}

// NewDriversHandler constructs handler.
func NewDriversHandler(drivers *service.RegistrationService) *DriversHandler {
	return &DriversHandler{drivers: drivers}
}

// Register handles POST /api/drivers/register.
func (h *DriversHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	driver, err := h.drivers.Register(c.UserContext(), service.RegistrationInput{
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		Email:                   req.Email,
		Phone:                   req.Phone,
		CommercialLicenseNumber: req.CommercialLicenseNumber,
		Password:                req.Password,
	})
	if err != nil {
		return err
	}

	resp := dto.NewDriverResponse(driver)
	resp.Message = registeredMessage
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    resp,
		"message": submittedMessage,
	})
}

// Get handles GET /api/drivers/:driverId.
func (h *DriversHandler) Get(c *fiber.Ctx) error {
	driver, err := h.drivers.GetByID(c.UserContext(), c.Params("driverId"))
	if err != nil {
		return err
	}
	return found(c, driver)
}

// Lookup handles GET /api/drivers?email= or ?license=.
func (h *DriversHandler) Lookup(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	license := strings.TrimSpace(c.Query("license"))

	var (
		driver *domain.Driver
		err    error
	)
	switch {
	case email != "" && license != "":
		return apperrors.NewValidationError("specify either email or license", nil)
	case email != "":
		driver, err = h.drivers.GetByEmail(c.UserContext(), email)
	case license != "":
		driver, err = h.drivers.GetByLicense(c.UserContext(), license)
	default:
		return apperrors.NewValidationError("email or license query parameter required",
			map[string]any{"email": "must not be blank", "license": "must not be blank"})
	}
	if err != nil {
		return err
	}
	return found(c, driver)
}

// ServiceHealth handles GET /api/drivers/health.
func (h *DriversHandler) ServiceHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": serviceRunning})
}

func found(c *fiber.Ctx, driver *domain.Driver) error {
	return c.JSON(fiber.Map{
		"data":    dto.NewDriverResponse(driver),
		"message": foundMessage,
	})
}
