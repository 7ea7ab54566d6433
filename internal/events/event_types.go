package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftlogistics/driver-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDriverRegistered EventType = "driver_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	DriverID  string      `json:"driver_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, driverID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		DriverID:  driverID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// DriverRegisteredPayload payload.
type DriverRegisteredPayload struct {
	DriverID string              `json:"driverId"`
	Status   domain.DriverStatus `json:"status"`
}
