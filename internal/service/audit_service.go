package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/swiftlogistics/driver-service/internal/events"
	"github.com/swiftlogistics/driver-service/internal/observability"
)

// OutcomeRegistered labels successful registrations in metrics.
const OutcomeRegistered = "registered"

// AuditService records driver lifecycle events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventDriverRegistered, a.handleDriverRegistered)
}

func (a *AuditService) handleDriverRegistered(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("driver_id", event.DriverID),
		zap.Time("timestamp", event.Timestamp),
	}
	if payload, ok := event.Payload.(events.DriverRegisteredPayload); ok {
		fields = append(fields, zap.String("status", string(payload.Status)))
	}
	a.logger.Info("DriverRegistered", fields...)
	a.metrics.RecordRegistration(OutcomeRegistered)
	return nil
}
