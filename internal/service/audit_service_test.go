package service

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/swiftlogistics/driver-service/internal/auth"
	"github.com/swiftlogistics/driver-service/internal/config"
	"github.com/swiftlogistics/driver-service/internal/domain"
	"github.com/swiftlogistics/driver-service/internal/events"
	"github.com/swiftlogistics/driver-service/internal/observability"
	"github.com/swiftlogistics/driver-service/internal/repository"
)

func TestAuditServiceRecordsRegistrations(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	NewAuditService(dispatcher, zap.New(core), metrics).RegisterHandlers()

	event := events.NewEvent(events.EventDriverRegistered, "DRV0000000A", events.DriverRegisteredPayload{
		DriverID: "DRV0000000A",
		Status:   domain.DriverStatusPending,
	})
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	entries := logs.FilterMessage("DriverRegistered").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "DRV0000000A", fields["driver_id"])
	assert.Equal(t, "PENDING", fields["status"])

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `driver_registrations_total{outcome="registered"} 1`)
}

func TestRegistrationNeverLogsCredentials(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewRegistrationService(config.RegistrationConfig{}, RegistrationDependencies{
		Repo:       repository.NewMemoryDriverRepository(),
		Hasher:     auth.NewBcryptHasher(bcrypt.MinCost),
		Dispatcher: dispatcher,
		Logger:     zap.New(core),
	})
	NewAuditService(dispatcher, zap.New(core), nil).RegisterHandlers()

	driver, err := svc.Register(context.Background(), janeInput())
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), janeInput())
	require.Error(t, err)

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		for key, value := range entry.ContextMap() {
			text, _ := value.(string)
			assert.NotContains(t, text, "secret", "field %s of %q", key, entry.Message)
			assert.NotEqual(t, driver.PasswordHash, text, "field %s of %q", key, entry.Message)
		}
	}
}
