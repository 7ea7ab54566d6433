package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	var calls []string
	d.Subscribe(EventDriverRegistered, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.DriverID)
		return boom
	})
	d.Subscribe(EventDriverRegistered, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.DriverID)
		return nil
	})
	d.Subscribe(EventType("other"), func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventDriverRegistered, "DRV0000000A", nil))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:DRV0000000A", "second:DRV0000000A"}, calls)
}

func TestNewEventStampsIdentity(t *testing.T) {
	a := NewEvent(EventDriverRegistered, "DRV0000000A", DriverRegisteredPayload{DriverID: "DRV0000000A"})
	b := NewEvent(EventDriverRegistered, "DRV0000000A", nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}
