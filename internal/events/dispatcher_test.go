package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var created, reopened int
	d.Subscribe(EventComplaintCreated, func(context.Context, Event) error {
		created++
		return nil
	})
	d.Subscribe(EventComplaintReopened, func(context.Context, Event) error {
		reopened++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventComplaintCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventComplaintCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventComplaintRated}))

	assert.Equal(t, 2, created)
	assert.Equal(t, 0, reopened)
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	var second bool
	d.Subscribe(EventComplaintAssigned, func(context.Context, Event) error {
		return errors.New("handler failure")
	})
	d.Subscribe(EventComplaintAssigned, func(context.Context, Event) error {
		second = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventComplaintAssigned})
	assert.NoError(t, err, "handler errors never reach the publisher")
	assert.True(t, second, "later handlers still run")
}
