package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventDatasetLoaded, func(event *Event) error {
		received = append(received, event)
		return nil
	})

	bus.Publish(&Event{Type: EventDatasetLoaded, Payload: []byte("x")})

	require.Len(t, received, 1)
	assert.Equal(t, EventDatasetLoaded, received[0].Type)
	assert.False(t, received[0].CreatedAt.IsZero())
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventDatasetReplaced, func(event *Event) error {
			calls++
			return nil
		})
	}

	bus.Publish(&Event{Type: EventDatasetReplaced})
	assert.Equal(t, 3, calls)
}

func TestEventBusUnrelatedType(t *testing.T) {
	bus := NewEventBus()

	called := false
	bus.Subscribe(EventDatasetLoaded, func(event *Event) error {
		called = true
		return nil
	})

	bus.Publish(&Event{Type: EventExportCreated})
	assert.False(t, called)
}

func TestEventBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	var order []string
	bus.Subscribe(EventDatasetLoaded, func(event *Event) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	bus.Subscribe(EventDatasetLoaded, func(event *Event) error {
		order = append(order, "second")
		return nil
	})

	bus.Publish(&Event{Type: EventDatasetLoaded})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var payload DatasetEventPayload
	bus.Subscribe(EventDatasetLoaded, func(event *Event) error {
		return json.Unmarshal(event.Payload, &payload)
	})

	err := bus.PublishJSON(EventDatasetLoaded, DatasetEventPayload{
		SessionID: "sess-1",
		Rows:      100,
		Columns:   21,
	})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", payload.SessionID)
	assert.Equal(t, 100, payload.Rows)
	assert.Equal(t, 21, payload.Columns)
}

func TestPublishJSONNilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventDatasetLoaded, nil))
}
