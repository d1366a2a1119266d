package events

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDispatchesToSubscribersOfMatchingType(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var mu sync.Mutex
	var gotCreated, gotRead int
	bus.Subscribe(NotificationCreated, func(EventData) {
		mu.Lock()
		defer mu.Unlock()
		gotCreated++
	})
	bus.Subscribe(NotificationRead, func(EventData) {
		mu.Lock()
		defer mu.Unlock()
		gotRead++
	})

	bus.Publish(NotificationCreatedData{ID: "n1", DedupKey: "k1"})
	bus.Publish(NewNotificationRead("n1"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, gotCreated)
	require.Equal(t, 1, gotRead)
}

func TestBus_PublishWithNoSubscribersIsNoop(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	require.NotPanics(t, func() {
		bus.Publish(NewNotificationDeleted("n1"))
	})
}

func TestBus_PanickingHandlerDoesNotStopOtherSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var mu sync.Mutex
	called := false
	bus.Subscribe(SourceStatusChanged, func(EventData) {
		panic("boom")
	})
	bus.Subscribe(SourceStatusChanged, func(EventData) {
		mu.Lock()
		defer mu.Unlock()
		called = true
	})

	require.NotPanics(t, func() {
		bus.Publish(SourceStatusChangedData{Source: "social", Status: "running"})
	})

	mu.Lock()
	defer mu.Unlock()
	require.True(t, called)
}

func TestNewNotificationResponded_SetsReadAndAction(t *testing.T) {
	e := NewNotificationResponded("n1", "dismiss")
	require.Equal(t, NotificationResponded, e.EventType())
	require.True(t, e.Read)
	require.True(t, e.Responded)
	require.Equal(t, "dismiss", *e.ResponseAction)
}
