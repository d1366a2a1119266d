package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// Handler receives events of a single EventType, dispatched in publish order.
type Handler func(EventData)

// Bus is a mutex-guarded in-process publish/subscribe broker. Handlers run
// synchronously on the publisher's goroutine; slow handlers should hand off
// to their own goroutine internally rather than block Publish.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	log      zerolog.Logger
}

// NewBus creates an empty Bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers fn to run for every event of type t.
func (b *Bus) Subscribe(t EventType, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Publish dispatches e to every handler subscribed to e.EventType().
// A panicking handler is recovered and logged so one bad subscriber cannot
// take down the publisher.
func (b *Bus) Publish(e EventData) {
	b.mu.RLock()
	hs := b.handlers[e.EventType()]
	b.mu.RUnlock()

	for _, h := range hs {
		b.safeCall(h, e)
	}
}

func (b *Bus) safeCall(h Handler, e EventData) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("event_type", string(e.EventType())).Msg("event handler panicked")
		}
	}()
	h(e)
}
