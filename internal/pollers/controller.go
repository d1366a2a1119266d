package pollers

import (
	"context"
	"fmt"
	"sync"

	"github.com/sentineldesk/signalhub/internal/events"
)

// Controllable is anything the Controller can start, stop, and report
// status for — every concrete poller in this package satisfies it.
type Controllable interface {
	Start(ctx context.Context)
	Stop()
	Status() Status
}

// Controller is the named poller registry backing C10's
// POST /system/sources/{name}/{start|stop} and GET /system/status.
type Controller struct {
	mu        sync.RWMutex
	pollers   map[string]Controllable
	publisher *events.Bus
}

// NewController builds an empty registry.
func NewController() *Controller {
	return &Controller{pollers: make(map[string]Controllable)}
}

// SetPublisher wires an event bus that receives SourceStatusChanged events
// on Start/Stop. Optional; without it Start/Stop simply don't publish.
func (c *Controller) SetPublisher(pub *events.Bus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publisher = pub
}

func (c *Controller) publish(name, status string) {
	c.mu.RLock()
	pub := c.publisher
	c.mu.RUnlock()
	if pub != nil {
		pub.Publish(events.SourceStatusChangedData{Source: name, Status: status})
	}
}

// Register adds a named poller. Call once at start-up for each poller
// the process owns.
func (c *Controller) Register(name string, p Controllable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollers[name] = p
}

// StartAll starts every registered poller.
func (c *Controller) StartAll(ctx context.Context) {
	c.mu.RLock()
	pollers := make(map[string]Controllable, len(c.pollers))
	for name, p := range c.pollers {
		pollers[name] = p
	}
	c.mu.RUnlock()
	for name, p := range pollers {
		p.Start(ctx)
		c.publish(name, "running")
	}
}

// StopAll stops every registered poller.
func (c *Controller) StopAll() {
	c.mu.RLock()
	pollers := make(map[string]Controllable, len(c.pollers))
	for name, p := range c.pollers {
		pollers[name] = p
	}
	c.mu.RUnlock()
	for name, p := range pollers {
		p.Stop()
		c.publish(name, "stopped")
	}
}

// Start starts the named poller.
func (c *Controller) Start(ctx context.Context, name string) error {
	p, err := c.get(name)
	if err != nil {
		return err
	}
	p.Start(ctx)
	c.publish(name, "running")
	return nil
}

// Stop stops the named poller.
func (c *Controller) Stop(name string) error {
	p, err := c.get(name)
	if err != nil {
		return err
	}
	p.Stop()
	c.publish(name, "stopped")
	return nil
}

// StatusAll reports every registered poller's status, keyed by name.
func (c *Controller) StatusAll() map[string]Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Status, len(c.pollers))
	for name, p := range c.pollers {
		out[name] = p.Status()
	}
	return out
}

func (c *Controller) get(name string) (Controllable, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pollers[name]
	if !ok {
		return nil, fmt.Errorf("unknown poller %q", name)
	}
	return p, nil
}
