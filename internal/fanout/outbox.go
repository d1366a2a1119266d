package fanout

import (
	"errors"
	"sync"
)

// errSessionLagging is returned by outbox.push when a critical frame
// cannot be buffered even after evicting every non-critical frame ahead
// of it: the session is too far behind and must be closed.
var errSessionLagging = errors.New("fanout: session outbound buffer full for critical frame")

type queuedFrame struct {
	data     []byte
	critical bool
}

// outbox is a bounded per-session outbound buffer. When full, the newest
// frame evicts the oldest non-critical frame first; a critical frame that
// still can't fit (because the buffer is saturated with other criticals)
// signals the caller to close the session as lagging rather than silently
// drop a critical message.
type outbox struct {
	mu     sync.Mutex
	items  []queuedFrame
	max    int
	notify chan struct{}
}

func newOutbox(max int) *outbox {
	return &outbox{max: max, notify: make(chan struct{}, 1)}
}

func (o *outbox) push(data []byte, critical bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.items) >= o.max {
		evicted := false
		for i, it := range o.items {
			if !it.critical {
				o.items = append(o.items[:i], o.items[i+1:]...)
				evicted = true
				break
			}
		}
		if !evicted {
			if !critical {
				return nil // drop the new non-critical frame silently
			}
			return errSessionLagging
		}
	}

	o.items = append(o.items, queuedFrame{data: data, critical: critical})
	select {
	case o.notify <- struct{}{}:
	default:
	}
	return nil
}

func (o *outbox) pop() (queuedFrame, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.items) == 0 {
		return queuedFrame{}, false
	}
	f := o.items[0]
	o.items = o.items[1:]
	return f, true
}
