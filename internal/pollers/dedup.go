package pollers

import "sync"

const defaultDedupWindow = 500

// dedupTracker is a bounded, order-preserving set of recently seen
// external IDs. It backs each poller's "skip items we've already
// enriched" check; the window caps memory and matches the persisted
// seen_ids[] snapshot field's bounded-history intent.
type dedupTracker struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	max   int
}

func newDedupTracker(seed []string, max int) *dedupTracker {
	if max <= 0 {
		max = defaultDedupWindow
	}
	d := &dedupTracker{
		seen: make(map[string]struct{}, len(seed)),
		max:  max,
	}
	for _, id := range seed {
		d.record(id)
	}
	return d
}

// seenBefore reports whether id has already been recorded.
func (d *dedupTracker) seenBefore(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[id]
	return ok
}

// record marks id as seen, evicting the oldest entry once the window is
// exceeded.
func (d *dedupTracker) record(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[id]; ok {
		return
	}
	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	for len(d.order) > d.max {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
}

// ids returns the current window in insertion order, for persisting to a
// snapshot.
func (d *dedupTracker) ids() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// last returns the most recently recorded ID, or "" if none.
func (d *dedupTracker) last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.order) == 0 {
		return ""
	}
	return d.order[len(d.order)-1]
}
