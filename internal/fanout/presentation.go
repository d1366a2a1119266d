package fanout

import (
	"sync"
	"time"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// PresentationState is one stage of the per-session presentation state
// machine: Idle -> Speaking -> Visible -> Cooldown -> Idle. Dequeuing the
// next notification is the transition from Idle into Speaking.
type PresentationState int

const (
	StateIdle PresentationState = iota
	StateSpeaking
	StateVisible
	StateCooldown
)

func (s PresentationState) String() string {
	switch s {
	case StateSpeaking:
		return "speaking"
	case StateVisible:
		return "visible"
	case StateCooldown:
		return "cooldown"
	default:
		return "idle"
	}
}

// EventKind is the action a PresentationQueue asks its session actor to
// take in response to a command.
type EventKind int

const (
	EventNone EventKind = iota
	EventPresent
	EventPreempt // dismiss whatever is visible, then present Notification
)

// Event is the outcome of feeding a command into a PresentationQueue.
type Event struct {
	Kind         EventKind
	Notification domain.Notification
}

type queuedItem struct {
	notification domain.Notification
	seq          int
}

// PresentationQueue is the client presentation queue (C8): a per-session
// priority queue with voice-synchronous dequeuing. It runs inside the
// session actor, not on an external client — the actor feeds it Send,
// VoiceDone, ToastDismissed, and Tick events and forwards the returned
// Event to the wire.
//
// Dequeue order is priority first (critical > high > medium > low > info),
// FIFO within a priority tier. A notification whose priority is strictly
// higher than the one most recently presented preempts immediately once
// the current voice utterance finishes; an equal-or-lower priority
// notification must instead wait out its own Priority.Cooldown(), measured
// from the last presentation's voice-done time — so a lower-priority item
// queued behind a preempting critical message still waits its full
// cooldown from the critical message's completion, not from its own
// arrival time.
type PresentationQueue struct {
	mu    sync.Mutex
	items []queuedItem
	seq   int

	state   PresentationState
	current *domain.Notification

	hasLast      bool
	lastPriority domain.Priority
	lastDoneAt   time.Time

	visibleUntil  time.Time
	cooldownUntil time.Time

	toastDuration time.Duration
	now           func() time.Time
}

// NewPresentationQueue builds an empty queue. now defaults to time.Now if nil.
func NewPresentationQueue(toastDuration time.Duration, now func() time.Time) *PresentationQueue {
	if now == nil {
		now = time.Now
	}
	return &PresentationQueue{
		toastDuration: toastDuration,
		now:           now,
		state:         StateIdle,
	}
}

// Send enqueues a notification for presentation and, if the session is
// free to present immediately, returns the Event to act on.
func (q *PresentationQueue) Send(n domain.Notification) Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.insert(n)
	return q.tryAdvance()
}

// VoiceDone signals that the currently speaking utterance finished.
func (q *PresentationQueue) VoiceDone() Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateSpeaking || q.current == nil {
		return Event{Kind: EventNone}
	}

	now := q.now()
	q.hasLast = true
	q.lastPriority = q.current.Priority
	q.lastDoneAt = now
	q.state = StateVisible
	q.visibleUntil = now.Add(q.toastDuration)

	if evt := q.tryAdvance(); evt.Kind != EventNone {
		return evt
	}
	return Event{Kind: EventNone}
}

// ToastDismissed signals the user (or auto-dismiss timer) closed the
// currently visible toast before Tick observed the timeout.
func (q *PresentationQueue) ToastDismissed() Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state == StateVisible {
		q.enterCooldown()
	}
	return q.tryAdvance()
}

// Tick advances time-based transitions: toast auto-dismiss after
// toastDuration, and cooldown expiry. Call periodically from the session
// actor's loop.
func (q *PresentationQueue) Tick() Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	if q.state == StateVisible && !now.Before(q.visibleUntil) {
		q.enterCooldown()
	}
	if q.state == StateCooldown && !now.Before(q.cooldownUntil) {
		q.state = StateIdle
		q.current = nil
	}
	return q.tryAdvance()
}

// State returns the current presentation state, for diagnostics and tests.
func (q *PresentationQueue) State() PresentationState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Len returns the number of notifications waiting to be presented.
func (q *PresentationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *PresentationQueue) enterCooldown() {
	q.state = StateCooldown
	q.cooldownUntil = q.lastDoneAt.Add(q.lastPriority.Cooldown())
}

// insert keeps items ordered by descending priority, FIFO (ascending seq)
// within a priority tier.
func (q *PresentationQueue) insert(n domain.Notification) {
	q.seq++
	item := queuedItem{notification: n, seq: q.seq}

	i := 0
	for ; i < len(q.items); i++ {
		if q.items[i].notification.Priority < item.notification.Priority {
			break
		}
	}
	q.items = append(q.items, queuedItem{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = item
}

// tryAdvance dequeues the next eligible notification, if any, and starts
// speaking it. Eligibility: strictly higher priority than the last
// presented notification always proceeds (preemption); equal-or-lower
// priority must wait out its own cooldown since the last voice-done time.
func (q *PresentationQueue) tryAdvance() Event {
	if q.state == StateSpeaking || len(q.items) == 0 {
		return Event{Kind: EventNone}
	}

	next := q.items[0]
	if q.hasLast {
		higherPriority := next.notification.Priority > q.lastPriority
		cooldownElapsed := !q.now().Before(q.lastDoneAt.Add(next.notification.Priority.Cooldown()))
		if !higherPriority && !cooldownElapsed {
			return Event{Kind: EventNone}
		}
	}

	q.items = q.items[1:]
	wasVisible := q.state == StateVisible || q.state == StateCooldown
	n := next.notification
	q.current = &n
	q.state = StateSpeaking

	if wasVisible {
		return Event{Kind: EventPreempt, Notification: n}
	}
	return Event{Kind: EventPresent, Notification: n}
}
