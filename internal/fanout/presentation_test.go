package fanout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// fakeClock is a manually-advanced clock for deterministic presentation
// queue tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func notificationAt(priority domain.Priority) domain.Notification {
	return domain.Notification{Priority: priority}
}

func TestPresentationQueue_PriorityOrderingWithCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	q := NewPresentationQueue(5*time.Second, clock.now)

	// t=0: medium arrives, nothing playing, presents immediately.
	evt := q.Send(notificationAt(domain.PriorityMedium))
	require.Equal(t, EventPresent, evt.Kind)
	assert.Equal(t, domain.PriorityMedium, evt.Notification.Priority)

	// t=0.5s: low arrives while medium is speaking, queues behind it.
	clock.advance(500 * time.Millisecond)
	evt = q.Send(notificationAt(domain.PriorityLow))
	assert.Equal(t, EventNone, evt.Kind)

	// t=1s: critical arrives while medium is still speaking, queues too.
	clock.advance(500 * time.Millisecond)
	evt = q.Send(notificationAt(domain.PriorityCritical))
	assert.Equal(t, EventNone, evt.Kind)

	// medium's voice finishes at t=3s: critical preempts immediately
	// since it outranks medium, with no cooldown wait.
	clock.advance(2 * time.Second)
	evt = q.VoiceDone()
	require.Equal(t, EventPreempt, evt.Kind)
	assert.Equal(t, domain.PriorityCritical, evt.Notification.Priority)
	criticalStartedAt := clock.t

	// critical's voice finishes at t=4s: low is lower priority than
	// critical and must wait out its own 8s cooldown from this instant.
	clock.advance(1 * time.Second)
	evt = q.VoiceDone()
	assert.Equal(t, EventNone, evt.Kind, "low must not present before its cooldown elapses")

	// Ticking before the 8s cooldown elapses keeps low queued.
	clock.advance(5 * time.Second)
	evt = q.Tick()
	assert.Equal(t, EventNone, evt.Kind)

	// At exactly 8s after critical's voice-done, low is eligible.
	clock.t = criticalStartedAt.Add(1 * time.Second).Add(8 * time.Second)
	evt = q.Tick()
	require.Equal(t, EventPresent, evt.Kind)
	assert.Equal(t, domain.PriorityLow, evt.Notification.Priority)
}

func TestPresentationQueue_FIFOWithinSamePriority(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	q := NewPresentationQueue(5*time.Second, clock.now)

	first := domain.Notification{ID: "a", Priority: domain.PriorityMedium}
	second := domain.Notification{ID: "b", Priority: domain.PriorityMedium}

	evt := q.Send(first)
	require.Equal(t, EventPresent, evt.Kind)
	assert.Equal(t, "a", evt.Notification.ID)

	evt = q.Send(second)
	assert.Equal(t, EventNone, evt.Kind)

	clock.advance(time.Second)
	evt = q.VoiceDone()
	assert.Equal(t, EventNone, evt.Kind, "second medium must wait out the cooldown like any equal-priority item")

	clock.advance(domain.PriorityMedium.Cooldown())
	evt = q.Tick()
	require.Equal(t, EventPresent, evt.Kind)
	assert.Equal(t, "b", evt.Notification.ID)
}

func TestPresentationQueue_AutoDismissAfterToastDuration(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	q := NewPresentationQueue(5*time.Second, clock.now)

	q.Send(notificationAt(domain.PriorityInfo))
	clock.advance(time.Second)
	q.VoiceDone()
	assert.Equal(t, StateVisible, q.State())

	clock.advance(5 * time.Second)
	q.Tick()
	assert.Equal(t, StateCooldown, q.State())

	clock.advance(domain.PriorityInfo.Cooldown())
	q.Tick()
	assert.Equal(t, StateIdle, q.State())
}

func TestPresentationQueue_ToastDismissedEarlyStillHonorsCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	q := NewPresentationQueue(5*time.Second, clock.now)

	q.Send(notificationAt(domain.PriorityLow))
	q.VoiceDone()
	evt := q.ToastDismissed()
	assert.Equal(t, EventNone, evt.Kind)
	assert.Equal(t, StateCooldown, q.State())
}
