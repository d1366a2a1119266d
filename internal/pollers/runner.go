// Package pollers implements the Source Pollers (C2): independently
// scheduled loops that wake, fetch from an upstream provider, filter
// already-seen items, hand new ones to enrichment, and persist their
// cursor. Social, news, technical, and price-update pollers each wrap
// the shared runner with their own fetch/handle step.
package pollers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/apperr"
)

const maxBackoffMultiplier = 10

// Status is a point-in-time snapshot of a poller's run state, exposed via
// the Controller for C10's GET /system/status.
type Status struct {
	Name              string
	Running           bool
	LastPollAt        time.Time
	LastError         string
	BackoffMultiplier int
}

// cycleFunc performs one wake-fetch-handle cycle. Returning an error whose
// apperr.Kind is KindRateLimited doubles the next wait (capped at 10x the
// base interval); any other error is recorded but does not back off;
// success resets the multiplier to 1.
type cycleFunc func(ctx context.Context) error

// runner is the shared per-poller scheduling loop: wake on interval
// (stretched by rate-limit backoff), run one cycle, repeat. The same
// ticker+stop-chan+WaitGroup lifecycle as internal/alerts.Engine and
// internal/threat.Detector, generalized to a dynamic, backoff-adjusted
// interval instead of a fixed one.
type runner struct {
	name     string
	interval time.Duration
	cycle    cycleFunc
	log      zerolog.Logger

	mu                sync.Mutex
	running           bool
	stop              chan struct{}
	wg                sync.WaitGroup
	lastPollAt        time.Time
	lastErr           error
	backoffMultiplier int
}

func newRunner(name string, interval time.Duration, cycle cycleFunc, log zerolog.Logger) *runner {
	return &runner{
		name:              name,
		interval:          interval,
		cycle:             cycle,
		log:               log.With().Str("poller", name).Logger(),
		backoffMultiplier: 1,
	}
}

// Start begins the polling loop. Safe to call once; a second call while
// already running is a no-op.
func (r *runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.stop = make(chan struct{})
	r.mu.Unlock()

	r.wg.Add(1)
	go r.loop(ctx)
}

// Stop ends the polling loop and waits for the in-flight cycle to finish.
func (r *runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	stop := r.stop
	r.mu.Unlock()

	close(stop)
	r.wg.Wait()
}

func (r *runner) loop(ctx context.Context) {
	defer r.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-timer.C:
			r.runCycle(ctx)
			timer.Reset(r.nextDelay())
		}
	}
}

func (r *runner) runCycle(ctx context.Context) {
	err := r.cycle(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastPollAt = time.Now()
	r.lastErr = err

	if err == nil {
		r.backoffMultiplier = 1
		return
	}

	if apperr.Is(err, apperr.KindRateLimited) {
		r.backoffMultiplier *= 2
		if r.backoffMultiplier > maxBackoffMultiplier {
			r.backoffMultiplier = maxBackoffMultiplier
		}
		r.log.Warn().Err(err).Int("backoff_multiplier", r.backoffMultiplier).Msg("rate limited, backing off")
		return
	}

	r.log.Warn().Err(err).Msg("poll cycle failed")
}

func (r *runner) nextDelay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval * time.Duration(r.backoffMultiplier)
}

// Status reports the current run state.
func (r *runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	errText := ""
	if r.lastErr != nil {
		errText = r.lastErr.Error()
	}
	return Status{
		Name:              r.name,
		Running:           r.running,
		LastPollAt:        r.lastPollAt,
		LastError:         errText,
		BackoffMultiplier: r.backoffMultiplier,
	}
}
