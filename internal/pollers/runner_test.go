package pollers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/apperr"
)

func TestRunner_RunsCycleAndReportsStatus(t *testing.T) {
	var calls int32
	r := newRunner("test", 10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, time.Second, time.Millisecond)

	status := r.Status()
	assert.True(t, status.Running)
	assert.Equal(t, 1, status.BackoffMultiplier)
}

func TestRunner_RateLimitedErrorDoublesBackoffCappedAt10x(t *testing.T) {
	rateLimitErr := apperr.New(apperr.KindRateLimited, "too many requests")
	r := newRunner("test", time.Millisecond, func(ctx context.Context) error {
		return rateLimitErr
	}, zerolog.Nop())

	for i := 0; i < 6; i++ {
		r.runCycle(context.Background())
	}

	status := r.Status()
	assert.Equal(t, maxBackoffMultiplier, status.BackoffMultiplier)
	assert.NotEmpty(t, status.LastError)
}

func TestRunner_SuccessResetsBackoffMultiplier(t *testing.T) {
	fail := true
	r := newRunner("test", time.Millisecond, func(ctx context.Context) error {
		if fail {
			return apperr.New(apperr.KindRateLimited, "busy")
		}
		return nil
	}, zerolog.Nop())

	r.runCycle(context.Background())
	r.runCycle(context.Background())
	assert.Greater(t, r.Status().BackoffMultiplier, 1)

	fail = false
	r.runCycle(context.Background())
	assert.Equal(t, 1, r.Status().BackoffMultiplier)
}

func TestRunner_StopIsIdempotentAndWaitsForCycle(t *testing.T) {
	r := newRunner("test", time.Millisecond, func(ctx context.Context) error { return nil }, zerolog.Nop())
	r.Start(context.Background())
	r.Stop()
	r.Stop() // must not panic or block
	assert.False(t, r.Status().Running)
}
