package threat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVelocityTracker_RisingPriceYieldsPositivePercent(t *testing.T) {
	v := newVelocityTracker(5 * time.Minute)
	base := time.Now()

	v.record("BTC/USDT", 100, base)
	v.record("BTC/USDT", 101, base.Add(1*time.Minute))
	v.record("BTC/USDT", 103, base.Add(2*time.Minute))
	v.record("BTC/USDT", 106, base.Add(3*time.Minute))

	pct, ok := v.velocityPercent("BTC/USDT")
	require.True(t, ok)
	assert.Greater(t, pct, 0.0)
}

func TestVelocityTracker_PrunesOutsideWindow(t *testing.T) {
	v := newVelocityTracker(1 * time.Minute)
	base := time.Now()

	v.record("ETH/USDT", 100, base)
	v.record("ETH/USDT", 200, base.Add(5*time.Minute))

	v.mu.Lock()
	series := v.ticks["ETH/USDT"]
	v.mu.Unlock()
	assert.Len(t, series, 1, "the first tick should have been pruned once it fell outside the window")
}

func TestVelocityTracker_InsufficientHistory(t *testing.T) {
	v := newVelocityTracker(5 * time.Minute)
	_, ok := v.velocityPercent("SOL/USDT")
	assert.False(t, ok)
}
