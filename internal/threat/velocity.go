package threat

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// tick is a single observed price point for a symbol.
type tick struct {
	at    time.Time
	price float64
}

// velocityTracker keeps a rolling window of ticks per symbol and computes
// a percent price velocity over that window via linear regression, the
// same stat.LinearRegression-based approach the teacher's formulas package
// uses for annualized-volatility-style calculations.
type velocityTracker struct {
	mu     sync.Mutex
	window time.Duration
	ticks  map[string][]tick
}

func newVelocityTracker(window time.Duration) *velocityTracker {
	return &velocityTracker{window: window, ticks: make(map[string][]tick)}
}

// record appends a price observation for symbol and prunes ticks older
// than the window.
func (v *velocityTracker) record(symbol string, price float64, at time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	cutoff := at.Add(-v.window)
	series := append(v.ticks[symbol], tick{at: at, price: price})
	pruned := series[:0]
	for _, t := range series {
		if t.at.After(cutoff) {
			pruned = append(pruned, t)
		}
	}
	v.ticks[symbol] = pruned
}

// velocityPercent returns the signed percent price change implied by the
// regression slope over the full window, projected from the oldest
// retained tick to the newest. Returns 0, false if there is fewer than two
// ticks (not enough history to fit a line).
func (v *velocityTracker) velocityPercent(symbol string) (float64, bool) {
	v.mu.Lock()
	series := append([]tick(nil), v.ticks[symbol]...)
	v.mu.Unlock()

	if len(series) < 2 {
		return 0, false
	}

	base := series[0].at
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, t := range series {
		xs[i] = t.at.Sub(base).Seconds()
		ys[i] = t.price
	}

	_, beta := stat.LinearRegression(xs, ys, nil, false)
	elapsed := xs[len(xs)-1]
	if elapsed <= 0 || ys[0] == 0 {
		return 0, false
	}
	projectedChange := beta * elapsed
	return projectedChange / ys[0] * 100, true
}
