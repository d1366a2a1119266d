package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/domain"
)

type fakeNotifier struct {
	drafts []domain.Draft
}

func (n *fakeNotifier) Enrich(ctx context.Context, d domain.Draft) (domain.Notification, error) {
	n.drafts = append(n.drafts, d)
	return domain.Notification{ID: "n"}, nil
}

type fakeRepo struct {
	fires int
}

func (r *fakeRepo) List(symbol string) ([]domain.Alert, error)                       { return nil, nil }
func (r *fakeRepo) UpdateTriggerState(id string, triggered bool, at *time.Time) error { return nil }
func (r *fakeRepo) RecordFire(alertID string, value float64) error                    { r.fires++; return nil }

// TestIndicatorHit_CrossesAboveFiresOnce replays the literal RSI reading
// sequence 65, 68, 71, 72 through crosses_above 70 and asserts exactly one
// crossing is detected, at the 71 reading.
func TestIndicatorHit_CrossesAboveFiresOnce(t *testing.T) {
	threshold := 70.0
	readings := []float64{65, 68, 71, 72}

	var previous *float64
	fires := 0
	var firedAt float64
	for _, r := range readings {
		r := r
		if indicatorHit(domain.IndicatorCrossesAbove, r, previous, threshold) {
			fires++
			firedAt = r
		}
		previous = &r
	}

	assert.Equal(t, 1, fires)
	assert.Equal(t, 71.0, firedAt)
}

// TestIndicatorHit_StaysAboveNeverRefires replays 71, 72, 73 (already above
// threshold on the first reading) and asserts crosses_above never fires,
// since there is no prior-below-threshold reading to cross from.
func TestIndicatorHit_StaysAboveNeverRefires(t *testing.T) {
	threshold := 70.0
	readings := []float64{71, 72, 73}

	previous := floatPtr(71) // alert already armed with a prior at-or-above reading
	fires := 0
	for _, r := range readings {
		r := r
		if indicatorHit(domain.IndicatorCrossesAbove, r, previous, threshold) {
			fires++
		}
		previous = &r
	}

	assert.Equal(t, 0, fires)
}

func TestIndicatorHit_AboveIsSingleTick(t *testing.T) {
	assert.True(t, indicatorHit(domain.IndicatorAbove, 71, nil, 70))
	assert.False(t, indicatorHit(domain.IndicatorAbove, 69, nil, 70))
}

func TestIndicatorHit_CrossesBelow(t *testing.T) {
	assert.True(t, indicatorHit(domain.IndicatorCrossesBelow, 29, floatPtr(31), 30))
	assert.False(t, indicatorHit(domain.IndicatorCrossesBelow, 29, floatPtr(28), 30), "already below must not refire")
}

func TestEvaluatePrice_FiresAboveThreshold(t *testing.T) {
	threshold := 50000.0
	cond := domain.PriceAbove
	a := &domain.Alert{ID: "a1", Symbol: "BTC/USDT", AlertType: domain.AlertTypePrice, PriceCondition: &cond, PriceThreshold: &threshold}

	notifier := &fakeNotifier{}
	e := &Engine{repo: &fakeRepo{}, notifier: notifier, log: zerolog.Nop(), emergencyBandPercent: 1.0}

	e.evaluatePrice(context.Background(), a, domain.Ticker{Last: 50500})
	require.Len(t, notifier.drafts, 1)
	assert.Equal(t, domain.NotificationTechnicalBreakout, notifier.drafts[0].Type)

	notifier.drafts = nil
	e.evaluatePrice(context.Background(), a, domain.Ticker{Last: 49000})
	assert.Empty(t, notifier.drafts, "price below threshold must not fire an above alert")
}

func TestFire_PromotesToCriticalWithinEmergencyBand(t *testing.T) {
	notifier := &fakeNotifier{}
	e := &Engine{repo: &fakeRepo{}, notifier: notifier, log: zerolog.Nop(), emergencyBandPercent: 1.0}
	a := &domain.Alert{ID: "a2", Symbol: "ETH/USDT", AlertType: domain.AlertTypePrice}

	// price is within 1% of threshold -> critical
	e.fire(context.Background(), a, 3015, 3015, 3000)
	require.Len(t, notifier.drafts, 1)
	assert.Equal(t, domain.PriorityCritical, *notifier.drafts[0].Priority)

	notifier.drafts = nil
	// price is well outside the emergency band -> high
	e.fire(context.Background(), a, 3300, 3300, 3000)
	require.Len(t, notifier.drafts, 1)
	assert.Equal(t, domain.PriorityHigh, *notifier.drafts[0].Priority)
}

func floatPtr(v float64) *float64 { return &v }
