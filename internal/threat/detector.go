package threat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// hysteresisWindow is the minimum time a position must spend outside a
// grade's band before that same grade may be emitted again.
const hysteresisWindow = 60 * time.Second

// PositionSource is the subset of the trading collaborator the detector
// needs: the live list of open positions to watch.
type PositionSource interface {
	GetPositions(ctx context.Context) ([]domain.Position, error)
}

// PriceSource is the subset of the Exchange/Market Adapter (C1) the
// detector needs: a current price per symbol, used both to evaluate the
// position's distance-to-stop-loss and to feed the velocity tracker.
type PriceSource interface {
	Ticker(ctx context.Context, symbol string) (domain.Ticker, error)
}

// Notifier is the subset of the Enrichment Service (C3) the detector needs
// to turn a graded threat into a risk_alert notification.
type Notifier interface {
	Enrich(ctx context.Context, d domain.Draft) (domain.Notification, error)
}

// positionState is the per-position hysteresis bookkeeping: the grade
// currently active (emitted and not yet exited) and, per grade, the last
// time the position was observed exiting that grade's band.
type positionState struct {
	active   Grade
	exitedAt map[Grade]time.Time
}

// Detector evaluates every open position on a fixed interval.
type Detector struct {
	positions PositionSource
	prices    PriceSource
	notifier  Notifier
	velocity  *velocityTracker
	interval  time.Duration
	log       zerolog.Logger

	stop chan struct{}
	wg   sync.WaitGroup

	mu     sync.Mutex
	states map[string]*positionState
}

// NewDetector builds a Detector. interval and velocityWindow normally come
// from config.ThreatConfig.
func NewDetector(positions PositionSource, prices PriceSource, notifier Notifier, interval, velocityWindow time.Duration, log zerolog.Logger) *Detector {
	return &Detector{
		positions: positions,
		prices:    prices,
		notifier:  notifier,
		velocity:  newVelocityTracker(velocityWindow),
		interval:  interval,
		log:       log.With().Str("component", "threat_detector").Logger(),
		stop:      make(chan struct{}),
		states:    make(map[string]*positionState),
	}
}

// Start begins the evaluation loop in a background goroutine.
func (d *Detector) Start(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-d.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.evaluateAll(ctx)
			}
		}
	}()
}

// Stop halts the evaluation loop and waits for it to exit.
func (d *Detector) Stop() {
	close(d.stop)
	d.wg.Wait()
}

func (d *Detector) evaluateAll(ctx context.Context) {
	positions, err := d.positions.GetPositions(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("threat evaluation: failed to list positions")
		return
	}

	now := time.Now()
	for _, p := range positions {
		t, err := d.prices.Ticker(ctx, p.Symbol)
		if err != nil {
			d.log.Warn().Err(err).Str("symbol", p.Symbol).Msg("threat evaluation: ticker fetch failed")
			continue
		}
		d.velocity.record(p.Symbol, t.Last, now)
		p.CurrentPrice = t.Last
		d.evaluatePosition(ctx, p, now)
	}
}

func (d *Detector) evaluatePosition(ctx context.Context, p domain.Position, now time.Time) {
	dsl, ok := p.DistanceToStopLoss()
	if !ok {
		return
	}

	velocityPercent, _ := d.velocity.velocityPercent(p.Symbol)
	adverse := adverseVelocity(velocityPercent, p.Side == domain.PositionLong)
	grade := classify(dsl, adverse)

	if d.transition(p.ID, grade, now) {
		d.emit(ctx, p, grade, dsl, adverse)
	}
}

// transition applies the hysteresis state machine for position id and
// reports whether the new grade should be emitted.
func (d *Detector) transition(positionID string, grade Grade, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, ok := d.states[positionID]
	if !ok {
		state = &positionState{exitedAt: make(map[Grade]time.Time)}
		d.states[positionID] = state
	}

	if grade == GradeSuppressed {
		if state.active != "" {
			state.exitedAt[state.active] = now
			state.active = ""
		}
		return false
	}

	if grade == state.active {
		return false // still in the same band, already emitted
	}

	if state.active != "" {
		state.exitedAt[state.active] = now
	}

	if lastExit, seen := state.exitedAt[grade]; seen && now.Sub(lastExit) < hysteresisWindow {
		// re-entering this grade too soon after leaving it: track as
		// active again (so we don't re-check every tick) but don't emit.
		state.active = grade
		return false
	}

	state.active = grade
	delete(state.exitedAt, grade)
	return true
}

func (d *Detector) emit(ctx context.Context, p domain.Position, grade Grade, dsl, adverseVelocity float64) {
	priority := domain.PriorityHigh
	if grade == GradeCritical {
		priority = domain.PriorityCritical
	}
	symbol := p.Symbol

	_, err := d.notifier.Enrich(ctx, domain.Draft{
		Type:     domain.NotificationRiskAlert,
		Priority: &priority,
		Source:   domain.SourceSystem,
		Title:    fmt.Sprintf("%s risk: %s", grade, p.Symbol),
		Message:  fmt.Sprintf("%s is %.2f%% from stop-loss with %.2f%% adverse velocity", p.Symbol, dsl, adverseVelocity),
		Symbol:   &symbol,
		Metadata: map[string]any{
			"position_id":       p.ID,
			"grade":             string(grade),
			"distance_to_stop":  dsl,
			"adverse_velocity":  adverseVelocity,
		},
		Actions:    []domain.Action{domain.ActionClosePosition, domain.ActionDismiss},
		ExternalID: fmt.Sprintf("%s:%s:%d", p.ID, grade, time.Now().UnixNano()),
	})
	if err != nil {
		d.log.Error().Err(err).Str("position_id", p.ID).Msg("failed to enrich threat notification")
	}
}
