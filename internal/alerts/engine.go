// Package alerts implements the Alert Engine (C5): user-defined price and
// indicator watches, evaluated on a fixed interval against live market data
// and surfaced as technical_breakout notifications.
package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/indicators"
)

// MarketSource is the subset of the Exchange/Market Adapter (C1) the engine
// needs to evaluate alert conditions.
type MarketSource interface {
	Ticker(ctx context.Context, symbol string) (domain.Ticker, error)
	OHLCV(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Candle, error)
}

// Notifier is the subset of the Enrichment Service (C3) the engine needs to
// turn a triggered alert into a notification.
type Notifier interface {
	Enrich(ctx context.Context, d domain.Draft) (domain.Notification, error)
}

// AlertRepository is the subset of Repository the engine needs: listing
// alerts to evaluate and persisting trigger/fire state.
type AlertRepository interface {
	List(symbol string) ([]domain.Alert, error)
	UpdateTriggerState(id string, triggered bool, triggeredAt *time.Time) error
	RecordFire(alertID string, value float64) error
}

// Engine evaluates every enabled alert on a fixed interval.
type Engine struct {
	repo     AlertRepository
	market   MarketSource
	notifier Notifier
	interval time.Duration
	// EmergencyBandPercent is the price distance from threshold, as a
	// percentage of threshold, within which a triggered price alert is
	// promoted to critical priority instead of high.
	emergencyBandPercent float64

	log  zerolog.Logger
	stop chan struct{}
	wg   sync.WaitGroup

	mu          sync.Mutex
	lastRunning bool

	// lastIndicator holds each indicator alert's reading from the previous
	// tick, keyed by alert ID, for crossing detection.
	lastIndicator map[string]float64
}

// NewEngine builds an Engine. interval and emergencyBandPercent normally
// come from config.AlertsConfig.
func NewEngine(repo AlertRepository, market MarketSource, notifier Notifier, interval time.Duration, emergencyBandPercent float64, log zerolog.Logger) *Engine {
	return &Engine{
		repo:                  repo,
		market:                market,
		notifier:              notifier,
		interval:              interval,
		emergencyBandPercent:  emergencyBandPercent,
		log:                   log.With().Str("component", "alert_engine").Logger(),
		stop:                  make(chan struct{}),
	}
}

// Start begins the evaluation loop in a background goroutine.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.lastRunning {
		e.mu.Unlock()
		return
	}
	e.lastRunning = true
	e.mu.Unlock()

	ticker := time.NewTicker(e.interval)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-e.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.evaluateAll(ctx)
			}
		}
	}()
}

// Stop halts the evaluation loop and waits for it to exit.
func (e *Engine) Stop() {
	close(e.stop)
	e.wg.Wait()
}

// evaluateAll snapshots every enabled, not-yet-terminally-triggered alert,
// groups by symbol so each symbol is fetched from the market once, and
// evaluates each alert's condition.
func (e *Engine) evaluateAll(ctx context.Context) {
	all, err := e.repo.List("")
	if err != nil {
		e.log.Error().Err(err).Msg("failed to list alerts for evaluation")
		return
	}

	bySymbol := make(map[string][]domain.Alert)
	for _, a := range all {
		if !a.Enabled {
			continue
		}
		if a.SingleShot && a.Triggered {
			if a.RearmAfter <= 0 || a.TriggeredAt == nil || time.Since(*a.TriggeredAt) < a.RearmAfter {
				continue
			}
			if err := e.repo.UpdateTriggerState(a.ID, false, nil); err != nil {
				e.log.Error().Err(err).Str("alert_id", a.ID).Msg("failed to rearm alert")
				continue
			}
			a.Triggered, a.TriggeredAt = false, nil
		}
		bySymbol[a.Symbol] = append(bySymbol[a.Symbol], a)
	}

	for symbol, watches := range bySymbol {
		e.evaluateSymbol(ctx, symbol, watches)
	}
}

func (e *Engine) evaluateSymbol(ctx context.Context, symbol string, watches []domain.Alert) {
	ticker, err := e.market.Ticker(ctx, symbol)
	if err != nil {
		e.log.Warn().Err(err).Str("symbol", symbol).Msg("alert evaluation: ticker fetch failed")
		return
	}

	var closes []float64
	needsIndicators := false
	for _, a := range watches {
		if a.AlertType == domain.AlertTypeIndicator {
			needsIndicators = true
			break
		}
	}
	if needsIndicators {
		candles, err := e.market.OHLCV(ctx, symbol, domain.Timeframe1h, 200)
		if err != nil {
			e.log.Warn().Err(err).Str("symbol", symbol).Msg("alert evaluation: OHLCV fetch failed")
		} else {
			closes = indicators.Closes(candles)
		}
	}

	for _, a := range watches {
		switch a.AlertType {
		case domain.AlertTypePrice:
			e.evaluatePrice(ctx, &a, ticker)
		case domain.AlertTypeIndicator:
			if closes != nil {
				e.evaluateIndicator(ctx, &a, ticker, closes)
			}
		}
	}
}

func (e *Engine) evaluatePrice(ctx context.Context, a *domain.Alert, t domain.Ticker) {
	if a.PriceCondition == nil || a.PriceThreshold == nil {
		return
	}
	hit := false
	switch *a.PriceCondition {
	case domain.PriceAbove:
		hit = t.Last > *a.PriceThreshold
	case domain.PriceBelow:
		hit = t.Last < *a.PriceThreshold
	}
	if !hit {
		return
	}
	e.fire(ctx, a, t.Last, t.Last, *a.PriceThreshold)
}

func (e *Engine) evaluateIndicator(ctx context.Context, a *domain.Alert, t domain.Ticker, closes []float64) {
	if a.IndicatorName == nil || a.IndicatorCondition == nil || a.IndicatorValue == nil {
		return
	}

	var current *float64
	switch *a.IndicatorName {
	case domain.IndicatorRSI:
		current = indicators.RSI(closes, 14)
	case domain.IndicatorMA50:
		current = indicators.SMA(closes, 50)
	case domain.IndicatorMA200:
		current = indicators.SMA(closes, 200)
	case domain.IndicatorMACD:
		if macd := indicators.MACD(closes); macd != nil {
			v := macd.MACD
			current = &v
		}
	case domain.IndicatorMACDCrossover:
		if macd := indicators.MACD(closes); macd != nil {
			v := macd.Histogram
			current = &v
		}
	}
	if current == nil {
		return
	}

	threshold := *a.IndicatorValue
	previous := a.LastIndicatorValue
	if v, ok := e.lastIndicator[a.ID]; ok && previous == nil {
		previous = &v
	}

	hit := indicatorHit(*a.IndicatorCondition, *current, previous, threshold)

	a.LastIndicatorValue = current
	if e.lastIndicator == nil {
		e.lastIndicator = make(map[string]float64)
	}
	e.lastIndicator[a.ID] = *current
	if hit {
		e.fire(ctx, a, t.Last, *current, threshold)
	}
}

// indicatorHit evaluates a single indicator condition. above/below are
// single-tick comparisons; crosses_above/crosses_below additionally require
// the previous reading to have been on the other side of threshold, so a
// value that arrives already past threshold (no prior reading, or a
// previous reading already past it) does not fire.
func indicatorHit(cond domain.IndicatorCondition, current float64, previous *float64, threshold float64) bool {
	switch cond {
	case domain.IndicatorAbove:
		return current > threshold
	case domain.IndicatorBelow:
		return current < threshold
	case domain.IndicatorCrossesAbove:
		return previous != nil && *previous <= threshold && current > threshold
	case domain.IndicatorCrossesBelow:
		return previous != nil && *previous >= threshold && current < threshold
	default:
		return false
	}
}

// fire records the trigger, marks single-shot alerts so they don't fire
// again, and synthesizes a technical_breakout notification.
func (e *Engine) fire(ctx context.Context, a *domain.Alert, price, observed, threshold float64) {
	now := time.Now()

	if a.SingleShot {
		if err := e.repo.UpdateTriggerState(a.ID, true, &now); err != nil {
			e.log.Error().Err(err).Str("alert_id", a.ID).Msg("failed to persist alert trigger state")
			return
		}
	}
	if err := e.repo.RecordFire(a.ID, observed); err != nil {
		e.log.Warn().Err(err).Str("alert_id", a.ID).Msg("failed to record alert fire history")
	}

	priority := domain.PriorityHigh
	if a.AlertType == domain.AlertTypePrice && threshold != 0 {
		distance := absFloat(price-threshold) / absFloat(threshold) * 100
		if distance <= e.emergencyBandPercent {
			priority = domain.PriorityCritical
		}
	}

	symbol := a.Symbol
	_, err := e.notifier.Enrich(ctx, domain.Draft{
		Type:     domain.NotificationTechnicalBreakout,
		Priority: &priority,
		Source:   domain.SourceTechnical,
		Title:    "Alert triggered: " + a.Symbol,
		Message:  a.Description,
		Symbol:   &symbol,
		Metadata: map[string]any{
			"alert_id":  a.ID,
			"observed":  observed,
			"threshold": threshold,
		},
		Actions:    []domain.Action{domain.ActionDismiss},
		ExternalID: a.ID + ":" + now.Format(time.RFC3339),
	})
	if err != nil {
		e.log.Error().Err(err).Str("alert_id", a.ID).Msg("failed to enrich alert notification")
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
