package pollers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/indicators"
)

// MarketSource is the subset of the Exchange/Market Adapter (C1) the
// technical poller needs, the same shape internal/alerts.MarketSource
// uses.
type MarketSource interface {
	Ticker(ctx context.Context, symbol string) (domain.Ticker, error)
	OHLCV(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Candle, error)
}

// TechnicalPollerConfig configures which symbols the generator watches.
type TechnicalPollerConfig struct {
	Interval time.Duration
	Symbols  []string
}

// technicalState is the previous cycle's readings for one symbol, used to
// detect crossings rather than re-firing on every tick a value stays past
// a threshold.
type technicalState struct {
	rsi           *float64
	maGoldenCross *bool // true when MA50 was above MA200 last cycle
	macdHistPos   *bool // true when the MACD histogram was positive last cycle
}

// TechnicalPoller generates technical_breakout and combined_signal
// notifications from RSI, moving-average crossover, and MACD readings.
type TechnicalPoller struct {
	market   MarketSource
	notifier Notifier
	cfg      TechnicalPollerConfig
	log      zerolog.Logger
	run      *runner

	mu     sync.Mutex
	states map[string]technicalState
}

// NewTechnicalPoller builds a technical signal poller.
func NewTechnicalPoller(market MarketSource, notifier Notifier, cfg TechnicalPollerConfig, log zerolog.Logger) *TechnicalPoller {
	p := &TechnicalPoller{
		market:   market,
		notifier: notifier,
		cfg:      cfg,
		log:      log.With().Str("poller", "technical").Logger(),
		states:   make(map[string]technicalState),
	}
	p.run = newRunner("technical", cfg.Interval, p.cycle, log)
	return p
}

func (p *TechnicalPoller) Start(ctx context.Context) { p.run.Start(ctx) }
func (p *TechnicalPoller) Stop()                     { p.run.Stop() }
func (p *TechnicalPoller) Status() Status            { return p.run.Status() }

func (p *TechnicalPoller) cycle(ctx context.Context) error {
	for _, symbol := range p.cfg.Symbols {
		if err := p.evaluateSymbol(ctx, symbol); err != nil {
			p.log.Warn().Err(err).Str("symbol", symbol).Msg("technical evaluation failed")
		}
	}
	return nil
}

func (p *TechnicalPoller) evaluateSymbol(ctx context.Context, symbol string) error {
	candles, err := p.market.OHLCV(ctx, symbol, domain.Timeframe1h, 250)
	if err != nil {
		return err
	}
	closes := indicators.Closes(candles)

	rsi := indicators.RSI(closes, 14)
	ma50 := indicators.SMA(closes, 50)
	ma200 := indicators.SMA(closes, 200)
	macd := indicators.MACD(closes)

	p.mu.Lock()
	prev := p.states[symbol]
	p.mu.Unlock()

	var signals []string

	if rsi != nil {
		if prev.rsi != nil && *prev.rsi <= 70 && *rsi > 70 {
			signals = append(signals, "rsi_overbought")
		}
		if prev.rsi != nil && *prev.rsi >= 30 && *rsi < 30 {
			signals = append(signals, "rsi_oversold")
		}
	}

	var golden *bool
	if ma50 != nil && ma200 != nil {
		above := *ma50 > *ma200
		golden = &above
		if prev.maGoldenCross != nil && !*prev.maGoldenCross && above {
			signals = append(signals, "golden_cross")
		}
		if prev.maGoldenCross != nil && *prev.maGoldenCross && !above {
			signals = append(signals, "death_cross")
		}
	}

	var histPos *bool
	if macd != nil {
		pos := macd.Histogram > 0
		histPos = &pos
		if prev.macdHistPos != nil && !*prev.macdHistPos && pos {
			signals = append(signals, "macd_bullish_cross")
		}
		if prev.macdHistPos != nil && *prev.macdHistPos && !pos {
			signals = append(signals, "macd_bearish_cross")
		}
	}

	p.mu.Lock()
	p.states[symbol] = technicalState{rsi: rsi, maGoldenCross: golden, macdHistPos: histPos}
	p.mu.Unlock()

	if len(signals) == 0 {
		return nil
	}
	return p.emit(ctx, symbol, signals)
}

// emit synthesizes a technical_breakout for a single signal or a
// combined_signal with a confidence score proportional to how many
// independent signals agree, when more than one fired this cycle.
func (p *TechnicalPoller) emit(ctx context.Context, symbol string, signals []string) error {
	notifType := domain.NotificationTechnicalBreakout
	confidence := 0.5
	if len(signals) > 1 {
		notifType = domain.NotificationCombinedSignal
		confidence = float64(len(signals)) / 3.0
		if confidence > 1 {
			confidence = 1
		}
	}

	draft := domain.Draft{
		Type:     notifType,
		Source:   domain.SourceTechnical,
		Symbol:   &symbol,
		Title:    fmt.Sprintf("Technical signal on %s", symbol),
		Message:  fmt.Sprintf("%s: %v", symbol, signals),
		Metadata: map[string]any{"signals": signals, "confidence_score": confidence},
	}

	_, err := p.notifier.Enrich(ctx, draft)
	return err
}
