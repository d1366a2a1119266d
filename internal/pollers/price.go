package pollers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// PositionSource is the subset of the trading Broker collaborator the
// price-update poller needs: the currently open positions.
type PositionSource interface {
	GetPositions(ctx context.Context) ([]domain.Position, error)
}

// PriceSource is the subset of the Exchange/Market Adapter (C1) the
// price-update poller needs.
type PriceSource interface {
	Ticker(ctx context.Context, symbol string) (domain.Ticker, error)
}

// PriceBroadcaster is the subset of the Delivery Fan-out (C7) the
// price-update poller needs: pushing price_update frames, not
// notifications, to the price topic.
type PriceBroadcaster interface {
	BroadcastPrices(prices map[string]float64)
}

// PriceUpdatePoller refreshes every open position's current price on a
// short interval and pushes the result as a price_update event, not a
// notification, to the price fan-out topic.
type PriceUpdatePoller struct {
	positions PositionSource
	prices    PriceSource
	broadcast PriceBroadcaster
	log       zerolog.Logger
	run       *runner
}

// NewPriceUpdatePoller builds the price-update poller. interval defaults
// to spec's 3s cadence via config.
func NewPriceUpdatePoller(positions PositionSource, prices PriceSource, broadcast PriceBroadcaster, interval time.Duration, log zerolog.Logger) *PriceUpdatePoller {
	p := &PriceUpdatePoller{
		positions: positions,
		prices:    prices,
		broadcast: broadcast,
		log:       log.With().Str("poller", "price_update").Logger(),
	}
	p.run = newRunner("price_update", interval, p.cycle, log)
	return p
}

func (p *PriceUpdatePoller) Start(ctx context.Context) { p.run.Start(ctx) }
func (p *PriceUpdatePoller) Stop()                     { p.run.Stop() }
func (p *PriceUpdatePoller) Status() Status            { return p.run.Status() }

func (p *PriceUpdatePoller) cycle(ctx context.Context) error {
	positions, err := p.positions.GetPositions(ctx)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		return nil
	}

	prices := make(map[string]float64, len(positions))
	for _, pos := range positions {
		if _, already := prices[pos.Symbol]; already {
			continue
		}
		t, err := p.prices.Ticker(ctx, pos.Symbol)
		if err != nil {
			p.log.Warn().Err(err).Str("symbol", pos.Symbol).Msg("price-update: ticker fetch failed")
			continue
		}
		prices[pos.Symbol] = t.Last
	}

	if len(prices) > 0 {
		p.broadcast.BroadcastPrices(prices)
	}
	return nil
}
