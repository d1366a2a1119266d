package pollers

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/domain"
)

type fakePositionSource struct {
	positions []domain.Position
	err       error
}

func (f *fakePositionSource) GetPositions(ctx context.Context) ([]domain.Position, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.positions, nil
}

type fakePriceSource struct {
	prices map[string]float64
	err    error
}

func (f *fakePriceSource) Ticker(ctx context.Context, symbol string) (domain.Ticker, error) {
	if f.err != nil {
		return domain.Ticker{}, f.err
	}
	return domain.Ticker{Symbol: symbol, Last: f.prices[symbol]}, nil
}

type fakeBroadcaster struct {
	calls []map[string]float64
}

func (f *fakeBroadcaster) BroadcastPrices(prices map[string]float64) {
	f.calls = append(f.calls, prices)
}

func TestPriceUpdatePoller_BroadcastsUniqueSymbolPrices(t *testing.T) {
	positions := &fakePositionSource{positions: []domain.Position{
		{Symbol: "BTC"}, {Symbol: "ETH"}, {Symbol: "BTC"},
	}}
	prices := &fakePriceSource{prices: map[string]float64{"BTC": 50000, "ETH": 3000}}
	broadcast := &fakeBroadcaster{}

	p := NewPriceUpdatePoller(positions, prices, broadcast, time.Minute, zerolog.Nop())
	require.NoError(t, p.cycle(context.Background()))

	require.Len(t, broadcast.calls, 1)
	assert.Equal(t, map[string]float64{"BTC": 50000, "ETH": 3000}, broadcast.calls[0])
}

func TestPriceUpdatePoller_NoPositionsSkipsBroadcast(t *testing.T) {
	positions := &fakePositionSource{}
	prices := &fakePriceSource{}
	broadcast := &fakeBroadcaster{}

	p := NewPriceUpdatePoller(positions, prices, broadcast, time.Minute, zerolog.Nop())
	require.NoError(t, p.cycle(context.Background()))
	assert.Empty(t, broadcast.calls)
}

func TestPriceUpdatePoller_TickerErrorSkipsSymbolButContinues(t *testing.T) {
	positions := &fakePositionSource{positions: []domain.Position{{Symbol: "BTC"}, {Symbol: "ETH"}}}
	prices := &fakePriceSource{err: assertError("ticker down")}
	broadcast := &fakeBroadcaster{}

	p := NewPriceUpdatePoller(positions, prices, broadcast, time.Minute, zerolog.Nop())
	require.NoError(t, p.cycle(context.Background()))
	assert.Empty(t, broadcast.calls)
}
