package market

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/domain"
)

// RetryPolicy configures the capped exponential backoff applied to a
// Provider's transient failures.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy is the policy described in spec §4.1: initial 1s, x2,
// max 30s, up to 5 attempts.
var DefaultRetryPolicy = RetryPolicy{Attempts: 5, BaseDelay: time.Second, MaxDelay: 30 * time.Second}

// Adapter wraps a Provider with symbol canonicalization and the retry
// policy. It is the Exchange/Market Adapter (C1) that every downstream
// component talks to.
type Adapter struct {
	provider Provider
	retry    RetryPolicy
	log      zerolog.Logger
}

// NewAdapter builds an Adapter over provider using policy.
func NewAdapter(provider Provider, policy RetryPolicy, log zerolog.Logger) *Adapter {
	return &Adapter{
		provider: provider,
		retry:    policy,
		log:      log.With().Str("component", "market_adapter").Logger(),
	}
}

// Ticker canonicalizes symbol and fetches its current quote, retrying
// transient failures with capped exponential backoff.
func (a *Adapter) Ticker(ctx context.Context, symbol string) (domain.Ticker, error) {
	canonical := Canonicalize(symbol)

	var last error
	delay := a.retry.BaseDelay
	for attempt := 0; attempt < a.retry.Attempts; attempt++ {
		t, err := a.provider.Ticker(ctx, canonical)
		if err == nil {
			return t, nil
		}
		if apperr.Is(err, apperr.KindUnknownSymbol) {
			return domain.Ticker{}, err
		}
		last = err

		if attempt == a.retry.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return domain.Ticker{}, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > a.retry.MaxDelay {
			delay = a.retry.MaxDelay
		}
	}

	a.log.Warn().Err(last).Str("symbol", canonical).Msg("ticker fetch exhausted retries")
	return domain.Ticker{}, apperr.Wrap(apperr.KindUpstreamUnavailable, "ticker fetch failed after retries", last)
}

// OHLCV canonicalizes symbol and fetches its candle history, with the same
// retry policy as Ticker.
func (a *Adapter) OHLCV(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Candle, error) {
	canonical := Canonicalize(symbol)

	var last error
	delay := a.retry.BaseDelay
	for attempt := 0; attempt < a.retry.Attempts; attempt++ {
		candles, err := a.provider.OHLCV(ctx, canonical, timeframe, limit)
		if err == nil {
			return candles, nil
		}
		if apperr.Is(err, apperr.KindUnknownSymbol) {
			return nil, err
		}
		last = err

		if attempt == a.retry.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > a.retry.MaxDelay {
			delay = a.retry.MaxDelay
		}
	}

	a.log.Warn().Err(last).Str("symbol", canonical).Msg("ohlcv fetch exhausted retries")
	return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "ohlcv fetch failed after retries", last)
}
