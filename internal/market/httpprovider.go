package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/domain"
)

// HTTPProvider is a Provider backed by a REST exchange API. It is the
// single-attempt transport; Adapter supplies retry/backoff on top of it.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTPProvider builds an HTTPProvider against baseURL with the given
// per-call timeout.
func NewHTTPProvider(baseURL string, timeout time.Duration, log zerolog.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "market_http").Logger(),
	}
}

type tickerResponse struct {
	Last   float64 `json:"last"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Volume float64 `json:"volume"`
}

// Ticker fetches a single quote for symbol.
func (p *HTTPProvider) Ticker(ctx context.Context, symbol string) (domain.Ticker, error) {
	url := fmt.Sprintf("%s/ticker?symbol=%s", p.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Ticker{}, apperr.Wrap(apperr.KindInternal, "build ticker request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Ticker{}, apperr.Wrap(apperr.KindUpstreamUnavailable, "ticker request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Ticker{}, apperr.New(apperr.KindUnknownSymbol, fmt.Sprintf("no market for %s", symbol))
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.Ticker{}, apperr.New(apperr.KindRateLimited, "exchange rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Ticker{}, apperr.New(apperr.KindUpstreamUnavailable, fmt.Sprintf("exchange returned status %d", resp.StatusCode))
	}

	var tr tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return domain.Ticker{}, apperr.Wrap(apperr.KindUpstreamUnavailable, "decode ticker response", err)
	}

	return domain.Ticker{
		Symbol:    symbol,
		Last:      tr.Last,
		Bid:       tr.Bid,
		Ask:       tr.Ask,
		Volume:    tr.Volume,
		Timestamp: time.Now(),
	}, nil
}

type candleResponse struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// OHLCV fetches up to limit candles of timeframe for symbol, oldest first.
func (p *HTTPProvider) OHLCV(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Candle, error) {
	url := fmt.Sprintf("%s/ohlcv?symbol=%s&timeframe=%s&limit=%d", p.baseURL, symbol, timeframe, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "build ohlcv request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "ohlcv request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.New(apperr.KindUnknownSymbol, fmt.Sprintf("no market for %s", symbol))
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperr.New(apperr.KindRateLimited, "exchange rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.KindUpstreamUnavailable, fmt.Sprintf("exchange returned status %d", resp.StatusCode))
	}

	var raw []candleResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "decode ohlcv response", err)
	}

	candles := make([]domain.Candle, 0, len(raw))
	for _, c := range raw {
		candles = append(candles, domain.Candle{
			Timestamp: time.Unix(c.Timestamp, 0).UTC(),
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		})
	}
	return candles, nil
}
