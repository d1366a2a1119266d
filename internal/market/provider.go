package market

import (
	"context"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// Provider is the external exchange adapter contract: raw ticker/OHLCV
// fetches against a single upstream exchange, keyed by canonical symbol.
// A Provider returns apperr.KindUnknownSymbol when the exchange has no
// market for the requested symbol.
type Provider interface {
	Ticker(ctx context.Context, symbol string) (domain.Ticker, error)
	OHLCV(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Candle, error)
}
