// Package indicators wraps go-talib to compute the technical indicators
// the Alert Engine (C5) and Technical Signal poller (C2) evaluate against
// OHLCV history.
package indicators

import (
	"github.com/markcheno/go-talib"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// RSI returns the current Relative Strength Index for closes, or nil if
// there is insufficient history for the requested period.
func RSI(closes []float64, period int) *float64 {
	if len(closes) < period+1 {
		return nil
	}
	values := talib.Rsi(closes, period)
	return lastValid(values)
}

// SMA returns the current Simple Moving Average for closes over period.
func SMA(closes []float64, period int) *float64 {
	if len(closes) < period {
		return nil
	}
	values := talib.Sma(closes, period)
	return lastValid(values)
}

// EMA returns the current Exponential Moving Average for closes over period.
func EMA(closes []float64, period int) *float64 {
	if len(closes) < period {
		return nil
	}
	values := talib.Ema(closes, period)
	return lastValid(values)
}

// MACDResult holds the three series talib.Macd produces.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD returns the current MACD line, signal line, and histogram using the
// standard 12/26/9 periods.
func MACD(closes []float64) *MACDResult {
	if len(closes) < 35 {
		return nil
	}
	macd, signal, hist := talib.Macd(closes, 12, 26, 9)
	m, s, h := lastValid(macd), lastValid(signal), lastValid(hist)
	if m == nil || s == nil || h == nil {
		return nil
	}
	return &MACDResult{MACD: *m, Signal: *s, Histogram: *h}
}

func lastValid(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := values[len(values)-1]
	if v != v { // NaN
		return nil
	}
	return &v
}

// Closes extracts the Close field from a slice of candles, in order.
func Closes(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
