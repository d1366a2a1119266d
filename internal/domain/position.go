package domain

// PositionSide is the direction of an open position.
type PositionSide string

const (
	PositionLong  PositionSide = "long"
	PositionShort PositionSide = "short"
)

// Position mirrors a position held by the external trading engine. It is
// read-only to this system: the trading collaborator is the source of truth.
type Position struct {
	ID                string       `json:"id"`
	Symbol            string       `json:"symbol"`
	Side              PositionSide `json:"side"`
	Amount            float64      `json:"amount"`
	EntryPrice        float64      `json:"entry_price"`
	CurrentPrice      float64      `json:"current_price"`
	PnL               float64      `json:"pnl"`
	PnLPercent        float64      `json:"pnl_percent"`
	StopLoss          *float64     `json:"stop_loss,omitempty"`
	StopLossPercent   *float64     `json:"stop_loss_percent,omitempty"`
	TrailingStop      *float64     `json:"trailing_stop,omitempty"`
}

// DistanceToStopLoss returns the percent distance from current price to the
// position's stop-loss, or false if no stop-loss is set.
func (p Position) DistanceToStopLoss() (float64, bool) {
	if p.StopLoss == nil || *p.StopLoss == 0 {
		return 0, false
	}
	switch p.Side {
	case PositionLong:
		return (p.CurrentPrice - *p.StopLoss) / p.CurrentPrice * 100, true
	default:
		return (*p.StopLoss - p.CurrentPrice) / p.CurrentPrice * 100, true
	}
}
