// Package trading defines the Broker collaborator contract: the execution
// engine consumed by C10's /trading endpoints. The real engine is an
// external collaborator; only its observable contract and failure modes
// are specified here.
package trading

import (
	"context"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// OpenPositionRequest is the validated body of POST /trading/positions.
type OpenPositionRequest struct {
	Symbol               string
	Side                 domain.PositionSide
	Amount               float64
	StopLossPercent      *float64
	TrailingStopPercent  *float64
}

// Broker is broker-agnostic: Tradernet, IBKR, or any other execution
// engine can implement it without the rest of the system noticing.
type Broker interface {
	OpenPosition(ctx context.Context, req OpenPositionRequest) (domain.Position, error)
	ClosePosition(ctx context.Context, positionID string) error
	GetPositions(ctx context.Context) ([]domain.Position, error)
	GetBalance(ctx context.Context) (map[string]float64, error)
	SetStopLoss(ctx context.Context, positionID string, percent float64) error
	SetTrailingStop(ctx context.Context, positionID string, percent float64) error
}
