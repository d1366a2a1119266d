package trading

import (
	"context"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/domain"
)

// StubBroker is a placeholder Broker used when no real execution engine is
// configured. Every call fails with KindUpstreamUnavailable except
// GetPositions/GetBalance, which report an empty portfolio so the price
// and threat pollers still have something to iterate over.
type StubBroker struct{}

func (StubBroker) OpenPosition(ctx context.Context, req OpenPositionRequest) (domain.Position, error) {
	return domain.Position{}, apperr.New(apperr.KindUpstreamUnavailable, "no trading broker configured")
}

func (StubBroker) ClosePosition(ctx context.Context, positionID string) error {
	return apperr.New(apperr.KindUpstreamUnavailable, "no trading broker configured")
}

func (StubBroker) GetPositions(ctx context.Context) ([]domain.Position, error) {
	return nil, nil
}

func (StubBroker) GetBalance(ctx context.Context) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func (StubBroker) SetStopLoss(ctx context.Context, positionID string, percent float64) error {
	return apperr.New(apperr.KindUpstreamUnavailable, "no trading broker configured")
}

func (StubBroker) SetTrailingStop(ctx context.Context, positionID string, percent float64) error {
	return apperr.New(apperr.KindUpstreamUnavailable, "no trading broker configured")
}
