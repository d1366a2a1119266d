package alerts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/database"
	"github.com/sentineldesk/signalhub/internal/domain"
)

func newTestRepository(t *testing.T) *Repository {
	db, err := database.New(database.Config{
		Path:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		Profile: database.ProfileStandard,
		Name:    "alerts",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func TestRepository_CreateGetList(t *testing.T) {
	repo := newTestRepository(t)

	threshold := 50000.0
	cond := domain.PriceAbove
	created, err := repo.Create(domain.Alert{
		Symbol:         "BTC/USDT",
		AlertType:      domain.AlertTypePrice,
		PriceCondition: &cond,
		PriceThreshold: &threshold,
		Description:    "BTC above 50k",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.True(t, created.Enabled)

	fetched, err := repo.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, "BTC/USDT", fetched.Symbol)
	require.Equal(t, domain.PriceAbove, *fetched.PriceCondition)
	require.Equal(t, threshold, *fetched.PriceThreshold)
	require.Equal(t, "BTC above 50k", fetched.Description)

	list, err := repo.List("BTC/USDT")
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = repo.List("ETH/USDT")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestRepository_UpdateTriggerStateAndDelete(t *testing.T) {
	repo := newTestRepository(t)

	name := domain.IndicatorRSI
	cond := domain.IndicatorCrossesAbove
	threshold := 70.0
	created, err := repo.Create(domain.Alert{
		Symbol:             "ETH/USDT",
		AlertType:          domain.AlertTypeIndicator,
		IndicatorName:      &name,
		IndicatorCondition: &cond,
		IndicatorValue:     &threshold,
		SingleShot:         true,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateTriggerState(created.ID, true, nil))
	require.NoError(t, repo.RecordFire(created.ID, 71.5))

	fetched, err := repo.Get(created.ID)
	require.NoError(t, err)
	require.True(t, fetched.Triggered)

	require.NoError(t, repo.Delete(created.ID))
	_, err = repo.Get(created.ID)
	require.Error(t, err)
}

func TestRepository_CreateRejectsInvalidAlert(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.Create(domain.Alert{Symbol: "BTC/USDT", AlertType: domain.AlertTypePrice})
	require.Error(t, err, "price alert without threshold/condition must fail validation")
}

func TestRepository_UpdateThresholdAdjustsPriceAlert(t *testing.T) {
	repo := newTestRepository(t)

	threshold := 50000.0
	cond := domain.PriceAbove
	created, err := repo.Create(domain.Alert{
		Symbol:         "BTC/USDT",
		AlertType:      domain.AlertTypePrice,
		PriceCondition: &cond,
		PriceThreshold: &threshold,
	})
	require.NoError(t, err)

	newThreshold := 55000.0
	require.NoError(t, repo.UpdateThreshold(created.ID, &newThreshold, nil))

	fetched, err := repo.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, newThreshold, *fetched.PriceThreshold)
}

func TestRepository_UpdateThresholdAdjustsIndicatorAlert(t *testing.T) {
	repo := newTestRepository(t)

	name := domain.IndicatorRSI
	cond := domain.IndicatorCrossesAbove
	value := 70.0
	created, err := repo.Create(domain.Alert{
		Symbol:             "ETH/USDT",
		AlertType:          domain.AlertTypeIndicator,
		IndicatorName:      &name,
		IndicatorCondition: &cond,
		IndicatorValue:     &value,
	})
	require.NoError(t, err)

	newValue := 80.0
	require.NoError(t, repo.UpdateThreshold(created.ID, nil, &newValue))

	fetched, err := repo.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, newValue, *fetched.IndicatorValue)
}

func TestRepository_UpdateThresholdMismatchedFieldFails(t *testing.T) {
	repo := newTestRepository(t)

	threshold := 50000.0
	cond := domain.PriceAbove
	created, err := repo.Create(domain.Alert{
		Symbol:         "BTC/USDT",
		AlertType:      domain.AlertTypePrice,
		PriceCondition: &cond,
		PriceThreshold: &threshold,
	})
	require.NoError(t, err)

	indicatorValue := 80.0
	err = repo.UpdateThreshold(created.ID, nil, &indicatorValue)
	require.Error(t, err, "updating indicator_value on a price alert must fail")
}

func TestRepository_UpdateThresholdNoFieldsIsNoop(t *testing.T) {
	repo := newTestRepository(t)

	threshold := 50000.0
	cond := domain.PriceAbove
	created, err := repo.Create(domain.Alert{
		Symbol:         "BTC/USDT",
		AlertType:      domain.AlertTypePrice,
		PriceCondition: &cond,
		PriceThreshold: &threshold,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateThreshold(created.ID, nil, nil))

	fetched, err := repo.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, threshold, *fetched.PriceThreshold)
}
