package domain

import (
	"time"

	"github.com/sentineldesk/signalhub/internal/apperr"
)

// AlertType distinguishes a plain price alert from an indicator alert.
type AlertType string

const (
	AlertTypePrice     AlertType = "price"
	AlertTypeIndicator AlertType = "indicator"
)

// PriceCondition is the comparator for a price alert.
type PriceCondition string

const (
	PriceAbove PriceCondition = "above"
	PriceBelow PriceCondition = "below"
)

// IndicatorName is the closed set of supported technical indicators.
type IndicatorName string

const (
	IndicatorRSI           IndicatorName = "RSI"
	IndicatorMACD          IndicatorName = "MACD"
	IndicatorMACDCrossover IndicatorName = "MACD_crossover"
	IndicatorMA50          IndicatorName = "MA_50"
	IndicatorMA200         IndicatorName = "MA_200"
)

// IndicatorCondition is the comparator for an indicator alert.
type IndicatorCondition string

const (
	IndicatorAbove        IndicatorCondition = "above"
	IndicatorBelow        IndicatorCondition = "below"
	IndicatorCrossesAbove IndicatorCondition = "crosses_above"
	IndicatorCrossesBelow IndicatorCondition = "crosses_below"
)

// Alert is a user-defined watch on a symbol's price or a technical indicator.
type Alert struct {
	ID                  string              `json:"id"`
	Symbol              string              `json:"symbol"`
	AlertType           AlertType           `json:"alert_type"`
	PriceThreshold      *float64            `json:"price_threshold,omitempty"`
	PriceCondition      *PriceCondition     `json:"price_condition,omitempty"`
	IndicatorName       *IndicatorName      `json:"indicator_name,omitempty"`
	IndicatorCondition  *IndicatorCondition `json:"indicator_condition,omitempty"`
	IndicatorValue      *float64            `json:"indicator_value,omitempty"`
	Enabled             bool                `json:"enabled"`
	Triggered           bool                `json:"triggered"`
	TriggeredAt         *time.Time          `json:"triggered_at,omitempty"`
	Description         string              `json:"description"`
	SingleShot          bool                `json:"single_shot"`
	RearmAfter          time.Duration       `json:"rearm_after,omitempty"`
	LastIndicatorValue  *float64            `json:"-"` // previous tick's value, for crossing detection
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// Validate checks the type-dependent required fields described in §3.
func (a *Alert) Validate() error {
	switch a.AlertType {
	case AlertTypePrice:
		if a.PriceThreshold == nil || a.PriceCondition == nil {
			return apperr.New(apperr.KindInvalidInput, "price alert requires price_threshold and price_condition")
		}
	case AlertTypeIndicator:
		if a.IndicatorName == nil || a.IndicatorCondition == nil || a.IndicatorValue == nil {
			return apperr.New(apperr.KindInvalidInput, "indicator alert requires indicator_name, indicator_condition, and indicator_value")
		}
	default:
		return apperr.New(apperr.KindInvalidInput, "alert_type must be price or indicator")
	}
	return nil
}
