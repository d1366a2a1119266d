package api

import (
	"net/http"
	"net/url"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/trading"
)

type tradingHandlers struct {
	broker trading.Broker
	log    zerolog.Logger
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]+/[A-Z0-9]+$`)

func (h *tradingHandlers) balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.broker.GetBalance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (h *tradingHandlers) listPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.broker.GetPositions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"positions": positions})
}

type openPositionBody struct {
	Symbol              string   `json:"symbol"`
	Side                string   `json:"side"`
	Amount               float64 `json:"amount"`
	StopLossPercent      *float64 `json:"stop_loss_percent,omitempty"`
	TrailingStopPercent  *float64 `json:"trailing_stop_percent,omitempty"`
}

func (h *tradingHandlers) openPosition(w http.ResponseWriter, r *http.Request) {
	var body openPositionBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := validateOpenPositionBody(body); err != nil {
		writeError(w, err)
		return
	}

	req := trading.OpenPositionRequest{
		Symbol:              body.Symbol,
		Side:                domain.PositionSide(body.Side),
		Amount:              body.Amount,
		StopLossPercent:     body.StopLossPercent,
		TrailingStopPercent: body.TrailingStopPercent,
	}
	pos, err := h.broker.OpenPosition(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pos)
}

func validateOpenPositionBody(body openPositionBody) error {
	if !symbolPattern.MatchString(body.Symbol) {
		return apperr.New(apperr.KindInvalidInput, "symbol must be BASE/QUOTE, e.g. BTC/USD")
	}
	if body.Side != string(domain.PositionLong) && body.Side != string(domain.PositionShort) {
		return apperr.New(apperr.KindInvalidInput, "side must be long or short")
	}
	if body.Amount <= 0 {
		return apperr.New(apperr.KindInvalidInput, "amount must be positive")
	}
	if body.StopLossPercent != nil && (*body.StopLossPercent < 0 || *body.StopLossPercent > 100) {
		return apperr.New(apperr.KindInvalidInput, "stop_loss_percent must be within [0, 100]")
	}
	if body.TrailingStopPercent != nil && (*body.TrailingStopPercent < 0 || *body.TrailingStopPercent > 100) {
		return apperr.New(apperr.KindInvalidInput, "trailing_stop_percent must be within [0, 100]")
	}
	return nil
}

func (h *tradingHandlers) closePosition(w http.ResponseWriter, r *http.Request) {
	id, err := positionID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.broker.ClosePosition(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type percentBody struct {
	Percent float64 `json:"percent"`
}

func (h *tradingHandlers) setStopLoss(w http.ResponseWriter, r *http.Request) {
	id, err := positionID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body percentBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Percent < 0 || body.Percent > 100 {
		writeError(w, apperr.New(apperr.KindInvalidInput, "percent must be within [0, 100]"))
		return
	}
	if err := h.broker.SetStopLoss(r.Context(), id, body.Percent); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *tradingHandlers) setTrailingStop(w http.ResponseWriter, r *http.Request) {
	id, err := positionID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body percentBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Percent < 0 || body.Percent > 100 {
		writeError(w, apperr.New(apperr.KindInvalidInput, "percent must be within [0, 100]"))
		return
	}
	if err := h.broker.SetTrailingStop(r.Context(), id, body.Percent); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// positionID unescapes the {id} path segment: position ids from some
// brokers embed '/' and must be percent-encoded by the caller.
func positionID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "id")
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", apperr.New(apperr.KindInvalidInput, "malformed position id")
	}
	return id, nil
}
