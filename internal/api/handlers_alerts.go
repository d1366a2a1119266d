package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/domain"
)

type alertHandlers struct {
	repo AlertRepository
	log  zerolog.Logger
}

func (h *alertHandlers) list(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.repo.List(r.URL.Query().Get("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *alertHandlers) create(w http.ResponseWriter, r *http.Request) {
	var a domain.Alert
	if err := decodeJSON(r, &a); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.repo.Create(a)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type alertPatchBody struct {
	Enabled        *bool    `json:"enabled,omitempty"`
	PriceThreshold *float64 `json:"price_threshold,omitempty"`
	IndicatorValue *float64 `json:"indicator_value,omitempty"`
}

func (h *alertHandlers) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body alertPatchBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if body.Enabled != nil {
		if err := h.repo.SetEnabled(id, *body.Enabled); err != nil {
			writeError(w, err)
			return
		}
	}
	if body.PriceThreshold != nil || body.IndicatorValue != nil {
		if err := h.repo.UpdateThreshold(id, body.PriceThreshold, body.IndicatorValue); err != nil {
			writeError(w, err)
			return
		}
	}

	a, err := h.repo.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *alertHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
