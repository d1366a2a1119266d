package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/tts"
)

type voiceHandlers struct {
	tts *tts.Service
	log zerolog.Logger
}

func (h *voiceHandlers) providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"providers": h.tts.ProviderNames()})
}

type synthesizeBody struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

func (h *voiceHandlers) synthesize(w http.ResponseWriter, r *http.Request) {
	var body synthesizeBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Text == "" {
		writeError(w, apperr.New(apperr.KindInvalidInput, "text is required"))
		return
	}

	priority := domain.ParsePriority(body.Priority)
	audio, err := h.tts.Synthesize(r.Context(), body.Text, priority)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", audio.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio.Data)
}
