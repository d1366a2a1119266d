package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/enrichment"
	"github.com/sentineldesk/signalhub/internal/store"
)

type notificationHandlers struct {
	store      *store.Store
	enrichment *enrichment.Service
	log        zerolog.Logger
}

func (h *notificationHandlers) list(w http.ResponseWriter, r *http.Request) {
	opts := store.ListOptions{
		Symbol:     r.URL.Query().Get("symbol"),
		UnreadOnly: r.URL.Query().Get("unread_only") == "true",
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			opts.Limit = limit
		}
	}

	notifications := h.store.List(opts)
	stats := h.store.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"total":         stats.Total,
		"unread_count":  stats.UnreadCount,
	})
}

func (h *notificationHandlers) get(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *notificationHandlers) summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

type notificationDraftBody struct {
	Type       domain.NotificationType `json:"type"`
	Priority   *string                 `json:"priority,omitempty"`
	Source     domain.Source           `json:"source"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	Symbol     *string                 `json:"symbol,omitempty"`
	Metadata   map[string]any          `json:"metadata,omitempty"`
	ExternalID string                  `json:"external_id,omitempty"`
}

func (h *notificationHandlers) create(w http.ResponseWriter, r *http.Request) {
	var body notificationDraftBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Title == "" {
		writeError(w, apperr.New(apperr.KindInvalidInput, "title is required"))
		return
	}

	draft := domain.Draft{
		Type:       body.Type,
		Source:     body.Source,
		Title:      body.Title,
		Message:    body.Message,
		Symbol:     body.Symbol,
		Metadata:   body.Metadata,
		ExternalID: body.ExternalID,
	}
	if body.Priority != nil {
		p := domain.ParsePriority(*body.Priority)
		draft.Priority = &p
	}

	n, err := h.enrichment.Enrich(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

type notificationPatchBody struct {
	Read           *bool   `json:"read,omitempty"`
	Responded      *bool   `json:"responded,omitempty"`
	ResponseAction *string `json:"response_action,omitempty"`
}

func (h *notificationHandlers) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body notificationPatchBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	var n domain.Notification
	var err error
	switch {
	case body.Responded != nil && *body.Responded:
		action := ""
		if body.ResponseAction != nil {
			action = *body.ResponseAction
		}
		n, err = h.store.Respond(id, action, body.ResponseAction)
	case body.Read != nil && *body.Read:
		n, err = h.store.MarkRead(id)
	default:
		n, err = h.store.Get(id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *notificationHandlers) respond(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	action := r.URL.Query().Get("action")
	var customMessage *string
	if cm := r.URL.Query().Get("custom_message"); cm != "" {
		customMessage = &cm
	}

	n, err := h.store.Respond(id, action, customMessage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *notificationHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
