package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/sentineldesk/signalhub/internal/fanout"
)

type websocketHandlers struct {
	hub           *fanout.Hub
	toastDuration time.Duration
	log           zerolog.Logger
}

func (h *websocketHandlers) notifications(w http.ResponseWriter, r *http.Request) {
	queue := fanout.NewPresentationQueue(h.toastDuration, time.Now)
	h.serve(w, r, fanout.TopicNotifications, queue)
}

func (h *websocketHandlers) prices(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, fanout.TopicPrices, nil)
}

func (h *websocketHandlers) marketData(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, fanout.TopicMarketData, nil)
}

func (h *websocketHandlers) serve(w http.ResponseWriter, r *http.Request, topic fanout.Topic, presentation *fanout.PresentationQueue) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("topic", string(topic)).Msg("websocket upgrade failed")
		return
	}

	session := fanout.NewSession(uuid.NewString(), topic, conn, presentation, h.log)
	h.hub.Register(session)
	defer h.hub.Unregister(session)

	session.Run(r.Context())
}
