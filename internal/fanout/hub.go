package fanout

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// Hub tracks every live session per topic and fans events out to them. It
// holds no connection state itself — that lives on each Session — so a
// session disconnecting mid-broadcast only removes itself from the map
// and never blocks delivery to the others.
type Hub struct {
	mu       sync.RWMutex
	sessions map[Topic]map[*Session]struct{}
	log      zerolog.Logger
}

// NewHub builds an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[Topic]map[*Session]struct{}),
		log:      log.With().Str("component", "fanout").Logger(),
	}
}

// Register adds a session to its topic's set. Call once the session's
// Run loop has started.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.Topic]
	if !ok {
		set = make(map[*Session]struct{})
		h.sessions[s.Topic] = set
	}
	set[s] = struct{}{}
	h.log.Debug().Str("session_id", s.ID).Int("topic_sessions", len(set)).Msg("session registered")
}

// Unregister removes a session from its topic's set. Safe to call more
// than once.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.sessions[s.Topic]; ok {
		delete(set, s)
	}
}

// BroadcastNotification pushes a notification into every session on
// TopicNotifications' own presentation queue, so each session's voice/
// toast timing advances independently.
func (h *Hub) BroadcastNotification(n domain.Notification) {
	for _, s := range h.snapshot(TopicNotifications) {
		s.PresentNotification(n)
	}
}

// BroadcastPrices sends a price_update frame on TopicPrices to every
// session.
func (h *Hub) BroadcastPrices(prices map[string]float64) {
	frame := Frame{Type: frameTypePriceUpdate, Timestamp: time.Now().Unix(), Prices: prices}
	for _, s := range h.snapshot(TopicPrices) {
		s.SendFrame(frame, false)
	}
}

// BroadcastMarketData sends a price_update or ohlcv_update frame on
// TopicMarketData to every session subscribed to symbol (or subscribed to
// nothing, meaning "all").
func (h *Hub) BroadcastMarketData(frameType, symbol string, prices map[string]float64) {
	frame := Frame{Type: frameType, Timestamp: time.Now().Unix(), Prices: prices}
	for _, s := range h.snapshot(TopicMarketData) {
		if s.WantsSymbol(symbol) {
			s.SendFrame(frame, false)
		}
	}
}

// SessionCount returns the number of live sessions on topic.
func (h *Hub) SessionCount(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[topic])
}

func (h *Hub) snapshot(topic Topic) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.sessions[topic]
	out := make([]*Session, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}
