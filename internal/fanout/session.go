package fanout

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/sentineldesk/signalhub/internal/domain"
)

const (
	livenessInterval = 30 * time.Second
	livenessTimeout  = 10 * time.Second
	maxMissedPings   = 2
	writeTimeout     = 10 * time.Second
	presentationTick = 250 * time.Millisecond
	outboxCapacity   = 64
)

// Session is one connected client's actor: it owns a WebSocket connection,
// an outbound buffer, and — for a TopicNotifications session — a
// PresentationQueue. Every external interaction with a session goes
// through its exported methods, which post work rather than touch
// connection state directly, so Run's goroutines are the only code that
// ever calls conn.Read/conn.Write.
type Session struct {
	ID    string
	Topic Topic

	conn *websocket.Conn
	log  zerolog.Logger

	outbox       *outbox
	presentation *PresentationQueue

	subMu         sync.RWMutex
	subscriptions map[string]struct{} // empty set means "all symbols"

	closed    chan struct{}
	closeOnce sync.Once
}

// NewSession wraps an accepted WebSocket connection. presentation may be
// nil for sessions on topics other than TopicNotifications.
func NewSession(id string, topic Topic, conn *websocket.Conn, presentation *PresentationQueue, log zerolog.Logger) *Session {
	return &Session{
		ID:            id,
		Topic:         topic,
		conn:          conn,
		log:           log.With().Str("session_id", id).Str("topic", string(topic)).Logger(),
		outbox:        newOutbox(outboxCapacity),
		presentation:  presentation,
		subscriptions: make(map[string]struct{}),
		closed:        make(chan struct{}),
	}
}

// Run drives the session until ctx is cancelled or the connection closes.
// Call it in its own goroutine; it blocks until the session is done.
func (s *Session) Run(ctx context.Context) {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.readLoop(sessionCtx) }()
	go func() { defer wg.Done(); s.writeLoop(sessionCtx) }()

	s.sendFrame(Frame{Type: frameTypeConnected, Timestamp: time.Now().Unix()}, false)

	s.livenessAndPresentationLoop(sessionCtx)
	cancel()
	wg.Wait()
}

// Close closes the underlying connection with the given close code and
// reason, idempotently.
func (s *Session) Close(code websocket.StatusCode, reason string) {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.Close(code, reason)
	})
}

// PresentNotification feeds a notification into this session's
// presentation queue and acts on whatever event results.
func (s *Session) PresentNotification(n domain.Notification) {
	if s.presentation == nil {
		return
	}
	s.dispatchPresentationEvent(s.presentation.Send(n))
}

// WantsSymbol reports whether this session is currently subscribed to
// symbol (market-data topic only; an empty subscription set means all
// symbols are wanted).
func (s *Session) WantsSymbol(symbol string) bool {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	if len(s.subscriptions) == 0 {
		return true
	}
	_, ok := s.subscriptions[symbol]
	return ok
}

// SendFrame enqueues a frame for delivery, marking it critical for
// backpressure purposes when asked.
func (s *Session) SendFrame(f Frame, critical bool) {
	s.sendFrame(f, critical)
}

func (s *Session) sendFrame(f Frame, critical bool) {
	data, err := json.Marshal(f)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal outbound frame")
		return
	}
	if err := s.outbox.push(data, critical); err != nil {
		s.log.Warn().Err(err).Msg("session outbound buffer saturated with critical frames, closing as lagging")
		s.Close(websocket.StatusPolicyViolation, "lagging")
	}
}

func (s *Session) dispatchPresentationEvent(evt Event) {
	switch evt.Kind {
	case EventPresent:
		n := evt.Notification
		s.sendFrame(Frame{Type: frameTypePresent, Notification: &n, Timestamp: time.Now().Unix()}, n.Priority == domain.PriorityCritical)
	case EventPreempt:
		s.sendFrame(Frame{Type: frameTypeDismiss, Timestamp: time.Now().Unix()}, true)
		n := evt.Notification
		s.sendFrame(Frame{Type: frameTypePresent, Notification: &n, Timestamp: time.Now().Unix()}, n.Priority == domain.PriorityCritical)
	}
}

func (s *Session) readLoop(ctx context.Context) {
	defer s.Close(websocket.StatusNormalClosure, "")
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			return
		}

		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}

		switch base.Type {
		case "ack":
			var f ackFrame
			if err := json.Unmarshal(data, &f); err != nil {
				continue
			}
			s.handleAck(f.Action)
		case frameTypeSubscribe:
			var f subscribeFrame
			if err := json.Unmarshal(data, &f); err != nil {
				continue
			}
			s.setSubscriptions(f.Symbols)
			s.sendFrame(Frame{Type: frameTypeSubscribed, Symbols: f.Symbols}, false)
		case frameTypeUnsubscribe:
			s.setSubscriptions(nil)
		}
	}
}

func (s *Session) handleAck(action ackAction) {
	if s.presentation == nil {
		return
	}
	switch action {
	case ackVoiceDone:
		s.dispatchPresentationEvent(s.presentation.VoiceDone())
	case ackToastDismissed:
		s.dispatchPresentationEvent(s.presentation.ToastDismissed())
	}
}

func (s *Session) setSubscriptions(symbols []string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscriptions = make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		s.subscriptions[sym] = struct{}{}
	}
}

func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-s.outbox.notify:
			for {
				f, ok := s.outbox.pop()
				if !ok {
					break
				}
				writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
				err := s.conn.Write(writeCtx, websocket.MessageText, f.data)
				cancel()
				if err != nil {
					s.Close(websocket.StatusInternalError, "write failed")
					return
				}
			}
		}
	}
}

func (s *Session) livenessAndPresentationLoop(ctx context.Context) {
	pingTicker := time.NewTicker(livenessInterval)
	defer pingTicker.Stop()

	var presentTicker *time.Ticker
	var presentC <-chan time.Time
	if s.presentation != nil {
		presentTicker = time.NewTicker(presentationTick)
		defer presentTicker.Stop()
		presentC = presentTicker.C
	}

	missed := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-pingTicker.C:
			pingCtx, cancel := context.WithTimeout(ctx, livenessTimeout)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				missed++
				s.log.Warn().Err(err).Int("missed_pings", missed).Msg("liveness ping failed")
				if missed >= maxMissedPings {
					s.Close(websocket.StatusPolicyViolation, "liveness check failed")
					return
				}
				continue
			}
			missed = 0
		case <-presentC:
			s.dispatchPresentationEvent(s.presentation.Tick())
		}
	}
}
