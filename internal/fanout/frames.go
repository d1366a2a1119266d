package fanout

import "github.com/sentineldesk/signalhub/internal/domain"

// Frame is the envelope for every message exchanged on a session's
// WebSocket, keyed by Type the way spec's wire protocol expects.
type Frame struct {
	Type      string                 `json:"type"`
	Timestamp int64                  `json:"timestamp,omitempty"`
	Notification *domain.Notification `json:"notification,omitempty"`
	Prices    map[string]float64     `json:"prices,omitempty"`
	Symbols   []string               `json:"symbols,omitempty"`
	Message   string                 `json:"message,omitempty"`
}

const (
	frameTypeConnected   = "connected"
	frameTypePing        = "ping"
	frameTypePong        = "pong"
	frameTypeAck         = "ack"
	frameTypePresent     = "present"
	frameTypeVoiceDone   = "voice_done"
	frameTypeDismiss     = "dismiss"
	frameTypeSubscribe   = "subscribe"
	frameTypeUnsubscribe = "unsubscribe"
	frameTypeSubscribed  = "subscribed"
	frameTypePriceUpdate = "price_update"
	frameTypeOHLCVUpdate = "ohlcv_update"
	frameTypeLagging     = "lagging"
	frameTypeError       = "error"
)

// ackAction identifies which client action an inbound "ack" frame reports,
// per /ws/notifications's ack frame contract.
type ackAction string

const (
	ackVoiceDone      ackAction = "voice_done"
	ackToastDismissed ackAction = "toast_dismissed"
)

type ackFrame struct {
	Type   string    `json:"type"`
	Action ackAction `json:"action"`
}

type subscribeFrame struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}
