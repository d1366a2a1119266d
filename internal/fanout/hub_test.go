package fanout

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/domain"
)

func newTestSession(id string, topic Topic, presentation *PresentationQueue) *Session {
	return NewSession(id, topic, nil, presentation, zerolog.Nop())
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	h := NewHub(zerolog.Nop())
	s := newTestSession("s1", TopicPrices, nil)

	h.Register(s)
	assert.Equal(t, 1, h.SessionCount(TopicPrices))

	h.Unregister(s)
	assert.Equal(t, 0, h.SessionCount(TopicPrices))
}

func TestHub_BroadcastNotificationReachesEverySessionIndependently(t *testing.T) {
	h := NewHub(zerolog.Nop())
	q1 := NewPresentationQueue(0, nil)
	q2 := NewPresentationQueue(0, nil)
	s1 := newTestSession("s1", TopicNotifications, q1)
	s2 := newTestSession("s2", TopicNotifications, q2)
	h.Register(s1)
	h.Register(s2)

	h.BroadcastNotification(domain.Notification{ID: "n1", Priority: domain.PriorityHigh})

	require.Equal(t, StateSpeaking, q1.State())
	require.Equal(t, StateSpeaking, q2.State())
}

func TestHub_DisconnectedSessionDoesNotAffectOthers(t *testing.T) {
	h := NewHub(zerolog.Nop())
	s1 := newTestSession("s1", TopicMarketData, nil)
	s2 := newTestSession("s2", TopicMarketData, nil)
	h.Register(s1)
	h.Register(s2)

	h.Unregister(s1) // simulate s1 disconnecting mid-broadcast

	h.BroadcastMarketData(frameTypePriceUpdate, "BTC/USDT", map[string]float64{"BTC/USDT": 50000})
	assert.Equal(t, 1, h.SessionCount(TopicMarketData))
}

func TestSession_WantsSymbol_EmptySubscriptionMeansAll(t *testing.T) {
	s := newTestSession("s1", TopicMarketData, nil)
	assert.True(t, s.WantsSymbol("BTC/USDT"))

	s.setSubscriptions([]string{"ETH/USDT"})
	assert.False(t, s.WantsSymbol("BTC/USDT"))
	assert.True(t, s.WantsSymbol("ETH/USDT"))
}
