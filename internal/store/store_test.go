package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/events"
)

func newTestStore(t *testing.T, maxSize int) *Store {
	s := New(Config{MaxNotifications: maxSize}, zerolog.Nop())
	t.Cleanup(s.Close)
	return s
}

func TestAppend_DedupReturnsExisting(t *testing.T) {
	s := newTestStore(t, 100)

	n := domain.Notification{ID: "n1", DedupKey: "news:abc123", Source: domain.SourceNews, Type: domain.NotificationNewsEvent, CreatedAt: time.Now()}

	first, isNew1 := s.Append(n)
	second, isNew2 := s.Append(domain.Notification{ID: "n2", DedupKey: "news:abc123", Source: domain.SourceNews, Type: domain.NotificationNewsEvent, CreatedAt: time.Now()})

	assert.True(t, isNew1)
	assert.False(t, isNew2)
	assert.Equal(t, first.ID, second.ID)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.TotalBySource["news"])
}

func TestMarkRead_Idempotent(t *testing.T) {
	s := newTestStore(t, 100)
	s.Append(domain.Notification{ID: "n1", DedupKey: "k1", CreatedAt: time.Now()})

	n1, err := s.MarkRead("n1")
	require.NoError(t, err)
	assert.True(t, n1.Read)

	n2, err := s.MarkRead("n1")
	require.NoError(t, err)
	assert.True(t, n2.Read)
}

func TestRespond_ImpliesRead(t *testing.T) {
	s := newTestStore(t, 100)
	s.Append(domain.Notification{ID: "n1", DedupKey: "k1", CreatedAt: time.Now(), Actions: []domain.Action{domain.ActionDismiss}})

	n, err := s.Respond("n1", "dismiss", nil)
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.True(t, n.Responded)
}

func TestRespond_RejectsUnknownAction(t *testing.T) {
	s := newTestStore(t, 100)
	s.Append(domain.Notification{ID: "n1", DedupKey: "k1", CreatedAt: time.Now()})

	_, err := s.Respond("n1", "launch_nukes", nil)
	require.Error(t, err)
}

func TestAppend_EvictsOldestAtCapacity(t *testing.T) {
	s := newTestStore(t, 2)

	s.Append(domain.Notification{ID: "n1", DedupKey: "k1", CreatedAt: time.Now()})
	s.Append(domain.Notification{ID: "n2", DedupKey: "k2", CreatedAt: time.Now()})
	s.Append(domain.Notification{ID: "n3", DedupKey: "k3", CreatedAt: time.Now()})

	_, err := s.Get("n1")
	assert.Error(t, err, "oldest notification should have been evicted")

	list := s.List(ListOptions{})
	assert.Len(t, list, 2)
}

func TestPruneOlderThan(t *testing.T) {
	s := newTestStore(t, 100)
	s.Append(domain.Notification{ID: "old", DedupKey: "k1", CreatedAt: time.Now().Add(-48 * time.Hour)})
	s.Append(domain.Notification{ID: "new", DedupKey: "k2", CreatedAt: time.Now()})

	removed := s.PruneOlderThan(context.Background(), time.Now().Add(-24*time.Hour))
	assert.Equal(t, 1, removed)

	_, err := s.Get("old")
	assert.Error(t, err)
	_, err = s.Get("new")
	assert.NoError(t, err)
}

func TestAppendAndMutations_PublishEvents(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	var mu sync.Mutex
	var seen []events.EventType
	record := func(e events.EventData) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.EventType())
	}
	bus.Subscribe(events.NotificationCreated, record)
	bus.Subscribe(events.NotificationRead, record)
	bus.Subscribe(events.NotificationResponded, record)
	bus.Subscribe(events.NotificationDeleted, record)

	s := New(Config{MaxNotifications: 100, Publisher: bus}, zerolog.Nop())
	defer s.Close()

	s.Append(domain.Notification{ID: "n1", DedupKey: "k1", CreatedAt: time.Now(), Actions: []domain.Action{domain.ActionDismiss}})
	s.Append(domain.Notification{ID: "n1-dup", DedupKey: "k1", CreatedAt: time.Now()}) // dedup, no event
	_, err := s.Respond("n1", "dismiss", nil)
	require.NoError(t, err)
	require.NoError(t, s.Delete("n1"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []events.EventType{
		events.NotificationCreated,
		events.NotificationResponded,
		events.NotificationDeleted,
	}, seen)
}
