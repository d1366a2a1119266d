package enrichment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/ai"
	"github.com/sentineldesk/signalhub/internal/domain"
)

type fakeStore struct {
	mu    sync.Mutex
	byKey map[string]domain.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{byKey: make(map[string]domain.Notification)}
}

func (f *fakeStore) FindByDedupKey(key string) (domain.Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.byKey[key]
	return n, ok
}

func (f *fakeStore) Append(n domain.Notification) (domain.Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byKey[n.DedupKey]; ok {
		return existing, false
	}
	f.byKey[n.DedupKey] = n
	return n, true
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	count int
}

func (f *fakeBroadcaster) BroadcastNotification(n domain.Notification) {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()
}

type failingSummarizer struct{}

func (failingSummarizer) SummarizeMessage(ctx context.Context, n domain.Notification, budget int) (string, error) {
	return "", errors.New("ai unavailable")
}

func TestEnrich_DedupReturnsExistingWithoutReBroadcast(t *testing.T) {
	store := newFakeStore()
	bc := &fakeBroadcaster{}
	svc := New(store, bc, ai.StubAssistant{}, zerolog.Nop())

	draft := domain.Draft{
		Type: domain.NotificationNewsEvent, Source: domain.SourceNews,
		Title: "x", Message: "y", ExternalID: "abc123",
	}

	first, err := svc.Enrich(context.Background(), draft)
	require.NoError(t, err)

	second, err := svc.Enrich(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, bc.count)
}

func TestEnrich_FallsBackOnSummarizerFailure(t *testing.T) {
	store := newFakeStore()
	bc := &fakeBroadcaster{}
	svc := New(store, bc, failingSummarizer{}, zerolog.Nop())

	draft := domain.Draft{
		Type: domain.NotificationNewsEvent, Source: domain.SourceNews,
		Title: "Breaking", Message: "BTC exchange was hacked overnight", ExternalID: "n1",
	}

	n, err := svc.Enrich(context.Background(), draft)
	require.NoError(t, err)
	require.NotNil(t, n.SummarizedMessage)
	assert.NotEmpty(t, *n.SummarizedMessage)
	assert.Equal(t, domain.PriorityHigh, n.Priority)
	assert.Equal(t, 1, svc.Warnings())
}

func TestEnrich_ExtractsSymbolFromMessage(t *testing.T) {
	store := newFakeStore()
	bc := &fakeBroadcaster{}
	svc := New(store, bc, ai.StubAssistant{}, zerolog.Nop())

	draft := domain.Draft{
		Type: domain.NotificationSocialSurge, Source: domain.SourceTwitter,
		Title: "mention", Message: "everyone is talking about $shib today", ExternalID: "s1",
	}

	n, err := svc.Enrich(context.Background(), draft)
	require.NoError(t, err)
	require.NotNil(t, n.Symbol)
	assert.Equal(t, "SHIB/USDT", *n.Symbol)
}
