package pollers

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/domain"
)

type fakeSocialSource struct {
	mentions []SocialMention
	err      error
	gotSince string
}

func (f *fakeSocialSource) FetchMentions(ctx context.Context, sinceID string) ([]SocialMention, error) {
	f.gotSince = sinceID
	if f.err != nil {
		return nil, f.err
	}
	return f.mentions, nil
}

type fakeNotifier struct {
	drafts []domain.Draft
}

func (f *fakeNotifier) Enrich(ctx context.Context, d domain.Draft) (domain.Notification, error) {
	f.drafts = append(f.drafts, d)
	return domain.Notification{}, nil
}

func TestSocialPoller_PromotesHighValueAccountToHigh(t *testing.T) {
	source := &fakeSocialSource{mentions: []SocialMention{
		{ID: "1", AuthorHandle: "whale_alert", Text: "BTC moving fast"},
	}}
	notifier := &fakeNotifier{}
	cfg := SocialPollerConfig{
		Interval:          time.Minute,
		HighValueAccounts: map[string]struct{}{"whale_alert": {}},
	}
	p := NewSocialPoller(source, notifier, nil, cfg, zerolog.Nop())

	require.NoError(t, p.cycle(context.Background()))
	require.Len(t, notifier.drafts, 1)
	assert.Equal(t, domain.PriorityHigh, *notifier.drafts[0].Priority)
	assert.Equal(t, "1", notifier.drafts[0].ExternalID)
	require.NotNil(t, notifier.drafts[0].Symbol)
	assert.Equal(t, "BTC/USDT", *notifier.drafts[0].Symbol)
}

func TestSocialPoller_EngagementThresholdPromotesToHigh(t *testing.T) {
	source := &fakeSocialSource{mentions: []SocialMention{
		{ID: "2", AuthorHandle: "rando", Text: "ETH pump", EngagementCount: 500},
	}}
	notifier := &fakeNotifier{}
	cfg := SocialPollerConfig{Interval: time.Minute, EngagementThreshold: 100}
	p := NewSocialPoller(source, notifier, nil, cfg, zerolog.Nop())

	require.NoError(t, p.cycle(context.Background()))
	require.Len(t, notifier.drafts, 1)
	assert.Equal(t, domain.PriorityHigh, *notifier.drafts[0].Priority)
}

func TestSocialPoller_DefaultsToMediumPriority(t *testing.T) {
	source := &fakeSocialSource{mentions: []SocialMention{
		{ID: "3", AuthorHandle: "rando", Text: "just chatting"},
	}}
	notifier := &fakeNotifier{}
	p := NewSocialPoller(source, notifier, nil, SocialPollerConfig{Interval: time.Minute}, zerolog.Nop())

	require.NoError(t, p.cycle(context.Background()))
	require.Len(t, notifier.drafts, 1)
	assert.Equal(t, domain.PriorityMedium, *notifier.drafts[0].Priority)
}

func TestSocialPoller_DedupsAcrossCycles(t *testing.T) {
	source := &fakeSocialSource{mentions: []SocialMention{{ID: "1", AuthorHandle: "a", Text: "x"}}}
	notifier := &fakeNotifier{}
	p := NewSocialPoller(source, notifier, nil, SocialPollerConfig{Interval: time.Minute}, zerolog.Nop())

	require.NoError(t, p.cycle(context.Background()))
	require.NoError(t, p.cycle(context.Background()))
	assert.Len(t, notifier.drafts, 1)
	assert.Equal(t, "1", source.gotSince)
}
