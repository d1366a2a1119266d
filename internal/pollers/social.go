package pollers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/enrichment"
)

// SocialMention is one raw item returned by a social source: a post or
// reply mentioning a handle the poller tracks.
type SocialMention struct {
	ID              string
	AuthorHandle    string
	Text            string
	EngagementCount int
	PostedAt        time.Time
}

// SocialSource fetches mentions newer than sinceID (empty means "from the
// beginning"), resolving handles to canonical user IDs as needed
// internally.
type SocialSource interface {
	FetchMentions(ctx context.Context, sinceID string) ([]SocialMention, error)
}

// SocialPollerConfig tunes the social poller's priority promotion rules.
type SocialPollerConfig struct {
	Interval            time.Duration
	HighValueAccounts   map[string]struct{} // handles that always promote to high
	EngagementThreshold int                 // engagement count that promotes to high
}

// SocialPoller is the social source poller: wake, fetch mentions, extract
// symbols, classify priority, hand off to enrichment.
type SocialPoller struct {
	source   SocialSource
	notifier Notifier
	dedup    *dedupTracker
	snapshot SnapshotStore
	cfg      SocialPollerConfig
	log      zerolog.Logger
	run      *runner
}

// NewSocialPoller builds a social poller and restores its dedup cursor
// from store.
func NewSocialPoller(source SocialSource, notifier Notifier, store SnapshotStore, cfg SocialPollerConfig, log zerolog.Logger) *SocialPoller {
	p := &SocialPoller{
		source:   source,
		notifier: notifier,
		dedup:    loadDedup(store, "social", defaultDedupWindow),
		snapshot: store,
		cfg:      cfg,
		log:      log.With().Str("poller", "social").Logger(),
	}
	p.run = newRunner("social", cfg.Interval, p.cycle, log)
	return p
}

func (p *SocialPoller) Start(ctx context.Context) { p.run.Start(ctx) }
func (p *SocialPoller) Stop()                     { p.run.Stop() }
func (p *SocialPoller) Status() Status            { return p.run.Status() }

func (p *SocialPoller) cycle(ctx context.Context) error {
	mentions, err := p.source.FetchMentions(ctx, p.dedup.last())
	if err != nil {
		persist(p.snapshot, "social", p.dedup, err.Error())
		return err
	}

	for _, m := range mentions {
		if p.dedup.seenBefore(m.ID) {
			continue
		}
		p.dedup.record(m.ID)

		priority := p.classify(m)
		draft := domain.Draft{
			Type:       domain.NotificationSocialSurge,
			Priority:   &priority,
			Source:     domain.SourceTwitter,
			Title:      "Social mention: " + m.AuthorHandle,
			Message:    m.Text,
			Metadata:   map[string]any{"author_handle": m.AuthorHandle, "engagement_count": m.EngagementCount},
			ExternalID: m.ID,
		}
		if symbol, ok := enrichment.ExtractSymbol(m.Text); ok {
			draft.Symbol = &symbol
		}

		if _, err := p.notifier.Enrich(ctx, draft); err != nil {
			p.log.Warn().Err(err).Str("mention_id", m.ID).Msg("failed to enrich social mention")
		}
	}

	persist(p.snapshot, "social", p.dedup, "")
	return nil
}

// classify promotes to high for high-value accounts or items crossing the
// engagement threshold, defaulting to medium otherwise.
func (p *SocialPoller) classify(m SocialMention) domain.Priority {
	if _, ok := p.cfg.HighValueAccounts[m.AuthorHandle]; ok {
		return domain.PriorityHigh
	}
	if p.cfg.EngagementThreshold > 0 && m.EngagementCount >= p.cfg.EngagementThreshold {
		return domain.PriorityHigh
	}
	return domain.PriorityMedium
}
