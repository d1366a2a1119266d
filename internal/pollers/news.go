package pollers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/enrichment"
)

// NewsArticle is one raw item returned by a news source.
type NewsArticle struct {
	ID          string
	Category    string
	Language    string
	Title       string
	Message     string
	PublishedAt time.Time
}

// NewsSource fetches articles newer than sinceID.
type NewsSource interface {
	FetchNews(ctx context.Context, sinceID string) ([]NewsArticle, error)
}

// NewsPollerConfig filters which articles are worth enriching.
type NewsPollerConfig struct {
	Interval          time.Duration
	AllowedCategories map[string]struct{} // empty means "all categories"
	AllowedLanguages  map[string]struct{} // empty means "all languages"
}

// NewsPoller is the news source poller: wake, fetch articles, filter by
// category/language, classify priority by keyword, hand off to enrichment.
type NewsPoller struct {
	source   NewsSource
	notifier Notifier
	dedup    *dedupTracker
	snapshot SnapshotStore
	cfg      NewsPollerConfig
	log      zerolog.Logger
	run      *runner
}

// NewNewsPoller builds a news poller and restores its dedup cursor from store.
func NewNewsPoller(source NewsSource, notifier Notifier, store SnapshotStore, cfg NewsPollerConfig, log zerolog.Logger) *NewsPoller {
	p := &NewsPoller{
		source:   source,
		notifier: notifier,
		dedup:    loadDedup(store, "news", defaultDedupWindow),
		snapshot: store,
		cfg:      cfg,
		log:      log.With().Str("poller", "news").Logger(),
	}
	p.run = newRunner("news", cfg.Interval, p.cycle, log)
	return p
}

func (p *NewsPoller) Start(ctx context.Context) { p.run.Start(ctx) }
func (p *NewsPoller) Stop()                     { p.run.Stop() }
func (p *NewsPoller) Status() Status            { return p.run.Status() }

func (p *NewsPoller) cycle(ctx context.Context) error {
	articles, err := p.source.FetchNews(ctx, p.dedup.last())
	if err != nil {
		persist(p.snapshot, "news", p.dedup, err.Error())
		return err
	}

	for _, a := range articles {
		if p.dedup.seenBefore(a.ID) {
			continue
		}
		p.dedup.record(a.ID)

		if !p.allowed(a) {
			continue
		}

		priority := enrichment.ClassifyNewsPriority(a.Title, a.Message)
		draft := domain.Draft{
			Type:       domain.NotificationNewsEvent,
			Priority:   &priority,
			Source:     domain.SourceNews,
			Title:      a.Title,
			Message:    a.Message,
			Metadata:   map[string]any{"category": a.Category, "language": a.Language},
			ExternalID: a.ID,
		}
		if symbol, ok := enrichment.ExtractSymbol(a.Title + " " + a.Message); ok {
			draft.Symbol = &symbol
		}

		if _, err := p.notifier.Enrich(ctx, draft); err != nil {
			p.log.Warn().Err(err).Str("article_id", a.ID).Msg("failed to enrich news article")
		}
	}

	persist(p.snapshot, "news", p.dedup, "")
	return nil
}

func (p *NewsPoller) allowed(a NewsArticle) bool {
	if len(p.cfg.AllowedCategories) > 0 {
		if _, ok := p.cfg.AllowedCategories[a.Category]; !ok {
			return false
		}
	}
	if len(p.cfg.AllowedLanguages) > 0 {
		if _, ok := p.cfg.AllowedLanguages[a.Language]; !ok {
			return false
		}
	}
	return true
}
