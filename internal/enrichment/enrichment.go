// Package enrichment implements the Enrichment Service (C3): it turns a
// raw Draft into a fully-formed, deduplicated, AI-summarized Notification
// and hands it to the store and delivery fan-out.
package enrichment

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/ai"
	"github.com/sentineldesk/signalhub/internal/domain"
)

// Store is the subset of the Notification Store (C4) the enrichment
// pipeline needs: a dedup lookup and the append that makes a notification
// durable and visible to readers.
type Store interface {
	FindByDedupKey(dedupKey string) (domain.Notification, bool)
	Append(n domain.Notification) (domain.Notification, bool)
}

// Broadcaster is the subset of the Delivery Fan-out (C7) the enrichment
// pipeline needs: handing a freshly appended notification to every
// connected notifications-topic session.
type Broadcaster interface {
	BroadcastNotification(n domain.Notification)
}

// Service is the Enrichment Service (C3).
type Service struct {
	store       Store
	broadcaster Broadcaster
	summarizer  ai.Summarizer
	cache       *summaryCache
	log         zerolog.Logger

	warnings warningCounter
}

// warningCounter tracks non-fatal AI summarizer failures.
type warningCounter struct {
	mu    sync.Mutex
	count int
}

// New builds a Service.
func New(store Store, broadcaster Broadcaster, summarizer ai.Summarizer, log zerolog.Logger) *Service {
	return &Service{
		store:       store,
		broadcaster: broadcaster,
		summarizer:  summarizer,
		cache:       newSummaryCache(),
		log:         log.With().Str("component", "enrichment").Logger(),
	}
}

// Enrich turns d into a Notification, appends it to the store, and
// broadcasts it. If d's dedup_key already exists, the existing
// notification is returned unchanged and nothing is appended or
// broadcast again.
func (s *Service) Enrich(ctx context.Context, d domain.Draft) (domain.Notification, error) {
	dedupKey := DedupKey(d)
	if existing, ok := s.store.FindByDedupKey(dedupKey); ok {
		return existing, nil
	}

	symbol := d.Symbol
	if symbol == nil {
		if extracted, ok := ExtractSymbol(d.Title + " " + d.Message); ok {
			symbol = &extracted
		}
	}

	priority := domain.PriorityInfo
	if d.Priority != nil {
		priority = *d.Priority
	} else if d.Type == domain.NotificationNewsEvent {
		priority = ClassifyNewsPriority(d.Title, d.Message)
	} else {
		priority = DefaultPriorityForType(d.Type)
	}

	n := domain.Notification{
		ID:        uuid.NewString(),
		Type:      d.Type,
		Priority:  priority,
		Source:    d.Source,
		Title:     d.Title,
		Message:   d.Message,
		Symbol:    symbol,
		Metadata:  d.Metadata,
		Actions:   d.Actions,
		CreatedAt: time.Now(),
		DedupKey:  dedupKey,
	}

	n.SummarizedMessage = s.summarize(ctx, n)

	appended, isNew := s.store.Append(n)
	if isNew {
		s.broadcaster.BroadcastNotification(appended)
	}
	return appended, nil
}

// summarize requests an AI summary, falling back to a deterministic
// truncation of title/message on failure. Failures are non-fatal.
func (s *Service) summarize(ctx context.Context, n domain.Notification) *string {
	budget := n.Priority.SummaryWordBudget()
	key := summaryCacheKey(n.Type, n.Priority, n.Title, n.Message)

	if cached, ok := s.cache.get(key); ok {
		return &cached
	}

	summary, err := s.summarizer.SummarizeMessage(ctx, n, budget)
	if err != nil || strings.TrimSpace(summary) == "" {
		s.warnings.inc()
		s.log.Warn().Err(err).Str("notification_id", n.ID).Msg("AI summarization failed, using fallback truncation")
		summary = fallbackTruncate(n.Title, n.Message, budget)
	}

	s.cache.put(key, summary)
	return &summary
}

// fallbackTruncate deterministically truncates message (or title if message
// is empty) to at most budget words.
func fallbackTruncate(title, message string, budget int) string {
	source := message
	if strings.TrimSpace(source) == "" {
		source = title
	}
	words := strings.Fields(source)
	if len(words) > budget {
		words = words[:budget]
	}
	return strings.Join(words, " ")
}

func (w *warningCounter) inc() {
	w.mu.Lock()
	w.count++
	w.mu.Unlock()
}

// Warnings returns the number of non-fatal AI summarization failures seen
// so far, exposed for /system/status.
func (s *Service) Warnings() int {
	s.warnings.mu.Lock()
	defer s.warnings.mu.Unlock()
	return s.warnings.count
}
