// Package store implements the Notification Store (C4): the authoritative
// in-memory log of notifications with secondary indexes, single-writer
// many-reader concurrency, and a configurable retention cap with
// oldest-first eviction.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/events"
)

// command is a single serialized mutation, processed by the writer loop in
// submission order. Every write to the store — even ones originating from
// concurrent goroutines — funnels through this channel, giving the store
// its single-writer discipline; readers take only the read side of mu.
type command struct {
	run  func() any
	done chan any
}

// Store is the Notification Store (C4).
type Store struct {
	mu       sync.RWMutex // guards the maps below; held briefly by the writer loop and by readers
	byID     map[string]domain.Notification
	byDedup  map[string]string // dedup_key -> id
	order    []string          // insertion order (oldest first); presentation order is its reverse
	maxSize  int

	commands chan command
	stop     chan struct{}
	wg       sync.WaitGroup

	publisher *events.Bus
	log       zerolog.Logger
}

// Config tunes the store's retention policy.
type Config struct {
	MaxNotifications int
	// Publisher receives NotificationCreated/Read/Responded/Deleted events.
	// Optional; nil disables event publication.
	Publisher *events.Bus
}

// New builds a Store and starts its writer loop.
func New(cfg Config, log zerolog.Logger) *Store {
	s := &Store{
		byID:      make(map[string]domain.Notification),
		byDedup:   make(map[string]string),
		maxSize:   cfg.MaxNotifications,
		commands:  make(chan command, 256),
		stop:      make(chan struct{}),
		publisher: cfg.Publisher,
		log:       log.With().Str("component", "notification_store").Logger(),
	}
	s.wg.Add(1)
	go s.writerLoop()
	return s
}

// publish hands e to the event bus, if one is configured.
func (s *Store) publish(e events.EventData) {
	if s.publisher != nil {
		s.publisher.Publish(e)
	}
}

// Close stops the writer loop, waiting for in-flight commands to finish.
func (s *Store) Close() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Store) writerLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		case cmd := <-s.commands:
			cmd.done <- cmd.run()
		}
	}
}

// submit enqueues fn on the writer loop and blocks for its result.
func (s *Store) submit(fn func() any) any {
	done := make(chan any, 1)
	s.commands <- command{run: fn, done: done}
	return <-done
}

// FindByDedupKey returns the notification with the given dedup_key, if any.
func (s *Store) FindByDedupKey(dedupKey string) (domain.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byDedup[dedupKey]
	if !ok {
		return domain.Notification{}, false
	}
	n := s.byID[id]
	return n, true
}

// Append inserts n, unless its dedup_key already exists, in which case the
// existing notification is returned with ok=false. Eviction of the oldest
// entry happens when the store is at capacity.
func (s *Store) Append(n domain.Notification) (domain.Notification, bool) {
	result := s.submit(func() any {
		s.mu.Lock()
		defer s.mu.Unlock()

		if existingID, ok := s.byDedup[n.DedupKey]; ok {
			return appendResult{n: s.byID[existingID], isNew: false}
		}

		if s.maxSize > 0 && len(s.order) >= s.maxSize {
			s.evictOldestLocked()
		}

		s.byID[n.ID] = n
		s.byDedup[n.DedupKey] = n.ID
		s.order = append(s.order, n.ID)
		return appendResult{n: n, isNew: true}
	})
	r := result.(appendResult)
	if r.isNew {
		s.publish(events.NotificationCreatedData{ID: r.n.ID, DedupKey: r.n.DedupKey})
	}
	return r.n, r.isNew
}

type appendResult struct {
	n     domain.Notification
	isNew bool
}

// evictOldestLocked removes the oldest notification. Caller must hold s.mu.
func (s *Store) evictOldestLocked() {
	if len(s.order) == 0 {
		return
	}
	oldestID := s.order[0]
	s.order = s.order[1:]
	if n, ok := s.byID[oldestID]; ok {
		delete(s.byDedup, n.DedupKey)
	}
	delete(s.byID, oldestID)
}

// Get returns the notification with id, or apperr.KindNotFound.
func (s *Store) Get(id string) (domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[id]
	if !ok {
		return domain.Notification{}, apperr.New(apperr.KindNotFound, "notification not found")
	}
	return n, nil
}

// ListOptions filters and bounds List results.
type ListOptions struct {
	Limit      int
	UnreadOnly bool
	Symbol     string
	Source     domain.Source
}

// List returns notifications in presentation order (most recently created
// first), optionally filtered, bounded by opts.Limit.
func (s *Store) List(opts ListOptions) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notification, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		n := s.byID[s.order[i]]
		if opts.UnreadOnly && n.Read {
			continue
		}
		if opts.Symbol != "" && (n.Symbol == nil || *n.Symbol != opts.Symbol) {
			continue
		}
		if opts.Source != "" && n.Source != opts.Source {
			continue
		}
		out = append(out, n)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out
}

// MarkRead sets read=true on id. Idempotent.
func (s *Store) MarkRead(id string) (domain.Notification, error) {
	result := s.submit(func() any {
		s.mu.Lock()
		defer s.mu.Unlock()
		n, ok := s.byID[id]
		if !ok {
			return mutateResult{err: apperr.New(apperr.KindNotFound, "notification not found")}
		}
		n.Read = true
		s.byID[id] = n
		return mutateResult{n: n}
	})
	r := result.(mutateResult)
	if r.err == nil {
		s.publish(events.NewNotificationRead(id))
	}
	return r.n, r.err
}

// Respond records a quick-action response. responded=true implies read=true.
func (s *Store) Respond(id, action string, customMessage *string) (domain.Notification, error) {
	if !domain.IsValidAction(action) {
		return domain.Notification{}, apperr.New(apperr.KindInvalidInput, "unknown action token")
	}
	result := s.submit(func() any {
		s.mu.Lock()
		defer s.mu.Unlock()
		n, ok := s.byID[id]
		if !ok {
			return mutateResult{err: apperr.New(apperr.KindNotFound, "notification not found")}
		}
		n.Read = true
		n.Responded = true
		n.ResponseAction = &action
		s.byID[id] = n
		return mutateResult{n: n}
	})
	r := result.(mutateResult)
	if r.err == nil {
		s.publish(events.NewNotificationResponded(id, action))
	}
	return r.n, r.err
}

type mutateResult struct {
	n   domain.Notification
	err error
}

// Delete removes id from the store.
func (s *Store) Delete(id string) error {
	result := s.submit(func() any {
		s.mu.Lock()
		defer s.mu.Unlock()
		n, ok := s.byID[id]
		if !ok {
			return apperr.New(apperr.KindNotFound, "notification not found")
		}
		delete(s.byID, id)
		delete(s.byDedup, n.DedupKey)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return nil
	})
	if result == nil {
		s.publish(events.NewNotificationDeleted(id))
		return nil
	}
	return result.(error)
}

// Summary is the stats payload for GET /notifications/stats/summary.
type Summary struct {
	Total          int                      `json:"total"`
	UnreadCount    int                      `json:"unread_count"`
	ByPriority     map[string]int           `json:"by_priority"`
	TotalBySource  map[string]int           `json:"total_by_source"`
}

// Stats computes the current Summary.
func (s *Store) Stats() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{ByPriority: map[string]int{}, TotalBySource: map[string]int{}}
	for _, id := range s.order {
		n := s.byID[id]
		sum.Total++
		if !n.Read {
			sum.UnreadCount++
		}
		sum.ByPriority[n.Priority.String()]++
		sum.TotalBySource[string(n.Source)]++
	}
	return sum
}

// PruneOlderThan removes notifications created before cutoff, returning the
// number removed. Used by the retention sweep in addition to the cap-based
// eviction Append performs inline.
func (s *Store) PruneOlderThan(_ context.Context, cutoff time.Time) int {
	result := s.submit(func() any {
		s.mu.Lock()
		defer s.mu.Unlock()

		kept := s.order[:0]
		removed := 0
		for _, id := range s.order {
			n := s.byID[id]
			if n.CreatedAt.Before(cutoff) {
				delete(s.byID, id)
				delete(s.byDedup, n.DedupKey)
				removed++
				continue
			}
			kept = append(kept, id)
		}
		s.order = kept
		return removed
	})
	return result.(int)
}
