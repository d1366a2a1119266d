package store

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RetentionSweeper periodically prunes notifications older than a
// configured age, independent of the cap-based eviction Append performs
// inline. Runs on its own cron schedule so the sweep cadence can be tuned
// without touching the hot append path.
type RetentionSweeper struct {
	store *Store
	age   time.Duration
	log   zerolog.Logger
	cron  *cron.Cron
}

// NewRetentionSweeper builds a sweeper that prunes notifications older than
// age, running every hour.
func NewRetentionSweeper(s *Store, age time.Duration, log zerolog.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		store: s,
		age:   age,
		log:   log.With().Str("component", "retention_sweeper").Logger(),
		cron:  cron.New(),
	}
}

// Start schedules the hourly sweep. Safe to call once.
func (r *RetentionSweeper) Start() error {
	_, err := r.cron.AddFunc("@hourly", r.sweep)
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop cancels the schedule, waiting for any in-flight sweep to finish.
func (r *RetentionSweeper) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *RetentionSweeper) sweep() {
	cutoff := time.Now().Add(-r.age)
	removed := r.store.PruneOlderThan(context.Background(), cutoff)
	if removed > 0 {
		r.log.Info().Int("removed", removed).Time("cutoff", cutoff).Msg("retention sweep pruned notifications")
	}
}
