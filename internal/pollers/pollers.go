package pollers

import (
	"context"

	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/snapshot"
)

// Notifier is the subset of the Enrichment Service (C3) every content
// poller needs: hand a raw Draft to enrichment and let it dedupe,
// summarize, store, and broadcast.
type Notifier interface {
	Enrich(ctx context.Context, d domain.Draft) (domain.Notification, error)
}

// SnapshotStore persists and restores a poller's dedup cursor across
// restarts (C2's "advance-cursor→persist" step). Satisfied by
// *snapshot.Store.
type SnapshotStore interface {
	Load(source string) (snapshot.State, bool, error)
	Save(source string, st snapshot.State) error
}

// loadDedup restores a dedup tracker for source from store, falling back
// to an empty tracker when nothing has been persisted yet.
func loadDedup(store SnapshotStore, source string, window int) *dedupTracker {
	if store == nil {
		return newDedupTracker(nil, window)
	}
	st, ok, err := store.Load(source)
	if err != nil || !ok {
		return newDedupTracker(nil, window)
	}
	return newDedupTracker(st.SeenIDs, window)
}

// persist writes the tracker's current window back to store, recording
// lastErr (empty string clears it). No-op if store is nil.
func persist(store SnapshotStore, source string, tracker *dedupTracker, lastErr string) {
	if store == nil {
		return
	}
	_ = store.Save(source, snapshot.State{
		LastSeenID: tracker.last(),
		SeenIDs:    tracker.ids(),
		LastError:  lastErr,
	})
}
