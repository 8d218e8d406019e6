// Package live keeps the resident hourly live snapshot that the live
// comparison chart reads from.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/events"
	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/store"
)

// DefaultKeep is how many snapshots are retained in the store.
const DefaultKeep = 24

// Fetcher retrieves the current snapshot from the upstream.
type Fetcher interface {
	FetchLive(ctx context.Context) (*model.LiveSnapshot, error)
}

// Holder owns the current snapshot. Readers get an immutable pointer; a
// newer snapshot replaces it wholesale.
type Holder struct {
	fetcher   Fetcher
	store     store.Store
	publisher events.Publisher
	logger    *slog.Logger
	keep      int

	mu   sync.RWMutex
	snap *model.LiveSnapshot
}

// NewHolder returns an empty holder. st and pub may be nil.
func NewHolder(f Fetcher, st store.Store, pub events.Publisher, logger *slog.Logger) *Holder {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Holder{fetcher: f, store: st, publisher: pub, logger: logger, keep: DefaultKeep}
}

// Current returns the newest snapshot, or nil before the first load.
func (h *Holder) Current() *model.LiveSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// swap installs snap if it is newer than the current one.
func (h *Holder) swap(snap *model.LiveSnapshot) bool {
	if snap == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.snap != nil && !snap.UpdatedAt.After(h.snap.UpdatedAt) {
		return false
	}
	h.snap = snap
	return true
}

// Restore loads the newest persisted snapshot. A store without snapshots is
// not an error.
func (h *Holder) Restore(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	snap, err := h.store.LatestLiveSnapshot(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore live snapshot: %w", err)
	}
	h.swap(snap)
	return nil
}

// Refresh fetches a snapshot from the upstream, installs it, persists it
// and announces it on the event bus.
func (h *Holder) Refresh(ctx context.Context) error {
	snap, err := h.fetcher.FetchLive(ctx)
	if err != nil {
		return fmt.Errorf("fetch live snapshot: %w", err)
	}
	if !h.swap(snap) {
		return nil
	}
	if err := h.persist(ctx, snap); err != nil {
		h.logger.Warn("live: persist failed", "err", err)
	}
	if err := h.publisher.Publish(ctx, events.TopicLiveUpdated, events.LiveUpdated{
		Snapshot:  snap,
		UpdatedAt: snap.UpdatedAt,
		Source:    "refresh",
	}); err != nil {
		h.logger.Warn("live: publish failed", "err", err)
	}
	return nil
}

func (h *Holder) persist(ctx context.Context, snap *model.LiveSnapshot) error {
	if h.store == nil {
		return nil
	}
	return h.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.SaveLiveSnapshot(ctx, snap); err != nil {
			return err
		}
		return tx.PruneLiveSnapshots(ctx, h.keep)
	})
}

// Run refreshes immediately and then every interval until ctx is done.
func (h *Holder) Run(ctx context.Context, interval time.Duration) {
	if err := h.Refresh(ctx); err != nil {
		h.logger.Warn("live: refresh failed", "err", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.Refresh(ctx); err != nil {
				h.logger.Warn("live: refresh failed", "err", err)
			}
		}
	}
}

// StartSubscriber installs snapshots announced by other replicas. An
// announcement without a snapshot body triggers a local fetch. It blocks
// until ctx is cancelled.
func (h *Holder) StartSubscriber(ctx context.Context, sub events.Subscriber) error {
	ch, cancel, err := sub.Subscribe(events.TopicLiveUpdated)
	if err != nil {
		return fmt.Errorf("live: subscribe: %w", err)
	}
	defer cancel()

	h.logger.Info("live: subscriber started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("live: subscriber stopping")
			return nil
		case raw, ok := <-ch:
			if !ok {
				h.logger.Info("live: subscription channel closed")
				return nil
			}
			h.handle(ctx, raw)
		}
	}
}

func (h *Holder) handle(ctx context.Context, raw []byte) {
	var ev events.LiveUpdated
	if err := json.Unmarshal(raw, &ev); err != nil {
		h.logger.Warn("live: bad event payload", "err", err)
		return
	}

	if ev.Snapshot != nil {
		if h.swap(ev.Snapshot) {
			h.logger.Debug("live: snapshot installed from event", "source", ev.Source, "updated_at", ev.Snapshot.UpdatedAt)
		}
		return
	}

	if cur := h.Current(); cur != nil && !ev.UpdatedAt.After(cur.UpdatedAt) {
		return
	}
	snap, err := h.fetcher.FetchLive(ctx)
	if err != nil {
		h.logger.Warn("live: fetch after event failed", "err", err)
		return
	}
	h.swap(snap)
}
