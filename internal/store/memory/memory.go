// Package memory implements store.Store in process memory. It backs the
// service when no database is configured and doubles as a test fake.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/store"
)

// Store is an in-memory store.Store.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]*model.CacheEntry
	snapshots []*model.LiveSnapshot
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]*model.CacheEntry)}
}

func (s *Store) GetEntry(_ context.Context, key string) (*model.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("cache entry %q: %w", key, store.ErrNotFound)
	}
	return cloneEntry(e), nil
}

func (s *Store) PutEntry(_ context.Context, e *model.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Key] = cloneEntry(e)
	return nil
}

func (s *Store) ListEntries(_ context.Context) ([]*model.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.CacheEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Store) DeleteEntry(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return fmt.Errorf("cache entry %q: %w", key, store.ErrNotFound)
	}
	delete(s.entries, key)
	return nil
}

func (s *Store) SaveLiveSnapshot(_ context.Context, snap *model.LiveSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	s.snapshots = append(s.snapshots, &cp)
	return nil
}

func (s *Store) LatestLiveSnapshot(_ context.Context) (*model.LiveSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *model.LiveSnapshot
	for _, snap := range s.snapshots {
		if latest == nil || !snap.UpdatedAt.Before(latest.UpdatedAt) {
			latest = snap
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("live snapshot: %w", store.ErrNotFound)
	}
	cp := *latest
	return &cp, nil
}

func (s *Store) PruneLiveSnapshots(_ context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.snapshots, func(i, j int) bool {
		return s.snapshots[i].UpdatedAt.Before(s.snapshots[j].UpdatedAt)
	})
	if n := len(s.snapshots); n > keep {
		s.snapshots = append([]*model.LiveSnapshot(nil), s.snapshots[n-keep:]...)
	}
	return nil
}

// RunInTransaction calls fn with the store itself. Writes are not rolled
// back when fn fails.
func (s *Store) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func cloneEntry(e *model.CacheEntry) *model.CacheEntry {
	cp := *e
	cp.Data = append([]byte(nil), e.Data...)
	cp.Query.Stats = append([]model.Statistic(nil), e.Query.Stats...)
	return &cp
}
