package store

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/worldchart/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for cached payloads and live
// snapshots.
type Store interface {
	// Cache entries
	GetEntry(ctx context.Context, key string) (*model.CacheEntry, error)
	PutEntry(ctx context.Context, entry *model.CacheEntry) error
	ListEntries(ctx context.Context) ([]*model.CacheEntry, error)
	DeleteEntry(ctx context.Context, key string) error

	// Live snapshots
	SaveLiveSnapshot(ctx context.Context, snap *model.LiveSnapshot) error
	LatestLiveSnapshot(ctx context.Context) (*model.LiveSnapshot, error)
	PruneLiveSnapshots(ctx context.Context, keep int) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
