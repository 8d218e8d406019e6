// Package cache memoizes upstream payloads by query key. Lookups go through
// process memory, then the persistent store, then the upstream source.
// Entries never expire; a new fetch for the same key overwrites the old one.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alfredjeanlab/worldchart/internal/events"
	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/store"
)

// Source fetches raw payloads from the upstream API.
type Source interface {
	Fetch(ctx context.Context, q model.Query) (*model.Payload, error)
}

// Cache is a memoizing Source shared by every pipeline invocation.
type Cache struct {
	source    Source
	store     store.Store
	publisher events.Publisher
	logger    *slog.Logger
	codec     *codec
	now       func() time.Time

	group singleflight.Group

	mu  sync.RWMutex
	mem map[string]*model.Payload
}

// New returns a cache reading through to src. st and pub may be nil.
func New(src Source, st store.Store, pub events.Publisher, logger *slog.Logger) (*Cache, error) {
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		source:    src,
		store:     st,
		publisher: pub,
		logger:    logger,
		codec:     c,
		now:       time.Now,
		mem:       make(map[string]*model.Payload),
	}, nil
}

// Fetch returns the payload for q. Concurrent calls for the same key share
// one lookup, which runs detached from any single caller's cancellation;
// each caller stops waiting when its own ctx is done. Upstream errors are
// returned unmodified and nothing is cached.
// Returned payloads are shared and must not be modified.
func (c *Cache) Fetch(ctx context.Context, q model.Query) (*model.Payload, error) {
	key := q.Key()
	if p, ok := c.lookup(key); ok {
		return p, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if p, ok := c.lookup(key); ok {
			return p, nil
		}
		if p := c.load(shared, key); p != nil {
			c.remember(key, p)
			return p, nil
		}

		p, err := c.source.Fetch(shared, q)
		if err != nil {
			return nil, err
		}
		c.remember(key, p)
		c.persist(shared, key, q, p)
		return p, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Payload), nil
	}
}

// Invalidate drops key from memory and the store.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.mem, key)
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.DeleteEntry(ctx, key); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

// Len returns the number of payloads held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}

// Close releases the codec.
func (c *Cache) Close() {
	c.codec.close()
}

func (c *Cache) lookup(key string) (*model.Payload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.mem[key]
	return p, ok
}

func (c *Cache) remember(key string, p *model.Payload) {
	c.mu.Lock()
	c.mem[key] = p
	c.mu.Unlock()
}

// load reads key from the store. Store failures are logged and treated as a
// miss so the upstream stays reachable.
func (c *Cache) load(ctx context.Context, key string) *model.Payload {
	if c.store == nil {
		return nil
	}
	e, err := c.store.GetEntry(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("cache store read failed", "key", key, "err", err)
		}
		return nil
	}
	p, err := c.codec.decode(e)
	if err != nil {
		c.logger.Warn("cache entry unreadable", "key", key, "err", err)
		return nil
	}
	return p
}

func (c *Cache) persist(ctx context.Context, key string, q model.Query, p *model.Payload) {
	data, err := c.codec.encode(p)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "err", err)
		return
	}
	fetchedAt := c.now().UTC()
	if c.store != nil {
		err := c.store.PutEntry(ctx, &model.CacheEntry{
			Key:       key,
			Query:     q,
			Encoding:  model.EncodingZstd,
			Data:      data,
			FetchedAt: fetchedAt,
		})
		if err != nil {
			c.logger.Warn("cache store write failed", "key", key, "err", err)
		}
	}
	if err := c.publisher.Publish(ctx, events.TopicSeriesFetched, events.SeriesFetched{
		Key:       key,
		Query:     q,
		Bytes:     len(data),
		FetchedAt: fetchedAt,
	}); err != nil {
		c.logger.Warn("publish series fetched failed", "key", key, "err", err)
	}
}
