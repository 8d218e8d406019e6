// Package sync periodically exports the chart cache to external
// destinations so a fresh deployment can be seeded without hitting the
// upstream.
package sync

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/store"
)

// Destination is a sync target (S3, git, etc.).
type Destination interface {
	Name() string
	Write(ctx context.Context, exp *Export) error
}

// Scheduler runs periodic exports to one or more destinations.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler returns a scheduler exporting s every interval.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start exports once immediately and then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.syncOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.syncOnce(ctx)
			}
		}
	}()
}

// Stop cancels the scheduler and waits for an in-flight export to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) syncOnce(ctx context.Context) {
	var buf bytes.Buffer
	exp, err := ExportJSONL(ctx, s.store, &buf)
	if err != nil {
		s.logger.Error("sync export failed", "err", err)
		return
	}
	exp.Data = buf.Bytes()

	failed := 0
	for _, dest := range s.destinations {
		if err := dest.Write(ctx, exp); err != nil {
			failed++
			s.logger.Error("sync destination write failed", "destination", dest.Name(), "export", exp.ID, "err", err)
		}
	}

	s.logger.Info("sync completed",
		"export", exp.ID,
		"entries", exp.Entries,
		"destinations", len(s.destinations),
		"failed", failed,
		"bytes", len(exp.Data))
}
