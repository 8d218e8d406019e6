// Package selection tracks the newest chart request per widget so that
// results of superseded requests can be discarded.
//
// A widget calls Begin each time its selection changes and gets a token.
// When the data for that token is ready, Check reports whether a newer
// Begin has happened since. Only the latest token's result is applied.
package selection

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/idgen"
)

// ErrSuperseded is returned by Check when a newer request exists for the
// same widget.
var ErrSuperseded = errors.New("superseded by a newer request")

// Entry describes one tracked widget.
type Entry struct {
	Widget    string    `json:"widget"`
	Token     string    `json:"token"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Requests  int64     `json:"requests"`
	IdleSecs  float64   `json:"idle_secs"`
}

// ReaperConfig configures eviction of idle widgets.
type ReaperConfig struct {
	// EvictAfter is how long a widget may stay idle before it is forgotten.
	// Default: 30 minutes.
	EvictAfter time.Duration

	// SweepInterval is how often idle widgets are looked for.
	// Default: 60 seconds.
	SweepInterval time.Duration
}

// Tracker maps widgets to their newest invocation token.
type Tracker struct {
	mu      sync.RWMutex
	widgets map[string]*widgetState
	now     func() time.Time

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type widgetState struct {
	token     string
	firstSeen time.Time
	lastSeen  time.Time
	requests  int64
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		widgets: make(map[string]*widgetState),
		now:     time.Now,
	}
}

// Begin issues a fresh token for widget, superseding any earlier one.
func (t *Tracker) Begin(widget string) (string, error) {
	token, err := idgen.Invocation()
	if err != nil {
		return "", err
	}

	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.widgets[widget]
	if !ok {
		state = &widgetState{firstSeen: now}
		t.widgets[widget] = state
	}
	state.token = token
	state.lastSeen = now
	state.requests++
	return token, nil
}

// Current reports whether token is still the newest for widget.
func (t *Tracker) Current(widget, token string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.widgets[widget]
	return ok && state.token == token
}

// Check returns ErrSuperseded when widget has issued a newer token. A widget
// the reaper forgot while the request was running has no newer token, so
// its result stands. A passing check counts as activity.
func (t *Tracker) Check(widget, token string) error {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.widgets[widget]
	if !ok {
		return nil
	}
	if state.token != token {
		return ErrSuperseded
	}
	state.lastSeen = now
	return nil
}

// Widgets returns the tracked widgets, most recently active first.
func (t *Tracker) Widgets() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	out := make([]Entry, 0, len(t.widgets))
	for w, s := range t.widgets {
		out = append(out, Entry{
			Widget:    w,
			Token:     s.token,
			FirstSeen: s.firstSeen,
			LastSeen:  s.lastSeen,
			Requests:  s.requests,
			IdleSecs:  now.Sub(s.lastSeen).Seconds(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastSeen.After(out[j].LastSeen)
	})
	return out
}

// StartReaper launches a goroutine that forgets idle widgets. Call Stop to
// shut it down.
func (t *Tracker) StartReaper(cfg ReaperConfig) {
	if cfg.EvictAfter == 0 {
		cfg.EvictAfter = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}

	t.reaperStop = make(chan struct{})
	t.reaperDone = make(chan struct{})
	go t.reapLoop(cfg)
	slog.Info("selection: reaper started", "evict_after", cfg.EvictAfter, "sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (t *Tracker) Stop() {
	if t.reaperStop != nil {
		close(t.reaperStop)
		<-t.reaperDone
		t.reaperStop = nil
		t.reaperDone = nil
	}
}

func (t *Tracker) reapLoop(cfg ReaperConfig) {
	defer close(t.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.reaperStop:
			return
		case <-ticker.C:
			t.sweep(cfg.EvictAfter)
		}
	}
}

func (t *Tracker) sweep(evictAfter time.Duration) int {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	evicted := 0
	for w, s := range t.widgets {
		if now.Sub(s.lastSeen) > evictAfter {
			delete(t.widgets, w)
			evicted++
		}
	}
	if evicted > 0 {
		slog.Debug("selection: evicted idle widgets", "count", evicted)
	}
	return evicted
}
