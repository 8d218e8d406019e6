package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/idgen"
	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/store"
)

// Export is one serialized snapshot of the cache.
type Export struct {
	ID        string
	CreatedAt time.Time
	Entries   int
	Data      []byte
}

// header is the first JSONL record of an export.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	ExportID   string    `json:"export_id"`
	Timestamp  time.Time `json:"timestamp"`
	EntryCount int       `json:"entry_count"`
	HasLive    bool      `json:"has_live"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every cache entry, sorted by key, followed by the
// newest live snapshot if there is one. Entry data stays in its stored
// encoding.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) (*Export, error) {
	entries, err := s.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}

	snap, err := s.LatestLiveSnapshot(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("latest live snapshot: %w", err)
	}

	id, err := idgen.Export()
	if err != nil {
		return nil, err
	}
	exp := &Export{ID: id, CreatedAt: time.Now().UTC(), Entries: len(entries)}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		ExportID:   exp.ID,
		Timestamp:  exp.CreatedAt,
		EntryCount: len(entries),
		HasLive:    snap != nil,
	}); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}

	for _, e := range entries {
		if err := enc.Encode(record{Type: "entry", Data: e}); err != nil {
			return nil, fmt.Errorf("encode entry %s: %w", e.Key, err)
		}
	}

	if snap != nil {
		if err := enc.Encode(record{Type: "live", Data: snap}); err != nil {
			return nil, fmt.Errorf("encode live snapshot: %w", err)
		}
	}
	return exp, nil
}

// ImportJSONL reads an export produced by ExportJSONL back into s. Entries
// overwrite existing keys; the live snapshot is appended.
func ImportJSONL(ctx context.Context, s store.Store, r io.Reader) (int, error) {
	dec := json.NewDecoder(r)
	n := 0
	for {
		var rec struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := dec.Decode(&rec); err == io.EOF {
			return n, nil
		} else if err != nil {
			return n, fmt.Errorf("decode record %d: %w", n+1, err)
		}

		switch rec.Type {
		case "header":
		case "entry":
			var e model.CacheEntry
			if err := json.Unmarshal(rec.Data, &e); err != nil {
				return n, fmt.Errorf("decode entry: %w", err)
			}
			if err := s.PutEntry(ctx, &e); err != nil {
				return n, fmt.Errorf("put entry %s: %w", e.Key, err)
			}
			n++
		case "live":
			var snap model.LiveSnapshot
			if err := json.Unmarshal(rec.Data, &snap); err != nil {
				return n, fmt.Errorf("decode live snapshot: %w", err)
			}
			if err := s.SaveLiveSnapshot(ctx, &snap); err != nil {
				return n, fmt.Errorf("save live snapshot: %w", err)
			}
		default:
			return n, fmt.Errorf("unknown record type %q", rec.Type)
		}
	}
}
