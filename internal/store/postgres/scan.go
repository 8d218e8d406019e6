package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/worldchart/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanEntry scans a single row into a model.CacheEntry.
// The row must contain columns in the order defined by entryColumns.
func scanEntry(row scannable) (*model.CacheEntry, error) {
	var (
		e     model.CacheEntry
		query []byte
	)
	if err := row.Scan(&e.Key, &query, &e.Encoding, &e.Data, &e.FetchedAt); err != nil {
		return nil, err
	}
	if len(query) > 0 {
		if err := json.Unmarshal(query, &e.Query); err != nil {
			return nil, fmt.Errorf("decode query for %s: %w", e.Key, err)
		}
	}
	e.FetchedAt = e.FetchedAt.UTC()
	return &e, nil
}

// scanEntries scans multiple rows into a slice of model.CacheEntry pointers.
func scanEntries(rows *sql.Rows) ([]*model.CacheEntry, error) {
	var entries []*model.CacheEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func scanLiveSnapshot(row scannable) (*model.LiveSnapshot, error) {
	var (
		snap   model.LiveSnapshot
		hourly []byte
	)
	if err := row.Scan(&hourly, &snap.UpdatedAt); err != nil {
		return nil, err
	}
	if len(hourly) > 0 {
		if err := json.Unmarshal(hourly, &snap.HourlyLive); err != nil {
			return nil, fmt.Errorf("decode live snapshot: %w", err)
		}
	}
	snap.UpdatedAt = snap.UpdatedAt.UTC()
	return &snap, nil
}
