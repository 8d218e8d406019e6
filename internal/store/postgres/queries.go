package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/store"
)

// entryColumns is the column list used for SELECT statements on cache_entries.
const entryColumns = `key, query, encoding, data, fetched_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryGetEntry(ctx context.Context, db executor, key string) (*model.CacheEntry, error) {
	row := db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM cache_entries WHERE key = $1`, key)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cache entry %q: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func queryPutEntry(ctx context.Context, db executor, e *model.CacheEntry) error {
	query, err := json.Marshal(e.Query)
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, query, encoding, data, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			query = EXCLUDED.query,
			encoding = EXCLUDED.encoding,
			data = EXCLUDED.data,
			fetched_at = EXCLUDED.fetched_at`,
		e.Key, query, e.Encoding, e.Data, e.FetchedAt,
	)
	return err
}

func queryListEntries(ctx context.Context, db executor) ([]*model.CacheEntry, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+entryColumns+` FROM cache_entries ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func queryDeleteEntry(ctx context.Context, db executor, key string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = $1`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("cache entry %q: %w", key, store.ErrNotFound)
	}
	return nil
}

func querySaveLiveSnapshot(ctx context.Context, db executor, snap *model.LiveSnapshot) error {
	hourly, err := json.Marshal(snap.HourlyLive)
	if err != nil {
		return fmt.Errorf("marshal live snapshot: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO live_snapshots (hourly_live, updated_at) VALUES ($1, $2)`,
		hourly, snap.UpdatedAt,
	)
	return err
}

func queryLatestLiveSnapshot(ctx context.Context, db executor) (*model.LiveSnapshot, error) {
	row := db.QueryRowContext(ctx,
		`SELECT hourly_live, updated_at FROM live_snapshots ORDER BY updated_at DESC, id DESC LIMIT 1`)
	snap, err := scanLiveSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("live snapshot: %w", store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func queryPruneLiveSnapshots(ctx context.Context, db executor, keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := db.ExecContext(ctx, `
		DELETE FROM live_snapshots WHERE id NOT IN (
			SELECT id FROM live_snapshots ORDER BY updated_at DESC, id DESC LIMIT $1
		)`, keep)
	return err
}
