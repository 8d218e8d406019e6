// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GetEntry(ctx context.Context, key string) (*model.CacheEntry, error) {
	return queryGetEntry(ctx, s.db, key)
}

func (s *PostgresStore) PutEntry(ctx context.Context, e *model.CacheEntry) error {
	return queryPutEntry(ctx, s.db, e)
}

func (s *PostgresStore) ListEntries(ctx context.Context) ([]*model.CacheEntry, error) {
	return queryListEntries(ctx, s.db)
}

func (s *PostgresStore) DeleteEntry(ctx context.Context, key string) error {
	return queryDeleteEntry(ctx, s.db, key)
}

func (s *PostgresStore) SaveLiveSnapshot(ctx context.Context, snap *model.LiveSnapshot) error {
	return querySaveLiveSnapshot(ctx, s.db, snap)
}

func (s *PostgresStore) LatestLiveSnapshot(ctx context.Context) (*model.LiveSnapshot, error) {
	return queryLatestLiveSnapshot(ctx, s.db)
}

func (s *PostgresStore) PruneLiveSnapshots(ctx context.Context, keep int) error {
	return queryPruneLiveSnapshots(ctx, s.db, keep)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&txStore{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

var _ store.Store = (*txStore)(nil)

func (s *txStore) GetEntry(ctx context.Context, key string) (*model.CacheEntry, error) {
	return queryGetEntry(ctx, s.tx, key)
}

func (s *txStore) PutEntry(ctx context.Context, e *model.CacheEntry) error {
	return queryPutEntry(ctx, s.tx, e)
}

func (s *txStore) ListEntries(ctx context.Context) ([]*model.CacheEntry, error) {
	return queryListEntries(ctx, s.tx)
}

func (s *txStore) DeleteEntry(ctx context.Context, key string) error {
	return queryDeleteEntry(ctx, s.tx, key)
}

func (s *txStore) SaveLiveSnapshot(ctx context.Context, snap *model.LiveSnapshot) error {
	return querySaveLiveSnapshot(ctx, s.tx, snap)
}

func (s *txStore) LatestLiveSnapshot(ctx context.Context) (*model.LiveSnapshot, error) {
	return queryLatestLiveSnapshot(ctx, s.tx)
}

func (s *txStore) PruneLiveSnapshots(ctx context.Context, keep int) error {
	return queryPruneLiveSnapshots(ctx, s.tx, keep)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
