package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"moneymanager/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists ledger collections as JSON payloads keyed by
// collection name.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Persister = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Load implements ledger.Persister
func (r *SQLiteRepository) Load(ctx context.Context, c ledger.Collection) ([]byte, bool, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE key = ?`, string(c)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load collection %s: %w", c, err)
	}
	return []byte(payload), true, nil
}

// Save implements ledger.Persister
func (r *SQLiteRepository) Save(ctx context.Context, c ledger.Collection, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO collections (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(c), string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save collection %s: %w", c, err)
	}

	slog.DebugContext(ctx, "Collection saved to SQLite",
		"collection", string(c),
		"bytes", len(data))
	return nil
}
