package storage

import (
	"context"
	"path/filepath"
	"testing"

	"moneymanager/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryLoadMissing(t *testing.T) {
	repo := newTestRepo(t)
	data, found, err := repo.Load(context.Background(), ledger.Transactions)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found || data != nil {
		t.Fatalf("expected missing collection, got found=%v data=%q", found, data)
	}
}

func TestSQLiteRepositorySaveOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, payload := range []string{`[{"id":"a"}]`, `[{"id":"b"}]`} {
		if err := repo.Save(ctx, ledger.Accounts, []byte(payload)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	data, found, err := repo.Load(ctx, ledger.Accounts)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if string(data) != `[{"id":"b"}]` {
		t.Fatalf("expected latest payload, got %q", data)
	}
	if _, found, _ := repo.Load(ctx, ledger.Transfers); found {
		t.Fatalf("collections must be independent")
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	repo.Close()

	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run should be a no-op, got %v", err)
	}
}

func TestSQLiteRepositoryUsesWAL(t *testing.T) {
	repo := newTestRepo(t)

	var mode string
	if err := repo.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := repo.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}
