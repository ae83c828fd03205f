package memory

import (
	"context"
	"testing"
	"time"

	"moneymanager/internal/core"
	ports "moneymanager/internal/sheets"
)

func TestMirrorUpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	m := New()
	tx := core.Transaction{
		ID:       "tx-1",
		Type:     core.Expense,
		Amount:   core.Money{Cents: 1234},
		Category: "food",
		Division: core.Personal,
		DateTime: time.Date(2025, 5, 4, 8, 30, 0, 0, time.UTC),
	}

	if err := m.UpsertTransaction(ctx, tx); err != nil {
		t.Fatalf("UpsertTransaction: %v", err)
	}
	tx.Amount = core.Money{Cents: 99}
	if err := m.UpsertTransaction(ctx, tx); err != nil {
		t.Fatalf("UpsertTransaction: %v", err)
	}

	rows := m.Rows(ports.TransactionsTab)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	want := []any{"tx-1", "2025-05-04 08:30:00", "EXPENSE", "0.99", "", "food", "PERSONAL", ""}
	for i := range want {
		if rows[0][i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, rows[0][i], want[i])
		}
	}
}

func TestMirrorDeleteRow(t *testing.T) {
	ctx := context.Background()
	m := New()
	for _, id := range []string{"a", "b", "c"} {
		if err := m.UpsertAccount(ctx, core.Account{ID: id, Name: id}); err != nil {
			t.Fatal(err)
		}
	}

	if err := m.DeleteRow(ctx, ports.AccountsTab, "b"); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	if err := m.DeleteRow(ctx, ports.AccountsTab, "missing"); err != nil {
		t.Fatalf("DeleteRow on missing id: %v", err)
	}

	if _, ok := m.Row(ports.AccountsTab, "b"); ok {
		t.Error("b should be deleted")
	}
	if got := len(m.Rows(ports.AccountsTab)); got != 2 {
		t.Errorf("rows = %d, want 2", got)
	}
	if got := len(m.Rows(ports.TransfersTab)); got != 0 {
		t.Errorf("transfers tab should be untouched, got %d rows", got)
	}
}
