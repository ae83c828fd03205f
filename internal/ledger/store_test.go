package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneymanager/internal/core"
	"moneymanager/internal/ledger"
	"moneymanager/internal/log"
	"moneymanager/internal/seed"
	"moneymanager/internal/storage"
	"moneymanager/internal/storage/memory"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard, Component: log.ComponentLedger})
}

type fixture struct {
	store *ledger.Store
	clock *clock
	disk  *memory.Store
}

// newFixture builds a store with accounts A (1000) and B (0) and no history.
func newFixture(t *testing.T) fixture {
	t.Helper()
	c := &clock{now: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)}
	disk := memory.New()
	n := 0
	s, err := ledger.New(context.Background(), ledger.Options{
		Categories: seed.DefaultCategories(),
		Persister:  disk,
		Seed: ledger.Dataset{Accounts: []core.Account{
			{ID: "A", Name: "A", Balance: core.Money{Cents: 100000}, Color: "#000"},
			{ID: "B", Name: "B", Color: "#fff"},
		}},
		Clock:  c.Now,
		IDs:    func() string { n++; return fmt.Sprintf("id-%d", n) },
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	return fixture{store: s, clock: c, disk: disk}
}

func (f fixture) balance(t *testing.T, id string) int64 {
	t.Helper()
	a, err := f.store.Account(id)
	require.NoError(t, err)
	return a.Balance.Cents
}

func draft(typ core.TransactionType, cents int64, category, account string, at time.Time) core.TransactionDraft {
	return core.TransactionDraft{
		Type:        typ,
		Amount:      core.Money{Cents: cents},
		Description: "test",
		Category:    category,
		Division:    core.Personal,
		AccountID:   account,
		DateTime:    at,
	}
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	exp, err := f.store.AddTransaction(ctx, draft(core.Expense, 20000, "food", "A", now))
	require.NoError(t, err)
	assert.Equal(t, int64(80000), f.balance(t, "A"))

	_, err = f.store.AddTransaction(ctx, draft(core.Income, 50000, "salary", "A", now))
	require.NoError(t, err)
	assert.Equal(t, int64(130000), f.balance(t, "A"))

	_, err = f.store.AddTransfer(ctx, core.TransferDraft{FromAccountID: "A", ToAccountID: "B", Amount: core.Money{Cents: 30000}, DateTime: now})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), f.balance(t, "A"))
	assert.Equal(t, int64(30000), f.balance(t, "B"))

	require.NoError(t, f.store.DeleteTransaction(ctx, exp.ID))
	assert.Equal(t, int64(120000), f.balance(t, "A"))
}

func TestAddTransactionAssignsIdentity(t *testing.T) {
	f := newFixture(t)
	tx, err := f.store.AddTransaction(context.Background(), draft(core.Expense, 100, "fuel", "A", f.clock.Now().Add(-48*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "id-1", tx.ID)
	assert.Equal(t, f.clock.Now(), tx.CreatedAt)
	assert.True(t, tx.UpdatedAt.IsZero())
}

func TestAddTransactionRejectsBadReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	cases := []struct {
		name string
		d    core.TransactionDraft
		want error
	}{
		{"unknown account", draft(core.Expense, 100, "food", "nope", now), ledger.ErrAccountNotFound},
		{"unknown category", draft(core.Expense, 100, "nope", "A", now), ledger.ErrCategoryNotFound},
		{"type mismatch", draft(core.Income, 100, "food", "A", now), ledger.ErrCategoryTypeMismatch},
		{"invalid amount", draft(core.Income, 0, "salary", "A", now), core.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.store.AddTransaction(ctx, tc.d)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, int64(100000), f.balance(t, "A"))
	assert.Empty(t, f.store.Transactions())
}

func TestDeleteThenReaddRestoresBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := draft(core.Expense, 4550, "shopping", "A", f.clock.Now())

	tx, err := f.store.AddTransaction(ctx, d)
	require.NoError(t, err)
	before := f.balance(t, "A")

	require.NoError(t, f.store.DeleteTransaction(ctx, tx.ID))
	assert.Equal(t, int64(100000), f.balance(t, "A"))

	_, err = f.store.AddTransaction(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, before, f.balance(t, "A"))
}

func TestEditLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx, err := f.store.AddTransaction(ctx, draft(core.Expense, 100, "food", "A", f.clock.Now()))
	require.NoError(t, err)

	f.clock.Advance(12 * time.Hour)
	assert.True(t, f.store.CanEdit(tx.CreatedAt))
	desc := "still editable"
	_, err = f.store.UpdateTransaction(ctx, tx.ID, core.TransactionUpdate{Description: &desc})
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	assert.False(t, f.store.CanEdit(tx.CreatedAt))
	_, err = f.store.UpdateTransaction(ctx, tx.ID, core.TransactionUpdate{Description: &desc})
	assert.ErrorIs(t, err, ledger.ErrTransactionLocked)
	assert.ErrorIs(t, f.store.DeleteTransaction(ctx, tx.ID), ledger.ErrTransactionLocked)
	assert.False(t, f.store.Deleted(ctx, tx.ID))
	assert.Equal(t, int64(99900), f.balance(t, "A"))
}

func TestUpdateTransactionUnknownID(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.UpdateTransaction(context.Background(), "missing", core.TransactionUpdate{})
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
	assert.True(t, ledger.IsNotFound(err))
	assert.False(t, f.store.Updated(context.Background(), "missing", core.TransactionUpdate{}))
}

func TestUpdateTransactionMovesBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx, err := f.store.AddTransaction(ctx, draft(core.Expense, 10000, "food", "A", f.clock.Now()))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	amount := core.Money{Cents: 2500}
	account := "B"
	updated, err := f.store.UpdateTransaction(ctx, tx.ID, core.TransactionUpdate{Amount: &amount, AccountID: &account})
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now(), updated.UpdatedAt)
	assert.Equal(t, tx.CreatedAt, updated.CreatedAt)

	assert.Equal(t, int64(100000), f.balance(t, "A"))
	assert.Equal(t, int64(-2500), f.balance(t, "B"))

	typ := core.Income
	cat := "bonus"
	_, err = f.store.UpdateTransaction(ctx, tx.ID, core.TransactionUpdate{Type: &typ, Category: &cat})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), f.balance(t, "B"))
}

func TestUpdateTransactionRejectsMismatchWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx, err := f.store.AddTransaction(ctx, draft(core.Expense, 10000, "food", "A", f.clock.Now()))
	require.NoError(t, err)

	typ := core.Income
	_, err = f.store.UpdateTransaction(ctx, tx.ID, core.TransactionUpdate{Type: &typ})
	assert.ErrorIs(t, err, ledger.ErrCategoryTypeMismatch)

	got, err := f.store.Transaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, core.Expense, got.Type)
	assert.Equal(t, int64(90000), f.balance(t, "A"))
}

func TestTransfers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	_, err := f.store.AddTransfer(ctx, core.TransferDraft{FromAccountID: "A", ToAccountID: "A", Amount: core.Money{Cents: 1}, DateTime: now})
	assert.ErrorIs(t, err, core.ErrSameAccount)
	_, err = f.store.AddTransfer(ctx, core.TransferDraft{FromAccountID: "A", ToAccountID: "Z", Amount: core.Money{Cents: 1}, DateTime: now})
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	assert.Equal(t, int64(100000), f.balance(t, "A"))

	tr, err := f.store.AddTransfer(ctx, core.TransferDraft{FromAccountID: "A", ToAccountID: "B", Amount: core.Money{Cents: 700}, DateTime: now})
	require.NoError(t, err)
	assert.Len(t, f.store.TransfersBetween(now, now), 1)
	assert.Empty(t, f.store.TransfersBetween(now.AddDate(0, 0, 1), time.Time{}))

	// transfers have no edit window
	f.clock.Advance(30 * 24 * time.Hour)
	require.NoError(t, f.store.DeleteTransfer(ctx, tr.ID))
	assert.Equal(t, int64(100000), f.balance(t, "A"))
	assert.Equal(t, int64(0), f.balance(t, "B"))
	assert.ErrorIs(t, f.store.DeleteTransfer(ctx, tr.ID), ledger.ErrTransferNotFound)
}

func TestBalanceInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	ops := []func() error{
		func() error { _, err := f.store.AddTransaction(ctx, draft(core.Income, 1234, "salary", "A", now)); return err },
		func() error { _, err := f.store.AddTransaction(ctx, draft(core.Expense, 999, "fuel", "B", now)); return err },
		func() error {
			_, err := f.store.AddTransfer(ctx, core.TransferDraft{FromAccountID: "B", ToAccountID: "A", Amount: core.Money{Cents: 5000}, DateTime: now})
			return err
		},
		func() error { _, err := f.store.AddTransaction(ctx, draft(core.Expense, 321, "movie", "A", now)); return err },
		func() error { return f.store.DeleteTransaction(ctx, "id-1") },
	}
	for _, op := range ops {
		require.NoError(t, op())
	}

	opening := map[string]int64{"A": 100000, "B": 0}
	for _, tx := range f.store.Transactions() {
		opening[tx.AccountID] += tx.Effect().Cents
	}
	for _, tr := range f.store.Transfers() {
		opening[tr.FromAccountID] -= tr.Amount.Cents
		opening[tr.ToAccountID] += tr.Amount.Cents
	}
	for _, a := range f.store.Accounts() {
		assert.Equal(t, opening[a.ID], a.Balance.Cents, a.ID)
	}
}

func TestAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.store.AddAccount(ctx, core.AccountDraft{Name: "Savings", Color: "#123456", Balance: core.Money{Cents: 500}})
	require.NoError(t, err)
	assert.Equal(t, "id-1", a.ID)

	_, err = f.store.AddAccount(ctx, core.AccountDraft{ID: "A", Name: "dup", Color: "#1"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateAccount)

	renamed, err := f.store.UpdateAccount(ctx, a.ID, "Rainy day", "#654321")
	require.NoError(t, err)
	assert.Equal(t, "Rainy day", renamed.Name)
	assert.Equal(t, int64(500), renamed.Balance.Cents)
	assert.Equal(t, int64(100500), f.store.TotalBalance().Cents)

	_, err = f.store.AddTransaction(ctx, draft(core.Expense, 100, "food", "A", f.clock.Now()))
	require.NoError(t, err)
	assert.ErrorIs(t, f.store.DeleteAccount(ctx, "A"), ledger.ErrAccountInUse)
	require.NoError(t, f.store.DeleteAccount(ctx, a.ID))
	assert.ErrorIs(t, f.store.DeleteAccount(ctx, a.ID), ledger.ErrAccountNotFound)
}

func TestPersistenceRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.AddTransaction(ctx, draft(core.Income, 4200, "bonus", "B", f.clock.Now()))
	require.NoError(t, err)

	raw, found, err := f.disk.Load(ctx, ledger.Accounts)
	require.NoError(t, err)
	require.True(t, found)
	var accounts []core.Account
	require.NoError(t, json.Unmarshal(raw, &accounts))
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(4200), accounts[1].Balance.Cents)

	reloaded, err := ledger.New(ctx, ledger.Options{
		Categories: seed.DefaultCategories(),
		Persister:  f.disk,
		Seed:       seed.Sample(f.clock.Now()),
		Logger:     quietLogger(),
	})
	require.NoError(t, err)
	assert.Len(t, reloaded.Transactions(), 1)
	// transfers were never saved, so they come from the seed
	assert.Len(t, reloaded.Transfers(), 2)
}

type failingPersister struct{ *memory.Store }

func (failingPersister) Save(context.Context, ledger.Collection, []byte) error {
	return errors.New("disk full")
}

func TestPersistFailureDoesNotFailMutation(t *testing.T) {
	s, err := ledger.New(context.Background(), ledger.Options{
		Categories: seed.DefaultCategories(),
		Persister:  failingPersister{Store: memory.New()},
		Seed:       seed.Sample(time.Now()),
		Logger:     quietLogger(),
	})
	require.NoError(t, err)
	_, err = s.AddTransaction(context.Background(), draft(core.Expense, 100, "food", "cash", time.Now()))
	assert.NoError(t, err)
}

func TestPersistSurvivesCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	open := func() (*ledger.Store, *storage.SQLiteRepository) {
		repo, err := storage.NewSQLiteRepository(path)
		require.NoError(t, err)
		s, err := ledger.New(context.Background(), ledger.Options{
			Categories: seed.DefaultCategories(),
			Persister:  repo,
			Seed:       ledger.Dataset{Accounts: seed.OpeningAccounts()},
			Logger:     quietLogger(),
		})
		require.NoError(t, err)
		return s, repo
	}

	s, repo := open()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tx, err := s.AddTransaction(ctx, draft(core.Expense, 1500, "food", "cash", time.Now()))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, repo := open()
	defer repo.Close()
	got, err := reopened.Transaction(tx.ID)
	require.NoError(t, err, "acknowledged transaction must survive a reopen")
	assert.Equal(t, tx.Amount, got.Amount)
	cash, err := reopened.Account("cash")
	require.NoError(t, err)
	assert.Equal(t, int64(500000-1500), cash.Balance.Cents)
}

func TestCorruptCollectionFailsLoad(t *testing.T) {
	disk := memory.New()
	require.NoError(t, disk.Save(context.Background(), ledger.Transactions, []byte("{not json")))
	_, err := ledger.New(context.Background(), ledger.Options{Persister: disk, Logger: quietLogger()})
	assert.Error(t, err)
}
