package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneymanager/internal/amqp"
	"moneymanager/internal/core"
	"moneymanager/internal/ledger"
	"moneymanager/internal/log"
	"moneymanager/internal/seed"
	"moneymanager/internal/sheets"
	sheetsmem "moneymanager/internal/sheets/memory"
	"moneymanager/internal/storage/memory"
	"moneymanager/internal/worker"
)

type fakePublisher struct {
	mu      sync.Mutex
	events  []*amqp.LedgerEvent
	failing bool
	closed  bool
}

func (p *fakePublisher) Publish(_ context.Context, e *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func (p *fakePublisher) kinds() []amqp.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventKind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

func newService(t *testing.T, pub EventPublisher) *LedgerService {
	t.Helper()
	logger := log.New(log.Config{Output: io.Discard})
	store, err := ledger.New(context.Background(), ledger.Options{
		Categories: seed.DefaultCategories(),
		Persister:  memory.New(),
		Seed:       ledger.Dataset{Accounts: seed.OpeningAccounts()},
		Clock:      func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) },
		Logger:     logger,
	})
	require.NoError(t, err)
	return NewLedgerService(store, pub, logger)
}

func expense(cents int64) core.TransactionDraft {
	return core.TransactionDraft{
		Type:        core.Expense,
		Amount:      core.Money{Cents: cents},
		Description: "Groceries",
		Category:    "food",
		Division:    core.Personal,
		AccountID:   "cash",
		DateTime:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestLedgerServicePublishesAfterMutations(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, expense(1500))
	require.NoError(t, err)
	amount := core.Money{Cents: 2000}
	_, err = svc.UpdateTransaction(ctx, tx.ID, core.TransactionUpdate{Amount: &amount})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTransaction(ctx, tx.ID))

	tr, err := svc.AddTransfer(ctx, core.TransferDraft{FromAccountID: "bank", ToAccountID: "cash", Amount: core.Money{Cents: 100}, DateTime: tx.DateTime})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTransfer(ctx, tr.ID))

	acc, err := svc.AddAccount(ctx, core.AccountDraft{Name: "Savings", Color: "#123456"})
	require.NoError(t, err)
	_, err = svc.UpdateAccount(ctx, acc.ID, "Rainy day", "#654321")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAccount(ctx, acc.ID))

	assert.Equal(t, []amqp.EventKind{
		amqp.TransactionCreated, amqp.AccountUpdated,
		amqp.TransactionUpdated, amqp.AccountUpdated,
		amqp.TransactionDeleted, amqp.AccountUpdated,
		amqp.TransferCreated, amqp.AccountUpdated, amqp.AccountUpdated,
		amqp.TransferDeleted, amqp.AccountUpdated, amqp.AccountUpdated,
		amqp.AccountCreated,
		amqp.AccountUpdated,
		amqp.AccountDeleted,
	}, pub.kinds())

	deleted := pub.events[4]
	require.NotNil(t, deleted.Transaction)
	assert.Equal(t, int64(2000), deleted.Transaction.Amount.Cents, "delete carries the last snapshot")
}

func TestLedgerServiceUpdatePublishesBothAccounts(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, expense(1500))
	require.NoError(t, err)
	moved := "bank"
	_, err = svc.UpdateTransaction(ctx, tx.ID, core.TransactionUpdate{AccountID: &moved})
	require.NoError(t, err)

	var touched []string
	for _, e := range pub.events[2:] {
		if e.Kind == amqp.AccountUpdated {
			touched = append(touched, e.Account.ID)
		}
	}
	assert.ElementsMatch(t, []string{"cash", "bank"}, touched)
}

func TestMirrorTracksAccountBalances(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	mirror := sheetsmem.New()
	mw := worker.NewMirrorWorker(mirror, log.New(log.Config{Output: io.Discard}))
	require.NoError(t, mw.Resync(ctx, svc.Export()))

	_, err := svc.AddTransaction(ctx, expense(1500))
	require.NoError(t, err)
	_, err = svc.AddTransfer(ctx, core.TransferDraft{FromAccountID: "bank", ToAccountID: "credit", Amount: core.Money{Cents: 2500}, DateTime: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	for _, e := range pub.events {
		require.NoError(t, mw.HandleEvent(ctx, e))
	}

	for _, a := range svc.Accounts() {
		row, ok := mirror.Row(sheets.AccountsTab, a.ID)
		require.True(t, ok, "account %s mirrored", a.ID)
		assert.Equal(t, a.Balance.String(), row[2], "balance of %s", a.ID)
	}
	cash, err := svc.Account("cash")
	require.NoError(t, err)
	assert.Equal(t, int64(500000-1500), cash.Balance.Cents)
}

func TestLedgerServiceSkipsEventsOnFailure(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	_, err := svc.AddTransaction(ctx, expense(0))
	require.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.False(t, svc.Deleted(ctx, "missing"))
	assert.Error(t, svc.DeleteTransfer(ctx, "missing"))

	assert.Empty(t, pub.kinds())
}

func TestLedgerServiceIgnoresPublishErrors(t *testing.T) {
	pub := &fakePublisher{failing: true}
	svc := newService(t, pub)

	tx, err := svc.AddTransaction(context.Background(), expense(700))
	require.NoError(t, err)

	got, err := svc.Transaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, got)
}

func TestLedgerServiceWithoutPublisher(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.AddTransaction(context.Background(), expense(700))
	require.NoError(t, err)
	require.NoError(t, svc.Close())
}

func TestLedgerServiceClose(t *testing.T) {
	pub := &fakePublisher{}
	closed := false
	svc := NewLedgerService(nil, pub, nil,
		func() error { closed = true; return nil },
		func() error { return errors.New("disk busy") },
	)

	err := svc.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk busy")
	assert.True(t, pub.closed)
	assert.True(t, closed)
}
