// Package sheets defines the spreadsheet mirror that receives every ledger
// change, one tab per record kind keyed by the record id in column A.
package sheets

import (
	"context"

	"moneymanager/internal/core"
)

// Tab names a spreadsheet tab holding one record kind.
type Tab string

const (
	TransactionsTab Tab = "Transactions"
	TransfersTab    Tab = "Transfers"
	AccountsTab     Tab = "Accounts"
)

// Tabs lists every tab the mirror maintains.
var Tabs = []Tab{TransactionsTab, TransfersTab, AccountsTab}

// Mirror is the outbound port the worker writes ledger events to. Upserts
// replace the row with the same id or append a new one. DeleteRow on a
// missing id is a no-op.
type Mirror interface {
	UpsertTransaction(ctx context.Context, t core.Transaction) error
	UpsertTransfer(ctx context.Context, t core.Transfer) error
	UpsertAccount(ctx context.Context, a core.Account) error
	DeleteRow(ctx context.Context, tab Tab, id string) error
}
