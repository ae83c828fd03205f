// Package memory is an in-process sheets.Mirror used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"moneymanager/internal/core"
	ports "moneymanager/internal/sheets"
)

var _ ports.Mirror = (*Mirror)(nil)

type Mirror struct {
	mu   sync.Mutex
	rows map[ports.Tab][][]any
}

func New() *Mirror {
	return &Mirror{rows: make(map[ports.Tab][][]any)}
}

func (m *Mirror) UpsertTransaction(_ context.Context, t core.Transaction) error {
	m.upsert(ports.TransactionsTab, ports.TransactionRow(t))
	return nil
}

func (m *Mirror) UpsertTransfer(_ context.Context, t core.Transfer) error {
	m.upsert(ports.TransfersTab, ports.TransferRow(t))
	return nil
}

func (m *Mirror) UpsertAccount(_ context.Context, a core.Account) error {
	m.upsert(ports.AccountsTab, ports.AccountRow(a))
	return nil
}

func (m *Mirror) DeleteRow(_ context.Context, tab ports.Tab, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.rows[tab]
	if i := indexOf(rows, id); i >= 0 {
		m.rows[tab] = append(rows[:i:i], rows[i+1:]...)
	}
	return nil
}

// Rows returns a copy of the rows of tab in insertion order.
func (m *Mirror) Rows(tab ports.Tab) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.rows[tab]...)
}

// Row returns the row with the given id.
func (m *Mirror) Row(tab ports.Tab, id string) ([]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := indexOf(m.rows[tab], id); i >= 0 {
		return m.rows[tab][i], true
	}
	return nil, false
}

func (m *Mirror) upsert(tab ports.Tab, row []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprint(row[0])
	if i := indexOf(m.rows[tab], id); i >= 0 {
		m.rows[tab][i] = row
		return
	}
	m.rows[tab] = append(m.rows[tab], row)
}

func indexOf(rows [][]any, id string) int {
	for i, r := range rows {
		if len(r) > 0 && fmt.Sprint(r[0]) == id {
			return i
		}
	}
	return -1
}
