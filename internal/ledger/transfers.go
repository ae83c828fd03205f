package ledger

import (
	"context"
	"fmt"
	"time"

	"moneymanager/internal/core"
	"moneymanager/internal/log"
)

// AddTransfer debits the source account and credits the destination by the
// same amount. Same-account and unknown-account transfers are rejected before
// any balance changes.
func (s *Store) AddTransfer(ctx context.Context, d core.TransferDraft) (core.Transfer, error) {
	if err := d.Validate(); err != nil {
		return core.Transfer{}, err
	}

	s.mu.Lock()
	from := s.accountIndex(d.FromAccountID)
	if from < 0 {
		s.mu.Unlock()
		return core.Transfer{}, fmt.Errorf("%w: %s", ErrAccountNotFound, d.FromAccountID)
	}
	to := s.accountIndex(d.ToAccountID)
	if to < 0 {
		s.mu.Unlock()
		return core.Transfer{}, fmt.Errorf("%w: %s", ErrAccountNotFound, d.ToAccountID)
	}
	tr := core.Transfer{
		ID:            s.newID(),
		FromAccountID: d.FromAccountID,
		ToAccountID:   d.ToAccountID,
		Amount:        d.Amount,
		Description:   d.Description,
		DateTime:      d.DateTime,
		CreatedAt:     s.now(),
	}
	s.transfers = append(s.transfers, tr)
	s.accounts[from].Balance = s.accounts[from].Balance.Sub(tr.Amount)
	s.accounts[to].Balance = s.accounts[to].Balance.Add(tr.Amount)
	snap := s.snapshot(Transfers, Accounts)
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.logger.InfoContext(ctx, "Transfer created",
		log.NewFields().WithTransfer(tr.ID, tr.FromAccountID, tr.ToAccountID, tr.Amount.Cents).ToSlice()...)
	return tr, nil
}

// DeleteTransfer reverts both balance effects and removes the transfer.
// Transfers have no edit window.
func (s *Store) DeleteTransfer(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.transferIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTransferNotFound, id)
	}
	tr := s.transfers[i]
	if from := s.accountIndex(tr.FromAccountID); from >= 0 {
		s.accounts[from].Balance = s.accounts[from].Balance.Add(tr.Amount)
	}
	if to := s.accountIndex(tr.ToAccountID); to >= 0 {
		s.accounts[to].Balance = s.accounts[to].Balance.Sub(tr.Amount)
	}
	s.transfers = append(s.transfers[:i:i], s.transfers[i+1:]...)
	snap := s.snapshot(Transfers, Accounts)
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.logger.InfoContext(ctx, "Transfer deleted", log.FieldTransferID, id)
	return nil
}

func (s *Store) Transfer(id string) (core.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.transferIndex(id)
	if i < 0 {
		return core.Transfer{}, fmt.Errorf("%w: %s", ErrTransferNotFound, id)
	}
	return s.transfers[i], nil
}

// Transfers returns every transfer, newest first.
func (s *Store) Transfers() []core.Transfer {
	s.mu.RLock()
	out := append([]core.Transfer(nil), s.transfers...)
	s.mu.RUnlock()
	sortTransfers(out)
	return out
}

// TransfersBetween returns transfers whose DateTime falls in [start, end],
// with end covering its whole day. Zero bounds are open.
func (s *Store) TransfersBetween(start, end time.Time) []core.Transfer {
	s.mu.RLock()
	var out []core.Transfer
	for _, tr := range s.transfers {
		if !start.IsZero() && tr.DateTime.Before(start) {
			continue
		}
		if !end.IsZero() && tr.DateTime.After(core.EndOfDay(end)) {
			continue
		}
		out = append(out, tr)
	}
	s.mu.RUnlock()
	sortTransfers(out)
	return out
}
