package ledger

import (
	"context"
	"errors"
	"fmt"

	"moneymanager/internal/core"
	"moneymanager/internal/log"
)

// checkRefs verifies the account and category a draft points at. Callers must hold s.mu.
func (s *Store) checkRefs(d core.TransactionDraft) error {
	if s.accountIndex(d.AccountID) < 0 {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, d.AccountID)
	}
	cat, ok := s.categoryByID[d.Category]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, d.Category)
	}
	if cat.Type != d.Type {
		return fmt.Errorf("%w: %s is %s", ErrCategoryTypeMismatch, cat.ID, cat.Type)
	}
	return nil
}

// AddTransaction records a new transaction and applies its effect to the
// referenced account: +amount for income, -amount for expense.
func (s *Store) AddTransaction(ctx context.Context, d core.TransactionDraft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	if err := s.checkRefs(d); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	now := s.now()
	t := core.Transaction{
		ID:          s.newID(),
		Type:        d.Type,
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Division:    d.Division,
		AccountID:   d.AccountID,
		DateTime:    d.DateTime,
		CreatedAt:   now,
	}
	s.transactions = append(s.transactions, t)
	i := s.accountIndex(t.AccountID)
	s.accounts[i].Balance = s.accounts[i].Balance.Add(t.Effect())
	snap := s.snapshot(Transactions, Accounts)
	s.mu.Unlock()

	s.persist(ctx, snap)
	fields := log.NewFields().
		WithTransaction(t.ID, string(t.Type), t.Category, t.Amount.Cents).
		WithOperation(log.OpCreate)
	fields[log.FieldAccountID] = t.AccountID
	s.logger.InfoContext(ctx, "Transaction created", fields.ToSlice()...)
	return t, nil
}

// UpdateTransaction merges u into the transaction with the given id. It
// fails with ErrTransactionNotFound or ErrTransactionLocked. The old balance
// effect is reverted and the new one applied, so changing amount, type or
// account keeps every balance consistent.
func (s *Store) UpdateTransaction(ctx context.Context, id string, u core.TransactionUpdate) (core.Transaction, error) {
	s.mu.Lock()
	i := s.transactionIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	old := s.transactions[i]
	if !core.CanEdit(old.CreatedAt, s.now()) {
		s.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionLocked, id)
	}
	d := u.Apply(old.Draft())
	if err := d.Validate(); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	if err := s.checkRefs(d); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}

	updated := old
	updated.Type = d.Type
	updated.Amount = d.Amount
	updated.Description = d.Description
	updated.Category = d.Category
	updated.Division = d.Division
	updated.AccountID = d.AccountID
	updated.DateTime = d.DateTime
	updated.UpdatedAt = s.now()

	oi := s.accountIndex(old.AccountID)
	if oi >= 0 {
		s.accounts[oi].Balance = s.accounts[oi].Balance.Sub(old.Effect())
	}
	ni := s.accountIndex(updated.AccountID)
	s.accounts[ni].Balance = s.accounts[ni].Balance.Add(updated.Effect())
	s.transactions[i] = updated
	snap := s.snapshot(Transactions, Accounts)
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldTransactionID, id,
		log.FieldAccountID, updated.AccountID,
		log.FieldAmountCents, updated.Amount.Cents)
	return updated, nil
}

// Updated reports whether UpdateTransaction succeeded, for callers that only
// need a yes/no answer to show a locked-state notice.
func (s *Store) Updated(ctx context.Context, id string, u core.TransactionUpdate) bool {
	_, err := s.UpdateTransaction(ctx, id, u)
	return err == nil
}

// DeleteTransaction reverses the transaction's balance effect and removes it.
// It fails under the same conditions as UpdateTransaction.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.transactionIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	t := s.transactions[i]
	if !core.CanEdit(t.CreatedAt, s.now()) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTransactionLocked, id)
	}
	if ai := s.accountIndex(t.AccountID); ai >= 0 {
		s.accounts[ai].Balance = s.accounts[ai].Balance.Sub(t.Effect())
	}
	s.transactions = append(s.transactions[:i:i], s.transactions[i+1:]...)
	snap := s.snapshot(Transactions, Accounts)
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldAccountID, t.AccountID)
	return nil
}

// Deleted reports whether DeleteTransaction succeeded.
func (s *Store) Deleted(ctx context.Context, id string) bool {
	return s.DeleteTransaction(ctx, id) == nil
}

// Transaction returns a copy of the transaction with the given id.
func (s *Store) Transaction(id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.transactionIndex(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return s.transactions[i], nil
}

// Transactions returns a copy of every transaction in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.transactions...)
}

// IsNotFound reports whether err means a referenced record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrTransferNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}
