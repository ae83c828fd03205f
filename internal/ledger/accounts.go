package ledger

import (
	"context"
	"fmt"
	"strings"

	"moneymanager/internal/core"
	"moneymanager/internal/log"
)

// AddAccount creates an account. The draft balance is the opening balance;
// an empty draft ID gets a generated one.
func (s *Store) AddAccount(ctx context.Context, d core.AccountDraft) (core.Account, error) {
	if err := d.Validate(); err != nil {
		return core.Account{}, err
	}
	id := strings.TrimSpace(d.ID)

	s.mu.Lock()
	if id == "" {
		id = s.newID()
	}
	if s.accountIndex(id) >= 0 {
		s.mu.Unlock()
		return core.Account{}, fmt.Errorf("%w: %s", ErrDuplicateAccount, id)
	}
	a := core.Account{ID: id, Name: strings.TrimSpace(d.Name), Balance: d.Balance, Color: d.Color}
	s.accounts = append(s.accounts, a)
	snap := s.snapshot(Accounts)
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.logger.InfoContext(ctx, "Account created", log.FieldAccountID, a.ID)
	return a, nil
}

// UpdateAccount changes the display name and color. The balance is derived
// and never set directly.
func (s *Store) UpdateAccount(ctx context.Context, id, name, color string) (core.Account, error) {
	if err := (core.AccountDraft{Name: name, Color: color}).Validate(); err != nil {
		return core.Account{}, err
	}

	s.mu.Lock()
	i := s.accountIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	s.accounts[i].Name = strings.TrimSpace(name)
	s.accounts[i].Color = color
	a := s.accounts[i]
	snap := s.snapshot(Accounts)
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.logger.InfoContext(ctx, "Account updated", log.FieldAccountID, id)
	return a, nil
}

// DeleteAccount removes an account that no transaction or transfer references.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.accountIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	if s.accountReferenced(id) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAccountInUse, id)
	}
	s.accounts = append(s.accounts[:i:i], s.accounts[i+1:]...)
	snap := s.snapshot(Accounts)
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.logger.InfoContext(ctx, "Account deleted", log.FieldAccountID, id)
	return nil
}

func (s *Store) accountReferenced(id string) bool {
	for _, t := range s.transactions {
		if t.AccountID == id {
			return true
		}
	}
	for _, tr := range s.transfers {
		if tr.FromAccountID == id || tr.ToAccountID == id {
			return true
		}
	}
	return false
}

func (s *Store) Account(id string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.accountIndex(id)
	if i < 0 {
		return core.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return s.accounts[i], nil
}

func (s *Store) Accounts() []core.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Account(nil), s.accounts...)
}

// TotalBalance is the sum of every account balance.
func (s *Store) TotalBalance() core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total core.Money
	for _, a := range s.accounts {
		total = total.Add(a.Balance)
	}
	return total
}

func (s *Store) Categories() []core.Category {
	return append([]core.Category(nil), s.categories...)
}

// CategoriesByType returns the categories with the given affinity.
func (s *Store) CategoriesByType(t core.TransactionType) []core.Category {
	var out []core.Category
	for _, c := range s.categories {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) Category(id string) (core.Category, error) {
	c, ok := s.categoryByID[id]
	if !ok {
		return core.Category{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}
	return c, nil
}
