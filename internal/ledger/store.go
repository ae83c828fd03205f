// Package ledger holds the in-process state of accounts, transactions and
// transfers, keeps account balances consistent with them and answers the
// aggregation queries behind the dashboard.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneymanager/internal/core"
	"moneymanager/internal/log"
)

// Collection names a persisted JSON array.
type Collection string

const (
	Transactions Collection = "money_manager_transactions"
	Transfers    Collection = "money_manager_transfers"
	Accounts     Collection = "money_manager_accounts"
)

// Collections lists every persisted collection in load order.
var Collections = []Collection{Accounts, Transactions, Transfers}

// Persister is the storage port. Load reports found=false when the key has
// never been written.
type Persister interface {
	Load(ctx context.Context, c Collection) (data []byte, found bool, err error)
	Save(ctx context.Context, c Collection, data []byte) error
}

// Dataset is the fallback content used for collections that were never persisted.
type Dataset struct {
	Accounts     []core.Account
	Transactions []core.Transaction
	Transfers    []core.Transfer
}

type Options struct {
	Categories []core.Category
	Persister  Persister
	Seed       Dataset
	Clock      func() time.Time
	IDs        func() string
	Logger     *log.Logger
}

var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrTransactionLocked    = errors.New("transaction is outside the edit window")
	ErrTransferNotFound     = errors.New("transfer not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountInUse         = errors.New("account has transactions or transfers")
	ErrDuplicateAccount     = errors.New("account already exists")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryTypeMismatch = errors.New("category does not match transaction type")
)

// Store is the single source of truth for ledger state. It is safe for
// concurrent use; every mutation completes under one lock so balance updates
// are never observed half-applied.
type Store struct {
	mu           sync.RWMutex
	categories   []core.Category
	categoryByID map[string]core.Category
	accounts     []core.Account
	transactions []core.Transaction
	transfers    []core.Transfer

	persister Persister
	version   uint64
	saveMu    sync.Mutex
	saved     map[Collection]uint64
	now       func() time.Time
	newID     func() string
	logger    *log.Logger
}

// New builds a store and loads each collection from the persister. A
// collection that was never saved falls back to the matching seed slice.
func New(ctx context.Context, opts Options) (*Store, error) {
	s := &Store{
		categories:   append([]core.Category(nil), opts.Categories...),
		categoryByID: make(map[string]core.Category, len(opts.Categories)),
		persister:    opts.Persister,
		saved:        make(map[Collection]uint64, len(Collections)),
		now:          opts.Clock,
		newID:        opts.IDs,
		logger:       opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)
	for _, c := range s.categories {
		s.categoryByID[c.ID] = c
	}

	s.accounts = append([]core.Account(nil), opts.Seed.Accounts...)
	s.transactions = append([]core.Transaction(nil), opts.Seed.Transactions...)
	s.transfers = append([]core.Transfer(nil), opts.Seed.Transfers...)

	if s.persister == nil {
		return s, nil
	}
	if err := load(ctx, s.persister, Accounts, &s.accounts); err != nil {
		return nil, err
	}
	if err := load(ctx, s.persister, Transactions, &s.transactions); err != nil {
		return nil, err
	}
	if err := load(ctx, s.persister, Transfers, &s.transfers); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Ledger loaded",
		"accounts", len(s.accounts),
		"transactions", len(s.transactions),
		"transfers", len(s.transfers))
	return s, nil
}

func load[T any](ctx context.Context, p Persister, c Collection, dst *[]T) error {
	data, found, err := p.Load(ctx, c)
	if err != nil {
		return fmt.Errorf("load %s: %w", c, err)
	}
	if !found {
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode %s: %w", c, err)
	}
	*dst = items
	return nil
}

// Export returns a consistent copy of every collection.
func (s *Store) Export() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Dataset{
		Accounts:     append([]core.Account(nil), s.accounts...),
		Transactions: append([]core.Transaction(nil), s.transactions...),
		Transfers:    append([]core.Transfer(nil), s.transfers...),
	}
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// CanEdit reports whether a record created at createdAt is still inside the edit window.
func (s *Store) CanEdit(createdAt time.Time) bool {
	return core.CanEdit(createdAt, s.now())
}

type pendingSave struct {
	version uint64
	data    map[Collection][]byte
}

// snapshot serializes the named collections. Callers must hold s.mu for writing.
func (s *Store) snapshot(cs ...Collection) pendingSave {
	s.version++
	out := make(map[Collection][]byte, len(cs))
	for _, c := range cs {
		var (
			data []byte
			err  error
		)
		switch c {
		case Accounts:
			data, err = json.Marshal(s.accounts)
		case Transactions:
			data, err = json.Marshal(s.transactions)
		case Transfers:
			data, err = json.Marshal(s.transfers)
		}
		if err != nil {
			s.logger.Error("Failed to encode collection", log.FieldCollection, c, log.FieldError, err)
			continue
		}
		out[c] = data
	}
	return pendingSave{version: s.version, data: out}
}

// persist writes a snapshot after the state lock is released. A snapshot
// older than the last one saved for a collection is skipped. Failures are
// logged, not returned: the in-memory mutation has already happened.
func (s *Store) persist(ctx context.Context, snap pendingSave) {
	if s.persister == nil {
		return
	}
	// writes outlive a cancelled caller
	ctx = context.WithoutCancel(ctx)
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	for _, c := range Collections {
		data, ok := snap.data[c]
		if !ok || s.saved[c] >= snap.version {
			continue
		}
		s.saved[c] = snap.version
		if err := s.persister.Save(ctx, c, data); err != nil {
			s.logger.ErrorContext(ctx, "Failed to persist collection",
				log.FieldCollection, c,
				log.FieldOperation, log.OpPersist,
				log.FieldError, err)
		}
	}
}

func (s *Store) accountIndex(id string) int {
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) transactionIndex(id string) int {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) transferIndex(id string) int {
	for i := range s.transfers {
		if s.transfers[i].ID == id {
			return i
		}
	}
	return -1
}
