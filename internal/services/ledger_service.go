package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"moneymanager/internal/amqp"
	"moneymanager/internal/core"
	"moneymanager/internal/ledger"
	"moneymanager/internal/log"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, e *amqp.LedgerEvent) error
	Close() error
}

// LedgerService orchestrates ledger mutations and event publication. Reads
// are served by the embedded store; every mutation is overridden so that a
// successful change is followed by an event.
type LedgerService struct {
	*ledger.Store
	publisher EventPublisher
	closers   []func() error
	logger    *log.Logger
}

// NewLedgerService wires store and publisher. publisher may be nil, in which
// case events are skipped. closers run on Close after the publisher.
func NewLedgerService(store *ledger.Store, publisher EventPublisher, logger *log.Logger, closers ...func() error) *LedgerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LedgerService{
		Store:     store,
		publisher: publisher,
		closers:   closers,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

func (s *LedgerService) AddTransaction(ctx context.Context, d core.TransactionDraft) (core.Transaction, error) {
	t, err := s.Store.AddTransaction(ctx, d)
	if err != nil {
		return t, err
	}
	s.publish(ctx, amqp.NewTransactionEvent(amqp.TransactionCreated, t))
	s.publishBalances(ctx, t.AccountID)
	return t, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, u core.TransactionUpdate) (core.Transaction, error) {
	before, err := s.Store.Transaction(id)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := s.Store.UpdateTransaction(ctx, id, u)
	if err != nil {
		return t, err
	}
	s.publish(ctx, amqp.NewTransactionEvent(amqp.TransactionUpdated, t))
	s.publishBalances(ctx, before.AccountID, t.AccountID)
	return t, nil
}

func (s *LedgerService) Updated(ctx context.Context, id string, u core.TransactionUpdate) bool {
	_, err := s.UpdateTransaction(ctx, id, u)
	return err == nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	before, err := s.Store.Transaction(id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewTransactionEvent(amqp.TransactionDeleted, before))
	s.publishBalances(ctx, before.AccountID)
	return nil
}

func (s *LedgerService) Deleted(ctx context.Context, id string) bool {
	return s.DeleteTransaction(ctx, id) == nil
}

func (s *LedgerService) AddTransfer(ctx context.Context, d core.TransferDraft) (core.Transfer, error) {
	t, err := s.Store.AddTransfer(ctx, d)
	if err != nil {
		return t, err
	}
	s.publish(ctx, amqp.NewTransferEvent(amqp.TransferCreated, t))
	s.publishBalances(ctx, t.FromAccountID, t.ToAccountID)
	return t, nil
}

func (s *LedgerService) DeleteTransfer(ctx context.Context, id string) error {
	before, err := s.Store.Transfer(id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteTransfer(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewTransferEvent(amqp.TransferDeleted, before))
	s.publishBalances(ctx, before.FromAccountID, before.ToAccountID)
	return nil
}

func (s *LedgerService) AddAccount(ctx context.Context, d core.AccountDraft) (core.Account, error) {
	a, err := s.Store.AddAccount(ctx, d)
	if err != nil {
		return a, err
	}
	s.publish(ctx, amqp.NewAccountEvent(amqp.AccountCreated, a))
	return a, nil
}

func (s *LedgerService) UpdateAccount(ctx context.Context, id, name, color string) (core.Account, error) {
	a, err := s.Store.UpdateAccount(ctx, id, name, color)
	if err != nil {
		return a, err
	}
	s.publish(ctx, amqp.NewAccountEvent(amqp.AccountUpdated, a))
	return a, nil
}

func (s *LedgerService) DeleteAccount(ctx context.Context, id string) error {
	before, err := s.Store.Account(id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewAccountEvent(amqp.AccountDeleted, before))
	return nil
}

// publishBalances sends an account.updated snapshot for each distinct account
// whose balance a transaction or transfer change moved.
func (s *LedgerService) publishBalances(ctx context.Context, ids ...string) {
	for i, id := range ids {
		if slices.Contains(ids[:i], id) {
			continue
		}
		a, err := s.Store.Account(id)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping balance event for missing account",
				log.FieldAccountID, id, log.FieldError, err)
			continue
		}
		s.publish(ctx, amqp.NewAccountEvent(amqp.AccountUpdated, a))
	}
}

// publish never fails the caller: the mutation is already applied locally.
func (s *LedgerService) publish(ctx context.Context, e *amqp.LedgerEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping event", log.FieldEventKind, e.Kind)
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventKind, e.Kind,
			log.FieldEventID, e.ID,
			"subject_id", e.SubjectID(),
			log.FieldError, err)
	}
}

// Close closes the publisher and every registered closer.
func (s *LedgerService) Close() error {
	var errs []error

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
