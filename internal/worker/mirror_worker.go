package worker

import (
	"context"
	"errors"
	"fmt"

	"moneymanager/internal/amqp"
	"moneymanager/internal/ledger"
	"moneymanager/internal/log"
	"moneymanager/internal/sheets"
)

var errEmptyEvent = errors.New("event carries no record")

// MirrorWorker applies ledger events to a spreadsheet mirror.
type MirrorWorker struct {
	mirror sheets.Mirror
	logger *log.Logger
}

func NewMirrorWorker(mirror sheets.Mirror, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &MirrorWorker{mirror: mirror, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleEvent mirrors one event. Unknown kinds are logged and acknowledged;
// a returned error makes the consumer requeue the message.
func (w *MirrorWorker) HandleEvent(ctx context.Context, e *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldEventID, e.ID,
		log.FieldEventKind, e.Kind,
		"subject_id", e.SubjectID())

	var err error
	switch e.Kind {
	case amqp.TransactionCreated, amqp.TransactionUpdated:
		if e.Transaction == nil {
			return fmt.Errorf("%s: %w", e.Kind, errEmptyEvent)
		}
		err = w.mirror.UpsertTransaction(ctx, *e.Transaction)
	case amqp.TransferCreated:
		if e.Transfer == nil {
			return fmt.Errorf("%s: %w", e.Kind, errEmptyEvent)
		}
		err = w.mirror.UpsertTransfer(ctx, *e.Transfer)
	case amqp.AccountCreated, amqp.AccountUpdated:
		if e.Account == nil {
			return fmt.Errorf("%s: %w", e.Kind, errEmptyEvent)
		}
		err = w.mirror.UpsertAccount(ctx, *e.Account)
	case amqp.TransactionDeleted:
		err = w.mirror.DeleteRow(ctx, sheets.TransactionsTab, e.SubjectID())
	case amqp.TransferDeleted:
		err = w.mirror.DeleteRow(ctx, sheets.TransfersTab, e.SubjectID())
	case amqp.AccountDeleted:
		err = w.mirror.DeleteRow(ctx, sheets.AccountsTab, e.SubjectID())
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event kind", log.FieldEventKind, e.Kind, log.FieldEventID, e.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mirror %s: %w", e.Kind, err)
	}
	return nil
}

// Resync writes every record of d to the mirror. It backs up the event
// stream when messages were lost while the worker was down.
func (w *MirrorWorker) Resync(ctx context.Context, d ledger.Dataset) error {
	w.logger.InfoContext(ctx, "Resyncing mirror",
		"accounts", len(d.Accounts),
		"transactions", len(d.Transactions),
		"transfers", len(d.Transfers))

	for _, a := range d.Accounts {
		if err := w.mirror.UpsertAccount(ctx, a); err != nil {
			return fmt.Errorf("resync account %s: %w", a.ID, err)
		}
	}
	for _, t := range d.Transactions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.mirror.UpsertTransaction(ctx, t); err != nil {
			return fmt.Errorf("resync transaction %s: %w", t.ID, err)
		}
	}
	for _, t := range d.Transfers {
		if err := w.mirror.UpsertTransfer(ctx, t); err != nil {
			return fmt.Errorf("resync transfer %s: %w", t.ID, err)
		}
	}
	return nil
}
