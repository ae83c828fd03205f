package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"moneymanager/internal/core"
)

// EventKind names a ledger mutation. It doubles as the routing key suffix.
type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionUpdated EventKind = "transaction.updated"
	TransactionDeleted EventKind = "transaction.deleted"
	TransferCreated    EventKind = "transfer.created"
	TransferDeleted    EventKind = "transfer.deleted"
	AccountCreated     EventKind = "account.created"
	AccountUpdated     EventKind = "account.updated"
	AccountDeleted     EventKind = "account.deleted"
)

// LedgerEvent carries a snapshot of the record a mutation produced. Delete
// events carry the record as it was before removal.
type LedgerEvent struct {
	ID          string            `json:"id"`
	Kind        EventKind         `json:"kind"`
	Timestamp   time.Time         `json:"timestamp"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Transfer    *core.Transfer    `json:"transfer,omitempty"`
	Account     *core.Account     `json:"account,omitempty"`
}

func newEvent(kind EventKind) *LedgerEvent {
	return &LedgerEvent{ID: uuid.NewString(), Kind: kind, Timestamp: time.Now().UTC()}
}

func NewTransactionEvent(kind EventKind, t core.Transaction) *LedgerEvent {
	e := newEvent(kind)
	e.Transaction = &t
	return e
}

func NewTransferEvent(kind EventKind, t core.Transfer) *LedgerEvent {
	e := newEvent(kind)
	e.Transfer = &t
	return e
}

func NewAccountEvent(kind EventKind, a core.Account) *LedgerEvent {
	e := newEvent(kind)
	e.Account = &a
	return e
}

// SubjectID is the id of the record the event is about.
func (e *LedgerEvent) SubjectID() string {
	switch {
	case e.Transaction != nil:
		return e.Transaction.ID
	case e.Transfer != nil:
		return e.Transfer.ID
	case e.Account != nil:
		return e.Account.ID
	}
	return ""
}

// ToJSON converts the message to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes a message body. An event without an id or kind
// is rejected.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.ID == "" || e.Kind == "" {
		return nil, fmt.Errorf("ledger event missing id or kind")
	}
	return &e, nil
}
