package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Personal Division = "personal"
	Office   Division = "office"

	// FilterAll matches any division or category.
	FilterAll = "all"

	maxDescriptionLen = 200
)

type (
	TransactionType string

	Division string

	Money struct {
		Cents int64
	}

	Category struct {
		ID   string          `json:"id"`
		Name string          `json:"name"`
		Icon string          `json:"icon"`
		Type TransactionType `json:"type"`
	}

	Account struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Balance Money  `json:"balance"`
		Color   string `json:"color"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Division    Division        `json:"division"`
		AccountID   string          `json:"accountId"`
		DateTime    time.Time       `json:"dateTime"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt,omitempty"`
	}

	Transfer struct {
		ID            string    `json:"id"`
		FromAccountID string    `json:"fromAccountId"`
		ToAccountID   string    `json:"toAccountId"`
		Amount        Money     `json:"amount"`
		Description   string    `json:"description"`
		DateTime      time.Time `json:"dateTime"`
		CreatedAt     time.Time `json:"createdAt"`
	}

	// TransactionDraft is a transaction before the store assigns ID and CreatedAt.
	TransactionDraft struct {
		Type        TransactionType
		Amount      Money
		Description string
		Category    string
		Division    Division
		AccountID   string
		DateTime    time.Time
	}

	// TransactionUpdate carries a partial update; nil fields are left untouched.
	TransactionUpdate struct {
		Type        *TransactionType
		Amount      *Money
		Description *string
		Category    *string
		Division    *Division
		AccountID   *string
		DateTime    *time.Time
	}

	TransferDraft struct {
		FromAccountID string
		ToAccountID   string
		Amount        Money
		Description   string
		DateTime      time.Time
	}

	// AccountDraft describes a new account. Balance is the opening balance.
	AccountDraft struct {
		ID      string
		Name    string
		Balance Money
		Color   string
	}

	FilterOptions struct {
		Division  string
		Category  string
		StartDate time.Time
		EndDate   time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDivision    = errors.New("invalid division")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyAccount       = errors.New("empty account")
	ErrMissingDate        = errors.New("date cannot be zero")
	ErrSameAccount        = errors.New("cannot transfer to the same account")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyColor         = errors.New("empty color")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (d Division) Validate() error {
	switch d {
	case Personal, Office:
		return nil
	default:
		return ErrInvalidDivision
	}
}

func validateDescription(desc string, required bool) error {
	if required && strings.TrimSpace(desc) == "" {
		return ErrEmptyDescription
	}
	if len(desc) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

func (d TransactionDraft) Validate() error {
	if err := d.Type.Validate(); err != nil {
		return err
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if err := validateDescription(d.Description, true); err != nil {
		return err
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if err := d.Division.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.AccountID) == "" {
		return ErrEmptyAccount
	}
	if d.DateTime.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Draft returns the mutable part of the transaction.
func (t Transaction) Draft() TransactionDraft {
	return TransactionDraft{
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Division:    t.Division,
		AccountID:   t.AccountID,
		DateTime:    t.DateTime,
	}
}

// Apply merges the non-nil fields of u into d.
func (u TransactionUpdate) Apply(d TransactionDraft) TransactionDraft {
	if u.Type != nil {
		d.Type = *u.Type
	}
	if u.Amount != nil {
		d.Amount = *u.Amount
	}
	if u.Description != nil {
		d.Description = *u.Description
	}
	if u.Category != nil {
		d.Category = *u.Category
	}
	if u.Division != nil {
		d.Division = *u.Division
	}
	if u.AccountID != nil {
		d.AccountID = *u.AccountID
	}
	if u.DateTime != nil {
		d.DateTime = *u.DateTime
	}
	return d
}

// Effect is the signed change the transaction applies to its account.
func (t Transaction) Effect() Money {
	if t.Type == Income {
		return t.Amount
	}
	return Money{Cents: -t.Amount.Cents}
}

func (d TransferDraft) Validate() error {
	if strings.TrimSpace(d.FromAccountID) == "" || strings.TrimSpace(d.ToAccountID) == "" {
		return ErrEmptyAccount
	}
	if d.FromAccountID == d.ToAccountID {
		return ErrSameAccount
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if err := validateDescription(d.Description, false); err != nil {
		return err
	}
	if d.DateTime.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (d AccountDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(d.Color) == "" {
		return ErrEmptyColor
	}
	return nil
}

// Matches reports whether the transaction passes the filter. The end date
// covers its whole day.
func (f FilterOptions) Matches(t Transaction) bool {
	if f.Division != "" && f.Division != FilterAll && string(t.Division) != f.Division {
		return false
	}
	if f.Category != "" && f.Category != FilterAll && t.Category != f.Category {
		return false
	}
	if !f.StartDate.IsZero() && t.DateTime.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && t.DateTime.After(EndOfDay(f.EndDate)) {
		return false
	}
	return true
}
