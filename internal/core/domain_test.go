package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestTransactionDraftValidate(t *testing.T) {
	good := TransactionDraft{
		Type:        Expense,
		Amount:      Money{Cents: 100},
		Description: "ok",
		Category:    "food",
		Division:    Personal,
		AccountID:   "cash",
		DateTime:    time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(d *TransactionDraft)
		want error
	}{
		{"bad type", func(d *TransactionDraft) { d.Type = "refund" }, ErrInvalidType},
		{"zero amount", func(d *TransactionDraft) { d.Amount = Money{} }, ErrInvalidAmount},
		{"blank description", func(d *TransactionDraft) { d.Description = "  " }, ErrEmptyDescription},
		{"long description", func(d *TransactionDraft) { d.Description = strings.Repeat("x", 201) }, ErrDescriptionTooLong},
		{"no category", func(d *TransactionDraft) { d.Category = "" }, ErrEmptyCategory},
		{"bad division", func(d *TransactionDraft) { d.Division = "home" }, ErrInvalidDivision},
		{"no account", func(d *TransactionDraft) { d.AccountID = "" }, ErrEmptyAccount},
		{"no date", func(d *TransactionDraft) { d.DateTime = time.Time{} }, ErrMissingDate},
	}
	for _, tc := range cases {
		d := good
		tc.mod(&d)
		if err := d.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestTransferDraftValidate(t *testing.T) {
	d := TransferDraft{FromAccountID: "bank", ToAccountID: "bank", Amount: Money{Cents: 10}, DateTime: time.Now()}
	if err := d.Validate(); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}
	d.ToAccountID = "cash"
	if err := d.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestTransactionUpdateApply(t *testing.T) {
	base := TransactionDraft{Type: Expense, Amount: Money{Cents: 100}, Description: "a", Category: "food", Division: Personal, AccountID: "cash"}
	amt := Money{Cents: 250}
	acct := "bank"
	got := TransactionUpdate{Amount: &amt, AccountID: &acct}.Apply(base)
	if got.Amount != amt || got.AccountID != "bank" {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Description != "a" || got.Category != "food" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestFilterOptionsMatches(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	tx := Transaction{Division: Office, Category: "fuel", DateTime: day.Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond)}

	cases := []struct {
		name string
		f    FilterOptions
		want bool
	}{
		{"empty", FilterOptions{}, true},
		{"all", FilterOptions{Division: FilterAll, Category: FilterAll}, true},
		{"division mismatch", FilterOptions{Division: "personal"}, false},
		{"category match", FilterOptions{Category: "fuel"}, true},
		{"end date same day", FilterOptions{EndDate: day}, true},
		{"end date day before", FilterOptions{EndDate: day.AddDate(0, 0, -1)}, false},
		{"start after", FilterOptions{StartDate: day.AddDate(0, 0, 1)}, false},
	}
	for _, tc := range cases {
		if got := tc.f.Matches(tx); got != tc.want {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}

	next := Transaction{DateTime: day.AddDate(0, 0, 1)}
	if (FilterOptions{EndDate: day}).Matches(next) {
		t.Fatalf("next day must be excluded")
	}
}

func TestParseEnums(t *testing.T) {
	if got, err := ParseTransactionType("INCOME"); err != nil || got != Income {
		t.Fatalf("got %q, %v", got, err)
	}
	if got, err := ParseDivision("office"); err != nil || got != Office {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := ParseDivision("HOME"); err == nil {
		t.Fatalf("expected error")
	}
	if Expense.Wire() != "EXPENSE" || Personal.Wire() != "PERSONAL" {
		t.Fatalf("unexpected wire forms")
	}
}
