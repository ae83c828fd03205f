package api

import (
	"fmt"

	"moneymanager/internal/core"
)

type Transaction struct {
	ID          string `json:"id,omitempty"`
	Type        string `json:"type"`
	Amount      Amount `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Division    string `json:"division"`
	AccountID   string `json:"accountId"`
	DateTime    Time   `json:"dateTime"`
	CreatedAt   Time   `json:"createdAt"`
	UpdatedAt   Time   `json:"updatedAt"`
	Editable    bool   `json:"editable"`
}

// TransactionFrom renders t; editable reports whether it is still inside the
// edit window.
func TransactionFrom(t core.Transaction, editable bool) Transaction {
	return Transaction{
		ID:          t.ID,
		Type:        t.Type.Wire(),
		Amount:      AmountOf(t.Amount),
		Description: t.Description,
		Category:    t.Category,
		Division:    t.Division.Wire(),
		AccountID:   t.AccountID,
		DateTime:    TimeOf(t.DateTime),
		CreatedAt:   TimeOf(t.CreatedAt),
		UpdatedAt:   TimeOf(t.UpdatedAt),
		Editable:    editable,
	}
}

// TransactionFromDraft is the create request body for d.
func TransactionFromDraft(d core.TransactionDraft) Transaction {
	return TransactionFrom(core.Transaction{
		Type:        d.Type,
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Division:    d.Division,
		AccountID:   d.AccountID,
		DateTime:    d.DateTime,
	}, false)
}

func (t Transaction) Draft() (core.TransactionDraft, error) {
	typ, err := core.ParseTransactionType(t.Type)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	div, err := core.ParseDivision(t.Division)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	return core.TransactionDraft{
		Type:        typ,
		Amount:      t.Amount.Money(),
		Description: t.Description,
		Category:    t.Category,
		Division:    div,
		AccountID:   t.AccountID,
		DateTime:    t.DateTime.Time,
	}, nil
}

// TransactionPatch is the update request body. Absent fields are kept.
type TransactionPatch struct {
	Type        *string `json:"type,omitempty"`
	Amount      *Amount `json:"amount,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Division    *string `json:"division,omitempty"`
	AccountID   *string `json:"accountId,omitempty"`
	DateTime    *Time   `json:"dateTime,omitempty"`
}

func PatchFrom(u core.TransactionUpdate) TransactionPatch {
	var p TransactionPatch
	if u.Type != nil {
		s := u.Type.Wire()
		p.Type = &s
	}
	if u.Amount != nil {
		a := AmountOf(*u.Amount)
		p.Amount = &a
	}
	p.Description = u.Description
	p.Category = u.Category
	if u.Division != nil {
		s := u.Division.Wire()
		p.Division = &s
	}
	p.AccountID = u.AccountID
	if u.DateTime != nil {
		t := TimeOf(*u.DateTime)
		p.DateTime = &t
	}
	return p
}

func (p TransactionPatch) Update() (core.TransactionUpdate, error) {
	var u core.TransactionUpdate
	if p.Type != nil {
		t, err := core.ParseTransactionType(*p.Type)
		if err != nil {
			return u, err
		}
		u.Type = &t
	}
	if p.Amount != nil {
		m := p.Amount.Money()
		u.Amount = &m
	}
	u.Description = p.Description
	u.Category = p.Category
	if p.Division != nil {
		d, err := core.ParseDivision(*p.Division)
		if err != nil {
			return u, err
		}
		u.Division = &d
	}
	u.AccountID = p.AccountID
	if p.DateTime != nil {
		t := p.DateTime.Time
		u.DateTime = &t
	}
	return u, nil
}

type Transfer struct {
	ID            string `json:"id,omitempty"`
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
	Amount        Amount `json:"amount"`
	Description   string `json:"description"`
	DateTime      Time   `json:"dateTime"`
	CreatedAt     Time   `json:"createdAt"`
}

func TransferFrom(t core.Transfer) Transfer {
	return Transfer{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        AmountOf(t.Amount),
		Description:   t.Description,
		DateTime:      TimeOf(t.DateTime),
		CreatedAt:     TimeOf(t.CreatedAt),
	}
}

func TransferFromDraft(d core.TransferDraft) Transfer {
	return TransferFrom(core.Transfer{
		FromAccountID: d.FromAccountID,
		ToAccountID:   d.ToAccountID,
		Amount:        d.Amount,
		Description:   d.Description,
		DateTime:      d.DateTime,
	})
}

func (t Transfer) Draft() core.TransferDraft {
	return core.TransferDraft{
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount.Money(),
		Description:   t.Description,
		DateTime:      t.DateTime.Time,
	}
}

type Account struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance Amount `json:"balance"`
	Color   string `json:"color"`
}

func AccountFrom(a core.Account) Account {
	return Account{ID: a.ID, Name: a.Name, Balance: AmountOf(a.Balance), Color: a.Color}
}

func AccountFromDraft(d core.AccountDraft) Account {
	return Account{ID: d.ID, Name: d.Name, Balance: AmountOf(d.Balance), Color: d.Color}
}

func (a Account) Draft() core.AccountDraft {
	return core.AccountDraft{ID: a.ID, Name: a.Name, Balance: a.Balance.Money(), Color: a.Color}
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
	Type string `json:"type"`
}

func CategoryFrom(c core.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Icon: c.Icon, Type: c.Type.Wire()}
}

type CategorySummary struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Icon         string `json:"icon"`
	Type         string `json:"type"`
	Amount       Amount `json:"amount"`
	Count        int    `json:"count"`
}

func CategorySummariesFrom(in []core.CategorySummary) []CategorySummary {
	out := make([]CategorySummary, 0, len(in))
	for _, c := range in {
		out = append(out, CategorySummary{
			CategoryID:   c.CategoryID,
			CategoryName: c.CategoryName,
			Icon:         c.Icon,
			Type:         c.Type.Wire(),
			Amount:       AmountOf(c.Amount),
			Count:        c.Count,
		})
	}
	return out
}

type PeriodData struct {
	Period  string `json:"period"`
	Income  Amount `json:"income"`
	Expense Amount `json:"expense"`
}

type Totals struct {
	TotalIncome  Amount `json:"totalIncome"`
	TotalExpense Amount `json:"totalExpense"`
	Balance      Amount `json:"balance"`
}

func TotalsFrom(t core.Totals) Totals {
	return Totals{
		TotalIncome:  AmountOf(t.Income),
		TotalExpense: AmountOf(t.Expense),
		Balance:      AmountOf(t.Balance),
	}
}

// DashboardSummary keeps the totals flat next to the breakdown, income
// categories first.
type DashboardSummary struct {
	Totals
	CategoryBreakdown []CategorySummary `json:"categoryBreakdown"`
	PeriodComparison  []PeriodData      `json:"periodComparison"`
	Label             string            `json:"label"`
	StartDate         Time              `json:"startDate"`
	EndDate           Time              `json:"endDate"`
	TotalBalance      Amount            `json:"totalBalance"`
	TransactionCount  int               `json:"transactionCount"`
}

func DashboardSummaryFrom(s core.DashboardSummary) DashboardSummary {
	breakdown := append(CategorySummariesFrom(s.IncomeBreakdown), CategorySummariesFrom(s.ExpenseBreakdown)...)
	history := make([]PeriodData, 0, len(s.History))
	for _, h := range s.History {
		history = append(history, PeriodData{Period: h.Period, Income: AmountOf(h.Income), Expense: AmountOf(h.Expense)})
	}
	return DashboardSummary{
		Totals:            TotalsFrom(s.Totals),
		CategoryBreakdown: breakdown,
		PeriodComparison:  history,
		Label:             s.Label,
		StartDate:         TimeOf(s.Start),
		EndDate:           TimeOf(s.End),
		TotalBalance:      AmountOf(s.TotalBalance),
		TransactionCount:  s.Transactions,
	}
}

// PeriodPath is the dashboard endpoint segment for kind.
func PeriodPath(kind core.PeriodKind) string {
	return fmt.Sprintf("/dashboard/summary/%s", kind)
}
