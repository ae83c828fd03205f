package core

import "time"

// CategoryTotal is an amount aggregated by category id.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   Money           `json:"amount"`
	Type     TransactionType `json:"type"`
}

// CategorySummary enriches a CategoryTotal with display data and a count.
type CategorySummary struct {
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Icon         string          `json:"icon"`
	Type         TransactionType `json:"type"`
	Amount       Money           `json:"amount"`
	Count        int             `json:"count"`
}

// PeriodComparison is one bucket of the dashboard history series.
type PeriodComparison struct {
	Period  string    `json:"period"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Income  Money     `json:"income"`
	Expense Money     `json:"expense"`
}

type Totals struct {
	Income  Money `json:"totalIncome"`
	Expense Money `json:"totalExpense"`
	Balance Money `json:"balance"`
}

// DashboardSummary is the aggregate view of one period.
type DashboardSummary struct {
	Kind             PeriodKind         `json:"kind,omitempty"`
	Label            string             `json:"label"`
	Start            time.Time          `json:"start"`
	End              time.Time          `json:"end"`
	Totals                              // income, expense and balance of the period
	IncomeBreakdown  []CategorySummary  `json:"incomeBreakdown"`
	ExpenseBreakdown []CategorySummary  `json:"expenseBreakdown"`
	History          []PeriodComparison `json:"history,omitempty"`
	TotalBalance     Money              `json:"totalBalance"`
	Transactions     int                `json:"transactionCount"`
}
