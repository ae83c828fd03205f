// Package seed provides the default category configuration and the sample
// dataset a fresh ledger starts from.
package seed

import (
	"strconv"
	"time"

	"moneymanager/internal/core"
	"moneymanager/internal/ledger"
)

func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "fuel", Name: "Fuel", Icon: "Fuel", Type: core.Expense},
		{ID: "movie", Name: "Movie", Icon: "Film", Type: core.Expense},
		{ID: "food", Name: "Food", Icon: "UtensilsCrossed", Type: core.Expense},
		{ID: "loan", Name: "Loan", Icon: "Landmark", Type: core.Expense},
		{ID: "medical", Name: "Medical", Icon: "Stethoscope", Type: core.Expense},
		{ID: "shopping", Name: "Shopping", Icon: "ShoppingBag", Type: core.Expense},
		{ID: "transport", Name: "Transport", Icon: "Car", Type: core.Expense},
		{ID: "utilities", Name: "Utilities", Icon: "Zap", Type: core.Expense},
		{ID: "entertainment", Name: "Entertainment", Icon: "Gamepad2", Type: core.Expense},
		{ID: "education", Name: "Education", Icon: "GraduationCap", Type: core.Expense},
		{ID: "other-expense", Name: "Other Expense", Icon: "Receipt", Type: core.Expense},
		{ID: "salary", Name: "Salary", Icon: "Briefcase", Type: core.Income},
		{ID: "freelance", Name: "Freelance", Icon: "Laptop", Type: core.Income},
		{ID: "investment", Name: "Investment", Icon: "TrendingUp", Type: core.Income},
		{ID: "bonus", Name: "Bonus", Icon: "Gift", Type: core.Income},
		{ID: "rental", Name: "Rental Income", Icon: "Home", Type: core.Income},
		{ID: "other-income", Name: "Other Income", Icon: "Coins", Type: core.Income},
	}
}

// OpeningAccounts are the default accounts before any sample activity.
func OpeningAccounts() []core.Account {
	return []core.Account{
		{ID: "cash", Name: "Cash", Balance: units(5000), Color: "#10b981"},
		{ID: "bank", Name: "Bank Account", Balance: units(25000), Color: "#3b82f6"},
		{ID: "credit", Name: "Credit Card", Balance: units(0), Color: "#ef4444"},
	}
}

type sampleTx struct {
	daysAgo     int
	t           core.TransactionType
	amount      int64
	description string
	category    string
	division    core.Division
	account     string
}

var sampleTransactions = []sampleTx{
	{25, core.Income, 75000, "Monthly salary", "salary", core.Office, "bank"},
	{20, core.Expense, 3500, "Grocery shopping", "food", core.Personal, "cash"},
	{18, core.Expense, 2000, "Fuel for car - office commute", "fuel", core.Office, "cash"},
	{15, core.Expense, 800, "Movie with family", "movie", core.Personal, "cash"},
	{12, core.Expense, 1500, "Doctor consultation", "medical", core.Personal, "bank"},
	{10, core.Income, 15000, "Freelance project payment", "freelance", core.Personal, "bank"},
	{8, core.Expense, 5000, "Online shopping", "shopping", core.Personal, "credit"},
	{7, core.Expense, 1200, "Electricity bill", "utilities", core.Personal, "bank"},
	{5, core.Expense, 2500, "Fuel for weekend trip", "fuel", core.Personal, "cash"},
	{4, core.Expense, 3000, "Team lunch", "food", core.Office, "bank"},
	{3, core.Income, 5000, "Investment returns", "investment", core.Personal, "bank"},
	{2, core.Expense, 1800, "Uber rides to office", "transport", core.Office, "cash"},
	{1, core.Expense, 500, "Netflix subscription", "entertainment", core.Personal, "credit"},
	{0, core.Expense, 2000, "Online course", "education", core.Personal, "bank"},
}

// Sample returns the sample dataset relative to now. Account balances already
// include every sample transaction and transfer.
func Sample(now time.Time) ledger.Dataset {
	accounts := OpeningAccounts()
	balance := make(map[string]*core.Money, len(accounts))
	for i := range accounts {
		balance[accounts[i].ID] = &accounts[i].Balance
	}

	txs := make([]core.Transaction, 0, len(sampleTransactions))
	for i, s := range sampleTransactions {
		at := now.AddDate(0, 0, -s.daysAgo)
		t := core.Transaction{
			ID:          "sample-tx-" + strconv.Itoa(i+1),
			Type:        s.t,
			Amount:      units(s.amount),
			Description: s.description,
			Category:    s.category,
			Division:    s.division,
			AccountID:   s.account,
			DateTime:    at,
			CreatedAt:   at,
		}
		*balance[t.AccountID] = balance[t.AccountID].Add(t.Effect())
		txs = append(txs, t)
	}

	transfers := []core.Transfer{
		{ID: "sample-tr-1", FromAccountID: "bank", ToAccountID: "cash", Amount: units(10000), Description: "ATM withdrawal", DateTime: now.AddDate(0, 0, -22), CreatedAt: now.AddDate(0, 0, -22)},
		{ID: "sample-tr-2", FromAccountID: "bank", ToAccountID: "credit", Amount: units(5000), Description: "Credit card payment", DateTime: now.AddDate(0, 0, -6), CreatedAt: now.AddDate(0, 0, -6)},
	}
	for _, tr := range transfers {
		*balance[tr.FromAccountID] = balance[tr.FromAccountID].Sub(tr.Amount)
		*balance[tr.ToAccountID] = balance[tr.ToAccountID].Add(tr.Amount)
	}

	return ledger.Dataset{Accounts: accounts, Transactions: txs, Transfers: transfers}
}

func units(n int64) core.Money {
	return core.Money{Cents: n * 100}
}
