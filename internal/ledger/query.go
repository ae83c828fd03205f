package ledger

import (
	"sort"
	"time"

	"moneymanager/internal/core"
)

const defaultCategoryIcon = "Receipt"

// FilteredTransactions returns the transactions matching f, newest first.
func (s *Store) FilteredTransactions(f core.FilterOptions) []core.Transaction {
	s.mu.RLock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()
	sortTransactions(out)
	return out
}

func sortTransactions(ts []core.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].DateTime.After(ts[j].DateTime) })
}

func sortTransfers(ts []core.Transfer) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].DateTime.After(ts[j].DateTime) })
}

// TotalIncome sums the amounts of income transactions in list.
func TotalIncome(list []core.Transaction) core.Money {
	return sumType(list, core.Income)
}

// TotalExpense sums the amounts of expense transactions in list.
func TotalExpense(list []core.Transaction) core.Money {
	return sumType(list, core.Expense)
}

func sumType(list []core.Transaction, t core.TransactionType) core.Money {
	var total core.Money
	for _, tx := range list {
		if tx.Type == t {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// CategoryTotals groups list by category id and sums the amounts. Each group
// takes the type of the last transaction visited in it; groups are returned
// in first-seen order.
func CategoryTotals(list []core.Transaction) []core.CategoryTotal {
	idx := make(map[string]int)
	var out []core.CategoryTotal
	for _, tx := range list {
		i, ok := idx[tx.Category]
		if !ok {
			i = len(out)
			idx[tx.Category] = i
			out = append(out, core.CategoryTotal{Category: tx.Category})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
		out[i].Type = tx.Type
	}
	return out
}

// summarize builds the display breakdown of list for one transaction type,
// largest amount first.
func (s *Store) summarize(list []core.Transaction, t core.TransactionType) []core.CategorySummary {
	idx := make(map[string]int)
	out := []core.CategorySummary{}
	for _, tx := range list {
		if tx.Type != t {
			continue
		}
		i, ok := idx[tx.Category]
		if !ok {
			i = len(out)
			idx[tx.Category] = i
			out = append(out, s.describe(tx.Category, t))
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.Cents > out[j].Amount.Cents })
	return out
}

func (s *Store) describe(id string, t core.TransactionType) core.CategorySummary {
	cs := core.CategorySummary{CategoryID: id, CategoryName: id, Icon: defaultCategoryIcon, Type: t}
	if c, ok := s.categoryByID[id]; ok {
		cs.CategoryName = c.Name
		if c.Icon != "" {
			cs.Icon = c.Icon
		}
	}
	return cs
}

// CategorySummary returns the income and expense breakdowns of the
// transactions matching f, income first.
func (s *Store) CategorySummary(f core.FilterOptions) []core.CategorySummary {
	list := s.FilteredTransactions(f)
	return append(s.summarize(list, core.Income), s.summarize(list, core.Expense)...)
}

// Totals covers every transaction in the ledger.
func (s *Store) Totals() core.Totals {
	return totals(s.Transactions())
}

// TotalsBetween covers the transactions inside the range, with the date
// semantics of FilteredTransactions. A zero bound is open.
func (s *Store) TotalsBetween(start, end time.Time) core.Totals {
	return totals(s.FilteredTransactions(core.FilterOptions{StartDate: start, EndDate: end}))
}

func totals(list []core.Transaction) core.Totals {
	in, out := TotalIncome(list), TotalExpense(list)
	return core.Totals{Income: in, Expense: out, Balance: in.Sub(out)}
}
