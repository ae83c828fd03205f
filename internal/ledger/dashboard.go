package ledger

import (
	"time"

	"moneymanager/internal/core"
)

// Summary aggregates the period of the given kind that lies offset periods
// before the current one. History holds HistoryLength(kind) buckets ending
// at that period, most recent last.
func (s *Store) Summary(kind core.PeriodKind, offset int) core.DashboardSummary {
	now := s.now()
	all := s.Transactions()
	start, end := core.PeriodBounds(kind, offset, now)

	sum := s.rangeSummary(all, start, end)
	sum.Kind = kind
	sum.Label = core.PeriodLabel(kind, start, end)

	n := core.HistoryLength(kind)
	sum.History = make([]core.PeriodComparison, 0, n)
	for i := n - 1; i >= 0; i-- {
		hs, he := core.PeriodBounds(kind, offset+i, now)
		in := between(all, hs, he)
		sum.History = append(sum.History, core.PeriodComparison{
			Period:  core.HistoryLabel(kind, hs),
			Start:   hs,
			End:     he,
			Income:  TotalIncome(in),
			Expense: TotalExpense(in),
		})
	}
	return sum
}

// CustomSummary aggregates an arbitrary range. start is taken from the start
// of its day and end covers its whole day.
func (s *Store) CustomSummary(start, end time.Time) core.DashboardSummary {
	start, end = core.StartOfDay(start), core.EndOfDay(end)
	sum := s.rangeSummary(s.Transactions(), start, end)
	sum.Label = start.Format("Jan 2, 2006") + " - " + end.Format("Jan 2, 2006")
	return sum
}

func (s *Store) rangeSummary(all []core.Transaction, start, end time.Time) core.DashboardSummary {
	in := between(all, start, end)
	return core.DashboardSummary{
		Start:            start,
		End:              end,
		Totals:           totals(in),
		IncomeBreakdown:  s.summarize(in, core.Income),
		ExpenseBreakdown: s.summarize(in, core.Expense),
		TotalBalance:     s.TotalBalance(),
		Transactions:     len(in),
	}
}

func between(all []core.Transaction, start, end time.Time) []core.Transaction {
	var out []core.Transaction
	for _, t := range all {
		if t.DateTime.Before(start) || t.DateTime.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}
