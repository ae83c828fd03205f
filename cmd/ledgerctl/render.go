package main

import (
	"strconv"

	"github.com/pterm/pterm"

	"moneymanager/internal/api"
)

const dateLayout = "2006-01-02 15:04"

func colorAmount(txType string, a api.Amount) string {
	s := a.Money().String()
	if txType == "INCOME" {
		return pterm.Green("+" + s)
	}
	return pterm.Red("-" + s)
}

func colorBalance(a api.Amount) string {
	m := a.Money()
	if m.Cents < 0 {
		return pterm.Red(m.String())
	}
	return pterm.Green(m.String())
}

func renderTable(title string, headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)

	pterm.DefaultSection.Println(title)
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Info.Printf("Total: %d\n", len(rows))
	return nil
}

func renderTransactions(list []api.Transaction) error {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		lock := ""
		if !t.Editable {
			lock = pterm.Gray("locked")
		}
		rows = append(rows, []string{
			t.ID,
			t.DateTime.Format(dateLayout),
			t.Description,
			t.Category,
			t.Division,
			t.AccountID,
			colorAmount(t.Type, t.Amount),
			lock,
		})
	}
	return renderTable("Transactions", []string{"ID", "Date", "Description", "Category", "Division", "Account", "Amount", ""}, rows)
}

func renderAccounts(list []api.Account) error {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		rows = append(rows, []string{a.ID, a.Name, colorBalance(a.Balance), a.Color})
	}
	return renderTable("Accounts", []string{"ID", "Name", "Balance", "Color"}, rows)
}

func renderTransfers(list []api.Transfer) error {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		rows = append(rows, []string{
			t.ID,
			t.DateTime.Format(dateLayout),
			t.FromAccountID + " -> " + t.ToAccountID,
			t.Amount.Money().String(),
			t.Description,
		})
	}
	return renderTable("Transfers", []string{"ID", "Date", "Route", "Amount", "Description"}, rows)
}

func renderCategories(list []api.Category) error {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{c.ID, c.Name, c.Icon, c.Type})
	}
	return renderTable("Categories", []string{"ID", "Name", "Icon", "Type"}, rows)
}

func renderSummary(s api.DashboardSummary) error {
	pterm.DefaultSection.Println(s.Label)
	_ = pterm.DefaultTable.WithData(pterm.TableData{
		{"Income", pterm.Green(s.TotalIncome.Money().String())},
		{"Expense", pterm.Red(s.TotalExpense.Money().String())},
		{"Net", colorBalance(s.Balance)},
		{"Total balance", colorBalance(s.TotalBalance)},
		{"Transactions", strconv.Itoa(s.TransactionCount)},
	}).Render()

	if len(s.CategoryBreakdown) > 0 {
		rows := make([][]string, 0, len(s.CategoryBreakdown))
		for _, c := range s.CategoryBreakdown {
			rows = append(rows, []string{c.CategoryName, c.Type, colorAmount(c.Type, c.Amount), strconv.Itoa(c.Count)})
		}
		if err := renderTable("By category", []string{"Category", "Type", "Amount", "Count"}, rows); err != nil {
			return err
		}
	}

	if len(s.PeriodComparison) > 0 {
		bars := make([]pterm.Bar, 0, len(s.PeriodComparison))
		for _, p := range s.PeriodComparison {
			bars = append(bars, pterm.Bar{Label: p.Period, Value: int(p.Expense.Money().Cents / 100)})
		}
		pterm.DefaultSection.Println("Expenses by period")
		return pterm.DefaultBarChart.WithBars(bars).WithHorizontal().WithShowValue().Render()
	}
	return nil
}
