package sheets

import "moneymanager/internal/core"

const dateLayout = "2006-01-02 15:04:05"

// Header returns the column titles of tab.
func Header(tab Tab) []any {
	switch tab {
	case TransactionsTab:
		return []any{"ID", "Date", "Type", "Amount", "Description", "Category", "Division", "Account"}
	case TransfersTab:
		return []any{"ID", "Date", "From", "To", "Amount", "Description"}
	case AccountsTab:
		return []any{"ID", "Name", "Balance", "Color"}
	}
	return nil
}

func TransactionRow(t core.Transaction) []any {
	return []any{
		t.ID,
		t.DateTime.Format(dateLayout),
		t.Type.Wire(),
		t.Amount.String(),
		t.Description,
		t.Category,
		t.Division.Wire(),
		t.AccountID,
	}
}

func TransferRow(t core.Transfer) []any {
	return []any{
		t.ID,
		t.DateTime.Format(dateLayout),
		t.FromAccountID,
		t.ToAccountID,
		t.Amount.String(),
		t.Description,
	}
}

func AccountRow(a core.Account) []any {
	return []any{a.ID, a.Name, a.Balance.String(), a.Color}
}
