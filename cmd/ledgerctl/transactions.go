package main

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"moneymanager/internal/core"
)

func newTransactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List, add and delete transactions",
	}
	cmd.AddCommand(newTxListCmd(a), newTxAddCmd(a), newTxDeleteCmd(a))
	return cmd
}

type txListFlags struct {
	division string
	category string
	from     string
	to       string
}

func newTxListCmd(a *app) *cobra.Command {
	flags := &txListFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseOptionalDate(flags.from)
			if err != nil {
				return err
			}
			end, err := parseOptionalDate(flags.to)
			if err != nil {
				return err
			}
			list, err := a.client.ListTransactions(cmd.Context(), core.FilterOptions{
				Division:  flags.division,
				Category:  flags.category,
				StartDate: start,
				EndDate:   end,
			})
			if err != nil {
				return err
			}
			return renderTransactions(list)
		},
	}
	cmd.Flags().StringVar(&flags.division, "division", "", "filter by division (personal, office)")
	cmd.Flags().StringVar(&flags.category, "category", "", "filter by category id")
	cmd.Flags().StringVar(&flags.from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "end date, inclusive (YYYY-MM-DD)")
	return cmd
}

type txAddFlags struct {
	txType      string
	amount      string
	description string
	category    string
	division    string
	account     string
	date        string
}

func newTxAddCmd(a *app) *cobra.Command {
	flags := &txAddFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := flags.draft(time.Now())
			if err != nil {
				return err
			}
			t, err := a.client.CreateTransaction(cmd.Context(), d)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Transaction %s recorded: %s %s\n", t.ID, t.Description, t.Amount.Money())
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.txType, "type", "t", "expense", "income or expense")
	cmd.Flags().StringVarP(&flags.amount, "amount", "a", "", "amount, e.g. 12.50")
	cmd.Flags().StringVarP(&flags.description, "description", "d", "", "description")
	cmd.Flags().StringVar(&flags.category, "category", "", "category id")
	cmd.Flags().StringVar(&flags.division, "division", "personal", "personal or office")
	cmd.Flags().StringVar(&flags.account, "account", "", "account id")
	cmd.Flags().StringVar(&flags.date, "date", "", "date and time (default now)")
	for _, name := range []string{"amount", "description", "category", "account"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (f *txAddFlags) draft(now time.Time) (core.TransactionDraft, error) {
	t, err := core.ParseTransactionType(f.txType)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	div, err := core.ParseDivision(f.division)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	amount, err := parseAmount(f.amount)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	when, err := parseWhen(f.date, now)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	return core.TransactionDraft{
		Type:        t,
		Amount:      amount,
		Description: f.description,
		Category:    f.category,
		Division:    div,
		AccountID:   f.account,
		DateTime:    when,
	}, nil
}

func newTxDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction created in the last 12 hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteTransaction(cmd.Context(), args[0]); err != nil {
				return err
			}
			pterm.Success.Printf("Transaction %s deleted\n", args[0])
			return nil
		},
	}
}
