package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"moneymanager/internal/api"
)

func newAccountsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"acc"},
		Short:   "Inspect accounts and balances",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}
			return renderAccounts(list)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "balance",
		Short: "Show the balance across all accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			total, err := a.client.TotalBalance(cmd.Context())
			if err != nil {
				return err
			}
			pterm.Info.Printf("Total balance: %s\n", colorBalance(api.AmountOf(total)))
			return nil
		},
	})

	return cmd
}
