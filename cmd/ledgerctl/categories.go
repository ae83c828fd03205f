package main

import (
	"github.com/spf13/cobra"

	"moneymanager/internal/api"
	"moneymanager/internal/core"
)

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the configured categories",
	}

	var txType string
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories, optionally of one type",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cats []api.Category
				err  error
			)
			if txType == "" {
				cats, err = a.client.ListCategories(cmd.Context())
			} else {
				var t core.TransactionType
				if t, err = core.ParseTransactionType(txType); err != nil {
					return err
				}
				cats, err = a.client.CategoriesByType(cmd.Context(), t)
			}
			if err != nil {
				return err
			}
			return renderCategories(cats)
		},
	}
	list.Flags().StringVarP(&txType, "type", "t", "", "income or expense")
	cmd.AddCommand(list)

	return cmd
}
