package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moneymanager/internal/api"
	"moneymanager/internal/core"
)

func newDashboardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Period summaries",
	}

	var (
		offset   int
		from, to string
	)
	summary := &cobra.Command{
		Use:       "summary <weekly|monthly|yearly|custom>",
		Short:     "Summarize a period",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"weekly", "monthly", "yearly", "custom"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				sum api.DashboardSummary
				err error
			)
			if args[0] == "custom" {
				if from == "" || to == "" {
					return fmt.Errorf("custom summary needs --from and --to")
				}
				start, err := api.ParseTime(from)
				if err != nil {
					return err
				}
				end, err := api.ParseTime(to)
				if err != nil {
					return err
				}
				sum, err = a.client.CustomSummary(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				return renderSummary(sum)
			}

			kind, err := core.ParsePeriodKind(args[0])
			if err != nil {
				return err
			}
			if offset < 0 {
				return fmt.Errorf("offset must not be negative")
			}
			if sum, err = a.client.SummaryAt(cmd.Context(), kind, offset); err != nil {
				return err
			}
			return renderSummary(sum)
		},
	}
	summary.Flags().IntVarP(&offset, "offset", "o", 0, "periods back from the current one")
	summary.Flags().StringVar(&from, "from", "", "custom range start")
	summary.Flags().StringVar(&to, "to", "", "custom range end")
	cmd.AddCommand(summary)

	return cmd
}
