package main

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"moneymanager/internal/api"
	"moneymanager/internal/core"
)

func newTransfersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "List and record transfers between accounts",
	}
	cmd.AddCommand(newTransferListCmd(a), newTransferAddCmd(a))
	return cmd
}

func newTransferListCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transfers, optionally within a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				list []api.Transfer
				err  error
			)
			if from == "" && to == "" {
				list, err = a.client.ListTransfers(cmd.Context())
			} else {
				var start, end time.Time
				if start, err = api.ParseTime(from); err != nil {
					return err
				}
				if end, err = api.ParseTime(to); err != nil {
					return err
				}
				list, err = a.client.TransfersByDateRange(cmd.Context(), start, end)
			}
			if err != nil {
				return err
			}
			return renderTransfers(list)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start of the range")
	cmd.Flags().StringVar(&to, "to", "", "end of the range")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}

type transferAddFlags struct {
	from        string
	to          string
	amount      string
	description string
	date        string
}

func newTransferAddCmd(a *app) *cobra.Command {
	flags := &transferAddFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Move money between two accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := flags.draft(time.Now())
			if err != nil {
				return err
			}
			t, err := a.client.CreateTransfer(cmd.Context(), d)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Transfer %s recorded: %s -> %s %s\n", t.ID, t.FromAccountID, t.ToAccountID, t.Amount.Money())
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.from, "from-account", "", "source account id")
	cmd.Flags().StringVar(&flags.to, "to-account", "", "destination account id")
	cmd.Flags().StringVarP(&flags.amount, "amount", "a", "", "amount, e.g. 100")
	cmd.Flags().StringVarP(&flags.description, "description", "d", "", "description")
	cmd.Flags().StringVar(&flags.date, "date", "", "date and time (default now)")
	for _, name := range []string{"from-account", "to-account", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (f *transferAddFlags) draft(now time.Time) (core.TransferDraft, error) {
	amount, err := parseAmount(f.amount)
	if err != nil {
		return core.TransferDraft{}, err
	}
	when, err := parseWhen(f.date, now)
	if err != nil {
		return core.TransferDraft{}, err
	}
	return core.TransferDraft{
		FromAccountID: f.from,
		ToAccountID:   f.to,
		Amount:        amount,
		Description:   f.description,
		DateTime:      when,
	}, nil
}
