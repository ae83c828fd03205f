// Command ledgerctl drives a running moneymanager server over its REST API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"moneymanager/internal/remote"
)

const (
	keyBaseURL = "base-url"
	keyTimeout = "timeout"
)

// app carries what every subcommand needs once the root has been configured.
type app struct {
	cfgFile string
	client  *remote.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Command-line client for the moneymanager ledger",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default: $HOME/.config/ledgerctl/config.yaml)")
	root.PersistentFlags().String(keyBaseURL, "http://localhost:8080/api", "ledger API base URL")
	root.PersistentFlags().Duration(keyTimeout, 30*time.Second, "request timeout")

	_ = viper.BindPFlag(keyBaseURL, root.PersistentFlags().Lookup(keyBaseURL))
	_ = viper.BindPFlag(keyTimeout, root.PersistentFlags().Lookup(keyTimeout))

	root.AddCommand(
		newTransactionsCmd(a),
		newAccountsCmd(a),
		newTransfersCmd(a),
		newCategoriesCmd(a),
		newDashboardCmd(a),
	)
	return root
}

// init reads flags, LEDGERCTL_* environment variables and the optional config
// file, in that order of precedence, and builds the API client.
func (a *app) init(_ *cobra.Command) error {
	if a.cfgFile != "" {
		viper.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ledgerctl"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LEDGERCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	client, err := remote.New(viper.GetString(keyBaseURL), viper.GetDuration(keyTimeout))
	if err != nil {
		return err
	}
	a.client = client
	return nil
}

func main() {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		pterm.Error.Println(describeError(err))
		os.Exit(1)
	}
}

// describeError turns API rejections into the server's own message.
func describeError(err error) string {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s (HTTP %d)", apiErr.Message, apiErr.StatusCode)
	}
	return err.Error()
}
