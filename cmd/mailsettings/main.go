package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

var configPathFlag string

var rootCmd = &cobra.Command{
	Use:   "mailsettings",
	Short: "Set up and manage email accounts",
	Long: `mailsettings adds email accounts by checking the credentials and
server settings against the mail servers, and keeps per-account
notification and signature preferences.

Run without a subcommand to open the interactive account manager.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Path to the config file (default ~/.config/mailsettings/config.yaml)")

	accountsCmd.AddCommand(accountsListCmd, accountsDeleteCmd, accountsDefaultCmd, accountsCheckCmd)
	providersCmd.AddCommand(providersListCmd)
	rootCmd.AddCommand(accountsCmd, providersCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
