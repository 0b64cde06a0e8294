package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/keycloak-aca/cmd/kcdbinit/commands"
	"github.com/systmms/keycloak-aca/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer memguard.Purge()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		noColor bool
		debug   bool
	)

	opts := commands.NewOptions()

	rootCmd := &cobra.Command{
		Use:   "kcdbinit",
		Short: "Keycloak SQL database initialization - provision and verify the app user",
		Long: `kcdbinit runs the login/user provisioning the deployment performs, as a
standalone tool for recovery and diagnostics.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.Logger = logging.New(debug, noColor)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewEnsureCommand(opts),
		commands.NewVerifyCommand(opts),
	)

	return rootCmd.Execute()
}
