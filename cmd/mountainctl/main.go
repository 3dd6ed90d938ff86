package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mountainctl",
		Short:         "Operate the mountain visibility history",
		Long:          "mountainctl reads the same environment as the server (SQLITE_PATH, SITE_*, SETTLE_WINDOW...).",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(decideCmd())
	rootCmd.AddCommand(daylightCmd())
	return rootCmd
}
