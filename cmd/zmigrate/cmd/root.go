package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "zmigrate",
	Short: "Migrate mailbox accounts between two mail-server clusters",
	Long: `zmigrate moves mailbox accounts from a source cluster to a destination
cluster in three coordinated phases: directory-entry replication, full data
transfer, and incremental delta transfer followed by cutover. Completed
phases are recorded in an append-only session ledger, so interrupted runs
can be re-invoked without redoing finished work.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("zmigrate %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "zmigrate.yaml", "path to config file")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
