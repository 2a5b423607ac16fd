// Package cli implements the dbrain command tree. Service dependencies are
// package-level variables wired during app initialization.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "dbrain",
	Short: "dbrain - classify and dispatch captured notes to task and calendar backends",
	Long: `dbrain takes free-form captured text (voice transcripts, quick notes,
meeting scribbles) and turns each line into a personal task, a team task,
or a calendar event.

Entries are classified by keyword rules, given a priority and a date,
checked against existing items for duplicates, balanced against the
per-day workload budget, and dispatched to TickTick, Planfix, or Google
Calendar. Every batch ends with a per-container report.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dbrain %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
