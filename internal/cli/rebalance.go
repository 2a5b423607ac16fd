package cli

import (
	"fmt"
	"time"

	"github.com/dbrainhq/dbrain/internal/core"
	"github.com/spf13/cobra"
)

var (
	rebalanceDateFlag    string
	rebalanceFromFlag    string
	rebalanceToFlag      string
	rebalanceOverdueFlag bool
)

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Rebalance existing items across all containers",
	Long: `Scan every configured container and rebalance pre-existing items:
overdue items are pulled forward to the earliest day with remaining
capacity (starting today), and items on overloaded days move to the next
day with room. Team containers only receive workdays.

By default only overdue items are touched. Pass --from/--to to smooth a
date window instead, optionally combined with --overdue.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Rebalancer == nil {
			return fmt.Errorf("rebalancer not initialized")
		}

		today, err := resolveRunDate(rebalanceDateFlag)
		if err != nil {
			return err
		}

		opts := core.RebalanceOptions{OverdueOnly: rebalanceOverdueFlag}
		if opts.From, err = parseOptionalDate("--from", rebalanceFromFlag); err != nil {
			return err
		}
		if opts.To, err = parseOptionalDate("--to", rebalanceToFlag); err != nil {
			return err
		}

		report, err := Rebalancer.Run(cmd.Context(), today, opts)
		if err != nil {
			return fmt.Errorf("rebalancing: %w", err)
		}

		fmt.Println(renderRebalanceReport(report))

		if Notifier != nil && len(report.Moves) > 0 {
			if err := Notifier.NotifyRebalance(report); err != nil {
				Logger.Warn().Err(err).Msg("sending rebalance report to telegram failed")
			}
		}
		return nil
	},
}

func parseOptionalDate(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", flag, value)
	}
	return t, nil
}

func init() {
	rebalanceCmd.Flags().StringVar(&rebalanceDateFlag, "date", "", "reference date in YYYY-MM-DD form (defaults to today)")
	rebalanceCmd.Flags().StringVar(&rebalanceFromFlag, "from", "", "only consider items due on or after this date")
	rebalanceCmd.Flags().StringVar(&rebalanceToFlag, "to", "", "only consider items due on or before this date")
	rebalanceCmd.Flags().BoolVar(&rebalanceOverdueFlag, "overdue", true, "only consider items dated before today")
	rootCmd.AddCommand(rebalanceCmd)
}
