package cli

import (
	"fmt"

	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse archived batch reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived batch reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReportStore == nil {
			return fmt.Errorf("report store not initialized")
		}

		entries, err := ReportStore.ListReports()
		if err != nil {
			return fmt.Errorf("listing reports: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No reports archived yet.")
			return nil
		}

		fmt.Printf("%-28s %-12s %8s %8s %8s %8s\n", "ID", "RUN DATE", "CREATED", "SKIPPED", "MOVED", "FAILED")
		for _, e := range entries {
			fmt.Printf("%-28s %-12s %8d %8d %8d %8d\n",
				e.ID, e.RunDate, e.Created, e.Skipped, e.Rescheduled, e.Failed)
		}
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one report in full (latest when no ID is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReportStore == nil {
			return fmt.Errorf("report store not initialized")
		}

		report, err := loadReportArg(args)
		if err != nil {
			return err
		}
		fmt.Println(renderBatchReport(report))
		return nil
	},
}

var reportsResendCmd = &cobra.Command{
	Use:   "resend [id]",
	Short: "Resend a report to Telegram (latest when no ID is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReportStore == nil {
			return fmt.Errorf("report store not initialized")
		}
		if Notifier == nil {
			return fmt.Errorf("telegram notifications are not configured")
		}

		report, err := loadReportArg(args)
		if err != nil {
			return err
		}
		if err := Notifier.NotifyBatch(report); err != nil {
			return fmt.Errorf("sending report: %w", err)
		}
		fmt.Printf("Report %s sent.\n", report.ID)
		return nil
	},
}

func loadReportArg(args []string) (report *models.BatchReport, err error) {
	if len(args) == 1 {
		return ReportStore.GetReport(args[0])
	}
	report, err = ReportStore.GetLatest()
	if err != nil {
		return nil, fmt.Errorf("loading latest report: %w", err)
	}
	if report == nil {
		return nil, fmt.Errorf("no reports archived yet")
	}
	return report, nil
}

func init() {
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsResendCmd)
	rootCmd.AddCommand(reportsCmd)
}
