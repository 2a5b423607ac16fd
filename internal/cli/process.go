package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var processDateFlag string

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Classify and dispatch a batch of captured entries",
	Long: `Process a batch of captured text lines. Each line is classified,
given a priority and a date, checked for duplicates, balanced against the
per-day workload budget, and dispatched to its backend.

Input is read from the given file, or from stdin when no file is given.
The resulting report is printed, archived, and (when configured) sent to
Telegram.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Processor == nil {
			return fmt.Errorf("batch processor not initialized")
		}

		raw, err := readBatchInput(args)
		if err != nil {
			return err
		}
		if raw == "" {
			return fmt.Errorf("no input: pass a file or pipe text on stdin")
		}

		today, err := resolveRunDate(processDateFlag)
		if err != nil {
			return err
		}

		report, err := Processor.ProcessBatch(cmd.Context(), raw, today)
		if err != nil {
			return fmt.Errorf("processing batch: %w", err)
		}

		if ReportStore != nil {
			if _, err := ReportStore.SaveReport(report); err != nil {
				Logger.Warn().Err(err).Msg("archiving report failed")
			}
		}

		fmt.Println(renderBatchReport(report))

		if Notifier != nil {
			if err := Notifier.NotifyBatch(report); err != nil {
				Logger.Warn().Err(err).Msg("sending report to telegram failed")
			}
		}

		if report.FatalError != "" {
			return fmt.Errorf("batch aborted: %s", report.FatalError)
		}
		return nil
	},
}

func readBatchInput(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading input file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// resolveRunDate parses the --date flag, defaulting to the current date.
func resolveRunDate(flag string) (time.Time, error) {
	if flag == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", flag)
	}
	return t, nil
}

func init() {
	processCmd.Flags().StringVar(&processDateFlag, "date", "", "run date in YYYY-MM-DD form (defaults to today)")
	rootCmd.AddCommand(processCmd)
}
