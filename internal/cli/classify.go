package cli

import (
	"fmt"

	"github.com/dbrainhq/dbrain/internal/core"
	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/spf13/cobra"
)

var classifyDateFlag string

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Preview how a batch would be classified, without dispatching",
	Long: `Run only the pure pipeline stages: normalization, classification,
priority, and date resolution. Nothing is sent to any backend, and no
duplicate or workload checks run (those need backend state).

Useful for tuning routing keywords before trusting a real batch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Config == nil {
			return fmt.Errorf("configuration not initialized")
		}

		raw, err := readBatchInput(args)
		if err != nil {
			return err
		}
		if raw == "" {
			return fmt.Errorf("no input: pass a file or pipe text on stdin")
		}

		today, err := resolveRunDate(classifyDateFlag)
		if err != nil {
			return err
		}

		classifier := core.NewClassifier(Config.Routing)
		priorities := core.NewPriorityResolver()
		dates := core.NewDateResolver()
		resolver := core.NewContainerResolver(Config)

		for _, entry := range core.NormalizeBatch(raw) {
			if entry.Text == "" {
				fmt.Printf("x %q: no resolvable title\n", entry.Raw)
				continue
			}
			result := classifier.Classify(entry)
			priority := priorities.Resolve(entry.Text, result.Destination)
			resolved := dates.Resolve(entry, result.Destination, today)
			container, cerr := resolver.Resolve(entry.Text, result.Destination)
			if cerr != nil {
				container = "(" + cerr.Error() + ")"
			}

			marker := " "
			if result.LowConfidence {
				marker = "?"
			}
			fmt.Printf("%s %-8s %-4s %s  %s -> %s", marker, result.Destination, priority, resolved.Due.Format("2006-01-02"), entry.Text, container)
			if result.Destination == models.DestCalendar && !resolved.Start.IsZero() {
				fmt.Printf(" at %s", resolved.Start.Format("15:04"))
			}
			fmt.Printf("  [%s]\n", result.RuleName)
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyDateFlag, "date", "", "reference date in YYYY-MM-DD form (defaults to today)")
	rootCmd.AddCommand(classifyCmd)
}
