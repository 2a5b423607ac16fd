package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	dbrainmcp "github.com/dbrainhq/dbrain/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the dbrain MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dbrain MCP server on stdio",
	Long: `Start the dbrain MCP server on stdio transport.

The server exposes batch processing as MCP tools that AI assistants can
call: process_batch, rebalance, get_report, list_reports, get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Processor == nil {
			return fmt.Errorf("batch processor not initialized")
		}

		srv := dbrainmcp.NewServer(Processor, Rebalancer, ReportStore, MetricsCalc, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
