package cli

import (
	"fmt"

	"github.com/dbrainhq/dbrain/internal/backend"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize dbrain with Google Calendar",
	Long: `Run the Google OAuth flow for the calendar backend. Expects
credentials.json (the OAuth client from the Google Cloud console) in the
dbrain home directory; stores the obtained token next to it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if BasePath == "" {
			return fmt.Errorf("base path not initialized")
		}
		if err := backend.AuthorizeGoogle(cmd.Context(), BasePath); err != nil {
			return fmt.Errorf("authorizing with Google: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
