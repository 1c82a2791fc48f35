package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexkendra/lexkendra/cmd/lexkendra/handlers"
)

// Ask returns the ask command.
func Ask() *cobra.Command {
	var indexID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the Kendra index a question",
		Long: `Ask queries the Kendra index and prints the answer exactly as the bot
would phrase it.

Example:
  lexkendra ask "How many days of leave do I get?" --index-id 0a1b2c3d`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Ask(cmd.Context(), configPath, strings.Join(args, " "), indexID, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&indexID, "index-id", "", "Kendra index id (defaults to the configured index)")

	return cmd
}
