package commands

import (
	"github.com/spf13/cobra"

	"github.com/lexkendra/lexkendra/cmd/lexkendra/handlers"
)

// Lambda returns the lambda command.
//
// The lambda command starts the AWS Lambda runtime loop for one of the
// functions: the index custom resource, the bot custom resource, or the
// bot fulfillment handler.
func Lambda() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda index|bot|answer",
		Short: "Run as an AWS Lambda function",
		Long: `Lambda starts the AWS Lambda runtime with the selected handler.

  index   Kendra index custom resource (index, data source, FAQ)
  bot     Lex bot custom resource (slot types, intents, bot, alias)
  answer  Lex fulfillment code hook answering from the Kendra index

Configuration is read from $LEXKENDRA_CONFIG and the environment.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{handlers.ResourceIndex, handlers.ResourceBot, handlers.ResourceAnswer},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cobra.OnlyValidArgs(cmd, args); err != nil {
				return err
			}
			return handlers.Lambda(cmd.Context(), configPath, args[0])
		},
	}
}
