package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/lexkendra/lexkendra/cmd/lexkendra/handlers"
)

// Invoke returns the invoke command.
//
// The invoke command runs a custom resource event locally, polling in
// process until the request reaches a terminal state.
func Invoke() *cobra.Command {
	var (
		eventPath    string
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "invoke index|bot",
		Short: "Run a custom resource event locally",
		Long: `Invoke runs a CloudFormation custom resource event file against the
real AWS APIs without deploying the function.

Pending creations are polled in process. When the event carries a
ResponseURL the result is sent there as well.

Example:
  lexkendra invoke index -e create-index.json --poll-interval 30s`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{handlers.ResourceIndex, handlers.ResourceBot},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cobra.OnlyValidArgs(cmd, args); err != nil {
				return err
			}
			_, err := handlers.Invoke(cmd.Context(), handlers.InvokeOptions{
				ConfigPath:   configPath,
				Resource:     args[0],
				EventPath:    eventPath,
				PollInterval: pollInterval,
			})
			return err
		},
	}

	cmd.Flags().StringVarP(&eventPath, "event", "e", "", "Path to the custom resource event JSON (required)")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "Wait between polls (defaults to the configured polling interval)")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}
