// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// configPath is bound to the persistent --config flag of the root command.
var configPath string

// Root returns the root command for the lexkendra CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexkendra",
		Short: "Provision a Kendra index and a Lex bot as CloudFormation custom resources",
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (defaults to $LEXKENDRA_CONFIG)")

	cmd.AddCommand(Lambda())
	cmd.AddCommand(Invoke())
	cmd.AddCommand(Ask())
	cmd.AddCommand(Version())

	return cmd
}
