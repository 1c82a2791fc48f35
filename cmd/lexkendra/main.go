// Package main is the entry point for the lexkendra binary.
//
// lexkendra provisions an Amazon Kendra index and an Amazon Lex V1 bot as
// CloudFormation custom resources and answers bot questions from the
// index. The same binary runs as the Lambda functions behind the custom
// resources and the bot, and as a local CLI.
//
// For detailed usage information, run:
//
//	lexkendra --help
package main

import (
	"fmt"
	"os"

	"github.com/lexkendra/lexkendra/cmd/lexkendra/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
