// Package cmd provides the toshi CLI's subcommands.
package cmd

import (
	"github.com/spf13/cobra"
)

var logLevel string

// Execute builds and runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "toshi",
		Short:         "Retrieve cited passages from a public company's regulatory filings",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newLookupCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newClearCmd())
	return root
}
