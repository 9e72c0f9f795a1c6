package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codekshitij/toshi/internal/app"
)

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <company_id>",
		Short: "Remove every cached fetch and indexed chunk for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd, args[0])
		},
	}
	return cmd
}

func runClear(cmd *cobra.Command, companyID string) error {
	a, err := app.New(logLevel)
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	defer a.Close()

	if err := a.Store.ClearCompany(cmd.Context(), companyID); err != nil {
		return fmt.Errorf("clear: vector index: %w", err)
	}
	if err := a.Cache.ClearCompany(companyID); err != nil {
		return fmt.Errorf("clear: fetch cache: %w", err)
	}
	fmt.Printf("cleared %s\n", companyID)
	return nil
}
