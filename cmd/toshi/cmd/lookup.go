package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codekshitij/toshi/internal/config"
	"github.com/codekshitij/toshi/internal/edgar"
)

func newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <ticker-or-name>",
		Short: "Resolve a ticker or company name to its 10-digit CIK",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd.Context(), strings.Join(args, " "))
		},
	}
	return cmd
}

func runLookup(ctx context.Context, query string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	client := edgar.NewClient(cfg.Edgar)

	entries, err := client.SearchCompany(ctx)
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	cik, title, ok := edgar.FindCIK(entries, query)
	if !ok {
		return fmt.Errorf("lookup: no company matching %q", query)
	}
	fmt.Printf("%s\t%s\n", cik, title)
	return nil
}
