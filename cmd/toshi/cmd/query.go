package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codekshitij/toshi/internal/app"
)

type queryOptions struct {
	filingTypes []string
	years       int
	quarters    []string
	format      string // "text" or "json"
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <company_id> <question...>",
		Short: "Answer a natural-language question from a company's filings",
		Long: `Ingests any missing filing years on demand, then runs the
four-stage retrieval pipeline (HyDE expansion, MMR candidate recall,
CRAG self-critique filtering, cross-encoder reranking) and prints the
resulting citations.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID := args[0]
			question := strings.Join(args[1:], " ")
			return runQuery(cmd, companyID, question, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.filingTypes, "type", "t", nil, "filing types to search (default: 10-K,10-Q)")
	cmd.Flags().IntVarP(&opts.years, "years", "y", 0, "how many recent calendar years to target (default: 3)")
	cmd.Flags().StringSliceVarP(&opts.quarters, "quarter", "q", nil, "quarter tags to target for 10-Q filings (default: all four)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text or json")
	return cmd
}

func runQuery(cmd *cobra.Command, companyID, question string, opts queryOptions) error {
	a, err := app.New(logLevel)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer a.Close()

	citations, err := a.Pipeline.SearchFiling(cmd.Context(), companyID, question, opts.filingTypes, opts.years, opts.quarters)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if len(citations) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no matching passages found")
		return nil
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(citations)
	}

	for i, c := range citations {
		tag := c.Section
		if c.Quarter != "" {
			tag = tag + " " + c.Quarter
		}
		fmt.Printf("[%d] %s %s %s (%s, score=%.4f%s)\n", i+1, c.Company, c.Year, c.FilingType, tag, c.RerankScore, trimmedSuffix(c.CRAGTrimmed))
		fmt.Printf("    %s\n\n", c.Text)
	}
	return nil
}

func trimmedSuffix(trimmed bool) string {
	if trimmed {
		return ", trimmed"
	}
	return ""
}
