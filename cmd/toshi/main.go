// Command toshi is the CLI front-end for the retrieval core: look up a
// company's CIK, ingest its filings on demand, and run natural-language
// queries against the indexed passages.
package main

import (
	"os"

	"github.com/codekshitij/toshi/cmd/toshi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
