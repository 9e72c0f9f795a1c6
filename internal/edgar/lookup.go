package edgar

import (
	"fmt"
	"strings"
)

// PadCIK formats a CIK as SEC's 10-digit, zero-padded string form, as
// required by the submissions/companyfacts endpoints.
func PadCIK(cik int) string {
	return fmt.Sprintf("%010d", cik)
}

// FindCIK does a case-insensitive substring match for name (or an exact
// ticker match) against the company lookup table, returning the matched
// entry's padded CIK and title. An exact ticker match takes precedence;
// among several title matches, which one is returned is not defined (map
// iteration order). Matching is intentionally forgiving —
// users rarely type a company's exact SEC-registered name.
func FindCIK(entries map[string]TickerEntry, name string) (cikPadded, title string, ok bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", "", false
	}

	for _, e := range entries {
		if strings.ToLower(e.Ticker) == needle {
			return PadCIK(e.CIK), e.Title, true
		}
	}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Title), needle) {
			return PadCIK(e.CIK), e.Title, true
		}
	}
	return "", "", false
}
