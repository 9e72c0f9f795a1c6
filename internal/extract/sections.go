// Package extract implements the section extractor (C2): locating
// canonical sections inside a marked-up filing body and recovering their
// plain-text bodies.
package extract

import (
	"regexp"
	"strings"

	"github.com/codekshitij/toshi/internal/filing"
)

// MinSectionLength is the minimum plain-text length a matched slice must
// have to be kept; shorter matches are almost always a bare heading.
const MinSectionLength = 500

// heading is one candidate pattern for a canonical section.
type heading struct {
	section string
	pattern *regexp.Regexp
}

// headingTable is the static configuration of section heading patterns,
// in canonical-section order, each already anchored to lower-cased
// "item N" forms plus well-known phrase headings.
var headingTable = []heading{
	{filing.SectionBusiness, regexp.MustCompile(`item\s*1\.?\s|business overview`)},
	{filing.SectionRiskFactors, regexp.MustCompile(`item\s*1a\.?\s|risk factors`)},
	{filing.SectionMDA, regexp.MustCompile(`item\s*7\.?\s|management(?:'|&#8217;|\x{2019})s discussion`)},
	{filing.SectionFinancials, regexp.MustCompile(`item\s*8\.?\s|financial statements`)},
}

// Extract implements §4.2's algorithm: locate the last occurrence of each
// canonical section's heading (skipping a table of contents, which always
// matches first), slice the raw body between consecutive matches, strip
// markup from each slice independently, and drop slices below
// MinSectionLength. Sections that can't be located are returned as empty
// strings — absence is never an error.
func Extract(rawBody string) map[string]string {
	out := filing.EmptySections()
	lower := strings.ToLower(rawBody)

	var matches []sectionMatch
	for _, h := range headingTable {
		locs := h.pattern.FindAllStringIndex(lower, -1)
		if len(locs) == 0 {
			continue
		}
		last := locs[len(locs)-1] // last match wins — skips the TOC
		matches = append(matches, sectionMatch{section: h.section, pos: last[0]})
	}
	if len(matches) == 0 {
		return out
	}

	sortMatches(matches)

	for i, m := range matches {
		end := len(rawBody)
		if i+1 < len(matches) {
			end = matches[i+1].pos
		}
		raw := rawBody[m.pos:end]
		text := stripMarkupSafe(raw)
		if len(text) >= MinSectionLength {
			out[m.section] = text
		}
	}
	return out
}

// sectionMatch records where a canonical section's heading was found.
type sectionMatch struct {
	section string
	pos     int
}

func sortMatches(matches []sectionMatch) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].pos < matches[j-1].pos; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}

// stripMarkupSafe recovers from any markup-parsing panic on a single slice
// by returning empty text for that slice only — other sections must still
// be produced, per §4.2's failure semantics.
func stripMarkupSafe(raw string) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	return StripMarkup(raw)
}
