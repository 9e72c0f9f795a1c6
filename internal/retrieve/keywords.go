package retrieve

import (
	"regexp"
	"strings"
)

var stopWords = map[string]bool{
	"what": true, "how": true, "did": true, "does": true, "is": true, "are": true,
	"was": true, "were": true, "the": true, "a": true, "an": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true, "and": true,
	"or": true, "but": true, "about": true, "their": true, "its": true,
	"they": true, "it": true, "this": true, "that": true, "these": true,
	"those": true, "with": true, "from": true, "tell": true, "me": true,
	"us": true, "our": true, "your": true, "my": true, "has": true,
	"have": true, "had": true, "been": true, "be": true, "do": true,
	"say": true, "says": true, "said": true,
}

var wordPattern = regexp.MustCompile(`[a-z]+`)

// ExtractKeywords lower-cases query, splits on word boundaries, and drops
// stop words and anything shorter than 3 letters.
func ExtractKeywords(query string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(query), -1)
	var out []string
	for _, w := range matches {
		if len(w) > 2 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}
