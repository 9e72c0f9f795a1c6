package retrieve

import (
	"strings"
	"testing"
)

func TestExpandQueryAppendsMatchedClauseAfterQuery(t *testing.T) {
	expanded := ExpandQuery("what are the main risks facing the company")
	if !strings.Contains(expanded, "subject to various risks and uncertainties") {
		t.Fatalf("expected risk clause in expansion, got: %s", expanded)
	}
	if !strings.HasPrefix(expanded, "what are the main risks facing the company") {
		t.Fatalf("expected original query preserved at start, got: %s", expanded)
	}
}

func TestExpandQueryCapsAtTwoClauses(t *testing.T) {
	query := "risk china revenue debt competition supply regulation"
	expanded := ExpandQuery(query)
	count := 0
	clauses := []string{
		"subject to various risks and uncertainties",
		"operations outside the United States",
		"Net revenues and operating income",
		"indebtedness and credit facilities",
		"intense competition",
		"third-party suppliers",
		"extensive government regulation",
	}
	for _, c := range clauses {
		if strings.Contains(expanded, c) {
			count++
		}
	}
	if count > maxClauses {
		t.Fatalf("expected at most %d clauses, found %d in: %s", maxClauses, count, expanded)
	}
}

func TestExpandQueryWithNoMatchingTopicReturnsQueryPlusKeywords(t *testing.T) {
	expanded := ExpandQuery("describe the office locations")
	if !strings.Contains(expanded, "describe the office locations") {
		t.Fatalf("expected original query preserved, got: %s", expanded)
	}
}

func TestExtractKeywordsDropsStopWordsAndShortTokens(t *testing.T) {
	kws := ExtractKeywords("What did the company say about its risk exposure to China")
	for _, kw := range kws {
		if stopWords[kw] {
			t.Fatalf("expected stop word %q to be dropped", kw)
		}
		if len(kw) <= 2 {
			t.Fatalf("expected short token %q to be dropped", kw)
		}
	}
	found := map[string]bool{}
	for _, kw := range kws {
		found[kw] = true
	}
	if !found["risk"] || !found["exposure"] || !found["china"] {
		t.Fatalf("expected meaningful keywords retained, got: %v", kws)
	}
}
