package extract

import (
	"strings"
	"testing"
)

func repeat(s string, n int) string {
	return strings.Repeat(s+" ", n)
}

func TestExtractSkipsTableOfContentsTakesLastMatch(t *testing.T) {
	toc := "<div>Item 1A. Risk Factors</div>"
	body := "<div>Item 1A. Risk Factors</div><p>" + repeat("material adverse risk", 120) + "</p>"
	doc := "<html><head><title>x</title></head><body>" + toc + body + "</body></html>"

	sections := Extract(doc)
	if sections["risk_factors"] == "" {
		t.Fatalf("expected risk_factors to be populated")
	}
	if strings.Contains(sections["risk_factors"], "<div>") {
		t.Fatalf("expected markup stripped, got: %q", sections["risk_factors"])
	}
}

func TestExtractDropsShortSections(t *testing.T) {
	doc := "<html><body><div>Item 1A. Risk Factors</div><p>too short</p></body></html>"
	sections := Extract(doc)
	if sections["risk_factors"] != "" {
		t.Fatalf("expected short section to be treated as absent, got %q", sections["risk_factors"])
	}
}

func TestExtractMissingSectionIsEmptyNotError(t *testing.T) {
	doc := "<html><body><p>" + repeat("nothing relevant here", 50) + "</p></body></html>"
	sections := Extract(doc)
	for name, text := range sections {
		if text != "" {
			t.Fatalf("did not expect section %s to be populated: %q", name, text)
		}
	}
}

func TestStripMarkupDropsScriptAndStyle(t *testing.T) {
	raw := "<div>keep<script>var x = 1;</script><style>.a{}</style>more</div>"
	text := StripMarkup(raw)
	if strings.Contains(text, "var x") || strings.Contains(text, ".a{}") {
		t.Fatalf("expected script/style content dropped, got: %q", text)
	}
	if !strings.Contains(text, "keep") || !strings.Contains(text, "more") {
		t.Fatalf("expected surrounding text preserved, got: %q", text)
	}
}
