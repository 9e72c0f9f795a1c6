package retrieve

import "strings"

// hydeTrigger pairs query keywords with the canonical SEC-filing-register
// clause HyDE appends after the query when any keyword is present. Local and offline —
// no generative model call, just a fixed lookup table, since formal
// filing language rarely resembles a conversational query.
type hydeTrigger struct {
	keywords []string
	clause   string
}

var hydeTriggers = []hydeTrigger{
	{
		keywords: []string{"risk", "risks", "danger", "threat"},
		clause:   "The Company is subject to various risks and uncertainties that could materially adversely affect its business, financial condition, and results of operations.",
	},
	{
		keywords: []string{"china", "chinese", "asia", "international"},
		clause:   "The Company's operations outside the United States are subject to risks associated with international operations including regulatory, political, and economic risks in foreign jurisdictions.",
	},
	{
		keywords: []string{"revenue", "sales", "income", "profit", "earnings"},
		clause:   "Net revenues and operating income reflect the Company's financial performance across its reportable segments for the fiscal year ended.",
	},
	{
		keywords: []string{"debt", "borrow", "credit", "loan", "leverage"},
		clause:   "The Company's indebtedness and credit facilities may limit its financial flexibility and ability to fund operations and capital expenditures.",
	},
	{
		keywords: []string{"competition", "competitor", "compete", "market"},
		clause:   "The Company faces intense competition from existing and new market participants which may impact pricing, market share, and overall financial performance.",
	},
	{
		keywords: []string{"ai", "artificial intelligence", "technology", "innovation"},
		clause:   "The Company continues to invest in research and development of emerging technologies including artificial intelligence to maintain competitive positioning.",
	},
	{
		keywords: []string{"supply", "chain", "supplier", "manufacturing"},
		clause:   "The Company relies on third-party suppliers and manufacturers which exposes it to supply chain disruptions, component shortages, and quality control risks.",
	},
	{
		keywords: []string{"regulation", "regulatory", "compliance", "law", "legal"},
		clause:   "The Company is subject to extensive government regulation across the jurisdictions in which it operates which may require significant compliance costs.",
	},
}

// maxClauses caps how many canonical clauses HyDE appends, so a query
// that matches several topics doesn't balloon past what the embedder
// was sized for.
const maxClauses = 2

// ExpandQuery returns query unchanged, followed by the clauses for matched
// topics, then its extracted keywords — all on one line. Any
// panic during extraction is swallowed and the raw query returned
// unexpanded; HyDE failure must never block retrieval.
func ExpandQuery(query string) (expanded string) {
	defer func() {
		if recover() != nil {
			expanded = query
		}
	}()

	lower := strings.ToLower(query)
	var clauses []string
	for _, trig := range hydeTriggers {
		if len(clauses) >= maxClauses {
			break
		}
		for _, kw := range trig.keywords {
			if strings.Contains(lower, kw) {
				clauses = append(clauses, trig.clause)
				break
			}
		}
	}

	parts := []string{query}
	parts = append(parts, clauses...)
	if kws := ExtractKeywords(query); len(kws) > 0 {
		parts = append(parts, strings.Join(kws, " "))
	}
	return strings.Join(parts, " ")
}
